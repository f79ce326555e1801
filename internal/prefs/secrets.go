// internal/prefs/secrets.go
package prefs

import (
	"fmt"

	"github.com/99designs/keyring"
)

const keyringService = "writon"

// OpenKeyring opens the OS keyring for API key storage. An empty backend lets
// the library choose; "file" uses an encrypted file under dir protected by
// passphrase.
func OpenKeyring(backend, dir, passphrase string) (keyring.Keyring, error) {
	cfg := keyring.Config{
		ServiceName:              keyringService,
		KeychainTrustApplication: true,
		FileDir:                  dir,
		FilePasswordFunc:         keyring.FixedStringPrompt(passphrase),
	}
	if backend != "" {
		cfg.AllowedBackends = []keyring.BackendType{keyring.BackendType(backend)}
	}

	kr, err := keyring.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open keyring: %w", err)
	}
	return kr, nil
}
