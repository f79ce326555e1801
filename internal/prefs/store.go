// internal/prefs/store.go
package prefs

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/99designs/keyring"
	"go.uber.org/zap"
)

// DefaultScratchDelay is the quiet window before the scratch buffer is written
const DefaultScratchDelay = 1000 * time.Millisecond

// SecretKey is the keyring item holding the API key when secrets are enabled
const SecretKey = "writon-api-key"

// KV is the durable key/value namespace the store writes into
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// Store reads and writes the Configuration and scratch buffer. Storage
// failures never reach the caller; they are logged and dropped.
type Store struct {
	kv      KV
	secrets keyring.Keyring
	log     *zap.Logger
	scratch *Debouncer
}

// Option configures a Store
type Option func(*Store)

// WithSecrets keeps the API key in a keyring instead of the config blob
func WithSecrets(kr keyring.Keyring) Option {
	return func(s *Store) { s.secrets = kr }
}

// WithLogger sets the logger used for swallowed storage errors
func WithLogger(log *zap.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// WithScratchDelay overrides the scratch debounce window
func WithScratchDelay(d time.Duration) Option {
	return func(s *Store) { s.scratch = NewDebouncer(d) }
}

// NewStore creates a store over the given backend
func NewStore(kv KV, opts ...Option) *Store {
	s := &Store{
		kv:      kv,
		log:     zap.NewNop(),
		scratch: NewDebouncer(DefaultScratchDelay),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save overwrites the stored configuration wholesale
func (s *Store) Save(cfg Configuration) {
	if s.secrets != nil {
		if err := s.saveSecret(cfg.APIKey); err != nil {
			s.log.Warn("store api key in keyring", zap.Error(err))
		}
		cfg.APIKey = ""
	}

	data, err := json.Marshal(cfg)
	if err != nil {
		s.log.Warn("encode configuration", zap.Error(err))
		return
	}
	if err := s.kv.Set(ConfigKey, string(data)); err != nil {
		s.log.Warn("persist configuration", zap.Error(err))
	}
}

func (s *Store) saveSecret(key string) error {
	if key == "" {
		err := s.secrets.Remove(SecretKey)
		if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
			return err
		}
		return nil
	}
	return s.secrets.Set(keyring.Item{
		Key:         SecretKey,
		Data:        []byte(key),
		Label:       "Writon API key",
		Description: "Provider API key used by writon",
	})
}

// Load returns the stored configuration with defaults for anything missing
func (s *Store) Load() Configuration {
	cfg := DefaultConfiguration()

	data, ok, err := s.kv.Get(ConfigKey)
	if err != nil {
		s.log.Warn("read configuration", zap.Error(err))
	} else if ok {
		decoded, err := decodeConfiguration(data)
		if err != nil {
			s.log.Warn("stored configuration is malformed, using defaults", zap.Error(err))
		}
		cfg = decoded
	}

	if s.secrets != nil {
		item, err := s.secrets.Get(SecretKey)
		switch {
		case err == nil:
			cfg.APIKey = string(item.Data)
		case errors.Is(err, keyring.ErrKeyNotFound):
		default:
			s.log.Warn("read api key from keyring", zap.Error(err))
		}
	}

	return cfg
}

// SaveScratch schedules a debounced write of the input text. Whitespace-only
// text is never written, so an accidental wipe keeps the last buffer.
func (s *Store) SaveScratch(text string) {
	s.scratch.Call(func() {
		if strings.TrimSpace(text) == "" {
			return
		}
		s.SaveScratchNow(text)
	})
}

// SaveScratchNow writes the scratch buffer without waiting
func (s *Store) SaveScratchNow(text string) {
	if err := s.kv.Set(ScratchKey, text); err != nil {
		s.log.Warn("persist scratch buffer", zap.Error(err))
	}
}

// LoadScratch returns the saved input text, or "" if none
func (s *Store) LoadScratch() string {
	text, ok, err := s.kv.Get(ScratchKey)
	if err != nil {
		s.log.Warn("read scratch buffer", zap.Error(err))
		return ""
	}
	if !ok {
		return ""
	}
	return text
}

// ClearScratch removes the scratch buffer and drops any pending write
func (s *Store) ClearScratch() {
	s.scratch.Cancel()
	if err := s.kv.Delete(ScratchKey); err != nil {
		s.log.Warn("clear scratch buffer", zap.Error(err))
	}
}

// Flush performs any pending scratch write now
func (s *Store) Flush() {
	s.scratch.Flush()
}

// ScratchPending reports whether a debounced write is waiting
func (s *Store) ScratchPending() bool {
	return s.scratch.Pending()
}
