// internal/input/loader.go
package input

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// MaxFileSize is the largest local file read as text (1MB). The submission
// limit is enforced later by validation; this only guards memory.
const MaxFileSize = 1024 * 1024

var (
	ErrDirectory = errors.New("path is a directory")
	ErrTooLarge  = errors.New("file too large")
	ErrSensitive = errors.New("access to sensitive path denied")
	ErrBinary    = errors.New("file is not UTF-8 text, use upload instead")
)

// textExts are read locally; anything else goes through the server's
// /upload so it can extract the text
var textExts = map[string]bool{
	"":          true,
	".txt":      true,
	".md":       true,
	".markdown": true,
	".text":     true,
	".rst":      true,
	".csv":      true,
	".log":      true,
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// ValidatePath checks for security issues with the path
func ValidatePath(path string) (string, error) {
	absPath, err := filepath.Abs(ExpandHome(path))
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}

	if isSensitivePath(absPath) {
		return "", ErrSensitive
	}

	info, err := os.Stat(absPath)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("path does not exist: %s", absPath)
	} else if err != nil {
		return "", fmt.Errorf("cannot access path: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s: %w", absPath, ErrDirectory)
	}

	return absPath, nil
}

// NeedsUpload reports whether the file should be sent to the server for
// text extraction rather than read locally.
func NeedsUpload(path string) bool {
	return !textExts[strings.ToLower(filepath.Ext(path))]
}

// LoadFile reads a local text file with size limits
func LoadFile(path string) (string, error) {
	absPath, err := ValidatePath(path)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to stat file: %w", err)
	}
	if info.Size() > MaxFileSize {
		return "", fmt.Errorf("%w (%d bytes, max %d)", ErrTooLarge, info.Size(), MaxFileSize)
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	if !utf8.Valid(content) {
		return "", ErrBinary
	}

	return string(content), nil
}

// OpenForUpload opens a file to stream to /upload. The server decides what it
// accepts, so only the path checks apply. The caller closes the file.
func OpenForUpload(path string) (*os.File, string, error) {
	absPath, err := ValidatePath(path)
	if err != nil {
		return nil, "", err
	}
	f, err := os.Open(absPath)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", absPath, err)
	}
	return f, filepath.Base(absPath), nil
}

// ReadInput reads text piped on stdin, up to MaxFileSize
func ReadInput(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	if len(data) > MaxFileSize {
		return "", fmt.Errorf("%w (max %d bytes)", ErrTooLarge, MaxFileSize)
	}
	return string(data), nil
}

// isSensitivePath returns true for paths that should never be read or uploaded
func isSensitivePath(path string) bool {
	sensitive := []string{
		"/.ssh/",
		"/.gnupg/",
		"/.aws/",
		"/.config/gcloud",
		"/etc/shadow",
		"/etc/passwd",
		"/.netrc",
		"/.npmrc",
		"/.pypirc",
		"/.env",
		".pem",
		"id_rsa",
		"id_ed25519",
		"id_ecdsa",
	}

	lowerPath := strings.ToLower(filepath.ToSlash(path))
	for _, s := range sensitive {
		if strings.Contains(lowerPath, s) {
			return true
		}
	}
	return false
}
