// internal/export/config.go
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"writon/internal/prefs"
)

// ConfigVersion is written into every exported configuration
const ConfigVersion = "2.0"

// ErrInvalidConfig means an imported file lacks a version or provider
var ErrInvalidConfig = errors.New("Invalid configuration file")

// ConfigFile is the shareable form of a Configuration. It never carries the API key.
type ConfigFile struct {
	Provider       string `json:"provider"`
	Model          string `json:"model"`
	Mode           string `json:"mode"`
	CaseStyle      string `json:"caseStyle"`
	TargetLanguage string `json:"targetLanguage"`
	CustomLanguage string `json:"customLanguage"`
	Version        string `json:"version"`
	Exported       string `json:"exported"`
}

// ExportConfig encodes cfg for sharing, minus the key
func ExportConfig(cfg prefs.Configuration, now time.Time) ([]byte, error) {
	file := ConfigFile{
		Provider:       cfg.Provider,
		Model:          cfg.Model,
		Mode:           cfg.Mode,
		CaseStyle:      cfg.CaseStyle,
		TargetLanguage: cfg.TargetLanguage,
		CustomLanguage: cfg.CustomLanguage,
		Version:        ConfigVersion,
		Exported:       now.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
	return json.MarshalIndent(file, "", "  ")
}

// ConfigFilename names an export made at now
func ConfigFilename(now time.Time) string {
	return fmt.Sprintf("writon-config-%s.json", now.UTC().Format("2006-01-02"))
}

// WriteConfig exports cfg into dir and returns the file path
func WriteConfig(cfg prefs.Configuration, dir string, now time.Time) (string, error) {
	data, err := ExportConfig(cfg, now)
	if err != nil {
		return "", fmt.Errorf("encode configuration: %w", err)
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create directory: %w", err)
	}
	path := filepath.Join(dir, ConfigFilename(now))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return path, nil
}

// ImportConfig decodes an exported configuration over current. The API key
// is kept from current; every other missing field takes its default.
func ImportConfig(data []byte, current prefs.Configuration) (prefs.Configuration, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return current, err
	}
	if !truthy(raw["version"]) || !truthy(raw["provider"]) {
		return current, ErrInvalidConfig
	}

	def := prefs.DefaultConfiguration()
	str := func(key, fallback string) string {
		if s, ok := raw[key].(string); ok && s != "" {
			return s
		}
		return fallback
	}

	provider, ok := raw["provider"].(string)
	if !ok {
		return current, ErrInvalidConfig
	}

	return prefs.Configuration{
		Provider:       provider,
		APIKey:         current.APIKey,
		Model:          str("model", ""),
		Mode:           str("mode", def.Mode),
		CaseStyle:      str("caseStyle", def.CaseStyle),
		TargetLanguage: str("targetLanguage", def.TargetLanguage),
		CustomLanguage: str("customLanguage", ""),
	}, nil
}

// ReadConfig imports a configuration file from disk
func ReadConfig(path string, current prefs.Configuration) (prefs.Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return current, fmt.Errorf("read %s: %w", path, err)
	}
	return ImportConfig(data, current)
}

// truthy mirrors a loose presence check: missing, null, false, 0 and "" fail
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case float64:
		return x != 0
	default:
		return true
	}
}
