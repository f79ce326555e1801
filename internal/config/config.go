// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultServerURL      = "http://localhost:8000"
	defaultTimeoutSeconds = 120
	defaultScratchMs      = 1000
	defaultHealthMs       = 1500
	defaultLogLevel       = "info"
)

type Config struct {
	Server struct {
		URL string `yaml:"url"`
		// Seconds; 0 disables the request deadline
		Timeout *int `yaml:"timeout,omitempty"`
	} `yaml:"server"`
	Storage struct {
		DBPath            string `yaml:"db_path,omitempty"`
		Keyring           bool   `yaml:"keyring"`
		KeyringBackend    string `yaml:"keyring_backend,omitempty"`
		KeyringPassphrase string `yaml:"keyring_passphrase,omitempty"`
	} `yaml:"storage"`
	Persistence struct {
		ScratchDebounceMs int `yaml:"scratch_debounce_ms"`
		HealthDebounceMs  int `yaml:"health_debounce_ms"`
	} `yaml:"persistence"`
	Logging struct {
		Level string `yaml:"level"`
		File  string `yaml:"file,omitempty"`
	} `yaml:"logging"`
}

// Load reads the config file from its default location
func Load() (*Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads the config file at path. A missing file yields the defaults.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		cfg := defaultConfig()
		cfg.applyEnvOverrides()
		return cfg, nil
	}

	// Expand environment variables in config
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	// Apply defaults for unset values
	applyDefaults(&cfg)
	cfg.applyEnvOverrides()

	return &cfg, nil
}

// LoadDotEnv loads a .env file from the working directory if there is one.
// Variables already set in the environment win.
func LoadDotEnv() error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

func defaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.URL == "" {
		cfg.Server.URL = defaultServerURL
	}
	if cfg.Server.Timeout == nil {
		t := defaultTimeoutSeconds
		cfg.Server.Timeout = &t
	}
	if cfg.Persistence.ScratchDebounceMs == 0 {
		cfg.Persistence.ScratchDebounceMs = defaultScratchMs
	}
	if cfg.Persistence.HealthDebounceMs == 0 {
		cfg.Persistence.HealthDebounceMs = defaultHealthMs
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaultLogLevel
	}
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if url := os.Getenv("WRITON_SERVER_URL"); url != "" {
		c.Server.URL = url
	}
	if v := os.Getenv("WRITON_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			c.Server.Timeout = &secs
		}
	}
	if level := os.Getenv("WRITON_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// SetTimeout overrides the request timeout in seconds
func (c *Config) SetTimeout(secs int) {
	c.Server.Timeout = &secs
}

// RequestTimeout is the overall deadline for one request; 0 means none
func (c *Config) RequestTimeout() time.Duration {
	if c.Server.Timeout == nil {
		return defaultTimeoutSeconds * time.Second
	}
	return time.Duration(*c.Server.Timeout) * time.Second
}

// ScratchDelay is the debounce window for scratch buffer writes
func (c *Config) ScratchDelay() time.Duration {
	return time.Duration(c.Persistence.ScratchDebounceMs) * time.Millisecond
}

// HealthDelay is the debounce window for key checks
func (c *Config) HealthDelay() time.Duration {
	return time.Duration(c.Persistence.HealthDebounceMs) * time.Millisecond
}

// Save writes the configuration as YAML to path
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Default returns a configuration with every default applied
func Default() *Config {
	return defaultConfig()
}

func ConfigPath() string {
	configDir, _ := os.UserConfigDir()
	if configDir == "" {
		configDir = os.ExpandEnv("$HOME/.config")
	}
	return filepath.Join(configDir, "writon", "config.yaml")
}
