package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultExpiry is how long an untouched branch keeps its stored tabs.
const DefaultExpiry = 30 * 24 * time.Hour

// Storage backends.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Config is the contents of config.yaml.
type Config struct {
	// Expiry is the time-to-live of a branch's stored tabs.
	Expiry time.Duration `yaml:"expiry"`

	// Backend selects the workspace state store ("json" or "sqlite").
	Backend string `yaml:"backend"`

	Log LogConfig `yaml:"log"`
}

// LogConfig controls daemon logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is "console" or "json". Empty picks console on a terminal.
	Format string `yaml:"format"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		Expiry:  DefaultExpiry,
		Backend: BackendJSON,
		Log:     LogConfig{Level: "info"},
	}
}

// Load reads the config file at path. A missing file yields Default().
// BRANCHTABS_LOG_LEVEL and BRANCHTABS_BACKEND override the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if v := os.Getenv("BRANCHTABS_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("BRANCHTABS_BACKEND"); v != "" {
		cfg.Backend = v
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Expiry <= 0 {
		return fmt.Errorf("expiry must be positive, got %s", c.Expiry)
	}
	switch c.Backend {
	case BackendJSON, BackendSQLite:
	default:
		return fmt.Errorf("backend must be %q or %q, got %q", BackendJSON, BackendSQLite, c.Backend)
	}
	switch c.Log.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, got %q", c.Log.Format)
	}
	return nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
