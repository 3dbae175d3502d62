// Package config provides configuration loading for the devtinder client.
//
// Configuration is read from a YAML file and overridden by environment
// variables with sensible defaults for everything.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// Config holds the complete devtinder client configuration.
type Config struct {
	API   APIConfig   `koanf:"api"`
	State StateConfig `koanf:"state"`
	Log   LogConfig   `koanf:"log"`
}

// APIConfig holds settings for the DevTinder REST API.
type APIConfig struct {
	// BaseURL is the API host. Overridable via DEVTINDER_API_BASE_URL.
	BaseURL string `koanf:"base_url"`
	// Timeout applies to every HTTP call.
	Timeout Duration `koanf:"timeout"`
}

// StateConfig holds settings for durable client state (session cache, token).
type StateConfig struct {
	// Dir is where the session cache and token files live.
	Dir string `koanf:"dir"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // "console" or "json"
	// File receives log output when set. The TUI always logs to a file so
	// zap output does not corrupt the alternate screen.
	File string `koanf:"file"`
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid api.base_url %q: %w", c.API.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.base_url must be http or https, got %q", c.API.BaseURL)
	}
	if c.API.Timeout.Duration() <= 0 {
		return fmt.Errorf("api.timeout must be positive, got %s", c.API.Timeout.Duration())
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be console or json, got %q", c.Log.Format)
	}
	return nil
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "https://api.example.com"
	}
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = Duration(10 * time.Second)
	}
	if cfg.State.Dir == "" {
		cfg.State.Dir = defaultStateDir()
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
}

// defaultStateDir returns ~/.config/devtinder, falling back to the working
// directory when the home directory cannot be resolved.
func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".devtinder"
	}
	return filepath.Join(home, ".config", "devtinder")
}

// EnsureStateDir creates the state directory if it doesn't exist.
// The directory is created with 0700 permissions (owner only).
func EnsureStateDir(dir string) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create state directory %s: %w", dir, err)
	}
	return nil
}
