package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds CLI defaults loaded from a TOML file. Pointer fields
// distinguish "not set" from a zero value, so users can override only what
// they want.
type Config struct {
	Verbose      *bool   `toml:"Verbose,omitempty"`
	RadioTimeout *string `toml:"RadioTimeout,omitempty"` // e.g. "30s"
}

// RadioTimeoutDuration returns the configured radio convergence timeout, if
// set and parseable.
func (c *Config) RadioTimeoutDuration() (time.Duration, bool) {
	if c.RadioTimeout == nil {
		return 0, false
	}
	d, err := time.ParseDuration(*c.RadioTimeout)
	if err != nil || d <= 0 {
		return 0, false
	}
	return d, true
}

// defaultConfigPath returns the conventional config location, or "" when the
// user config dir cannot be determined.
func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "wifictl", "config.toml")
}

// LoadConfig reads a config file. An empty path means the default location,
// where a missing file is fine; an explicitly given path must exist.
func LoadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath()
		if path == "" {
			return &Config{}, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
