// Package config loads and stores pgshell settings in the XDG config dir.
// Only non-secret settings are kept here; the saved DSN goes to the OS keychain.
//
// Settings are read from config.json first, then any PGSHELL_* environment
// variables that are set override the file.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"pgshell/cli/internal/xdg"

	"github.com/caarlos0/env/v11"
)

// Config holds non-sensitive settings.
type Config struct {
	LogLevel string `json:"log_level" env:"PGSHELL_LOG_LEVEL"`
	Format   string `json:"format" env:"PGSHELL_FORMAT"`
	// FailFast stops scripts at the first failing entry.
	FailFast bool `json:"fail_fast" env:"PGSHELL_FAIL_FAST"`
	// History persists interactive input in the XDG state dir.
	History bool `json:"history" env:"PGSHELL_HISTORY"`
	// ConnectTimeoutSeconds bounds connection setup. Zero disables the limit.
	ConnectTimeoutSeconds int `json:"connect_timeout_seconds" env:"PGSHELL_CONNECT_TIMEOUT"`
}

// Defaults returns the settings used when no file exists.
func Defaults() Config {
	return Config{
		LogLevel:              "info",
		Format:                "table",
		FailFast:              true,
		History:               true,
		ConnectTimeoutSeconds: 10,
	}
}

// ConnectTimeout returns ConnectTimeoutSeconds as a duration.
func (c Config) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutSeconds) * time.Second
}

// path returns the path to the config file.
func path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads configuration and applies environment overrides.
// A missing file yields the defaults; fields absent from the file keep theirs.
func Load() (Config, error) {
	c := Defaults()
	p, err := path()
	if err != nil {
		return c, err
	}
	data, err := os.ReadFile(p)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return c, err
	}
	if err == nil {
		if err := json.Unmarshal(data, &c); err != nil {
			return c, err
		}
	}
	if err := env.Parse(&c); err != nil {
		return c, err
	}
	return c, nil
}

// Save writes configuration with 0600 permissions.
func Save(c Config) error {
	p, err := path()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}
