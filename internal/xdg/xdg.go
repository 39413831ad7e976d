// Package xdg resolves XDG Base Directory paths for pgshell: the config
// directory holding config.json and the state directory holding the
// readline history file.
//
// When the XDG variables are unset the usual fallbacks under the home
// directory are used. Directories are created private (0700) on first use.
package xdg

import (
	"os"
	"path/filepath"
)

const appName = "pgshell"

// ConfigDir returns $XDG_CONFIG_HOME/pgshell, falling back to ~/.config/pgshell.
func ConfigDir() (string, error) {
	return ensure("XDG_CONFIG_HOME", ".config")
}

// StateDir returns $XDG_STATE_HOME/pgshell, falling back to ~/.local/state/pgshell.
func StateDir() (string, error) {
	return ensure("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

// HistoryFile returns the path of the interactive history file.
func HistoryFile() (string, error) {
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history"), nil
}

func ensure(envVar, homeFallback string) (string, error) {
	base := os.Getenv(envVar)
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, homeFallback)
	}
	dir := filepath.Join(base, appName)
	if err := os.MkdirAll(dir, 0o700); err != nil { // private dir
		return "", err
	}
	return dir, nil
}
