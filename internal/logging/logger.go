// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"
)

// New creates the diagnostic logger. It writes to stderr so that query
// output on stdout stays clean when piped.
func New(level pterm.LogLevel) *pterm.Logger {
	return pterm.DefaultLogger.
		WithLevel(level).
		WithWriter(os.Stderr).
		WithTime(false)
}

// NewNop returns a logger that discards everything.
func NewNop() *pterm.Logger {
	return pterm.DefaultLogger.
		WithLevel(pterm.LogLevelDisabled).
		WithWriter(io.Discard)
}

// ParseLevel maps a config or flag value to a pterm log level.
// Unknown values fall back to info.
func ParseLevel(s string) pterm.LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return pterm.LogLevelTrace
	case "debug":
		return pterm.LogLevelDebug
	case "warn", "warning":
		return pterm.LogLevelWarn
	case "error":
		return pterm.LogLevelError
	case "off", "none", "disabled":
		return pterm.LogLevelDisabled
	default:
		return pterm.LogLevelInfo
	}
}
