// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

import (
	"errors"
	"os"
	"strings"
)

// Source names where a DSN came from.
type Source string

const (
	SourceFlag        Source = "--dsn flag"
	SourceEnv         Source = "PGSHELL_DSN"
	SourceDatabaseURL Source = "DATABASE_URL"
	SourceKeychain    Source = "keychain"
)

// ErrNoDSN is returned when no source provides a DSN.
var ErrNoDSN = errors.New("no database connection configured")

// KeychainFunc loads a saved DSN. It returns "" with a nil error when none is saved.
type KeychainFunc func() (string, error)

// Resolve picks the first DSN available from the flag value, PGSHELL_DSN,
// DATABASE_URL and the keychain, in that order, and normalizes it.
// keychain may be nil.
func Resolve(flag string, keychain KeychainFunc) (string, Source, error) {
	candidates := []struct {
		src   Source
		value string
	}{
		{SourceFlag, flag},
		{SourceEnv, os.Getenv("PGSHELL_DSN")},
		{SourceDatabaseURL, os.Getenv("DATABASE_URL")},
	}
	for _, c := range candidates {
		if strings.TrimSpace(c.value) == "" {
			continue
		}
		normalized, err := ParseAndNormalize(c.value)
		return normalized, c.src, err
	}

	if keychain != nil {
		saved, err := keychain()
		if err != nil {
			return "", SourceKeychain, err
		}
		if strings.TrimSpace(saved) != "" {
			normalized, err := ParseAndNormalize(saved)
			return normalized, SourceKeychain, err
		}
	}
	return "", "", ErrNoDSN
}
