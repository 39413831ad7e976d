// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package format renders query results for the terminal and provides the printers
// the shell writes through.
package format

import (
	"fmt"
	"strings"

	"pgshell/cli/internal/sqlexec"
)

// Format names an output format.
type Format string

const (
	FormatTable Format = "table"
	FormatPlain Format = "plain"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// Formats lists the accepted format names in display order.
var Formats = []Format{FormatTable, FormatPlain, FormatJSON, FormatYAML}

// Formatter renders one result.
type Formatter interface {
	Format(res *sqlexec.Result) (string, error)
}

// Parse validates a format name. Matching is case-insensitive.
func Parse(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q (want table, plain, json or yaml)", s)
}

// New returns the formatter for f. Unknown formats fall back to table.
func New(f Format) Formatter {
	switch f {
	case FormatPlain:
		return &PlainFormatter{}
	case FormatJSON:
		return &JSONFormatter{}
	case FormatYAML:
		return &YAMLFormatter{}
	default:
		return &TableFormatter{}
	}
}

// footer summarizes a result for formats that show one.
func footer(res *sqlexec.Result) string {
	if len(res.Columns) == 0 {
		return res.CommandTag
	}
	if len(res.Rows) == 1 {
		return "(1 row)"
	}
	return fmt.Sprintf("(%d rows)", len(res.Rows))
}
