// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package format

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/pterm/pterm"
)

// Console prints results to stdout and errors to stderr.
type Console struct {
	out io.Writer
	err io.Writer
}

// NewConsole returns a printer bound to the process's standard streams.
func NewConsole() *Console {
	return &Console{out: os.Stdout, err: os.Stderr}
}

// NewConsoleWriters returns a printer over arbitrary writers.
func NewConsoleWriters(out, err io.Writer) *Console {
	return &Console{out: out, err: err}
}

func (c *Console) PrintOut(text string) {
	fmt.Fprintln(c.out, text)
}

func (c *Console) PrintErr(text string) {
	pterm.Error.WithWriter(c.err).Println(text)
}

// Buffer captures everything printed to it.
type Buffer struct {
	mu  sync.Mutex
	out []string
	err []string
}

func (b *Buffer) PrintOut(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.out = append(b.out, text)
}

func (b *Buffer) PrintErr(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.err = append(b.err, text)
}

// Out returns the captured output entries.
func (b *Buffer) Out() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.out...)
}

// Err returns the captured error entries.
func (b *Buffer) Err() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.err...)
}

// String joins captured output with newlines.
func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Join(b.out, "\n")
}

// Reset drops everything captured so far.
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.out = nil
	b.err = nil
}
