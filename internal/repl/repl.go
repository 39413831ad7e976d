// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package repl runs the shell's read-eval-print loop over a terminal with
// chzyer/readline, and the same dispatch loop over scripts and piped input.
package repl

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"

	shellerrors "pgshell/cli/internal/errors"
	"pgshell/cli/internal/shell"

	"github.com/chzyer/readline"
	"github.com/pterm/pterm"
)

// Status is the session state shown in the prompt. *session.Postgres satisfies it.
type Status interface {
	IsConnected() bool
	Database() string
	InTransaction() bool
}

// LineReader is the line editor the loop reads from. *readline.Instance satisfies it.
type LineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
	SaveHistory(content string) error
	Close() error
}

// Config configures an interactive loop.
type Config struct {
	// HistoryFile persists entries across sessions. Empty disables persistence.
	HistoryFile string
	// Commands are offered as tab completions.
	Commands []string
}

// REPL is the interactive loop.
type REPL struct {
	reader     LineReader
	dispatcher Dispatcher
	status     Status
	printer    shell.Printer
	history    *History
	log        *pterm.Logger
}

// New creates an interactive loop reading from the terminal.
func New(cfg Config, d Dispatcher, status Status, p shell.Printer, history *History, logger *pterm.Logger) (*REPL, error) {
	items := make([]readline.PrefixCompleterInterface, 0, len(cfg.Commands))
	for _, c := range cfg.Commands {
		items = append(items, readline.PcItem(c))
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:                 Prompt(status, false),
		HistoryFile:            cfg.HistoryFile,
		DisableAutoSaveHistory: true,
		AutoComplete:           readline.NewPrefixCompleter(items...),
		InterruptPrompt:        "^C",
		EOFPrompt:              ":exit",
	})
	if err != nil {
		return nil, err
	}
	return newREPL(rl, d, status, p, history, logger), nil
}

func newREPL(r LineReader, d Dispatcher, status Status, p shell.Printer, history *History, logger *pterm.Logger) *REPL {
	return &REPL{
		reader:     r,
		dispatcher: d,
		status:     status,
		printer:    p,
		history:    history,
		log:        logger,
	}
}

// Run reads and dispatches entries until Ctrl-D, an exit command or ctx ends.
// It returns nil on a normal end and the *errors.Exit of an exit command otherwise.
func (r *REPL) Run(ctx context.Context) error {
	defer r.reader.Close()

	var buf shell.StatementBuffer
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		r.reader.SetPrompt(Prompt(r.status, buf.Pending()))

		line, err := r.reader.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			// Ctrl-C at the prompt drops the pending statement and keeps going.
			buf.Reset()
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		entry, ok := buf.Add(line)
		if !ok {
			continue
		}

		r.history.Add(entry)
		if err := r.reader.SaveHistory(entry); err != nil {
			r.log.Debug("saving history failed", r.log.Args("err", err))
		}

		if err := r.dispatch(ctx, entry); err != nil {
			if _, ok := shellerrors.IsExit(err); ok {
				return err
			}
			report(r.printer, err)
		}
	}
}

// dispatch runs one entry. Ctrl-C while it runs cancels it.
func (r *REPL) dispatch(ctx context.Context, entry string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	return r.dispatcher.Execute(ctx, entry)
}

// Prompt builds the prompt for the current session state.
// pending selects the continuation prompt used inside a multi-line statement.
func Prompt(s Status, pending bool) string {
	if !s.IsConnected() {
		if pending {
			return "pgshell(offline)-> "
		}
		return "pgshell(offline)> "
	}

	marker := "="
	if pending {
		marker = "-"
	}
	if s.InTransaction() {
		marker += "*"
	}
	return s.Database() + marker + "> "
}
