// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"pgshell/cli/internal/commands"
	"pgshell/cli/internal/dsn"
	shellerrors "pgshell/cli/internal/errors"
	"pgshell/cli/internal/format"
	"pgshell/cli/internal/keychain"
	"pgshell/cli/internal/logging"
	"pgshell/cli/internal/repl"
	"pgshell/cli/internal/session"
	"pgshell/cli/internal/shell"
	"pgshell/cli/internal/terminal"
	"pgshell/cli/internal/xdg"

	"github.com/pterm/pterm"
)

// runShell wires the session, dispatcher and commands together and runs
// whichever input mode the flags select.
func runShell(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	outFormat := cfg.Format
	if opts.format != "" {
		outFormat = opts.format
	}
	f, err := format.Parse(outFormat)
	if err != nil {
		return err
	}

	interactive := opts.command == "" && opts.file == "" && terminal.IsInteractive(os.Stdin)
	failAtEnd := opts.failAtEnd || !cfg.FailFast

	printer := format.NewConsole()
	sess := session.NewPostgres(logger)
	sh := shell.New(sess, format.New(f), printer, logger)

	history := repl.NewHistory(0)
	reg := commands.NewRegistry()
	if err := commands.Register(reg, sh, history); err != nil {
		return err
	}
	sh.SetRegistry(reg)

	if err := connect(ctx, sess, printer, interactive); err != nil {
		switch {
		case interactive:
			pterm.Warning.Println("Starting offline. Only : commands are available.")
		case !errors.Is(err, dsn.ErrNoDSN):
			return shellerrors.NewExit(1)
		}
	}
	defer func() {
		if sess.IsConnected() {
			_ = sess.Disconnect(context.Background())
		}
	}()

	for _, p := range opts.params {
		if err := sh.Execute(ctx, ":param "+p); err != nil {
			printer.PrintErr(logging.PresentError("--param "+p, err))
			if !interactive {
				return shellerrors.NewExit(1)
			}
		}
	}

	switch {
	case opts.command != "":
		return repl.RunScript(ctx, sh, printer, strings.NewReader(opts.command), failAtEnd)
	case opts.file != "":
		file, err := os.Open(opts.file)
		if err != nil {
			return err
		}
		defer file.Close()
		return repl.RunScript(ctx, sh, printer, file, failAtEnd)
	case !interactive:
		return repl.RunScript(ctx, sh, printer, os.Stdin, failAtEnd)
	}

	historyFile := ""
	if cfg.History {
		if historyFile, err = xdg.HistoryFile(); err != nil {
			logger.Warn("history disabled", logger.Args("err", err))
			historyFile = ""
		}
	}
	loop, err := repl.New(repl.Config{
		HistoryFile: historyFile,
		Commands:    reg.Names(),
	}, sh, sess, printer, history, logger)
	if err != nil {
		return err
	}

	pterm.Info.Println("Type :help for a list of commands, :exit to leave.")
	return loop.Run(ctx)
}

// connect resolves the DSN and opens the session. Failures are reported
// before returning; without a DSN the shell can still run offline.
func connect(ctx context.Context, sess *session.Postgres, printer shell.Printer, interactive bool) error {
	resolved, src, err := dsn.Resolve(opts.dsn, loadSavedDSN)
	if errors.Is(err, dsn.ErrNoDSN) {
		if interactive {
			pterm.Warning.Println("No database connection configured.")
			pterm.Println("   Use --dsn, set PGSHELL_DSN, or run: pgshell connect")
		}
		return err
	}
	if err != nil {
		printer.PrintErr(logging.PresentError("connection from "+string(src), err))
		return err
	}
	logger.Debug("using connection", logger.Args("source", string(src), "dsn", logging.Mask(resolved)))

	stop := func() {}
	if interactive {
		stop = startSpinner("Connecting")
	}
	err = sess.Connect(ctx, session.Config{DSN: resolved, ConnectTimeout: cfg.ConnectTimeout()})
	stop()
	if err != nil {
		if interactive {
			fmt.Fprintln(os.Stderr, logging.FormatConnectError(err, logging.MaskPassword(resolved)))
		} else {
			printer.PrintErr(logging.PresentError("connecting", err))
		}
		return err
	}

	if interactive {
		pterm.Success.Printf("Connected to %s (PostgreSQL %s)\n", sess.Database(), sess.ServerVersion())
	}
	return nil
}

// loadSavedDSN reads the keychain. A missing credential store is not an error
// here because the other sources may already have been tried.
func loadSavedDSN() (string, error) {
	km, err := keychain.GetManager()
	if err != nil {
		logger.Debug("keychain unavailable", logger.Args("err", err))
		return "", nil
	}
	return km.LoadDSN()
}
