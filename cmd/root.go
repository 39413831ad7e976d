// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for pgshell.
// The root command starts the shell; subcommands manage the saved connection.
// It uses the Cobra CLI framework and pterm for terminal output.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"pgshell/cli/internal/config"
	shellerrors "pgshell/cli/internal/errors"
	"pgshell/cli/internal/logging"

	"github.com/joho/godotenv"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// options holds the root command's flags.
type options struct {
	dsn       string
	format    string
	command   string
	file      string
	params    []string
	failAtEnd bool
	verbose   bool
	version   bool
}

// Version is set at build time with -ldflags "-X pgshell/cli/cmd.Version=...".
var Version = "0.0.0-dev"

var (
	opts   options
	cfg    config.Config
	logger = logging.NewNop()
)

// rootCmd starts the interactive shell, or runs a command or script and exits.
var rootCmd = &cobra.Command{
	Use:   "pgshell",
	Short: "Interactive PostgreSQL shell with named parameters",
	Long: `pgshell is an interactive shell for PostgreSQL.

Lines starting with ':' are shell commands (see :help). Everything else is SQL,
sent to the database once a line ends with ';'. Values bound with
:param name => expression can be referenced in any statement as @name.

The connection is taken from --dsn, then PGSHELL_DSN, then DATABASE_URL, then
the connection saved with 'pgshell connect'.`,
	Example: `  pgshell
  pgshell --dsn postgres://me@localhost/app
  pgshell -c "SELECT now();"
  pgshell -P "since => now() - interval '1 day'" -f report.sql --format json`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading .env: %w", err)
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		level := logging.ParseLevel(cfg.LogLevel)
		if opts.verbose {
			level = pterm.LogLevelDebug
		}
		logger = logging.New(level)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if opts.version {
			fmt.Printf("pgshell %s\n", Version)
			return nil
		}
		return runShell(cmd.Context())
	},
}

// Execute runs the CLI application and exits with the shell's exit code.
func Execute() {
	err := rootCmd.Execute()
	if code, ok := shellerrors.IsExit(err); ok {
		os.Exit(code)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, logging.PresentError("", err))
		os.Exit(1)
	}
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&opts.format, "format", "", "Output format: table, plain, json or yaml (default from config)")
	f.StringVarP(&opts.command, "command", "c", "", "Run one command or statement and exit")
	f.StringVarP(&opts.file, "file", "f", "", "Run statements from a file and exit")
	f.StringArrayVarP(&opts.params, "param", "P", nil, "Bind a parameter before running, as 'name => expression' (repeatable)")
	f.BoolVar(&opts.failAtEnd, "fail-at-end", false, "Keep running a script after errors and fail at the end")
	f.BoolVar(&opts.version, "version", false, "Show version information")
	rootCmd.PersistentFlags().StringVar(&opts.dsn, "dsn", "", "PostgreSQL connection string")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.MarkFlagsMutuallyExclusive("command", "file")
}
