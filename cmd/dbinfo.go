// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"

	"pgshell/cli/internal/dsn"
	"pgshell/cli/internal/logging"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// dbinfoCmd shows which connection pgshell would use, password masked.
var dbinfoCmd = &cobra.Command{
	Use:   "dbinfo",
	Short: "Show the connection string pgshell will use",
	Long: `The dbinfo command resolves the connection the shell would use (--dsn,
PGSHELL_DSN, DATABASE_URL, then the OS keychain) and prints it with the
password replaced by ***.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		resolved, src, err := dsn.Resolve(opts.dsn, loadSavedDSN)
		if errors.Is(err, dsn.ErrNoDSN) {
			pterm.Warning.Println("No database connection configured")
			pterm.Println("   Please run: pgshell connect")
			return nil
		}
		if err != nil {
			return err
		}

		pterm.Printf("Using DSN from %s\n\n", src)
		pterm.DefaultBox.
			WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Database Connection")).
			WithPadding(1).
			Println(logging.MaskPassword(resolved))
		pterm.Println()
		pterm.Println("To update the saved connection, run: pgshell connect")
		pterm.Println()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbinfoCmd)
}
