// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"

	"pgshell/cli/internal/keychain"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// forgetCmd removes the saved connection from the OS keychain.
var forgetCmd = &cobra.Command{
	Use:   "forget",
	Short: "Remove the saved connection from the OS keychain",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		km, err := keychain.GetManager()
		if err != nil {
			return err
		}
		if err := km.ForgetDSN(); err != nil {
			if errors.Is(err, keychain.ErrNotSaved) {
				pterm.Info.Println("No saved connection to remove")
				return nil
			}
			return err
		}
		pterm.Success.Println("Saved connection removed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(forgetCmd)
}
