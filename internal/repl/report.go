// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package repl

import (
	"context"
	"errors"

	shellerrors "pgshell/cli/internal/errors"
	"pgshell/cli/internal/logging"
	"pgshell/cli/internal/shell"
)

// Dispatcher executes one complete entry. *shell.Shell satisfies it.
type Dispatcher interface {
	Execute(ctx context.Context, line string) error
}

// report prints err unless it is an exit signal or a cancellation.
func report(p shell.Printer, err error) {
	if _, ok := shellerrors.IsExit(err); ok {
		return
	}
	if errors.Is(err, context.Canceled) {
		p.PrintErr("Query cancelled.")
		return
	}
	p.PrintErr(logging.PresentError("", err))
}
