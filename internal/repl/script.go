// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package repl

import (
	"bufio"
	"context"
	"io"

	shellerrors "pgshell/cli/internal/errors"
	"pgshell/cli/internal/shell"
)

// RunScript reads entries from in and dispatches them in order, without prompts
// or history. Errors are printed as they happen.
//
// With failAtEnd unset the first failure stops the script. Either way a script
// with any failure ends with an exit signal of code 1. An exit command ends
// the script with its own code. A nil return means every entry succeeded.
func RunScript(ctx context.Context, d Dispatcher, p shell.Printer, in io.Reader, failAtEnd bool) error {
	var buf shell.StatementBuffer
	failed := false

	dispatch := func(entry string) (stop bool, exit error) {
		err := d.Execute(ctx, entry)
		if err == nil {
			return false, nil
		}
		if _, ok := shellerrors.IsExit(err); ok {
			return true, err
		}
		report(p, err)
		failed = true
		return !failAtEnd, nil
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		if ctx.Err() != nil {
			report(p, ctx.Err())
			return shellerrors.NewExit(1)
		}
		entry, ok := buf.Add(scanner.Text())
		if !ok {
			continue
		}
		if stop, exit := dispatch(entry); stop {
			if exit != nil {
				return exit
			}
			return shellerrors.NewExit(1)
		}
	}
	if err := scanner.Err(); err != nil {
		report(p, err)
		return shellerrors.NewExit(1)
	}

	if entry, ok := buf.Flush(); ok {
		if stop, exit := dispatch(entry); stop && exit != nil {
			return exit
		}
	}
	if failed {
		return shellerrors.NewExit(1)
	}
	return nil
}
