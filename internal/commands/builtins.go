// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	shellerrors "pgshell/cli/internal/errors"
	"pgshell/cli/internal/format"
	"pgshell/cli/internal/shell"
)

// Target is what the built-in commands act on. *shell.Shell satisfies it.
type Target interface {
	Execute(ctx context.Context, line string) error
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	UseDatabase(ctx context.Context, name string) error
	SetParam(ctx context.Context, name, expr string) (any, error)
	Param(name string) (any, bool)
	ParamNames() []string
	RemoveParam(name string) (any, bool)
	Printer() shell.Printer
}

// History exposes the lines typed in the current session.
type History interface {
	Entries() []string
}

var (
	paramNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	paramArgsRe = regexp.MustCompile(`^([^\s:=]+)\s*(?:=>|:|\s)\s*(\S.*)$`)
)

type builtins struct {
	target  Target
	history History
	reg     *Registry
}

// Register adds the built-in commands to reg. history may be nil when the
// caller does not keep one, in which case :history reports that.
func Register(reg *Registry, target Target, history History) error {
	b := &builtins{target: target, history: history, reg: reg}
	for _, spec := range b.specs() {
		if err := reg.Register(spec); err != nil {
			return err
		}
	}
	return nil
}

func (b *builtins) specs() []*Spec {
	return []*Spec{
		{
			Name:        ":help",
			Usage:       ":help [command]",
			Description: "List commands, or show usage of one command",
			Handler:     b.help,
		},
		{
			Name:        ":exit",
			Aliases:     []string{":quit"},
			Usage:       ":exit",
			Description: "Exit the shell",
			Handler:     b.exit,
		},
		{
			Name:        ":begin",
			Usage:       ":begin",
			Description: "Open a transaction",
			Handler:     b.noArgs(":begin", b.target.Begin),
		},
		{
			Name:        ":commit",
			Usage:       ":commit",
			Description: "Commit the open transaction",
			Handler:     b.noArgs(":commit", b.target.Commit),
		},
		{
			Name:        ":rollback",
			Usage:       ":rollback",
			Description: "Roll back the open transaction",
			Handler:     b.noArgs(":rollback", b.target.Rollback),
		},
		{
			Name:        ":use",
			Usage:       ":use [database]",
			Description: "Switch database; without a name, return to the default one",
			Handler:     b.use,
		},
		{
			Name:        ":param",
			Usage:       ":param name => expression",
			Description: "Evaluate an expression and bind the result as @name",
			Handler:     b.param,
		},
		{
			Name:        ":params",
			Usage:       ":params [name]",
			Description: "Show all bound parameters, or one",
			Handler:     b.params,
		},
		{
			Name:        ":unparam",
			Usage:       ":unparam name",
			Description: "Remove a bound parameter",
			Handler:     b.unparam,
		},
		{
			Name:        ":history",
			Usage:       ":history",
			Description: "Show lines entered in this session",
			Handler:     b.showHistory,
		},
		{
			Name:        ":source",
			Usage:       ":source file",
			Description: "Run the statements and commands in a file",
			Handler:     b.source,
		},
	}
}

func usageError(usage string) error {
	return shellerrors.Newf(shellerrors.Command, "Incorrect number of arguments.\nusage: %s", usage)
}

func (b *builtins) help(ctx context.Context, args string) error {
	out := b.target.Printer()
	if args != "" {
		spec, ok := b.reg.Get(args)
		if !ok {
			return shellerrors.Newf(shellerrors.Command, "unknown command: %s", args)
		}
		out.PrintOut(fmt.Sprintf("usage: %s\n\n%s", spec.Usage, spec.Description))
		return nil
	}

	specs := b.reg.Commands()
	width := 0
	for _, s := range specs {
		width = max(width, len(s.Usage))
	}
	var sb strings.Builder
	sb.WriteString("Available commands:")
	for _, s := range specs {
		fmt.Fprintf(&sb, "\n  %-*s  %s", width, s.Usage, s.Description)
	}
	sb.WriteString("\n\nAnything else is sent to the database. End statements with ';'.")
	out.PrintOut(sb.String())
	return nil
}

func (b *builtins) exit(ctx context.Context, args string) error {
	if args != "" {
		return usageError(":exit")
	}
	return shellerrors.NewExit(0)
}

func (b *builtins) noArgs(usage string, fn func(ctx context.Context) error) Handler {
	return func(ctx context.Context, args string) error {
		if args != "" {
			return usageError(usage)
		}
		return fn(ctx)
	}
}

func (b *builtins) use(ctx context.Context, args string) error {
	if strings.ContainsFunc(args, func(r rune) bool { return r == ' ' || r == '\t' }) {
		return usageError(":use [database]")
	}
	return b.target.UseDatabase(ctx, args)
}

// parseParamArgs splits "name => expr", "name: expr" or "name expr".
func parseParamArgs(args string) (name, expr string, err error) {
	m := paramArgsRe.FindStringSubmatch(args)
	if m == nil {
		return "", "", usageError(":param name => expression")
	}
	name, expr = m[1], strings.TrimSpace(m[2])
	if expr == "=>" || expr == ":" {
		return "", "", usageError(":param name => expression")
	}
	if !paramNameRe.MatchString(name) {
		return "", "", shellerrors.Newf(shellerrors.Command, "invalid parameter name: %s", name)
	}
	return name, expr, nil
}

func (b *builtins) param(ctx context.Context, args string) error {
	name, expr, err := parseParamArgs(args)
	if err != nil {
		return err
	}
	value, err := b.target.SetParam(ctx, name, expr)
	if err != nil {
		return err
	}
	b.target.Printer().PrintOut(fmt.Sprintf("%s => %s", name, format.Value(value)))
	return nil
}

func (b *builtins) params(ctx context.Context, args string) error {
	out := b.target.Printer()
	if args != "" {
		value, ok := b.target.Param(args)
		if !ok {
			return shellerrors.Newf(shellerrors.Command, "unknown parameter: %s", args)
		}
		out.PrintOut(fmt.Sprintf("%s => %s", args, format.Value(value)))
		return nil
	}

	names := b.target.ParamNames()
	if len(names) == 0 {
		return nil
	}
	lines := make([]string, 0, len(names))
	for _, n := range names {
		v, _ := b.target.Param(n)
		lines = append(lines, fmt.Sprintf("%s => %s", n, format.Value(v)))
	}
	out.PrintOut(strings.Join(lines, "\n"))
	return nil
}

func (b *builtins) unparam(ctx context.Context, args string) error {
	if args == "" || strings.ContainsAny(args, " \t") {
		return usageError(":unparam name")
	}
	value, ok := b.target.RemoveParam(args)
	if !ok {
		return shellerrors.Newf(shellerrors.Command, "unknown parameter: %s", args)
	}
	b.target.Printer().PrintOut(fmt.Sprintf("removed %s => %s", args, format.Value(value)))
	return nil
}

func (b *builtins) showHistory(ctx context.Context, args string) error {
	if args != "" {
		return usageError(":history")
	}
	if b.history == nil {
		return shellerrors.New(shellerrors.Command, "history is not available in this mode")
	}
	entries := b.history.Entries()
	if len(entries) == 0 {
		return nil
	}
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = fmt.Sprintf("%4d  %s", i+1, e)
	}
	b.target.Printer().PrintOut(strings.Join(lines, "\n"))
	return nil
}

// maxSourceDepth bounds :source nesting.
const maxSourceDepth = 16

type sourceChainKey struct{}

// enterSource records path on the chain of files being sourced by ctx. A file
// may not source itself, directly or through other files.
func enterSource(ctx context.Context, path string) (context.Context, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, shellerrors.Wrap(shellerrors.Command, "cannot read "+path, err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}

	chain, _ := ctx.Value(sourceChainKey{}).([]string)
	if slices.Contains(chain, abs) {
		return nil, shellerrors.Newf(shellerrors.Command, "cannot source %s: it is already being sourced", path)
	}
	if len(chain) >= maxSourceDepth {
		return nil, shellerrors.Newf(shellerrors.Command, "cannot source %s: nested more than %d files deep", path, maxSourceDepth)
	}
	return context.WithValue(ctx, sourceChainKey{}, append(slices.Clip(chain), abs)), nil
}

func (b *builtins) source(ctx context.Context, args string) error {
	if args == "" {
		return usageError(":source file")
	}
	ctx, err := enterSource(ctx, args)
	if err != nil {
		return err
	}
	f, err := os.Open(args)
	if err != nil {
		return shellerrors.Wrap(shellerrors.Command, "cannot read "+args, err)
	}
	defer f.Close()

	var buf shell.StatementBuffer
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		entry, ok := buf.Add(scanner.Text())
		if !ok {
			continue
		}
		if err := b.target.Execute(ctx, entry); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return shellerrors.Wrap(shellerrors.Command, "cannot read "+args, err)
	}
	if entry, ok := buf.Flush(); ok {
		return b.target.Execute(ctx, entry)
	}
	return nil
}
