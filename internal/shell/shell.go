// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package shell is the dispatch core of pgshell. It decides whether an input line is a
// meta-command or SQL, forwards session lifecycle calls, and keeps the named parameters
// that are bound to every statement it sends.
//
// The shell owns no session state of its own: connectivity, transactions and the
// selected database all live behind the Session interface.
package shell

import (
	"context"
	"strings"

	shellerrors "pgshell/cli/internal/errors"
	"pgshell/cli/internal/session"
	"pgshell/cli/internal/sqlexec"

	"github.com/jackc/pgx/v5"
	"github.com/pterm/pterm"
)

// Session is the live database session the shell forwards to.
type Session interface {
	Connect(ctx context.Context, cfg session.Config) error
	Disconnect(ctx context.Context) error
	IsConnected() bool
	Run(ctx context.Context, statement string, params map[string]any) (*sqlexec.Result, error)
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	UseDatabase(ctx context.Context, name string) error
}

// Formatter renders a result for display.
type Formatter interface {
	Format(res *sqlexec.Result) (string, error)
}

// Printer is the line-oriented sink for everything the shell shows the user.
type Printer interface {
	PrintOut(text string)
	PrintErr(text string)
}

// Command is a meta-command resolved by a Registry.
// Execute may return a command failure or an *errors.Exit signal.
type Command interface {
	Execute(ctx context.Context, args string) error
}

// Registry resolves command names.
type Registry interface {
	Lookup(name string) (Command, bool)
}

// Shell dispatches input lines. It is not safe for concurrent use: lines are
// expected to be processed one at a time, to completion.
type Shell struct {
	session   Session
	formatter Formatter
	printer   Printer
	log       *pterm.Logger

	registry Registry
	params   *ParamStore
}

// New creates a shell over sess. Results of visible statements are rendered with
// formatter and written to printer.
func New(sess Session, formatter Formatter, printer Printer, logger *pterm.Logger) *Shell {
	return &Shell{
		session:   sess,
		formatter: formatter,
		printer:   printer,
		log:       logger,
		params:    NewParamStore(),
	}
}

// SetRegistry attaches the command registry. Until one is attached every line is
// treated as SQL.
func (s *Shell) SetRegistry(r Registry) {
	s.registry = r
}

// SetFormatter replaces the result formatter.
func (s *Shell) SetFormatter(f Formatter) {
	s.formatter = f
}

// Printer returns the sink the shell writes to, for commands that print.
func (s *Shell) Printer() Printer {
	return s.printer
}

// Execute dispatches one input line.
//
// A line whose first token names a registered command runs that command with the
// rest of the line, and the command's outcome is returned as-is. Anything else,
// the whole original line, is sent to the database as a statement, which requires
// an open session.
func (s *Shell) Execute(ctx context.Context, line string) error {
	if exe, ok := s.commandExecutable(line); ok {
		return exe(ctx)
	}

	if !s.session.IsConnected() {
		return shellerrors.ErrNotConnected
	}
	_, err := s.run(ctx, line, true)
	return err
}

// commandExecutable resolves line to a bound command invocation.
func (s *Shell) commandExecutable(line string) (func(ctx context.Context) error, bool) {
	if s.registry == nil {
		return nil, false
	}
	name, args, ok := Classify(line)
	if !ok {
		return nil, false
	}
	cmd, ok := s.registry.Lookup(name)
	if !ok {
		s.log.Trace("not a command, routing as statement", s.log.Args("token", name))
		return nil, false
	}

	s.log.Debug("dispatching command", s.log.Args("command", name))
	return func(ctx context.Context) error {
		return cmd.Execute(ctx, args)
	}, true
}

// Query runs a statement without displaying or recording it and returns the result.
func (s *Shell) Query(ctx context.Context, statement string) (*sqlexec.Result, error) {
	return s.run(ctx, statement, false)
}

// run is the one path every statement takes. All current parameters are bound and
// every @name the statement references must be one of them;
// when emit is set the result is rendered and printed exactly once.
func (s *Shell) run(ctx context.Context, statement string, emit bool) (*sqlexec.Result, error) {
	if !s.session.IsConnected() {
		return nil, shellerrors.ErrNotConnected
	}

	params := s.params.Snapshot()
	if err := checkPlaceholders(statement, params); err != nil {
		return nil, err
	}

	res, err := s.session.Run(ctx, statement, params)
	if err != nil {
		return nil, err
	}
	if !emit {
		return res, nil
	}

	out, err := s.formatter.Format(res)
	if err != nil {
		return nil, err
	}
	s.printer.PrintOut(out)
	return res, nil
}

// IsConnected reports whether the session is open.
func (s *Shell) IsConnected() bool {
	return s.session.IsConnected()
}

// Connect opens the session.
func (s *Shell) Connect(ctx context.Context, cfg session.Config) error {
	return s.session.Connect(ctx, cfg)
}

// Disconnect closes the session.
func (s *Shell) Disconnect(ctx context.Context) error {
	return s.session.Disconnect(ctx)
}

// Begin opens a transaction.
func (s *Shell) Begin(ctx context.Context) error {
	return s.session.Begin(ctx)
}

// Commit commits the open transaction.
func (s *Shell) Commit(ctx context.Context) error {
	return s.session.Commit(ctx)
}

// Rollback rolls back the open transaction.
func (s *Shell) Rollback(ctx context.Context) error {
	return s.session.Rollback(ctx)
}

// UseDatabase switches the session to another database.
func (s *Shell) UseDatabase(ctx context.Context, name string) error {
	return s.session.UseDatabase(ctx, name)
}

// SetParam evaluates expr in the database and binds the result to name.
// The evaluation is silent. On failure the store is left untouched and the
// error is the one the statement produced.
func (s *Shell) SetParam(ctx context.Context, name, expr string) (any, error) {
	res, err := s.run(ctx, evalStatement(name, expr), false)
	if err != nil {
		return nil, err
	}
	value, err := res.Single(name)
	if err != nil {
		return nil, err
	}
	s.params.Put(name, value)
	return value, nil
}

// Params returns a copy of all bound parameters.
func (s *Shell) Params() map[string]any {
	return s.params.Snapshot()
}

// Param returns one bound parameter.
func (s *Shell) Param(name string) (any, bool) {
	return s.params.Get(name)
}

// ParamNames returns the bound parameter names, sorted.
func (s *Shell) ParamNames() []string {
	return s.params.Names()
}

// RemoveParam unbinds name and returns its previous value, if any.
func (s *Shell) RemoveParam(name string) (any, bool) {
	return s.params.Remove(name)
}

// checkPlaceholders fails when statement references a parameter that is not bound.
// pgx would otherwise send NULL for it.
func checkPlaceholders(statement string, params map[string]any) error {
	var missing []string
	for _, name := range sqlexec.Placeholders(statement) {
		if _, ok := params[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return shellerrors.Newf(shellerrors.Command, "Expected parameter(s): %s", strings.Join(missing, ", "))
	}
	return nil
}

// evalStatement builds the query that evaluates expr as a column called name.
// A trailing ';' is dropped and expr is closed off on its own line so a trailing
// line comment cannot swallow the alias.
func evalStatement(name, expr string) string {
	expr = strings.TrimRight(strings.TrimSpace(expr), "; \t\n")
	return "SELECT (" + expr + "\n) AS " + pgx.Identifier{name}.Sanitize()
}
