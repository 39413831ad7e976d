// Package errors defines typed errors with categories for user-friendly reporting.
// It provides a structured approach to error handling with machine-readable error kinds
// and human-friendly messages, so the shell can tell a command failure from a missing
// session or a lifecycle misuse without parsing message text.
//
// Errors coming from the database server (pgconn.PgError) are never wrapped in E;
// they travel through the shell unchanged.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// NotConnected indicates an execution attempt without an established session.
	NotConnected Kind = "not_connected"
	// Command indicates a meta-command rejected its arguments or failed on its own.
	Command Kind = "command"
	// Session indicates the session refused a lifecycle operation
	// (already connected, open transaction, no transaction to commit, ...).
	Session Kind = "session"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// Newf is New with a format string.
func Newf(kind Kind, format string, args ...any) *E {
	return &E{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Is reports whether any error in err's chain is an *E of the given kind.
func Is(err error, kind Kind) bool {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// ErrNotConnected is returned whenever a statement is attempted without a session.
var ErrNotConnected = New(NotConnected, "Not connected to a database")

// Exit is the signal a command returns to end the interactive loop.
// It is not a failure: callers should check IsExit before reporting errors.
type Exit struct {
	Code int
}

func (e *Exit) Error() string { return fmt.Sprintf("exit requested (code %d)", e.Code) }

// NewExit returns an exit signal with the given process exit code.
func NewExit(code int) *Exit { return &Exit{Code: code} }

// IsExit reports whether err is an exit signal and returns its code.
func IsExit(err error) (int, bool) {
	var e *Exit
	if stderrors.As(err, &e) {
		return e.Code, true
	}
	return 0, false
}
