// Package sqlexec runs SQL text over a pgx connection and normalizes the outcome into a
// Result: column names, typed row values as decoded by pgx, and the command tag.
//
// Key features include:
//   - Named parameter binding through pgx.NamedArgs (@name placeholders)
//   - Typed values: integers stay integers, arrays stay slices, json stays maps
//   - JSON marshaling with PostgreSQL-specific handling (UUIDs, byte arrays)
package sqlexec

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Querier is the part of a pgx connection or transaction Run needs.
// *pgx.Conn, *pgxpool.Conn, *pgxpool.Pool and pgx.Tx all satisfy it.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Result represents a normalized SQL result.
type Result struct {
	Columns      []string `json:"columns"`
	Rows         [][]any  `json:"rows"`
	CommandTag   string   `json:"command_tag,omitempty"`
	RowsAffected int64    `json:"rows_affected,omitempty"`
}

// MarshalJSON implements custom JSON marshaling for Result to handle pgx types properly.
func (r Result) MarshalJSON() ([]byte, error) {
	type Alias Result
	a := Alias(r)

	if len(r.Rows) > 0 {
		serializableRows := make([][]any, len(r.Rows))
		for i, row := range r.Rows {
			serializableRows[i] = make([]any, len(row))
			for j, val := range row {
				serializableRows[i][j] = JSONValue(val)
			}
		}
		a.Rows = serializableRows
	}

	return json.Marshal(a)
}

// JSONValue converts a pgx-decoded value into something encoding/json renders sensibly.
// pgx decodes uuid as [16]byte, so a []byte is always bytea and keeps the hex form
// whatever its length.
func JSONValue(val any) any {
	switch v := val.(type) {
	case [16]byte:
		return formatUUID(v[:])
	case []byte:
		return fmt.Sprintf("\\x%x", v)
	default:
		return v
	}
}

// formatUUID renders 16 raw bytes as xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx.
func formatUUID(v []byte) string {
	return fmt.Sprintf("%02x%02x%02x%02x-%02x%02x-%02x%02x-%02x%02x-%02x%02x%02x%02x%02x%02x",
		v[0], v[1], v[2], v[3], v[4], v[5], v[6], v[7],
		v[8], v[9], v[10], v[11], v[12], v[13], v[14], v[15])
}

// Single returns the value of column in the only row of the result.
// It fails when the result does not have exactly one row or lacks the column.
func (r *Result) Single(column string) (any, error) {
	if len(r.Rows) != 1 {
		return nil, fmt.Errorf("expected exactly one row, got %d", len(r.Rows))
	}
	for i, c := range r.Columns {
		if c == column {
			return r.Rows[0][i], nil
		}
	}
	return nil, fmt.Errorf("column %q not found in result", column)
}

// Run executes sql on q and collects the full result.
// params are bound as named arguments; an empty map binds nothing so that
// statements containing a literal '@' are sent untouched.
func Run(ctx context.Context, q Querier, sql string, params map[string]any) (*Result, error) {
	var args []any
	if len(params) > 0 {
		args = append(args, pgx.NamedArgs(params))
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return Collect(rows)
}

// Collect drains rows into a Result and closes them.
func Collect(rows pgx.Rows) (*Result, error) {
	defer rows.Close()

	res := &Result{
		Columns: []string{},
		Rows:    [][]any{},
	}

	fds := rows.FieldDescriptions()
	cols := make([]string, len(fds))
	for i, fd := range fds {
		cols[i] = fd.Name
	}
	res.Columns = cols

	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, err
		}
		res.Rows = append(res.Rows, vals)
	}
	// Close before reading the tag: pgx only fills it once the result is consumed.
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tag := rows.CommandTag()
	res.CommandTag = tag.String()
	res.RowsAffected = tag.RowsAffected()
	return res, nil
}
