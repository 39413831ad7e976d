// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// PresentError formats an error for user display with masking.
// Server errors carry their SQLSTATE so they can be looked up.
func PresentError(context string, err error) string {
	if err == nil {
		return ""
	}
	msg := Mask(err.Error())
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		msg = fmt.Sprintf("%s (SQLSTATE %s)", Mask(pgErr.Message), pgErr.Code)
		if pgErr.Detail != "" {
			msg += "\nDetail: " + Mask(pgErr.Detail)
		}
		if pgErr.Hint != "" {
			msg += "\nHint: " + pgErr.Hint
		}
	}
	if context == "" {
		return msg
	}
	return fmt.Sprintf("%s: %s", context, msg)
}
