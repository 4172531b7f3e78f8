// SPDX-License-Identifier: Apache-2.0

package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrConnTimeout = errors.New("connection timeout")
	ErrNoRows      = errors.New("no rows")
)

type ErrRelationDoesNotExist struct {
	Details string
}

func (e *ErrRelationDoesNotExist) Error() string {
	return fmt.Sprintf("relation does not exist: %s", e.Details)
}

type ErrSyntaxError struct {
	Details string
}

func (e *ErrSyntaxError) Error() string {
	return fmt.Sprintf("syntax error: %s", e.Details)
}

type ErrPermissionDenied struct {
	Details string
}

func (e *ErrPermissionDenied) Error() string {
	return fmt.Sprintf("permission denied: %s", e.Details)
}

// MapError turns pgx and postgres errors into the errors of this package.
// Unknown errors are returned unchanged.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if pgconn.Timeout(err) {
		return ErrConnTimeout
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNoRows
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		// undefined_table, undefined_column, undefined_function
		case "42P01", "42703", "42883":
			return &ErrRelationDoesNotExist{Details: pgErr.Message}
		// syntax_error, syntax_error_or_access_rule_violation
		case "42601", "42000":
			return &ErrSyntaxError{Details: pgErr.Message}
		// insufficient_privilege
		case "42501":
			return &ErrPermissionDenied{Details: pgErr.Message}
		}
	}

	return err
}
