// SPDX-License-Identifier: Apache-2.0

package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestMapError(t *testing.T) {
	t.Parallel()

	errTest := errors.New("oh noes")

	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{
			name:    "nil",
			err:     nil,
			wantErr: nil,
		},
		{
			name:    "generic error",
			err:     errTest,
			wantErr: errTest,
		},
		{
			name:    "no rows",
			err:     fmt.Errorf("querying: %w", pgx.ErrNoRows),
			wantErr: ErrNoRows,
		},
		{
			name:    "42P01 undefined_table",
			err:     &pgconn.PgError{Code: "42P01", Message: `relation "latencies" does not exist`},
			wantErr: &ErrRelationDoesNotExist{Details: `relation "latencies" does not exist`},
		},
		{
			name:    "42703 undefined_column",
			err:     &pgconn.PgError{Code: "42703", Message: `column "ms" does not exist`},
			wantErr: &ErrRelationDoesNotExist{Details: `column "ms" does not exist`},
		},
		{
			name:    "42601 syntax_error",
			err:     &pgconn.PgError{Code: "42601", Message: `syntax error at or near "SELCT"`},
			wantErr: &ErrSyntaxError{Details: `syntax error at or near "SELCT"`},
		},
		{
			name:    "42501 insufficient_privilege",
			err:     &pgconn.PgError{Code: "42501", Message: "permission denied for table latencies"},
			wantErr: &ErrPermissionDenied{Details: "permission denied for table latencies"},
		},
		{
			name:    "unmapped postgres error",
			err:     &pgconn.PgError{Code: "22012", Message: "division by zero"},
			wantErr: &pgconn.PgError{Code: "22012", Message: "division by zero"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.wantErr, MapError(tc.err))
		})
	}
}

func TestMapError_Timeout(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()
	<-ctx.Done()

	require.Equal(t, ErrConnTimeout, MapError(ctx.Err()))
}
