// SPDX-License-Identifier: Apache-2.0

package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"
)

// Querier runs read queries. Conn implements it, tests use mocks.Querier.
type Querier interface {
	Query(ctx context.Context, query string, args ...any) (Rows, error)
	Close(ctx context.Context) error
}

// Rows is the subset of pgx.Rows needed to walk a result set.
type Rows interface {
	Next() bool
	Values() ([]any, error)
	FieldDescriptions() []pgconn.FieldDescription
	Err() error
	Close()
}

type mappedRows struct {
	Rows
}

func (r *mappedRows) Values() ([]any, error) {
	values, err := r.Rows.Values()
	return values, MapError(err)
}

func (r *mappedRows) Err() error {
	return MapError(r.Rows.Err())
}
