// SPDX-License-Identifier: Apache-2.0

package mocks

import (
	"github.com/jackc/pgx/v5/pgconn"
)

type Rows struct {
	CloseFn             func()
	ErrFn               func() error
	FieldDescriptionsFn func() []pgconn.FieldDescription
	NextFn              func(i uint) bool
	ValuesFn            func(i uint) ([]any, error)
	nextCalls           uint
}

// NewRows returns rows yielding each of values in turn, as the only column.
func NewRows(values ...any) *Rows {
	return &Rows{
		NextFn: func(i uint) bool { return int(i) <= len(values) },
		ValuesFn: func(i uint) ([]any, error) {
			return []any{values[i-1]}, nil
		},
	}
}

func (m *Rows) Close() {
	if m.CloseFn != nil {
		m.CloseFn()
	}
}

func (m *Rows) Err() error {
	if m.ErrFn == nil {
		return nil
	}
	return m.ErrFn()
}

func (m *Rows) FieldDescriptions() []pgconn.FieldDescription {
	if m.FieldDescriptionsFn == nil {
		return []pgconn.FieldDescription{{Name: "value"}}
	}
	return m.FieldDescriptionsFn()
}

func (m *Rows) Next() bool {
	m.nextCalls++
	return m.NextFn(m.nextCalls)
}

func (m *Rows) Values() ([]any, error) {
	return m.ValuesFn(m.nextCalls)
}
