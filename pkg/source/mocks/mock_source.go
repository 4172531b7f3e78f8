// SPDX-License-Identifier: Apache-2.0

package mocks

import (
	"context"

	"github.com/xataio/commons/pkg/num"
)

type Source struct {
	ReadFn    func(ctx context.Context, fn func(num.Number) error) error
	CloseFn   func() error
	SkippedFn func() int
}

func (m *Source) Read(ctx context.Context, fn func(num.Number) error) error {
	return m.ReadFn(ctx, fn)
}

func (m *Source) Close() error {
	if m.CloseFn == nil {
		return nil
	}
	return m.CloseFn()
}

func (m *Source) Skipped() int {
	if m.SkippedFn == nil {
		return 0
	}
	return m.SkippedFn()
}

// NewSource returns a source that emits values in order.
func NewSource(values ...num.Number) *Source {
	return &Source{
		ReadFn: func(ctx context.Context, fn func(num.Number) error) error {
			for _, v := range values {
				if err := fn(v); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
