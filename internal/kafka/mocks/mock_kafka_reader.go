// SPDX-License-Identifier: Apache-2.0

package mocks

import (
	"context"

	"github.com/xataio/commons/internal/kafka"
)

type Reader struct {
	FetchMessageFn  func(ctx context.Context) (*kafka.Message, error)
	CommitOffsetsFn func(ctx context.Context, offsets ...*kafka.Offset) error
	CloseFn         func() error
}

func (m *Reader) FetchMessage(ctx context.Context) (*kafka.Message, error) {
	return m.FetchMessageFn(ctx)
}

func (m *Reader) CommitOffsets(ctx context.Context, offsets ...*kafka.Offset) error {
	if m.CommitOffsetsFn == nil {
		return nil
	}
	return m.CommitOffsetsFn(ctx, offsets...)
}

func (m *Reader) Close() error {
	if m.CloseFn == nil {
		return nil
	}
	return m.CloseFn()
}
