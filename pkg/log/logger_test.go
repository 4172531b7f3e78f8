// SPDX-License-Identifier: Apache-2.0

package log

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Parallel()

	require.Equal(t, &NoopLogger{}, NewLogger(nil))

	l := NewNoopLogger()
	require.Same(t, l, NewLogger(l))
	require.Same(t, l, ForModule(l, "summarizer"))
}

func TestMergeFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		f1   Fields
		f2   Fields
		want Fields
	}{
		{name: "both nil", want: Fields{}},
		{name: "disjoint", f1: Fields{"a": 1}, f2: Fields{"b": "2"}, want: Fields{"a": 1, "b": "2"}},
		{name: "second wins", f1: Fields{"a": 1}, f2: Fields{"a": 2}, want: Fields{"a": 2}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, MergeFields(tc.f1, tc.f2))
		})
	}
}
