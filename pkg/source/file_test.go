// SPDX-License-Identifier: Apache-2.0

package source

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xataio/commons/pkg/csv"
	"github.com/xataio/commons/pkg/num"
)

var errTest = errors.New("oh noes")

func collect(t *testing.T, src Source) ([]num.Number, error) {
	t.Helper()
	var got []num.Number
	err := src.Read(context.Background(), func(v num.Number) error {
		got = append(got, v)
		return nil
	})
	return got, err
}

func TestLinesSource_Read(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		input       string
		skipInvalid bool

		wantValues  []num.Number
		wantSkipped int
		wantErr     error
	}{
		{
			name:       "values with gaps and comments",
			input:      "1\n\n2.5 # ms\n# header\n  3  \n4.0\n",
			wantValues: []num.Number{num.Int(1), num.Float(2.5), num.Int(3), num.Int(4)},
		},
		{
			name:       "large integers stay exact",
			input:      "9007199254740993\n-9223372036854775808\n",
			wantValues: []num.Number{num.Int(9007199254740993), num.Int(-9223372036854775808)},
		},
		{
			name:       "error - invalid value",
			input:      "1\nabc\n2\n",
			wantValues: []num.Number{num.Int(1)},
			wantErr:    num.ErrSyntax,
		},
		{
			name:       "error - infinity",
			input:      "inf\n",
			wantErr:    num.ErrDomain,
		},
		{
			name:        "skip invalid values",
			input:       "1\nabc\nnan\n-inf\n2\n",
			skipInvalid: true,
			wantValues:  []num.Number{num.Int(1), num.Int(2)},
			wantSkipped: 3,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			opts := []Option{}
			if tc.skipInvalid {
				opts = append(opts, WithSkipInvalid())
			}
			src := NewLinesSource(strings.NewReader(tc.input), opts...)
			got, err := collect(t, src)
			require.ErrorIs(t, err, tc.wantErr)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, ErrInvalidValue)
			}
			require.Equal(t, tc.wantValues, got)
			require.Equal(t, tc.wantSkipped, src.Skipped())
			require.NoError(t, src.Close())
		})
	}
}

func TestLinesSource_Stops(t *testing.T) {
	t.Parallel()

	src := NewLinesSource(strings.NewReader("1\n2\n3\n"))
	calls := 0
	err := src.Read(context.Background(), func(num.Number) error {
		calls++
		return errTest
	})
	require.ErrorIs(t, err, errTest)
	require.Equal(t, 1, calls)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = NewLinesSource(strings.NewReader("1\n")).Read(ctx, func(num.Number) error { return nil })
	require.ErrorIs(t, err, context.Canceled)
}

func TestCSVColumnSource_Read(t *testing.T) {
	t.Parallel()

	const input = `# latencies
host;ms;size
a;1;10
b;;20
c;2.5;x
`

	tests := []struct {
		name        string
		input       string
		column      string
		skipInvalid bool

		wantValues  []num.Number
		wantSkipped int
		wantErr     error
	}{
		{
			name:       "column with gap",
			input:      input,
			column:     "ms",
			wantValues: []num.Number{num.Int(1), num.Float(2.5)},
		},
		{
			name:        "skip invalid cell",
			input:       input,
			column:      "size",
			skipInvalid: true,
			wantValues:  []num.Number{num.Int(10), num.Int(20)},
			wantSkipped: 1,
		},
		{
			name:       "error - invalid cell",
			input:      input,
			column:     "size",
			wantValues: []num.Number{num.Int(10), num.Int(20)},
			wantErr:    ErrInvalidValue,
		},
		{
			name:    "error - unknown column",
			input:   input,
			column:  "weight",
			wantErr: ErrColumnNotFound,
		},
		{
			name:    "error - no column among many",
			input:   input,
			wantErr: ErrColumnNotFound,
		},
		{
			name:       "single column file",
			input:      "value\n3\n4\n",
			wantValues: []num.Number{num.Int(3), num.Int(4)},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			opts := []Option{}
			if tc.skipInvalid {
				opts = append(opts, WithSkipInvalid())
			}
			src := NewCSVColumnSource(strings.NewReader(tc.input), tc.column, csv.DefaultFormat(), opts...)
			got, err := collect(t, src)
			require.ErrorIs(t, err, tc.wantErr)
			require.Equal(t, tc.wantValues, got)
			require.Equal(t, tc.wantSkipped, src.Skipped())
		})
	}
}
