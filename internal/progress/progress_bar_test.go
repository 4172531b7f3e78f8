// SPDX-License-Identifier: Apache-2.0

package progress

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xataio/commons/internal/progress/mocks"
)

func TestReader(t *testing.T) {
	t.Parallel()

	var total int64
	closed := false
	bar := &mocks.Bar{
		Add64Fn: func(n int64) error {
			total += n
			return errors.New("render failed")
		},
		CloseFn: func() error {
			closed = true
			return nil
		},
	}

	r := NewReader(strings.NewReader("1\n2.5\n3\n"), bar)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, "1\n2.5\n3\n", string(got))
	require.Equal(t, int64(8), total)

	require.NoError(t, r.Close())
	require.True(t, closed)
}

func TestNewBytesBar(t *testing.T) {
	t.Parallel()

	var out strings.Builder
	bar := NewBytesBar(&out, 10, "reading")
	require.NoError(t, bar.Add64(10))
	require.NoError(t, bar.Close())
	require.Contains(t, out.String(), "reading")
}
