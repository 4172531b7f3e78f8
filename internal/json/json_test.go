// SPDX-License-Identifier: Apache-2.0

package json

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xataio/commons/pkg/num"
)

func TestMarshal_Numbers(t *testing.T) {
	t.Parallel()

	type payload struct {
		Count int        `json:"count"`
		Sum   num.Number `json:"sum"`
		Mean  num.Number `json:"mean"`
		Gap   num.Number `json:"gap"`
	}

	b, err := Marshal(payload{Count: 2, Sum: num.Int(1 << 60), Mean: num.Float(1.5)})
	require.NoError(t, err)
	require.JSONEq(t, `{"count":2,"sum":1152921504606846976,"mean":1.5,"gap":null}`, string(b))

	var got payload
	require.NoError(t, Unmarshal(b, &got))
	require.Equal(t, num.Int(1<<60), got.Sum)
	require.Equal(t, num.Float(1.5), got.Mean)
	require.True(t, got.Gap.IsNone())
}

func TestWrite(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, map[string]int{"n": 1}))
	require.Equal(t, "{\n\t\"n\": 1\n}\n", buf.String())
}
