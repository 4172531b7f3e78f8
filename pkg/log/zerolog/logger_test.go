// SPDX-License-Identifier: Apache-2.0

package zerolog

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/xataio/commons/internal/json"
	loglib "github.com/xataio/commons/pkg/log"
	"github.com/xataio/commons/pkg/num"
)

func TestLogger_Fields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	zl := zerolog.New(&buf).Level(zerolog.DebugLevel)
	logger := NewLogger(&zl).WithFields(loglib.Fields{loglib.ModuleField: "source"})

	logger.Info("value read", loglib.Fields{
		"value": num.Int(1<<62 + 1),
		"none":  num.None,
		"line":  3,
		"ok":    true,
		"file":  "values.txt",
		"bytes": []byte(strings.Repeat("a", logMaxBytes+5)),
	})
	logger.Trace("filtered out")
	logger.Warn(errors.New("bad value"), "skipping")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	require.Equal(t, "info", entry["level"])
	require.Equal(t, "source", entry[loglib.ModuleField])
	require.Equal(t, "4611686018427387905", entry["value"])
	require.Equal(t, "", entry["none"])
	require.Equal(t, true, entry["ok"])
	require.Equal(t, "values.txt", entry["file"])

	require.NoError(t, json.Unmarshal([]byte(lines[1]), &entry))
	require.Equal(t, "warn", entry["level"])
	require.Equal(t, "bad value", entry[zerolog.ErrorFieldName])
}
