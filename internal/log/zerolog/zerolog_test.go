// SPDX-License-Identifier: Apache-2.0

package zerolog

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/xataio/commons/internal/json"
)

func TestNewLogger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		config    Config
		wantLevel zerolog.Level
		wantErr   bool
	}{
		{name: "defaults", config: Config{}, wantLevel: zerolog.InfoLevel},
		{name: "json debug", config: Config{LogLevel: "debug", Format: JSONFormat}, wantLevel: zerolog.DebugLevel},
		{name: "console warn", config: Config{LogLevel: "warn", Format: ConsoleFormat}, wantLevel: zerolog.WarnLevel},
		{name: "err - invalid level", config: Config{LogLevel: "loud"}, wantErr: true},
		{name: "err - invalid format", config: Config{Format: "xml"}, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			tc.config.Out = &bytes.Buffer{}
			logger, err := NewLogger(&tc.config)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.wantLevel, logger.GetLevel())
		})
	}
}

func TestNewStdLogger_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	zl, err := NewLogger(&Config{LogLevel: "info", Format: JSONFormat, Out: &buf})
	require.NoError(t, err)

	NewStdLogger(zl).Info("summary written", map[string]any{"count": 3})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "summary written", entry["message"])
	require.EqualValues(t, 3, entry["count"])
	require.Contains(t, entry, "timestamp")
	require.Contains(t, entry, "caller")
}
