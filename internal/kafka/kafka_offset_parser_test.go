// SPDX-License-Identifier: Apache-2.0

package kafka

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParser_ToString(t *testing.T) {
	t.Parallel()

	o := &Offset{
		Topic:     "latencies",
		Partition: 0,
		Offset:    1,
	}

	require.Equal(t, "latencies/0/1", NewOffsetParser().ToString(o))
}

func TestParser_FromString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		str  string

		wantOffset *Offset
		wantErr    error
	}{
		{
			name: "ok",
			str:  "latencies/0/1",

			wantOffset: &Offset{Topic: "latencies", Partition: 0, Offset: 1},
		},
		{
			name: "ok - topic with slash",
			str:  "team/latencies/2/42",

			wantOffset: &Offset{Topic: "team/latencies", Partition: 2, Offset: 42},
		},
		{
			name: "error - invalid format",
			str:  "latencies01",

			wantErr: ErrInvalidOffsetFormat,
		},
		{
			name: "error - missing topic",
			str:  "/0/1",

			wantErr: ErrInvalidOffsetFormat,
		},
		{
			name: "error - invalid partition",
			str:  "latencies/zero/1",

			wantErr: ErrInvalidOffsetFormat,
		},
		{
			name: "error - negative offset",
			str:  "latencies/0/-1",

			wantErr: ErrInvalidOffsetFormat,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			offset, err := NewOffsetParser().FromString(tc.str)
			require.ErrorIs(t, err, tc.wantErr)
			require.Equal(t, tc.wantOffset, offset)
		})
	}
}

func TestNewReader_StartOffset(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		config  ReaderConfig
		wantErr error
	}{
		{
			name: "error - explicit offset with consumer group",
			config: ReaderConfig{
				Conn:            ConnConfig{Servers: []string{"localhost:9092"}, Topic: "latencies"},
				ConsumerGroupID: "commons",
				StartOffset:     "latencies/0/10",
			},
			wantErr: ErrInvalidOffsetFormat,
		},
		{
			name: "error - explicit offset on another topic",
			config: ReaderConfig{
				Conn:        ConnConfig{Servers: []string{"localhost:9092"}, Topic: "latencies"},
				StartOffset: "sizes/0/10",
			},
			wantErr: ErrInvalidOffsetFormat,
		},
		{
			name: "error - unknown start offset",
			config: ReaderConfig{
				Conn:        ConnConfig{Servers: []string{"localhost:9092"}, Topic: "latencies"},
				StartOffset: "newest",
			},
			wantErr: ErrInvalidOffsetFormat,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewReader(tc.config, nil)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestMessage_Position(t *testing.T) {
	t.Parallel()

	msg := &Message{Topic: "latencies", Partition: 3, Offset: 7}
	require.Equal(t, &Offset{Topic: "latencies", Partition: 3, Offset: 7}, msg.Position())
}
