// SPDX-License-Identifier: Apache-2.0

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/xataio/commons/pkg/otel"
	"github.com/xataio/commons/pkg/source"
	"github.com/xataio/commons/pkg/summarizer"
)

// this function validates the summarizer configuration produced from the
// test configuration files, which must be kept in sync.
func validateTestSummarizerConfig(t *testing.T, cfg *summarizer.Config) {
	assert.Equal(t, &summarizer.Config{
		Source: source.Config{
			Kafka: &source.KafkaConfig{
				Servers:         []string{"localhost:9092"},
				Topic:           "latencies",
				ConsumerGroupID: "commons",
				StartOffset:     "earliest",
				MaxMessages:     1000,
				TLS: source.TLSConfig{
					Enabled:    true,
					CACert:     "/path/to/ca.crt",
					ClientCert: "/path/to/client.crt",
					ClientKey:  "/path/to/client.key",
				},
			},
			SkipInvalid: true,
		},
		Modes:      []summarizer.Mode{summarizer.ModeSample, summarizer.ModeStream, summarizer.ModeSum},
		SumWorkers: 4,
		Output: summarizer.OutputConfig{
			Format:       summarizer.FormatCSV,
			Separator:    ",",
			CommentStart: "//",
		},
	}, cfg)
}

// this function validates the otel configuration produced from the test
// configuration files, which must be kept in sync.
func validateTestOtelConfig(t *testing.T, otelConfig *otel.Config) {
	assert.Equal(t, "http://localhost:4317", otelConfig.Metrics.Endpoint)
	assert.Equal(t, 60*time.Second, otelConfig.Metrics.CollectionInterval)
	assert.Equal(t, "http://localhost:4317", otelConfig.Traces.Endpoint)
	assert.Equal(t, 0.5, otelConfig.Traces.SampleRatio)
}
