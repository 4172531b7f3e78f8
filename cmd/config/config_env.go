// SPDX-License-Identifier: Apache-2.0

package config

import (
	"github.com/spf13/viper"

	"github.com/xataio/commons/pkg/otel"
	"github.com/xataio/commons/pkg/source"
	"github.com/xataio/commons/pkg/summarizer"
)

func envConfigToSummarizerConfig() (*summarizer.Config, error) {
	modes, err := summarizer.ParseModes(splitList(viper.GetStringSlice("COMMONS_MODES")))
	if err != nil {
		return nil, err
	}
	return &summarizer.Config{
		Source:     parseSourceConfig(),
		Modes:      modes,
		SumWorkers: viper.GetUint("COMMONS_SUM_WORKERS"),
		Output: summarizer.OutputConfig{
			Format:       viper.GetString("COMMONS_OUTPUT_FORMAT"),
			Separator:    viper.GetString("COMMONS_OUTPUT_SEPARATOR"),
			CommentStart: viper.GetString("COMMONS_OUTPUT_COMMENT_START"),
		},
	}, nil
}

// parseSourceConfig falls back to reading stdin when neither kafka nor
// postgres are configured.
func parseSourceConfig() source.Config {
	cfg := source.Config{
		Kafka:       parseKafkaSourceConfig(),
		Postgres:    parsePostgresSourceConfig(),
		SkipInvalid: viper.GetBool("COMMONS_SOURCE_SKIP_INVALID"),
	}
	if viper.GetString("COMMONS_SOURCE_FILE_PATH") != "" || (cfg.Kafka == nil && cfg.Postgres == nil) {
		cfg.File = &source.FileConfig{
			Path:         viper.GetString("COMMONS_SOURCE_FILE_PATH"),
			Column:       viper.GetString("COMMONS_SOURCE_FILE_COLUMN"),
			Separator:    viper.GetString("COMMONS_SOURCE_FILE_SEPARATOR"),
			CommentStart: viper.GetString("COMMONS_SOURCE_FILE_COMMENT_START"),
			Progress:     viper.GetBool("COMMONS_SOURCE_FILE_PROGRESS"),
		}
	}
	return cfg
}

func parseKafkaSourceConfig() *source.KafkaConfig {
	servers := splitList(viper.GetStringSlice("COMMONS_SOURCE_KAFKA_SERVERS"))
	if len(servers) == 0 {
		return nil
	}
	return &source.KafkaConfig{
		Servers:         servers,
		Topic:           viper.GetString("COMMONS_SOURCE_KAFKA_TOPIC"),
		ConsumerGroupID: viper.GetString("COMMONS_SOURCE_KAFKA_CONSUMER_GROUP_ID"),
		StartOffset:     viper.GetString("COMMONS_SOURCE_KAFKA_START_OFFSET"),
		MaxMessages:     viper.GetInt("COMMONS_SOURCE_KAFKA_MAX_MESSAGES"),
		TLS: source.TLSConfig{
			Enabled:    viper.GetBool("COMMONS_SOURCE_KAFKA_TLS_ENABLED"),
			CACert:     viper.GetString("COMMONS_SOURCE_KAFKA_TLS_CA_CERT_FILE"),
			ClientCert: viper.GetString("COMMONS_SOURCE_KAFKA_TLS_CLIENT_CERT_FILE"),
			ClientKey:  viper.GetString("COMMONS_SOURCE_KAFKA_TLS_CLIENT_KEY_FILE"),
		},
		CommitBackoff: parseCommitBackoffConfig(),
	}
}

func parseCommitBackoffConfig() *source.BackoffConfig {
	cfg := &source.BackoffConfig{
		InitialInterval: viper.GetDuration("COMMONS_SOURCE_KAFKA_COMMIT_BACKOFF_INITIAL_INTERVAL"),
		MaxInterval:     viper.GetDuration("COMMONS_SOURCE_KAFKA_COMMIT_BACKOFF_MAX_INTERVAL"),
		MaxRetries:      viper.GetUint("COMMONS_SOURCE_KAFKA_COMMIT_BACKOFF_MAX_RETRIES"),
	}
	if *cfg == (source.BackoffConfig{}) {
		return nil
	}
	return cfg
}

func parsePostgresSourceConfig() *source.PostgresConfig {
	url := viper.GetString("COMMONS_SOURCE_POSTGRES_URL")
	if url == "" {
		return nil
	}
	return &source.PostgresConfig{
		URL:   url,
		Query: viper.GetString("COMMONS_SOURCE_POSTGRES_QUERY"),
	}
}

func envToOtelConfig() (*otel.Config, error) {
	cfg := &otel.Config{}
	if endpoint := viper.GetString("COMMONS_METRICS_ENDPOINT"); endpoint != "" {
		cfg.Metrics = &otel.MetricsConfig{
			Endpoint:           endpoint,
			CollectionInterval: viper.GetDuration("COMMONS_METRICS_COLLECTION_INTERVAL"),
		}
	}
	if endpoint := viper.GetString("COMMONS_TRACES_ENDPOINT"); endpoint != "" {
		cfg.Traces = &otel.TracesConfig{
			Endpoint:    endpoint,
			SampleRatio: viper.GetFloat64("COMMONS_TRACES_SAMPLE_RATIO"),
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
