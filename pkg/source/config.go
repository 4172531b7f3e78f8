// SPDX-License-Identifier: Apache-2.0

package source

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/xataio/commons/internal/backoff"
	"github.com/xataio/commons/internal/kafka"
	"github.com/xataio/commons/internal/postgres"
	"github.com/xataio/commons/internal/progress"
	tlslib "github.com/xataio/commons/pkg/tls"
)

// Config selects exactly one source.
type Config struct {
	File        *FileConfig     `mapstructure:"file"`
	Kafka       *KafkaConfig    `mapstructure:"kafka"`
	Postgres    *PostgresConfig `mapstructure:"postgres"`
	SkipInvalid bool            `mapstructure:"skip_invalid"`
}

type FileConfig struct {
	// Path of the file to read, stdin when empty or "-".
	Path string `mapstructure:"path"`
	// Column makes the file a csv file, of which only this column is read.
	Column       string `mapstructure:"column"`
	Separator    string `mapstructure:"separator"`
	CommentStart string `mapstructure:"comment_start"`
	Progress     bool   `mapstructure:"progress"`
}

type KafkaConfig struct {
	Servers         []string  `mapstructure:"servers"`
	Topic           string    `mapstructure:"topic"`
	ConsumerGroupID string    `mapstructure:"consumer_group_id"`
	StartOffset     string    `mapstructure:"start_offset"`
	TLS             TLSConfig `mapstructure:"tls"`
	// MaxMessages stops the read after this many messages. Zero reads until
	// the context is cancelled.
	MaxMessages int `mapstructure:"max_messages"`
	// CommitBackoff overrides the exponential retry policy of offset
	// commits.
	CommitBackoff *BackoffConfig `mapstructure:"commit_backoff"`
}

type BackoffConfig struct {
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
	MaxRetries      uint          `mapstructure:"max_retries"`
}

type TLSConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	CACert     string `mapstructure:"ca_cert"`
	ClientCert string `mapstructure:"client_cert"`
	ClientKey  string `mapstructure:"client_key"`
}

type PostgresConfig struct {
	URL   string `mapstructure:"url"`
	Query string `mapstructure:"query"`
}

// DecodeConfig builds the configuration from a free-form map, such as the
// source section of a configuration file. Unknown keys are rejected.
func DecodeConfig(raw map[string]any) (*Config, error) {
	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		Result: cfg,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decoding source config: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	count := 0
	for _, set := range []bool{c.File != nil, c.Kafka != nil, c.Postgres != nil} {
		if set {
			count++
		}
	}
	switch {
	case count == 0:
		return ErrNoSource
	case count > 1:
		return ErrMultipleSources
	}

	switch {
	case c.Kafka != nil:
		if len(c.Kafka.Servers) == 0 || c.Kafka.Topic == "" {
			return fmt.Errorf("kafka source needs servers and a topic: %w", ErrNoSource)
		}
		if c.Kafka.MaxMessages < 0 {
			return fmt.Errorf("negative kafka max messages %d: %w", c.Kafka.MaxMessages, ErrNoSource)
		}
	case c.Postgres != nil:
		if c.Postgres.URL == "" || c.Postgres.Query == "" {
			return fmt.Errorf("postgres source needs a url and a query: %w", ErrNoSource)
		}
	case c.File != nil:
		return c.format().Validate()
	}
	return nil
}

// NewFromConfig opens the configured source. The caller closes it.
func NewFromConfig(ctx context.Context, cfg *Config, opts ...Option) (Source, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.SkipInvalid {
		opts = append(opts, WithSkipInvalid())
	}

	switch {
	case cfg.Kafka != nil:
		o := newOptions("kafka", opts)
		reader, err := kafka.NewReader(kafka.ReaderConfig{
			Conn: kafka.ConnConfig{
				Servers: cfg.Kafka.Servers,
				Topic:   cfg.Kafka.Topic,
				TLS: tlslib.Config{
					Enabled:        cfg.Kafka.TLS.Enabled,
					CaCertFile:     cfg.Kafka.TLS.CACert,
					ClientCertFile: cfg.Kafka.TLS.ClientCert,
					ClientKeyFile:  cfg.Kafka.TLS.ClientKey,
				},
			},
			ConsumerGroupID: cfg.Kafka.ConsumerGroupID,
			StartOffset:     cfg.Kafka.StartOffset,
		}, o.logger)
		if err != nil {
			return nil, fmt.Errorf("creating kafka reader: %w", err)
		}
		if b := cfg.Kafka.CommitBackoff; b != nil {
			opts = append(opts, WithCommitBackoff(backoff.NewProvider(&backoff.Config{
				Exponential: &backoff.ExponentialConfig{
					InitialInterval: b.InitialInterval,
					MaxInterval:     b.MaxInterval,
					MaxRetries:      b.MaxRetries,
				},
			})))
		}
		return NewKafkaSource(reader, cfg.Kafka.MaxMessages, opts...), nil

	case cfg.Postgres != nil:
		conn, err := postgres.NewConn(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		return NewPostgresSource(conn, cfg.Postgres.Query, opts...), nil

	default:
		return openFile(cfg, opts)
	}
}

func openFile(cfg *Config, opts []Option) (Source, error) {
	var f *os.File
	if cfg.File.Path == "" || cfg.File.Path == "-" {
		f = os.Stdin
	} else {
		var err error
		if f, err = os.Open(cfg.File.Path); err != nil {
			return nil, fmt.Errorf("opening source file: %w", err)
		}
	}

	o := newOptions("file", opts)
	r := &fileReader{file: f}
	if cfg.File.Progress && o.progress != nil && f != os.Stdin {
		if info, err := f.Stat(); err == nil && info.Mode().IsRegular() {
			r.bar = progress.NewReader(f, progress.NewBytesBar(o.progress, info.Size(), "reading "+cfg.File.Path))
		}
	}

	if cfg.File.Column != "" {
		return NewCSVColumnSource(r, cfg.File.Column, cfg.format(), opts...), nil
	}
	return NewLinesSource(r, opts...), nil
}

// fileReader closes the file it reads, unless it is stdin.
type fileReader struct {
	file *os.File
	bar  *progress.Reader
}

func (r *fileReader) Read(p []byte) (int, error) {
	if r.bar != nil {
		return r.bar.Read(p)
	}
	return r.file.Read(p)
}

func (r *fileReader) Close() error {
	if r.bar != nil {
		r.bar.Close()
	}
	if r.file == os.Stdin {
		return nil
	}
	return r.file.Close()
}
