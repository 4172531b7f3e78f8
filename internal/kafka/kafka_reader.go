// SPDX-License-Identifier: Apache-2.0

package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	loglib "github.com/xataio/commons/pkg/log"
	tlslib "github.com/xataio/commons/pkg/tls"
)

type MessageReader interface {
	FetchMessage(ctx context.Context) (*Message, error)
	CommitOffsets(ctx context.Context, offsets ...*Offset) error
	Close() error
}

type Message kafka.Message

// Position is the offset to commit once the message has been processed.
func (m *Message) Position() *Offset {
	return &Offset{
		Topic:     m.Topic,
		Partition: m.Partition,
		Offset:    m.Offset,
	}
}

type Reader struct {
	reader      *kafka.Reader
	groupID     string
	startOffset *Offset
}

type ConnConfig struct {
	Servers []string
	Topic   string
	TLS     tlslib.Config
}

type ReaderConfig struct {
	Conn            ConnConfig
	ConsumerGroupID string
	// StartOffset is one of "earliest" (default), "latest" or an explicit
	// "<topic>/<partition>/<offset>" position. An explicit position can't
	// be combined with a consumer group.
	StartOffset string
}

const (
	earliestOffset = "earliest"
	latestOffset   = "latest"

	maxReaderBytes = 25 * 1024 * 1024 // 25 MiB
	dialTimeout    = 10 * time.Second
)

func NewReader(config ReaderConfig, logger loglib.Logger) (*Reader, error) {
	logger = loglib.NewLogger(logger)
	logger.Info("creating kafka reader", loglib.Fields{
		"kafka_servers": config.Conn.Servers,
		"kafka_topic":   config.Conn.Topic,
		"tls_enabled":   config.Conn.TLS.Enabled,
	})

	readerCfg := kafka.ReaderConfig{
		Brokers:        config.Conn.Servers,
		Topic:          config.Conn.Topic,
		GroupID:        config.ConsumerGroupID,
		MaxBytes:       maxReaderBytes,
		CommitInterval: 0, // disabled, offsets are committed explicitly
		Logger:         makeLogger(logger.Trace),
		ErrorLogger:    makeErrLogger(logger.Error),
	}

	var explicit *Offset
	switch config.StartOffset {
	case "", earliestOffset:
		readerCfg.StartOffset = kafka.FirstOffset
	case latestOffset:
		readerCfg.StartOffset = kafka.LastOffset
	default:
		var err error
		explicit, err = NewOffsetParser().FromString(config.StartOffset)
		if err != nil {
			return nil, fmt.Errorf("unsupported start offset [%s], must be one of [%s, %s, <topic>/<partition>/<offset>]: %w", config.StartOffset, earliestOffset, latestOffset, err)
		}
		if config.ConsumerGroupID != "" {
			return nil, fmt.Errorf("start offset [%s] can't be used with consumer group [%s]: %w", config.StartOffset, config.ConsumerGroupID, ErrInvalidOffsetFormat)
		}
		if explicit.Topic != config.Conn.Topic {
			return nil, fmt.Errorf("start offset topic [%s] differs from reader topic [%s]: %w", explicit.Topic, config.Conn.Topic, ErrInvalidOffsetFormat)
		}
		readerCfg.Partition = explicit.Partition
	}

	dialer, err := buildDialer(&config.Conn.TLS)
	if err != nil {
		return nil, err
	}
	readerCfg.Dialer = dialer

	r := &Reader{
		reader:      kafka.NewReader(readerCfg),
		groupID:     config.ConsumerGroupID,
		startOffset: explicit,
	}
	if explicit != nil {
		if err := r.reader.SetOffset(explicit.Offset); err != nil {
			r.reader.Close()
			return nil, fmt.Errorf("setting start offset: %w", err)
		}
	}
	return r, nil
}

// FetchMessage returns the next message from the reader. This call will block
// until a message is available, or an error occurs. It can be stopped by
// canceling the context.
func (r *Reader) FetchMessage(ctx context.Context) (*Message, error) {
	kafkaMsg, err := r.reader.FetchMessage(ctx)
	if err != nil {
		return nil, err
	}

	msg := Message(kafkaMsg)
	return &msg, nil
}

// CommitOffsets is a noop for readers outside of a consumer group, which have
// no offsets to store.
func (r *Reader) CommitOffsets(ctx context.Context, offsets ...*Offset) error {
	if len(offsets) == 0 || r.groupID == "" {
		return nil
	}

	kafkaMsgs := make([]kafka.Message, 0, len(offsets))
	for _, offset := range offsets {
		kafkaMsgs = append(kafkaMsgs, kafka.Message{
			Topic:     offset.Topic,
			Partition: offset.Partition,
			Offset:    offset.Offset,
		})
	}
	return r.reader.CommitMessages(ctx, kafkaMsgs...)
}

func (r *Reader) Close() error {
	return r.reader.Close()
}

func buildDialer(cfg *tlslib.Config) (*kafka.Dialer, error) {
	tlsConfig, err := tlslib.NewConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("loading TLS configuration: %w", err)
	}

	return &kafka.Dialer{
		Timeout:   dialTimeout,
		DualStack: true,
		TLS:       tlsConfig,
	}, nil
}
