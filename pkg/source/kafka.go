// SPDX-License-Identifier: Apache-2.0

package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xataio/commons/internal/backoff"
	"github.com/xataio/commons/internal/kafka"
	loglib "github.com/xataio/commons/pkg/log"
	"github.com/xataio/commons/pkg/num"
)

// commitBatchSize is the number of processed messages after which their
// offsets are committed.
const commitBatchSize = 100

var defaultCommitBackoff = backoff.ExponentialConfig{
	InitialInterval: 100 * time.Millisecond,
	MaxInterval:     5 * time.Second,
	MaxRetries:      5,
}

// KafkaSource reads one number from the value of every message of a topic.
// Empty values are gaps.
type KafkaSource struct {
	values
	reader      kafka.MessageReader
	maxMessages int
	parser      kafka.OffsetParser
	pending     map[int]*kafka.Offset
	processed   int
}

func NewKafkaSource(reader kafka.MessageReader, maxMessages int, opts ...Option) *KafkaSource {
	o := newOptions("kafka", opts)
	if o.commitBackoff == nil {
		o.commitBackoff = backoff.NewProvider(&backoff.Config{Exponential: &defaultCommitBackoff})
	}
	return &KafkaSource{
		values:      values{options: o},
		reader:      reader,
		maxMessages: maxMessages,
		parser:      kafka.NewOffsetParser(),
		pending:     map[int]*kafka.Offset{},
	}
}

// Read fetches messages until maxMessages have been read. Without a limit it
// reads until ctx is cancelled, which ends the read without error.
func (s *KafkaSource) Read(ctx context.Context, fn func(num.Number) error) (err error) {
	defer func() {
		// offsets must be committed even when ctx is cancelled
		commitErr := s.commit(context.WithoutCancel(ctx))
		if err == nil {
			err = commitErr
		}
	}()

	for read := 0; s.maxMessages == 0 || read < s.maxMessages; read++ {
		msg, err := s.reader.FetchMessage(ctx)
		if err != nil {
			if s.maxMessages == 0 && errors.Is(err, context.Canceled) {
				s.logger.Info("kafka read stopped", loglib.Fields{"messages": read})
				return nil
			}
			return fmt.Errorf("fetching kafka message: %w", err)
		}

		position := msg.Position()
		fields := loglib.Fields{"offset": s.parser.ToString(position)}
		if err := s.emitText(fn, string(msg.Value), fields); err != nil {
			return fmt.Errorf("kafka message %s: %w", s.parser.ToString(position), err)
		}

		s.pending[position.Partition] = position
		s.processed++
		if s.processed%commitBatchSize == 0 {
			if err := s.commit(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *KafkaSource) commit(ctx context.Context) error {
	if len(s.pending) == 0 {
		return nil
	}
	offsets := make([]*kafka.Offset, 0, len(s.pending))
	for _, o := range s.pending {
		offsets = append(offsets, o)
	}
	bo := s.commitBackoff(ctx)
	err := bo.RetryNotify(
		func() error {
			return s.reader.CommitOffsets(ctx, offsets...)
		},
		func(err error, d time.Duration) {
			s.logger.Warn(err, "committing kafka offsets, retrying", loglib.Fields{"backoff": d})
		})
	if err != nil {
		return fmt.Errorf("committing kafka offsets: %w", err)
	}
	s.logger.Debug("kafka offsets committed", loglib.Fields{"partitions": len(offsets), "processed": s.processed})
	clear(s.pending)
	return nil
}

func (s *KafkaSource) Close() error {
	return s.reader.Close()
}
