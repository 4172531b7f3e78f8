// SPDX-License-Identifier: Apache-2.0

package summarizer

import (
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	loglib "github.com/xataio/commons/pkg/log"
	"github.com/xataio/commons/pkg/num"
	"github.com/xataio/commons/pkg/otel"
	"github.com/xataio/commons/pkg/source"
	"github.com/xataio/commons/pkg/stats"
	"github.com/xataio/commons/pkg/stream"
	"github.com/xataio/commons/pkg/stream/instrumentation"
)

// sumBatchSize is the number of values handed to a sum worker at once.
const sumBatchSize = 1024

// Summarizer reads a source once and computes the requested summaries of
// its values.
type Summarizer struct {
	logger          loglib.Logger
	instrumentation *otel.Instrumentation
	sourceConfig    source.Config
	source          source.Source
	sourceOptions   []source.Option
	modes           []Mode
	sumWorkers      uint
}

// Summary holds the results of the requested modes. Records of modes that
// were not requested are nil.
type Summary struct {
	Modes   []Mode
	Count   int
	Skipped int
	Sample  *stats.Record
	Stream  *stats.Record
	// Sum is None if no value was read.
	Sum num.Number
}

type Option func(*Summarizer)

func WithLogger(l loglib.Logger) Option {
	return func(s *Summarizer) {
		s.logger = loglib.ForModule(l, "summarizer")
	}
}

func WithInstrumentation(i *otel.Instrumentation) Option {
	return func(s *Summarizer) {
		s.instrumentation = i
	}
}

// WithSource reads values from src instead of the configured source. The
// caller keeps ownership of src.
func WithSource(src source.Source) Option {
	return func(s *Summarizer) {
		s.source = src
	}
}

// WithSourceOptions are passed on to the configured source.
func WithSourceOptions(opts ...source.Option) Option {
	return func(s *Summarizer) {
		s.sourceOptions = append(s.sourceOptions, opts...)
	}
}

func New(cfg *Config, opts ...Option) (*Summarizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Summarizer{
		logger:       loglib.NewNoopLogger(),
		sourceConfig: cfg.Source,
		modes:        slices.Compact(slices.Sorted(slices.Values(cfg.Modes))),
		sumWorkers:   cfg.sumWorkers(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.source == nil {
		if err := s.sourceConfig.Validate(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Summarizer) has(m Mode) bool {
	return slices.Contains(s.modes, m)
}

// Summarize reads all the values of the source. The statistics modes fail
// with stream.ErrNoData if the source has no values, a lone sum is None.
func (s *Summarizer) Summarize(ctx context.Context) (*Summary, error) {
	src := s.source
	if src == nil {
		var err error
		src, err = source.NewFromConfig(ctx, &s.sourceConfig, append([]source.Option{source.WithLogger(s.logger)}, s.sourceOptions...)...)
		if err != nil {
			return nil, fmt.Errorf("opening source: %w", err)
		}
		defer func() {
			if err := src.Close(); err != nil {
				s.logger.Error(err, "closing source")
			}
		}()
	}

	var sample []num.Number
	var statistics *stream.Statistics
	var statsAgg stream.Aggregate
	if s.has(ModeStream) {
		statistics = stream.NewStatistics()
		var err error
		if statsAgg, err = instrumentation.NewAggregate("statistics", statistics, s.instrumentation); err != nil {
			return nil, err
		}
	}

	sums := newPartitionSums(ctx, s.has(ModeSum), s.sumWorkers, s.instrumentation)

	count := 0
	readErr := src.Read(ctx, func(v num.Number) error {
		count++
		if s.has(ModeSample) {
			sample = append(sample, v)
		}
		if statsAgg != nil {
			if err := add(ctx, statsAgg, v); err != nil {
				return err
			}
		}
		return sums.add(v)
	})
	total, sumErr := sums.wait()
	if sumErr != nil {
		return nil, fmt.Errorf("summing values: %w", sumErr)
	}
	if readErr != nil {
		return nil, fmt.Errorf("reading values: %w", readErr)
	}

	summary := &Summary{
		Modes: s.modes,
		Count: count,
		Sum:   num.None,
	}
	if counter, ok := src.(source.SkipCounter); ok {
		summary.Skipped = counter.Skipped()
	}

	if s.has(ModeSample) {
		if count == 0 {
			return nil, fmt.Errorf("sample statistics: %w", stream.ErrNoData)
		}
		r, err := stats.FromSamples(sample)
		if err != nil {
			return nil, fmt.Errorf("sample statistics: %w", err)
		}
		summary.Sample = &r
	}
	if statistics != nil {
		r, err := statistics.Result()
		if err != nil {
			return nil, fmt.Errorf("stream statistics: %w", err)
		}
		summary.Stream = &r
	}
	if total != nil {
		sum, err := total.Result()
		if err != nil {
			return nil, fmt.Errorf("sum: %w", err)
		}
		summary.Sum = sum
	}

	s.logger.Info("values summarized", loglib.Fields{
		"count":       summary.Count,
		"skipped":     summary.Skipped,
		"modes":       summary.Modes,
		"sample_mean": num.FormatOrNone(meanOrNone(summary.Sample)),
		"stream_mean": num.FormatOrNone(meanOrNone(summary.Stream)),
	})
	return summary, nil
}

var meanOrNone = stats.Getter(stats.Record.MeanArith).OrNone()

// partitionSums spreads values round robin over workers that each keep a
// partial sum. The partial sums are merged once all values are added.
type partitionSums struct {
	group   *errgroup.Group
	ctx     context.Context
	batches []chan []num.Number
	partial []*stream.Sum
	pending []num.Number
	next    int
}

func newPartitionSums(ctx context.Context, enabled bool, workers uint, i *otel.Instrumentation) *partitionSums {
	if !enabled {
		return nil
	}
	group, ctx := errgroup.WithContext(ctx)
	p := &partitionSums{
		group:   group,
		ctx:     ctx,
		batches: make([]chan []num.Number, workers),
		partial: make([]*stream.Sum, workers),
	}
	for w := range p.batches {
		p.batches[w] = make(chan []num.Number, 1)
		p.partial[w] = stream.NewSum()
		batches, sum := p.batches[w], p.partial[w]
		group.Go(func() error {
			agg, err := instrumentation.NewAggregate("sum", sum, i)
			if err != nil {
				return err
			}
			for batch := range batches {
				if err := update(ctx, agg, batch); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return p
}

// batchUpdater is implemented by instrumented aggregates, which trace every
// batch.
type batchUpdater interface {
	Update(ctx context.Context, values []num.Number) error
}

// contextAdder is implemented by instrumented aggregates, which record their
// metrics within the read context.
type contextAdder interface {
	AddContext(ctx context.Context, value num.Number) error
}

func add(ctx context.Context, agg stream.Aggregate, v num.Number) error {
	if a, ok := agg.(contextAdder); ok {
		return a.AddContext(ctx, v)
	}
	return agg.Add(v)
}

func update(ctx context.Context, agg stream.Aggregate, values []num.Number) error {
	if u, ok := agg.(batchUpdater); ok {
		return u.Update(ctx, values)
	}
	return stream.Update(agg, values)
}

func (p *partitionSums) add(v num.Number) error {
	if p == nil {
		return nil
	}
	p.pending = append(p.pending, v)
	if len(p.pending) < sumBatchSize {
		return nil
	}
	return p.flush()
}

func (p *partitionSums) flush() error {
	if len(p.pending) == 0 {
		return nil
	}
	select {
	case p.batches[p.next] <- p.pending:
	case <-p.ctx.Done():
		// a worker failed, wait reports why
		return context.Cause(p.ctx)
	}
	p.pending = make([]num.Number, 0, sumBatchSize)
	p.next = (p.next + 1) % len(p.batches)
	return nil
}

// wait stops the workers and merges their partial sums.
func (p *partitionSums) wait() (*stream.Sum, error) {
	if p == nil {
		return nil, nil
	}
	flushErr := p.flush()
	for _, batches := range p.batches {
		close(batches)
	}
	if err := p.group.Wait(); err != nil {
		return nil, err
	}
	if flushErr != nil {
		return nil, flushErr
	}
	total := stream.NewSum()
	for _, partial := range p.partial {
		total.AddSum(partial)
	}
	return total, nil
}
