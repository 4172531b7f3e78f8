// SPDX-License-Identifier: Apache-2.0

package instrumentation

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/xataio/commons/pkg/num"
	"github.com/xataio/commons/pkg/otel"
	"github.com/xataio/commons/pkg/stream"
)

// Aggregate counts the values an aggregate accepts and rejects, and traces
// each batch update.
type Aggregate struct {
	inner   stream.Aggregate
	name    string
	meter   metric.Meter
	tracer  trace.Tracer
	metrics *metrics
	// attrs tells the aggregates sharing the counters apart
	attrs metric.MeasurementOption
}

type metrics struct {
	values   metric.Int64Counter
	rejected metric.Int64Counter
}

// NewAggregate wraps inner when the instrumentation is enabled. Otherwise
// inner is returned as is.
func NewAggregate(name string, inner stream.Aggregate, instrumentation *otel.Instrumentation) (stream.Aggregate, error) {
	if !instrumentation.IsEnabled() {
		return inner, nil
	}

	a := &Aggregate{
		inner:  inner,
		name:   name,
		meter:  instrumentation.Meter,
		tracer: instrumentation.Tracer,
		attrs:  metric.WithAttributes(attribute.String("aggregate", name)),
	}
	if err := a.initMetrics(); err != nil {
		return nil, fmt.Errorf("initialising %s aggregate metrics: %w", name, err)
	}
	return a, nil
}

func (a *Aggregate) Reset() {
	a.inner.Reset()
}

func (a *Aggregate) Add(value num.Number) error {
	return a.AddContext(context.Background(), value)
}

// AddContext is Add recording the metrics within ctx.
func (a *Aggregate) AddContext(ctx context.Context, value num.Number) error {
	err := a.inner.Add(value)
	a.record(ctx, err)
	return err
}

// Update is stream.Update within a span.
func (a *Aggregate) Update(ctx context.Context, values []num.Number) (err error) {
	ctx, span := otel.StartSpan(ctx, a.tracer, fmt.Sprintf("%s.Update", a.name))
	defer func() { otel.CloseSpan(span, err) }()
	otel.SetAttributes(span, attribute.Int("values", len(values)))

	for _, v := range values {
		if v.IsNone() {
			continue
		}
		if err = a.AddContext(ctx, v); err != nil {
			otel.SetAttributes(span, otel.NumberAttribute("rejected_value", v))
			return err
		}
	}
	return nil
}

func (a *Aggregate) record(ctx context.Context, err error) {
	if a.metrics == nil {
		return
	}
	if err != nil {
		a.metrics.rejected.Add(ctx, 1, a.attrs)
		return
	}
	a.metrics.values.Add(ctx, 1, a.attrs)
}

func (a *Aggregate) initMetrics() error {
	if a.meter == nil {
		return nil
	}

	m := &metrics{}
	var err error
	m.values, err = a.meter.Int64Counter("commons.stream.values",
		metric.WithUnit("{value}"),
		metric.WithDescription("Number of values added to the aggregate"))
	if err != nil {
		return err
	}

	m.rejected, err = a.meter.Int64Counter("commons.stream.rejected",
		metric.WithUnit("{value}"),
		metric.WithDescription("Number of values the aggregate refused to add"))
	if err != nil {
		return err
	}

	a.metrics = m
	return nil
}
