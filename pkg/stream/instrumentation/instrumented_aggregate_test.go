// SPDX-License-Identifier: Apache-2.0

package instrumentation

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/xataio/commons/pkg/num"
	"github.com/xataio/commons/pkg/otel"
	"github.com/xataio/commons/pkg/stream"
)

func TestNewAggregate_Disabled(t *testing.T) {
	t.Parallel()

	inner := stream.NewSum()
	agg, err := NewAggregate("sum", inner, nil)
	require.NoError(t, err)
	require.Same(t, inner, agg)
}

func TestAggregate_Update(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	meterProvider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	exporter := tracetest.NewInMemoryExporter()
	tracerProvider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	instrumentation := &otel.Instrumentation{
		Meter:  meterProvider.Meter("test"),
		Tracer: tracerProvider.Tracer("test"),
	}

	inner := stream.NewStatistics()
	agg, err := NewAggregate("statistics", inner, instrumentation)
	require.NoError(t, err)
	instrumented, ok := agg.(*Aggregate)
	require.True(t, ok)

	sumAgg, err := NewAggregate("sum", stream.NewSum(), instrumentation)
	require.NoError(t, err)

	values := []num.Number{num.Int(4), num.None, num.Int(7), num.Float(math.NaN()), num.Int(13)}
	err = instrumented.Update(context.Background(), values)
	require.ErrorIs(t, err, num.ErrDomain)
	require.Equal(t, 2, inner.N())
	require.NoError(t, agg.Add(num.Int(13)))
	require.NoError(t, instrumented.AddContext(context.Background(), num.Int(16)))
	require.ErrorIs(t, instrumented.AddContext(context.Background(), num.None), num.ErrType)
	require.NoError(t, sumAgg.Add(num.Int(1)))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	type key struct {
		metric    string
		aggregate string
	}
	counts := map[key]int64{}
	for _, m := range rm.ScopeMetrics[0].Metrics {
		sum, ok := m.Data.(metricdata.Sum[int64])
		require.True(t, ok)
		for _, dp := range sum.DataPoints {
			name, ok := dp.Attributes.Value("aggregate")
			require.True(t, ok)
			counts[key{metric: m.Name, aggregate: name.AsString()}] += dp.Value
		}
	}
	require.Equal(t, map[key]int64{
		{metric: "commons.stream.values", aggregate: "statistics"}:   4,
		{metric: "commons.stream.rejected", aggregate: "statistics"}: 2,
		{metric: "commons.stream.values", aggregate: "sum"}:          1,
	}, counts)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	require.Equal(t, "statistics.Update", spans[0].Name)
	require.Len(t, spans[0].Events, 1)

	agg.Reset()
	require.Equal(t, 0, inner.N())
}

func TestAggregate_TracerOnly(t *testing.T) {
	t.Parallel()

	exporter := tracetest.NewInMemoryExporter()
	tracerProvider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	inner := stream.NewSum()
	agg, err := NewAggregate("sum", inner, &otel.Instrumentation{Tracer: tracerProvider.Tracer("test")})
	require.NoError(t, err)

	require.NoError(t, agg.(*Aggregate).Update(context.Background(), []num.Number{num.Int(1), num.Float(0.5)}))
	got, err := inner.Result()
	require.NoError(t, err)
	require.Equal(t, num.Float(1.5), got)
	require.Len(t, exporter.GetSpans(), 1)
}
