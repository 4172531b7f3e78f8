// SPDX-License-Identifier: Apache-2.0

package otel

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

// InstrumentationProvider hands out named instrumentation and flushes the
// exporters on Close.
type InstrumentationProvider interface {
	NewInstrumentation(name string) *Instrumentation
	Close() error
}

// Provider exports metrics and traces over OTLP/gRPC. Signals without
// configuration stay disabled and their half of the instrumentation is nil.
type Provider struct {
	meterProvider  *sdkmetric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	shutdownFns    []func(context.Context) error
}

type noopProvider struct{}

func (p *noopProvider) NewInstrumentation(string) *Instrumentation { return nil }
func (p *noopProvider) Close() error                               { return nil }

// NewInstrumentationProvider returns a noop provider when neither metrics nor
// traces are configured.
func NewInstrumentationProvider(cfg *Config) (InstrumentationProvider, error) {
	if !cfg.IsEnabled() {
		return &noopProvider{}, nil
	}
	return NewProvider(cfg)
}

func NewProvider(cfg *Config) (*Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Provider{}
	ctx := context.Background()
	res := newResource(cfg.serviceName())
	if err := p.initMeterProvider(ctx, cfg.Metrics, res); err != nil {
		return nil, err
	}
	if err := p.initTracerProvider(ctx, cfg.Traces, res); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Provider) NewInstrumentation(name string) *Instrumentation {
	i := &Instrumentation{}
	if p.meterProvider != nil {
		i.Meter = p.meterProvider.Meter(name)
	}
	if p.tracerProvider != nil {
		i.Tracer = p.tracerProvider.Tracer(name)
	}
	return i
}

func (p *Provider) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var errs error
	for _, shutdownFn := range p.shutdownFns {
		errs = errors.Join(errs, shutdownFn(ctx))
	}
	return errs
}

func (p *Provider) initMeterProvider(ctx context.Context, cfg *MetricsConfig, res *resource.Resource) error {
	if cfg == nil {
		return nil
	}

	exporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithTemporalitySelector(deltaSelector),
		otlpmetricgrpc.WithInsecure(),
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint))
	if err != nil {
		return err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.collectionInterval()))
	p.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader))
	p.shutdownFns = append(p.shutdownFns, p.meterProvider.Shutdown)
	otel.SetMeterProvider(p.meterProvider)
	return nil
}

func (p *Provider) initTracerProvider(ctx context.Context, cfg *TracesConfig, res *resource.Resource) error {
	if cfg == nil {
		return nil
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithInsecure(),
		otlptracegrpc.WithEndpoint(cfg.Endpoint))
	if err != nil {
		return err
	}

	p.tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))))
	p.shutdownFns = append(p.shutdownFns, p.tracerProvider.Shutdown)
	otel.SetTracerProvider(p.tracerProvider)
	return nil
}

func newResource(service string) *resource.Resource {
	return resource.NewSchemaless(
		semconv.ServiceNameKey.String(service),
		semconv.ServiceVersionKey.String(revision()),
	)
}

// revision is the vcs.revision stamped by go build, when there is one.
var revision = sync.OnceValue(func() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			return s.Value
		}
	}
	return "unknown"
})

// Delta temporality for counters and histograms, since cumulative values may
// drop data points while the collector restarts.
func deltaSelector(kind sdkmetric.InstrumentKind) metricdata.Temporality {
	switch kind {
	case sdkmetric.InstrumentKindUpDownCounter,
		sdkmetric.InstrumentKindObservableUpDownCounter:
		return metricdata.CumulativeTemporality
	default:
		return metricdata.DeltaTemporality
	}
}
