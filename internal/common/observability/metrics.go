// internal/common/observability/metrics.go
package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "site-composer"

// Observability records engine-level OpenTelemetry metrics and spans.
// The zero value is usable and records nothing.
type Observability struct {
	meterProvider     *metric.MeterProvider
	tracer            trace.Tracer
	selectionCounter  otelmetric.Int64Counter
	selectionDuration otelmetric.Float64Histogram
	overrideCounter   otelmetric.Int64Counter
}

// New wires an OpenTelemetry meter provider to the Prometheus registry.
func New(serviceName string) (*Observability, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, err
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	return newWithProvider(serviceName, provider), nil
}

func newWithProvider(serviceName string, provider *metric.MeterProvider) *Observability {
	meter := provider.Meter(serviceName)

	selectionCounter, _ := meter.Int64Counter(
		"variant.selections",
		otelmetric.WithDescription("Number of section variant selections"),
	)
	selectionDuration, _ := meter.Float64Histogram(
		"variant.selection.duration",
		otelmetric.WithDescription("Time spent selecting variants for a request"),
		otelmetric.WithUnit("ms"),
	)
	overrideCounter, _ := meter.Int64Counter(
		"variant.overrides",
		otelmetric.WithDescription("Number of user variant overrides"),
	)

	return &Observability{
		meterProvider:     provider,
		tracer:            otel.Tracer(instrumentationName),
		selectionCounter:  selectionCounter,
		selectionDuration: selectionDuration,
		overrideCounter:   overrideCounter,
	}
}

// StartSpan starts a span on the global tracer provider.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := o.tracer
	if tracer == nil {
		tracer = otel.Tracer(instrumentationName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (o *Observability) RecordSelection(ctx context.Context, sectionType string, variant int, isDefault bool) {
	if o.selectionCounter != nil {
		o.selectionCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("section_type", sectionType),
			attribute.Int("variant", variant),
			attribute.Bool("default", isDefault),
		))
	}
}

func (o *Observability) RecordSelectionDuration(ctx context.Context, duration time.Duration, mode string) {
	if o.selectionDuration != nil {
		o.selectionDuration.Record(ctx, float64(duration.Microseconds())/1000, otelmetric.WithAttributes(
			attribute.String("mode", mode),
		))
	}
}

func (o *Observability) RecordOverride(ctx context.Context, sectionType string, variant int) {
	if o.overrideCounter != nil {
		o.overrideCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("section_type", sectionType),
			attribute.Int("variant", variant),
		))
	}
}

func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = o.meterProvider.Shutdown(ctx)
	}
}
