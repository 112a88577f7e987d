package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

type Observability struct {
	meterProvider     *metric.MeterProvider
	meter             otelmetric.Meter
	transformCounter  otelmetric.Int64Counter
	transformDuration otelmetric.Float64Histogram
	upstreamCalls     otelmetric.Int64Counter
}

func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	transformCounter, _ := meter.Int64Counter(
		"transformations.processed",
		otelmetric.WithDescription("Number of niche transformations processed"),
	)

	transformDuration, _ := meter.Float64Histogram(
		"transformations.duration",
		otelmetric.WithDescription("Niche transformation duration"),
		otelmetric.WithUnit("ms"),
	)

	upstreamCalls, _ := meter.Int64Counter(
		"upstream.calls",
		otelmetric.WithDescription("Number of upstream analytics API calls"),
	)

	return &Observability{
		meterProvider:     provider,
		meter:             meter,
		transformCounter:  transformCounter,
		transformDuration: transformDuration,
		upstreamCalls:     upstreamCalls,
	}
}

// RecordTransformProcessed counts one finished transformation with its
// outcome (pass_through, regenerated, error).
func (o *Observability) RecordTransformProcessed(ctx context.Context, outcome string) {
	if o.transformCounter != nil {
		o.transformCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("outcome", outcome),
		))
	}
}

func (o *Observability) RecordTransformDuration(ctx context.Context, duration time.Duration, outcome string) {
	if o.transformDuration != nil {
		o.transformDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("outcome", outcome),
		))
	}
}

// RecordUpstreamCall counts one call to the analytics API with its
// result (success, timeout, error, mock).
func (o *Observability) RecordUpstreamCall(ctx context.Context, result string) {
	if o.upstreamCalls != nil {
		o.upstreamCalls.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("result", result),
		))
	}
}

func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		o.meterProvider.Shutdown(ctx)
	}
}
