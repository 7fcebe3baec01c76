// Package observability records batch-level metrics through OpenTelemetry,
// exported on the same /metrics endpoint as the prometheus counters.
package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"

	"archetype-resolver/internal/common/logger"
)

type Observability struct {
	meterProvider *metric.MeterProvider
	meter         otelmetric.Meter
	batchCounter  otelmetric.Int64Counter
	buildingCount otelmetric.Int64Counter
	batchDuration otelmetric.Float64Histogram
	ageClassGauge otelmetric.Int64Gauge
}

// New registers a prometheus exporter as the global meter provider.
func New(serviceName string, log logger.Logger) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Error("failed to create prometheus exporter", map[string]interface{}{"error": err})
		return &Observability{}
	}
	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)
	return newObservability(provider, serviceName)
}

// NewWithReader builds an Observability on reader without touching the
// global provider.
func NewWithReader(serviceName string, reader metric.Reader) *Observability {
	return newObservability(metric.NewMeterProvider(metric.WithReader(reader)), serviceName)
}

func newObservability(provider *metric.MeterProvider, serviceName string) *Observability {
	meter := provider.Meter(serviceName)

	batchCounter, _ := meter.Int64Counter(
		"archetype.batches",
		otelmetric.WithDescription("Number of batch resolutions run"),
	)
	buildingCount, _ := meter.Int64Counter(
		"archetype.batch.buildings",
		otelmetric.WithDescription("Buildings processed in batch resolutions"),
	)
	batchDuration, _ := meter.Float64Histogram(
		"archetype.batch.duration",
		otelmetric.WithDescription("Batch resolution duration"),
		otelmetric.WithUnit("ms"),
	)
	ageClassGauge, _ := meter.Int64Gauge(
		"archetype.age_classes",
		otelmetric.WithDescription("Number of age classes known to the active factory"),
	)

	return &Observability{
		meterProvider: provider,
		meter:         meter,
		batchCounter:  batchCounter,
		buildingCount: buildingCount,
		batchDuration: batchDuration,
		ageClassGauge: ageClassGauge,
	}
}

// RecordBatch records one finished batch run.
func (o *Observability) RecordBatch(ctx context.Context, factory string, succeeded, failed int, duration time.Duration) {
	if o.batchCounter == nil {
		return
	}
	attrs := otelmetric.WithAttributes(attribute.String("factory", factory))
	o.batchCounter.Add(ctx, 1, attrs)
	o.buildingCount.Add(ctx, int64(succeeded), otelmetric.WithAttributes(
		attribute.String("factory", factory), attribute.String("status", "ok")))
	o.buildingCount.Add(ctx, int64(failed), otelmetric.WithAttributes(
		attribute.String("factory", factory), attribute.String("status", "failed")))
	o.batchDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
}

// RecordAgeClasses publishes the number of age classes of a factory.
func (o *Observability) RecordAgeClasses(ctx context.Context, factory string, n int) {
	if o.ageClassGauge != nil {
		o.ageClassGauge.Record(ctx, int64(n), otelmetric.WithAttributes(attribute.String("factory", factory)))
	}
}

func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = o.meterProvider.Shutdown(ctx)
	}
}
