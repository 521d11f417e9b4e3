package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Observability bundles the otel meter and tracer used by the service. The
// zero value is usable and records nothing.
type Observability struct {
	meterProvider    *metric.MeterProvider
	tracerProvider   *sdktrace.TracerProvider
	meter            otelmetric.Meter
	tracer           trace.Tracer
	mutationCounter  otelmetric.Int64Counter
	mutationDuration otelmetric.Float64Histogram
}

// New exports otel metrics through the default Prometheus registerer.
func New(serviceName string) (*Observability, error) {
	return NewWithRegisterer(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegisterer exports otel metrics through reg. Spans are sampled and
// handed to the given processors; with none they are recorded and dropped.
func NewWithRegisterer(serviceName string, reg prometheus.Registerer, processors ...sdktrace.SpanProcessor) (*Observability, error) {
	opts := []sdktrace.TracerProviderOption{sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample()))}
	for _, p := range processors {
		opts = append(opts, sdktrace.WithSpanProcessor(p))
	}
	tracerProvider := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tracerProvider)

	exporter, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		return &Observability{
			tracerProvider: tracerProvider,
			tracer:         tracerProvider.Tracer(serviceName),
		}, err
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	mutationCounter, _ := meter.Int64Counter(
		"participants_mutations",
		otelmetric.WithDescription("Number of participant enroll/unregister attempts"),
	)

	mutationDuration, _ := meter.Float64Histogram(
		"participants_mutation_duration",
		otelmetric.WithDescription("Participant mutation duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider:    provider,
		tracerProvider:   tracerProvider,
		meter:            meter,
		tracer:           tracerProvider.Tracer(serviceName),
		mutationCounter:  mutationCounter,
		mutationDuration: mutationDuration,
	}, nil
}

// StartSpan opens a span on the global tracer provider.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := o.tracer
	if tracer == nil {
		tracer = otel.Tracer("mergington-activities")
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// RecordMutation counts one enroll or unregister attempt.
func (o *Observability) RecordMutation(ctx context.Context, operation, status string) {
	if o.mutationCounter != nil {
		o.mutationCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordMutationDuration(ctx context.Context, operation string, duration time.Duration) {
	if o.mutationDuration != nil {
		o.mutationDuration.Record(ctx, float64(duration.Microseconds())/1000, otelmetric.WithAttributes(
			attribute.String("operation", operation),
		))
	}
}

func (o *Observability) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if o.meterProvider != nil {
		_ = o.meterProvider.Shutdown(ctx)
	}
	if o.tracerProvider != nil {
		_ = o.tracerProvider.Shutdown(ctx)
	}
}
