// Package observe provides application-wide observability primitives for
// Protokol: OpenTelemetry metrics, distributed tracing, structured logging,
// and HTTP middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can still be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all Protokol metrics.
const meterName = "github.com/munkhbat-dev/protokol"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// GenerationDuration tracks per-chunk LLM generation latency. Use with
	// attributes:
	//   attribute.String("task", ...), attribute.String("status", ...)
	GenerationDuration metric.Float64Histogram

	// GenerationAttempts counts generation attempts by task, attempt number,
	// and outcome. Use with attributes:
	//   attribute.String("task", ...), attribute.Int("attempt", ...), attribute.String("status", ...)
	GenerationAttempts metric.Int64Counter

	// GateViolations counts quality-gate violations by kind and severity.
	// Use with attributes:
	//   attribute.String("kind", ...), attribute.String("severity", ...)
	GateViolations metric.Int64Counter

	// ChunksProcessed counts transcript chunks sent through generation.
	ChunksProcessed metric.Int64Counter

	// ActionItems counts extracted action-item records by validation
	// outcome. Use with attribute:
	//   attribute.String("status", ...)
	ActionItems metric.Int64Counter

	// ProviderErrors counts LLM provider errors. Use with attributes:
	//   attribute.String("task", ...), attribute.String("kind", ...)
	ProviderErrors metric.Int64Counter

	// HTTPRequestDuration tracks HTTP request processing time. Use with
	// attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds) sized for
// local LLM inference, which runs in seconds rather than milliseconds.
var latencyBuckets = []float64{
	0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.GenerationDuration, err = m.Float64Histogram("protokol.generation.duration",
		metric.WithDescription("Latency of one LLM generation attempt."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.GenerationAttempts, err = m.Int64Counter("protokol.generation.attempts",
		metric.WithDescription("Total generation attempts by task, attempt number, and outcome."),
	); err != nil {
		return nil, err
	}
	if met.GateViolations, err = m.Int64Counter("protokol.gate.violations",
		metric.WithDescription("Total quality-gate violations by kind and severity."),
	); err != nil {
		return nil, err
	}
	if met.ChunksProcessed, err = m.Int64Counter("protokol.chunks.processed",
		metric.WithDescription("Total transcript chunks processed."),
	); err != nil {
		return nil, err
	}
	if met.ActionItems, err = m.Int64Counter("protokol.action_items",
		metric.WithDescription("Total extracted action-item records by validation outcome."),
	); err != nil {
		return nil, err
	}
	if met.ProviderErrors, err = m.Int64Counter("protokol.provider.errors",
		metric.WithDescription("Total LLM provider errors by task and kind."),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("protokol.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordAttempt records one generation attempt with the standard attribute
// set. status is one of "accepted", "rejected", or "error".
func (m *Metrics) RecordAttempt(ctx context.Context, task string, attempt int, status string) {
	m.GenerationAttempts.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("task", task),
			attribute.Int("attempt", attempt),
			attribute.String("status", status),
		),
	)
}

// RecordViolation records one quality-gate violation.
func (m *Metrics) RecordViolation(ctx context.Context, kind, severity string) {
	m.GateViolations.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("kind", kind),
			attribute.String("severity", severity),
		),
	)
}

// RecordProviderError records one provider error against the task that hit
// it. kind is "setup" for model-not-found and unreachable-backend errors,
// "transport" otherwise.
func (m *Metrics) RecordProviderError(ctx context.Context, task, kind string) {
	m.ProviderErrors.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("task", task),
			attribute.String("kind", kind),
		),
	)
}
