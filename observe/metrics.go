package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records gateway-level metrics for provider fetches.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordFetch records one protected upstream fetch with duration and
	// error status.
	RecordFetch(ctx context.Context, meta ProviderMeta, duration time.Duration, err error)

	// RecordCacheLookup records a cache lookup outcome for a provider.
	RecordCacheLookup(ctx context.Context, provider string, hit bool)

	// RecordRejection records an admission rejection. reason is one of
	// "rate_limit" or "circuit_open".
	RecordRejection(ctx context.Context, provider string, reason string)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	meter        metric.Meter
	fetchCount   metric.Int64Counter
	fetchErrors  metric.Int64Counter
	durationHist metric.Float64Histogram
	cacheLookups metric.Int64Counter
	rejections   metric.Int64Counter
}

// newMetrics creates a new Metrics instance with the given meter.
func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	fetchCount, err := meter.Int64Counter(
		"gateway.fetch.total",
		metric.WithDescription("Total number of upstream fetches"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	fetchErrors, err := meter.Int64Counter(
		"gateway.fetch.errors",
		metric.WithDescription("Total number of failed upstream fetches"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"gateway.fetch.duration_ms",
		metric.WithDescription("Upstream fetch duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	cacheLookups, err := meter.Int64Counter(
		"gateway.cache.lookups",
		metric.WithDescription("Cache lookups by outcome"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	rejections, err := meter.Int64Counter(
		"gateway.rejections",
		metric.WithDescription("Requests rejected before reaching the upstream"),
		metric.WithUnit("{rejection}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:        meter,
		fetchCount:   fetchCount,
		fetchErrors:  fetchErrors,
		durationHist: durationHist,
		cacheLookups: cacheLookups,
		rejections:   rejections,
	}, nil
}

// RecordFetch records metrics for one upstream fetch.
func (m *metricsImpl) RecordFetch(ctx context.Context, meta ProviderMeta, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("provider.name", meta.Name),
	}
	if meta.Operation != "" {
		attrs = append(attrs, attribute.String("provider.operation", meta.Operation))
	}
	opt := metric.WithAttributes(attrs...)

	m.fetchCount.Add(ctx, 1, opt)
	if err != nil {
		m.fetchErrors.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

// RecordCacheLookup records a cache lookup outcome.
func (m *metricsImpl) RecordCacheLookup(ctx context.Context, provider string, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.cacheLookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider.name", provider),
		attribute.String("outcome", outcome),
	))
}

// RecordRejection records an admission rejection.
func (m *metricsImpl) RecordRejection(ctx context.Context, provider string, reason string) {
	m.rejections.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider.name", provider),
		attribute.String("reason", reason),
	))
}

// MetricsFromObserver creates a Metrics backed by the observer's meter.
// Instruments are deduplicated by name, so multiple handles on the same
// meter share the underlying streams.
func MetricsFromObserver(obs Observer) (Metrics, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}
	return newMetrics(obs.Meter())
}

// nopMetrics is a metrics implementation that does nothing.
type nopMetrics struct{}

func (m *nopMetrics) RecordFetch(ctx context.Context, meta ProviderMeta, duration time.Duration, err error) {
}
func (m *nopMetrics) RecordCacheLookup(ctx context.Context, provider string, hit bool) {}
func (m *nopMetrics) RecordRejection(ctx context.Context, provider string, reason string) {}

// NopMetrics returns a Metrics implementation that discards everything.
func NopMetrics() Metrics {
	return &nopMetrics{}
}
