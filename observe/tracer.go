package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// ProviderMeta identifies the upstream provider a protected call targets.
type ProviderMeta struct {
	Name      string // Provider name (required), e.g. "census"
	Operation string // Logical operation within the provider (optional)
	CacheKey  string // Cache key for the request (optional)
}

// SpanName returns the deterministic span name for this provider call.
// Format: fetch.<name>.<operation> or fetch.<name>
func (m ProviderMeta) SpanName() string {
	if m.Operation != "" {
		return "fetch." + m.Name + "." + m.Operation
	}
	return "fetch." + m.Name
}

// Tracer wraps OpenTelemetry tracing with provider-specific span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for a provider fetch.
	StartSpan(ctx context.Context, meta ProviderMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

// tracerImpl is the concrete implementation of Tracer.
type tracerImpl struct {
	tracer trace.Tracer
}

// newTracer creates a new Tracer wrapping the given OpenTelemetry tracer.
func newTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartSpan starts a new span with provider metadata as attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, meta ProviderMeta) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("provider.name", meta.Name),
		attribute.Bool("provider.error", false), // Updated in EndSpan if error
	}
	if meta.Operation != "" {
		attrs = append(attrs, attribute.String("provider.operation", meta.Operation))
	}
	if meta.CacheKey != "" {
		attrs = append(attrs, attribute.String("provider.cache_key", meta.CacheKey))
	}

	ctx, span := t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	return ctx, span
}

// EndSpan ends the span and records the error status if present.
func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("provider.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// nopTracer is a tracer that does nothing.
type nopTracer struct {
	noop trace.Tracer
}

// NopTracer returns a Tracer that records nothing.
func NopTracer() Tracer {
	return &nopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *nopTracer) StartSpan(ctx context.Context, meta ProviderMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *nopTracer) EndSpan(span trace.Span, err error) {
	span.End()
}
