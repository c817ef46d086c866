// Package observe provides structured logging, tracing, and metrics for
// provider fetches: a JSON logger with credential redaction, OpenTelemetry
// tracing and metrics behind a single Observer, and a middleware that wraps
// a protected fetch with a span, counters, and a log line.
package observe
