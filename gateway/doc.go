// Package gateway is the narrow surface provider adapters call.
//
// A Gateway composes the tiered cache, sliding-window rate limiter,
// per-provider circuit breakers, retry policy, and fallback chains into the
// single protected operation Fetch: cache lookup, admission control, the
// breaker-and-retry-wrapped upstream call, write-back on success, and the
// fallback chain on exhausted failure.
package gateway
