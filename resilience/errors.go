package resilience

import "errors"

// Sentinel errors for resilience operations. Callers distinguish these from
// the upstream dependency's own errors with errors.Is.
var (
	// ErrCircuitOpen is returned when the circuit breaker rejects a call
	// without invoking the underlying dependency.
	ErrCircuitOpen = errors.New("resilience: circuit breaker is open")

	// ErrRateLimitExceeded is returned when the sliding-window rate limit
	// rejects a request.
	ErrRateLimitExceeded = errors.New("resilience: rate limit exceeded")
)
