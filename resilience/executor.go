package resilience

import (
	"context"
)

// Executor composes the protection patterns around one logical call.
type Executor struct {
	limiter *SlidingLimiter
	breaker *CircuitBreaker
	retry   *Retry
	limit   int
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// NewExecutor creates a new resilience executor.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithLimiter adds sliding-window admission control to the executor.
func WithLimiter(l *SlidingLimiter) ExecutorOption {
	return func(e *Executor) {
		e.limiter = l
	}
}

// WithLimit overrides the limiter's default per-window budget.
func WithLimit(limit int) ExecutorOption {
	return func(e *Executor) {
		e.limit = limit
	}
}

// WithBreaker adds a circuit breaker to the executor.
func WithBreaker(cb *CircuitBreaker) ExecutorOption {
	return func(e *Executor) {
		e.breaker = cb
	}
}

// WithRetry adds retry logic to the executor.
func WithRetry(r *Retry) ExecutorOption {
	return func(e *Executor) {
		e.retry = r
	}
}

// Execute runs the operation through the configured patterns. identifier
// names the protected resource for rate-limiting purposes.
//
// The execution order is:
//  1. Rate limiter (if configured) - admission control, no call consumed
//  2. Circuit breaker (if configured) - fails fast on a tripped dependency
//  3. Retry (if configured) - bounded re-attempts with backoff
//
// The breaker wraps the whole retry loop, so one exhausted retry sequence
// counts as a single failure against the threshold.
func (e *Executor) Execute(ctx context.Context, identifier string, op func(context.Context) error) error {
	execute := op

	if e.retry != nil {
		inner := execute
		execute = func(ctx context.Context) error {
			return e.retry.Execute(ctx, inner)
		}
	}

	if e.breaker != nil {
		inner := execute
		execute = func(ctx context.Context) error {
			return e.breaker.Execute(ctx, inner)
		}
	}

	if e.limiter != nil {
		inner := execute
		execute = func(ctx context.Context) error {
			if !e.limiter.AllowN(identifier, e.limit) {
				return ErrRateLimitExceeded
			}
			return inner(ctx)
		}
	}

	return execute(ctx)
}
