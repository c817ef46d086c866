package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestExecutor_ComposesAllPatterns(t *testing.T) {
	limiter := NewSlidingLimiter(SlidingLimiterConfig{DefaultLimit: 10})
	breaker := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 5})
	retry := NewRetry(RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond})

	e := NewExecutor(
		WithLimiter(limiter),
		WithBreaker(breaker),
		WithRetry(retry),
	)
	ctx := context.Background()

	calls := 0
	err := e.Execute(ctx, "census", func(ctx context.Context) error {
		calls++
		if calls < 2 {
			return errUpstream
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestExecutor_RateLimitShortCircuits(t *testing.T) {
	limiter := NewSlidingLimiter(SlidingLimiterConfig{})
	e := NewExecutor(WithLimiter(limiter), WithLimit(1))
	ctx := context.Background()

	calls := 0
	op := func(ctx context.Context) error {
		calls++
		return nil
	}

	if err := e.Execute(ctx, "census", op); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	err := e.Execute(ctx, "census", op)
	if !errors.Is(err, ErrRateLimitExceeded) {
		t.Errorf("Execute() error = %v, want ErrRateLimitExceeded", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (rejected request never reaches the op)", calls)
	}
}

func TestExecutor_ExhaustedRetriesCountOnceAgainstBreaker(t *testing.T) {
	breaker := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 2})
	retry := NewRetry(RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond})

	e := NewExecutor(WithBreaker(breaker), WithRetry(retry))
	ctx := context.Background()

	// Three attempts fail inside one breaker-visible call.
	e.Execute(ctx, "census", failing)
	if breaker.Failures() != 1 {
		t.Errorf("Failures() = %d, want 1 (retry loop is one breaker call)", breaker.Failures())
	}
	if breaker.State() != StateClosed {
		t.Fatalf("State() = %v, want closed", breaker.State())
	}

	e.Execute(ctx, "census", failing)
	if breaker.State() != StateOpen {
		t.Errorf("State() after second exhausted sequence = %v, want open", breaker.State())
	}
}

func TestExecutor_OpenBreakerSkipsRetry(t *testing.T) {
	breaker := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1})
	retry := NewRetry(RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond})

	e := NewExecutor(WithBreaker(breaker), WithRetry(retry))
	ctx := context.Background()

	e.Execute(ctx, "census", failing)

	calls := 0
	err := e.Execute(ctx, "census", func(ctx context.Context) error {
		calls++
		return nil
	})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Execute() error = %v, want ErrCircuitOpen", err)
	}
	if calls != 0 {
		t.Errorf("calls = %d, want 0", calls)
	}
}

func TestExecutor_NoPatternsPassesThrough(t *testing.T) {
	e := NewExecutor()
	ctx := context.Background()

	err := e.Execute(ctx, "census", failing)
	if !errors.Is(err, errUpstream) {
		t.Errorf("Execute() error = %v, want %v", err, errUpstream)
	}
}
