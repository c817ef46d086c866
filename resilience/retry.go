package resilience

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// RetryConfig configures the retry behavior.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including initial).
	// Default: 3
	MaxAttempts int

	// BaseDelay is the delay before the first retry.
	// Default: 1 second
	BaseDelay time.Duration

	// MaxDelay caps the computed delay between retries.
	// Default: 60s
	MaxDelay time.Duration

	// ExponentialBase is the backoff multiplier per attempt.
	// Default: 2.0
	ExponentialBase float64

	// Jitter scales each delay by a uniform random factor in [0.5, 1.0)
	// to avoid synchronized retry storms.
	// Default: false (set Jitter: true to enable)
	Jitter bool

	// RetryIf determines if an error should trigger a retry. Non-retryable
	// errors propagate immediately without consuming further attempts.
	// Default: all non-nil errors except context cancellation.
	RetryIf func(err error) bool

	// OnRetry is called before each retry attempt.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Retry implements bounded retries with exponential backoff.
type Retry struct {
	config RetryConfig
}

// NewRetry creates a new retry handler.
func NewRetry(config RetryConfig) *Retry {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.BaseDelay <= 0 {
		config.BaseDelay = time.Second
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 60 * time.Second
	}
	if config.ExponentialBase <= 0 {
		config.ExponentialBase = 2.0
	}
	if config.RetryIf == nil {
		config.RetryIf = func(err error) bool {
			return err != nil &&
				!errors.Is(err, context.Canceled) &&
				!errors.Is(err, context.DeadlineExceeded)
		}
	}

	return &Retry{config: config}
}

// RetryableErrors builds a RetryIf predicate that retries only errors
// matching one of kinds (via errors.Is).
func RetryableErrors(kinds ...error) func(err error) bool {
	return func(err error) bool {
		for _, kind := range kinds {
			if errors.Is(err, kind) {
				return true
			}
		}
		return false
	}
}

// Execute runs the operation with retry logic. When every attempt fails,
// the error from the final attempt is returned unchanged so callers can
// inspect the root cause.
func (r *Retry) Execute(ctx context.Context, op func(context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt < r.config.MaxAttempts; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}

		lastErr = err

		if !r.config.RetryIf(err) {
			return err
		}
		if attempt == r.config.MaxAttempts-1 {
			break
		}

		delay := r.delay(attempt)
		if r.config.OnRetry != nil {
			r.config.OnRetry(attempt+1, err, delay)
		}

		// Wait for the delay or context cancellation.
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return lastErr
}

// delay computes the backoff for the given zero-based attempt index:
// min(base * expBase^attempt, max), optionally jittered into [0.5, 1.0) of
// the computed value.
func (r *Retry) delay(attempt int) time.Duration {
	backoff := float64(r.config.BaseDelay) * math.Pow(r.config.ExponentialBase, float64(attempt))
	if backoff > float64(r.config.MaxDelay) {
		backoff = float64(r.config.MaxDelay)
	}

	if r.config.Jitter {
		// #nosec G404 -- jitter is non-cryptographic timing variance.
		backoff *= 0.5 + rand.Float64()*0.5
	}

	return time.Duration(backoff)
}

// Config returns the retry configuration.
func (r *Retry) Config() RetryConfig {
	return r.config
}
