package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSlidingLimiter_AdmitsUpToLimit(t *testing.T) {
	l := NewSlidingLimiter(SlidingLimiterConfig{})

	got := []bool{
		l.AllowN("provider", 2),
		l.AllowN("provider", 2),
		l.AllowN("provider", 2),
	}
	want := []bool{true, true, false}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("AllowN() call %d = %v, want %v", i+1, got[i], want[i])
		}
	}
}

func TestSlidingLimiter_WindowSlides(t *testing.T) {
	clock := newFakeClock()
	l := NewSlidingLimiter(SlidingLimiterConfig{
		Window: 60 * time.Second,
		Now:    clock.Now,
	})

	l.AllowN("provider", 2)
	l.AllowN("provider", 2)
	if l.AllowN("provider", 2) {
		t.Fatal("AllowN() over budget = true, want false")
	}

	// Once the early timestamps age past the window, admission resumes.
	clock.Advance(61 * time.Second)
	if !l.AllowN("provider", 2) {
		t.Error("AllowN() after window slid = false, want true")
	}
}

func TestSlidingLimiter_RejectionsExtendSaturation(t *testing.T) {
	clock := newFakeClock()
	l := NewSlidingLimiter(SlidingLimiterConfig{
		Window: 60 * time.Second,
		Now:    clock.Now,
	})

	l.AllowN("provider", 1)
	clock.Advance(59 * time.Second)
	// Rejected, but the attempt timestamp is still recorded.
	if l.AllowN("provider", 1) {
		t.Fatal("AllowN() = true, want false")
	}

	// Two seconds later the admitted timestamp has aged out, but the
	// rejected attempt keeps the window saturated.
	clock.Advance(2 * time.Second)
	if l.AllowN("provider", 1) {
		t.Error("AllowN() = true, want false (rejected attempt counts)")
	}
}

func TestSlidingLimiter_IdentifiersAreIndependent(t *testing.T) {
	l := NewSlidingLimiter(SlidingLimiterConfig{})

	l.AllowN("census", 1)
	if l.AllowN("census", 1) {
		t.Fatal("AllowN(census) = true, want false")
	}
	if !l.AllowN("weather", 1) {
		t.Error("AllowN(weather) = false, want true")
	}

	if got := l.ActiveIdentifiers(); got != 2 {
		t.Errorf("ActiveIdentifiers() = %d, want 2", got)
	}
}

func TestSlidingLimiter_CountStaysExactBetweenPrunes(t *testing.T) {
	clock := newFakeClock()
	l := NewSlidingLimiter(SlidingLimiterConfig{
		Window:        60 * time.Second,
		PruneInterval: time.Hour,
		Now:           clock.Now,
	})

	l.AllowN("provider", 2)
	l.AllowN("provider", 2)

	// The timestamps age out before the next prune runs; counting must
	// still be exact.
	clock.Advance(61 * time.Second)
	if !l.AllowN("provider", 2) {
		t.Error("AllowN() = false, want true (stale timestamps excluded before prune)")
	}
}

func TestSlidingLimiter_ZeroLimitUsesDefault(t *testing.T) {
	l := NewSlidingLimiter(SlidingLimiterConfig{DefaultLimit: 1})

	if !l.AllowN("provider", 0) {
		t.Fatal("AllowN(0) first call = false, want true")
	}
	if l.AllowN("provider", 0) {
		t.Error("AllowN(0) second call = true, want false (default limit 1)")
	}
}

func TestSlidingLimiter_Execute(t *testing.T) {
	l := NewSlidingLimiter(SlidingLimiterConfig{DefaultLimit: 1})
	ctx := context.Background()

	invoked := 0
	op := func(ctx context.Context) error {
		invoked++
		return nil
	}

	if err := l.Execute(ctx, "provider", op); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	err := l.Execute(ctx, "provider", op)
	if !errors.Is(err, ErrRateLimitExceeded) {
		t.Errorf("Execute() over budget error = %v, want ErrRateLimitExceeded", err)
	}
	if invoked != 1 {
		t.Errorf("operation invoked %d times, want 1", invoked)
	}
}
