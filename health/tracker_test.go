package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

func healthyProbe(ctx context.Context) error   { return nil }
func unhealthyProbe(ctx context.Context) error { return errors.New("connection refused") }

func TestTracker_Check(t *testing.T) {
	tracker := NewTracker(TrackerConfig{})
	ctx := context.Background()

	result := tracker.Check(ctx, "redis", healthyProbe)
	if result.Status != StatusHealthy {
		t.Errorf("Status = %v, want healthy", result.Status)
	}
	if result.Error != "" {
		t.Errorf("Error = %q, want empty", result.Error)
	}
	if result.ResponseTime < 0 {
		t.Errorf("ResponseTime = %f, want >= 0", result.ResponseTime)
	}
	if result.LastCheck.IsZero() {
		t.Error("LastCheck is zero")
	}
}

func TestTracker_CheckFailureFoldsError(t *testing.T) {
	tracker := NewTracker(TrackerConfig{})
	ctx := context.Background()

	result := tracker.Check(ctx, "redis", unhealthyProbe)
	if result.Status != StatusUnhealthy {
		t.Errorf("Status = %v, want unhealthy", result.Status)
	}
	if result.Error != "connection refused" {
		t.Errorf("Error = %q, want %q", result.Error, "connection refused")
	}
}

func TestTracker_LatestResultWins(t *testing.T) {
	tracker := NewTracker(TrackerConfig{})
	ctx := context.Background()

	tracker.Check(ctx, "redis", unhealthyProbe)
	tracker.Check(ctx, "redis", healthyProbe)

	results := tracker.Results()
	if len(results) != 1 {
		t.Fatalf("Results() has %d entries, want 1", len(results))
	}
	if results["redis"].Status != StatusHealthy {
		t.Errorf("Status = %v, want healthy (latest check)", results["redis"].Status)
	}
}

func TestTracker_CheckAll(t *testing.T) {
	tracker := NewTracker(TrackerConfig{})
	ctx := context.Background()

	tracker.Register("redis", healthyProbe)
	tracker.Register("upstream", unhealthyProbe)

	results := tracker.CheckAll(ctx)
	if len(results) != 2 {
		t.Fatalf("CheckAll() returned %d results, want 2", len(results))
	}
	if results["redis"].Status != StatusHealthy {
		t.Errorf("redis status = %v, want healthy", results["redis"].Status)
	}
	if results["upstream"].Status != StatusUnhealthy {
		t.Errorf("upstream status = %v, want unhealthy", results["upstream"].Status)
	}
}

func TestTracker_CheckAllEmpty(t *testing.T) {
	tracker := NewTracker(TrackerConfig{})

	results := tracker.CheckAll(context.Background())
	if len(results) != 0 {
		t.Errorf("CheckAll() with no probes returned %d results, want 0", len(results))
	}
}

func TestTracker_CheckAllHonorsTimeout(t *testing.T) {
	tracker := NewTracker(TrackerConfig{Timeout: 20 * time.Millisecond})
	ctx := context.Background()

	tracker.Register("slow", func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
			return nil
		}
	})

	start := time.Now()
	results := tracker.CheckAll(ctx)
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("CheckAll() took %v, want bounded by timeout", elapsed)
	}
	if results["slow"].Status != StatusUnhealthy {
		t.Errorf("slow status = %v, want unhealthy on timeout", results["slow"].Status)
	}
}

func TestTracker_OverallThresholds(t *testing.T) {
	cases := []struct {
		name      string
		healthy   int
		unhealthy int
		want      Status
	}{
		{"all healthy", 5, 0, StatusHealthy},
		{"exactly 80 percent", 4, 1, StatusHealthy},
		{"exactly 50 percent", 2, 2, StatusDegraded},
		{"below 50 percent", 1, 3, StatusUnhealthy},
		{"all unhealthy", 0, 3, StatusUnhealthy},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tracker := NewTracker(TrackerConfig{})
			ctx := context.Background()

			for i := 0; i < tc.healthy; i++ {
				tracker.Check(ctx, "healthy"+string(rune('a'+i)), healthyProbe)
			}
			for i := 0; i < tc.unhealthy; i++ {
				tracker.Check(ctx, "unhealthy"+string(rune('a'+i)), unhealthyProbe)
			}

			overall := tracker.Overall()
			if overall.Status != tc.want {
				t.Errorf("Overall().Status = %v, want %v", overall.Status, tc.want)
			}
			if overall.HealthyServices != tc.healthy {
				t.Errorf("HealthyServices = %d, want %d", overall.HealthyServices, tc.healthy)
			}
			if overall.TotalServices != tc.healthy+tc.unhealthy {
				t.Errorf("TotalServices = %d, want %d", overall.TotalServices, tc.healthy+tc.unhealthy)
			}
		})
	}
}

func TestTracker_OverallEmptyIsUnknown(t *testing.T) {
	tracker := NewTracker(TrackerConfig{})

	overall := tracker.Overall()
	if overall.Status != StatusUnknown {
		t.Errorf("Overall().Status = %v, want unknown", overall.Status)
	}
	if overall.HealthPercentage != 0 {
		t.Errorf("HealthPercentage = %f, want 0", overall.HealthPercentage)
	}
}
