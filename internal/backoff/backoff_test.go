package backoff_test

import (
	"testing"
	"time"

	"github.com/VladimirNagibin/bolashaq-production-sync/internal/backoff"
)

func TestFixed_ConstantDelay(t *testing.T) {
	t.Parallel()

	policy := backoff.Fixed{Interval: time.Second}

	for _, attempt := range []int{1, 2, 5, 100} {
		if got := policy.Next(attempt); got != time.Second {
			t.Errorf("Next(%d) = %v, want %v", attempt, got, time.Second)
		}
	}
}

func TestExponential_Growth(t *testing.T) {
	t.Parallel()

	policy := backoff.Exponential{
		Initial:    100 * time.Millisecond,
		Multiplier: 2.0,
		MaxDelay:   30 * time.Second,
	}

	testCases := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{4, 800 * time.Millisecond},
	}

	for _, tc := range testCases {
		if got := policy.Next(tc.attempt); got != tc.want {
			t.Errorf("Next(%d) = %v, want %v", tc.attempt, got, tc.want)
		}
	}
}

func TestExponential_Cap(t *testing.T) {
	t.Parallel()

	policy := backoff.Exponential{
		Initial:    time.Second,
		Multiplier: 2.0,
		MaxDelay:   5 * time.Second,
	}

	if got := policy.Next(10); got != 5*time.Second {
		t.Errorf("Next(10) = %v, want cap %v", got, 5*time.Second)
	}
}

func TestExponential_CapHoldsAtHighAttemptCounts(t *testing.T) {
	t.Parallel()

	// An unbounded gate can accumulate arbitrarily many failed
	// attempts; the computed delay must stay at the cap instead of
	// overflowing and collapsing to zero.
	policy := backoff.Exponential{
		Initial:    time.Second,
		Multiplier: 2.0,
		MaxDelay:   30 * time.Second,
	}

	for _, attempt := range []int{30, 35, 40, 100, 1000} {
		if got := policy.Next(attempt); got != 30*time.Second {
			t.Errorf("Next(%d) = %v, want capped %v", attempt, got, 30*time.Second)
		}
	}
}

func TestExponential_NoCapStaysPositive(t *testing.T) {
	t.Parallel()

	policy := backoff.Exponential{Initial: time.Second, Multiplier: 2.0}

	for _, attempt := range []int{64, 200, 1000} {
		if got := policy.Next(attempt); got <= 0 {
			t.Errorf("Next(%d) = %v, want a positive delay", attempt, got)
		}
	}
}

func TestExponential_JitterBounds(t *testing.T) {
	t.Parallel()

	policy := backoff.Exponential{
		Initial:    time.Second,
		Multiplier: 2.0,
		MaxDelay:   30 * time.Second,
		Jitter:     0.1,
	}

	lo := time.Duration(float64(2*time.Second) * 0.9)
	hi := time.Duration(float64(2*time.Second) * 1.1)

	for range 100 {
		got := policy.Next(2)
		if got < lo || got > hi {
			t.Fatalf("Next(2) = %v, want within [%v, %v]", got, lo, hi)
		}
	}
}

func TestExponential_DefaultsAndClamping(t *testing.T) {
	t.Parallel()

	// Zero multiplier falls back to doubling.
	policy := backoff.Exponential{Initial: time.Second}
	if got := policy.Next(2); got != 2*time.Second {
		t.Errorf("Next(2) with zero multiplier = %v, want %v", got, 2*time.Second)
	}

	// Attempts below 1 are treated as the first attempt.
	if got := policy.Next(0); got != time.Second {
		t.Errorf("Next(0) = %v, want %v", got, time.Second)
	}
}
