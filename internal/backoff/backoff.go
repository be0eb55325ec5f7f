// Package backoff provides retry-delay policies for the readiness gate.
//
// The default policy is a fixed interval: one connection attempt per
// poll interval, which is the behavior the worker fleet has always had.
// Exponential backoff is available for dependencies that penalize
// aggressive reconnects.
package backoff

import (
	"math"
	"math/rand/v2"
	"time"
)

// Policy kinds accepted in configuration.
const (
	KindFixed       = "fixed"
	KindExponential = "exponential"
)

// Policy computes the delay before the next connection attempt.
// attempt is the number of failed attempts so far, starting at 1.
type Policy interface {
	Next(attempt int) time.Duration
}

// Fixed waits the same interval between every attempt.
type Fixed struct {
	Interval time.Duration
}

// Next returns the fixed interval regardless of attempt count.
func (f Fixed) Next(attempt int) time.Duration {
	return f.Interval
}

// Exponential grows the delay by Multiplier per failed attempt, capped at
// MaxDelay, with optional jitter.
type Exponential struct {
	// Initial is the delay after the first failed attempt.
	Initial time.Duration
	// Multiplier is the growth factor per attempt (2.0 if unset).
	Multiplier float64
	// MaxDelay caps the computed delay.
	MaxDelay time.Duration
	// Jitter is the fraction of the delay randomized in both directions,
	// e.g. 0.1 yields delays within ±10%. Zero disables jitter.
	Jitter float64
}

// Next returns Initial * Multiplier^(attempt-1), capped and jittered.
// The delay is computed and capped in float space: at high attempt
// counts the exponential overflows time.Duration, and a wrapped value
// would slip past the cap and collapse the delay to zero.
func (e Exponential) Next(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	multiplier := e.Multiplier
	if multiplier <= 0 {
		multiplier = 2.0
	}

	delay := float64(e.Initial) * math.Pow(multiplier, float64(attempt-1))
	if e.MaxDelay > 0 && delay > float64(e.MaxDelay) {
		delay = float64(e.MaxDelay)
	}

	if e.Jitter > 0 {
		// Random factor in [1-Jitter, 1+Jitter).
		delay *= 1 + e.Jitter*(2*rand.Float64()-1)
	}

	if delay < 0 {
		return 0
	}
	if delay >= float64(math.MaxInt64) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(delay)
}
