// Package retry provides a bounded exponential-backoff policy applied
// uniformly to the remote call sites instead of ad hoc loops.
package retry

import (
	"context"
	"time"
)

// Policy describes a bounded retry schedule
type Policy struct {
	// MaxAttempts is the total number of tries, first attempt included
	MaxAttempts int

	// InitialDelay is the wait before the second attempt
	InitialDelay time.Duration

	// Multiplier grows the delay after each failed attempt
	Multiplier float64

	// MaxDelay caps the delay between attempts (0 = uncapped)
	MaxDelay time.Duration
}

// Default returns the policy used when the configuration does not
// provide one: three attempts, 1s then 2s between them.
func Default() Policy {
	return Policy{
		MaxAttempts:  3,
		InitialDelay: time.Second,
		Multiplier:   2.0,
	}
}

// None returns a policy that never retries
func None() Policy {
	return Policy{MaxAttempts: 1}
}

// Delay returns how long to wait after the given failed attempt
// (1-based). Pure function of the policy, so schedules are testable
// without sleeping.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	d := float64(p.InitialDelay)
	for i := 1; i < attempt; i++ {
		d *= p.Multiplier
	}

	delay := time.Duration(d)
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	return delay
}

// Do runs fn up to MaxAttempts times, sleeping per the schedule between
// attempts. Only errors for which retryable returns true are retried;
// any other error, and ctx cancellation, stop the loop immediately.
// Returns the last error alongside the number of attempts made.
func (p Policy) Do(ctx context.Context, retryable func(error) bool, fn func(ctx context.Context) error) (int, error) {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return attempt, nil
		}
		if retryable == nil || !retryable(lastErr) {
			return attempt, lastErr
		}
		if attempt == attempts {
			break
		}

		select {
		case <-time.After(p.Delay(attempt)):
		case <-ctx.Done():
			return attempt, lastErr
		}
	}
	return attempts, lastErr
}
