// Package llm provides the language-model boundary for the dialog engine.
// This file contains retry logic with exponential backoff and jitter.
package llm

import (
	"context"
	"crypto/rand"
	"math"
	"math/big"
	"time"
)

// CalculateBackoff calculates the delay before the next retry attempt.
// Uses AWS-recommended Full Jitter algorithm:
//
//	delay = random(0, min(maxDelay, initialDelay * 2^attempt))
//
// Full Jitter provides:
//   - Lower contention than Equal Jitter or Exponential Backoff
//   - Faster completion time under high load
//   - Better distribution of retry attempts
//
// Reference: https://aws.amazon.com/blogs/architecture/exponential-backoff-and-jitter/
func CalculateBackoff(attempt int, initial, max time.Duration) time.Duration {
	if attempt <= 0 {
		return 0 // No delay on first attempt
	}

	// Calculate exponential delay: initial * 2^(attempt-1)
	exp := math.Pow(2, float64(attempt-1))
	delay := time.Duration(float64(initial) * exp)

	// Cap at maximum
	if delay > max {
		delay = max
	}

	// Apply Full Jitter: random(0, delay)
	if delay <= 0 {
		return 0
	}

	// Use crypto/rand for uniform distribution without bias
	maxNs := big.NewInt(int64(delay))
	jitterBig, err := rand.Int(rand.Reader, maxNs)
	if err != nil {
		// Fallback to half delay on crypto failure (extremely rare)
		return delay / 2
	}

	return time.Duration(jitterBig.Int64())
}

// Sleep waits for the specified duration, respecting context cancellation.
// Returns ctx.Err() if context is cancelled during sleep.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WithRetry executes a function with retry logic using exponential backoff.
// The function is retried on transient errors up to cfg.MaxAttempts times.
// The optional onRetry callback is invoked before each retry (for
// metrics/logging).
//
// Returns the last error if all attempts fail, or nil on success.
func WithRetry(ctx context.Context, cfg RetryConfig, onRetry func(attempt int, err error), fn func() error) error {
	var lastErr error

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		// Check context before attempting
		if ctx.Err() != nil {
			return ctx.Err()
		}

		// Execute the function
		err := fn()
		if err == nil {
			return nil // Success
		}
		lastErr = err

		// Only transient errors are worth another attempt with the
		// same provider; permanent and quota errors go straight back
		// to the caller for a fallback decision.
		if !IsRetryable(err) {
			return err
		}

		// Don't sleep after the last attempt
		if attempt == cfg.MaxAttempts-1 {
			break
		}

		// Record retry attempt
		if onRetry != nil {
			onRetry(attempt+1, err)
		}

		// Calculate backoff delay
		delay := CalculateBackoff(attempt+1, cfg.InitialDelay, cfg.MaxDelay)

		// Sleep with context cancellation support
		if err := Sleep(ctx, delay); err != nil {
			return err // Context cancelled
		}
	}

	return lastErr
}
