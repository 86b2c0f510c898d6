package faults

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

// Strategy selects how the retry delay grows between attempts.
type Strategy string

const (
	StrategyExponential Strategy = "exponential"
	StrategyLinear      Strategy = "linear"
	StrategyFixed       Strategy = "fixed"
)

// RetryConfig holds retry parameters.
//
// Invalid values are normalized:
//   - MaxRetries < 0 becomes 0 (single attempt)
//   - BaseDelay <= 0 becomes 1ms
//   - MaxDelay <= 0 becomes BaseDelay
//   - an unrecognized Strategy becomes exponential
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Strategy   Strategy

	// Jitter randomizes each delay into [delay/2, delay] so repeated
	// attempts do not line up.
	Jitter bool
}

// DefaultRetryConfig is the policy the CLI wraps around recording starts.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 2,
		BaseDelay:  250 * time.Millisecond,
		MaxDelay:   5 * time.Second,
		Strategy:   StrategyExponential,
		Jitter:     true,
	}
}

// normalize ensures all RetryConfig fields have valid values.
func (c *RetryConfig) normalize() {
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = time.Millisecond
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = c.BaseDelay
	}
	switch c.Strategy {
	case StrategyExponential, StrategyLinear, StrategyFixed:
	default:
		c.Strategy = StrategyExponential
	}
}

// delayFor computes the wait before retry attempt n (1-based), capped at
// MaxDelay. The config must already be normalized.
func (c RetryConfig) delayFor(attempt int) time.Duration {
	var d time.Duration
	switch c.Strategy {
	case StrategyLinear:
		d = c.BaseDelay * time.Duration(attempt)
	case StrategyFixed:
		d = c.BaseDelay
	default:
		if attempt >= 32 {
			d = c.MaxDelay
		} else {
			d = c.BaseDelay << (attempt - 1)
		}
	}
	if d <= 0 || d > c.MaxDelay {
		d = c.MaxDelay
	}
	if c.Jitter {
		d = d/2 + time.Duration(rand.Int64N(int64(d/2)+1))
	}
	return d
}

// RetryWithBackoff executes fn, retrying with the configured backoff as
// long as shouldRetry approves the error. Returns the result of the last
// attempt; exhausting the budget wraps the last error.
//
// Invalid RetryConfig values are normalized (see RetryConfig).
func RetryWithBackoff[T any](
	ctx context.Context,
	cfg RetryConfig,
	fn func() (T, error),
	shouldRetry func(error) bool,
) (T, error) {
	cfg.normalize()

	var zero T
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(cfg.delayFor(attempt))
			select {
			case <-ctx.Done():
				if !timer.Stop() {
					<-timer.C
				}
				return zero, ctx.Err()
			case <-timer.C:
			}
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}

		lastErr = err
		if !shouldRetry(lastErr) {
			return zero, lastErr
		}
	}

	return zero, fmt.Errorf("max retries (%d) exceeded: %w", cfg.MaxRetries, lastErr)
}
