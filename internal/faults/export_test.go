package faults

// Export internal functions for testing.
// This file is only compiled during tests (suffix _test.go).

import "time"

// DelayFor exports RetryConfig.delayFor for testing.
func DelayFor(c RetryConfig, attempt int) time.Duration {
	c.normalize()
	return c.delayFor(attempt)
}
