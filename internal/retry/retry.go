// Package retry provides exponential-backoff retry for transient HTTP
// and network failures.
package retry

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"
)

// Do executes fn with exponential backoff until it succeeds, a
// non-retryable error occurs, maxAttempts is reached, or ctx is done.
// The backoff doubles after each failed attempt starting from
// initialBackoff; rate-limited errors wait twice as long.
func Do(ctx context.Context, fn func() error, maxAttempts int, initialBackoff time.Duration) error {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	var lastErr error
	backoff := initialBackoff

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if !IsRetryable(lastErr) && !IsRateLimited(lastErr) {
			return lastErr
		}

		if attempt == maxAttempts {
			break
		}

		sleep := backoff
		if IsRateLimited(lastErr) {
			sleep = backoff * 2
		}

		select {
		case <-time.After(sleep):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff *= 2
	}

	return lastErr
}

// RateLimitedError marks an error as an HTTP 429 from the provider.
type RateLimitedError interface {
	RateLimited() bool
}

// IsRetryable returns true for transient errors that should be retried:
// network timeouts, connection failures and 5xx server responses.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	errStr := err.Error()
	for _, marker := range []string{
		"status 500", "status 502", "status 503", "status 504",
		"connection reset", "connection refused", "no such host",
		"i/o timeout", "temporary failure",
	} {
		if strings.Contains(errStr, marker) {
			return true
		}
	}

	return false
}

// IsRateLimited returns true if the error indicates rate limiting (HTTP 429).
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}

	var rl RateLimitedError
	if errors.As(err, &rl) {
		return rl.RateLimited()
	}

	return strings.Contains(err.Error(), "status 429")
}
