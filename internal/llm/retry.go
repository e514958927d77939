package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Default retry tuning for model calls.
const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 600 * time.Millisecond
)

// transientPatterns are matched case-insensitively against error strings.
// Provider SDK errors embed the HTTP status in the message, so a reported
// 503 is caught by the "503" pattern.
var transientPatterns = []string{
	"overloaded",
	"unavailable",
	"503",
	"max retries exceeded",
}

// IsTransient reports whether a model-call error is worth retrying.
// Everything not matching a known transient pattern is fatal.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// RetryPolicy bounds retries of a single model call. Transient failures are
// retried with linearly increasing backoff (attempt × BaseDelay); fatal
// failures abort immediately.
type RetryPolicy struct {
	MaxAttempts int           // total attempts, including the first
	BaseDelay   time.Duration // backoff between attempt n and n+1 is n × BaseDelay
}

// DefaultRetryPolicy returns the standard policy: 3 attempts, 600ms base delay.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: DefaultMaxAttempts, BaseDelay: DefaultBaseDelay}
}

// Do invokes fn until it succeeds, fails fatally, or attempts are exhausted.
// Exhausting attempts on a transient error escalates it to a fatal error.
func (p RetryPolicy) Do(ctx context.Context, fn func(context.Context) error) error {
	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !IsTransient(lastErr) {
			return lastErr
		}
		if attempt == maxAttempts {
			break
		}

		select {
		case <-time.After(time.Duration(attempt) * p.BaseDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return fmt.Errorf("giving up after %d attempts: %w", maxAttempts, lastErr)
}
