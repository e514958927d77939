package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func testPolicy() RetryPolicy {
	// Tiny backoff so tests run fast; attempt counting is unaffected.
	return RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"overloaded", errors.New("anthropic chat: 529 overloaded_error"), true},
		{"unavailable", errors.New("rpc error: code = UNAVAILABLE"), true},
		{"status 503", errors.New("openai: HTTP 503"), true},
		{"max retries", errors.New("max retries exceeded"), true},
		{"auth failure", errors.New("openai: HTTP 401: invalid_api_key"), false},
		{"bad request", errors.New("anthropic chat: 400 invalid_request_error"), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsTransient(tc.err); got != tc.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestRetryTransientThenSuccess(t *testing.T) {
	attempts := 0
	err := testPolicy().Do(context.Background(), func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("overloaded")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestRetryTransientExhausted(t *testing.T) {
	attempts := 0
	err := testPolicy().Do(context.Background(), func(context.Context) error {
		attempts++
		return errors.New("service unavailable")
	})
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want exactly 3", attempts)
	}
}

func TestRetryFatalNoRetry(t *testing.T) {
	attempts := 0
	fatal := errors.New("invalid api key")
	err := testPolicy().Do(context.Background(), func(context.Context) error {
		attempts++
		return fatal
	})
	if !errors.Is(err, fatal) {
		t.Fatalf("error = %v, want the fatal error unchanged", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (fatal errors must not be retried)", attempts)
	}
}

func TestRetryContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	policy := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Hour}
	errCh := make(chan error, 1)
	go func() {
		errCh <- policy.Do(ctx, func(context.Context) error {
			attempts++
			return errors.New("overloaded")
		})
	}()
	cancel()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Do did not return after context cancellation")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestRetryZeroAttemptsDefaults(t *testing.T) {
	attempts := 0
	policy := RetryPolicy{BaseDelay: time.Millisecond}
	_ = policy.Do(context.Background(), func(context.Context) error {
		attempts++
		return fmt.Errorf("overloaded (%d)", attempts)
	})
	if attempts != DefaultMaxAttempts {
		t.Errorf("attempts = %d, want default %d", attempts, DefaultMaxAttempts)
	}
}
