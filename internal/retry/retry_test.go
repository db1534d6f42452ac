package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

type rateLimitErr struct{}

func (rateLimitErr) Error() string    { return "too many requests" }
func (rateLimitErr) RateLimited() bool { return true }

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		return nil
	}, 3, time.Millisecond)

	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDo_RetriesTransientErrors(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("API error (status 503): unavailable")
		}
		return nil
	}, 5, time.Millisecond)

	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDo_StopsOnNonRetryable(t *testing.T) {
	calls := 0
	wantErr := errors.New("API error (status 404): not found")
	err := Do(context.Background(), func() error {
		calls++
		return wantErr
	}, 5, time.Millisecond)

	if !errors.Is(err, wantErr) {
		t.Fatalf("Do() error = %v, want %v", err, wantErr)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry on 404)", calls)
	}
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		return errors.New("connection refused")
	}, 3, time.Millisecond)

	if err == nil {
		t.Fatal("Do() should return last error")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDo_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, func() error {
		return errors.New("i/o timeout")
	}, 10, time.Hour)

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do() error = %v, want context.Canceled", err)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("status 500"), true},
		{errors.New("status 503"), true},
		{errors.New("connection reset by peer"), true},
		{errors.New("no such host"), true},
		{errors.New("status 401"), false},
		{errors.New("status 404"), false},
	}

	for _, tt := range tests {
		if got := IsRetryable(tt.err); got != tt.want {
			t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestIsRateLimited(t *testing.T) {
	if !IsRateLimited(rateLimitErr{}) {
		t.Error("typed rate-limit error not detected")
	}
	if !IsRateLimited(errors.New("API error (status 429): slow down")) {
		t.Error("429 string not detected")
	}
	if IsRateLimited(errors.New("status 500")) {
		t.Error("false positive")
	}
}
