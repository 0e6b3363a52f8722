package db

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBackoff(t *testing.T) {
	tests := []struct {
		attempt int
		min     time.Duration
	}{
		{0, 500 * time.Millisecond},
		{1, time.Second},
		{2, 2 * time.Second},
		{10, retryCap},
		{100, retryCap},
	}

	for _, tt := range tests {
		got := Backoff(tt.attempt)
		if got < tt.min || got >= tt.min+250*time.Millisecond {
			t.Fatalf("Backoff(%d) = %s, want [%s, %s)", tt.attempt, got, tt.min, tt.min+250*time.Millisecond)
		}
	}
}

func TestRetry_StopsOnSuccess(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), "test", 3, func(context.Context) error {
		calls++
		return nil
	})
	if err != nil || calls != 1 {
		t.Fatalf("got err=%v calls=%d, want nil 1", err, calls)
	}
}

func TestRetry_GivesUpWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	want := errors.New("connection refused")
	calls := 0
	err := Retry(ctx, "test", 5, func(context.Context) error {
		calls++
		return want
	})

	if !errors.Is(err, want) {
		t.Fatalf("expected last error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single attempt once ctx is done, got %d", calls)
	}
}
