package db

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"time"
)

const (
	retryBase = 500 * time.Millisecond
	retryCap  = 10 * time.Second
)

// Backoff returns the wait before retry number attempt (0-based):
// 500ms, 1s, 2s ... capped at 10s, plus up to 250ms of jitter.
func Backoff(attempt int) time.Duration {
	delay := time.Duration(float64(retryBase) * math.Pow(2, float64(attempt)))

	if delay > retryCap || delay <= 0 {
		delay = retryCap
	}

	// small jitter to avoid thundering herd when replicas start together
	delay += time.Duration(rand.Intn(250)) * time.Millisecond
	return delay
}

// Retry runs op up to attempts times, sleeping Backoff between failures.
// It gives up early when ctx is done and returns the last error.
func Retry(ctx context.Context, name string, attempts int, op func(ctx context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		if err = op(ctx); err == nil {
			return nil
		}

		if i == attempts-1 {
			break
		}

		wait := Backoff(i)
		slog.Default().WarnContext(ctx, "connect failed, retrying",
			"target", name,
			"attempt", i+1,
			"wait_ms", wait.Milliseconds(),
			"err", err,
		)

		select {
		case <-ctx.Done():
			return err
		case <-time.After(wait):
		}
	}
	return err
}
