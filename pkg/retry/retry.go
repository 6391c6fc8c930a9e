// Package retry wraps single external calls with bounded retry and
// exponential backoff. It is a plain higher-order function, not middleware:
// each invocation covers exactly one operation against one collaborator.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

type Config struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig retries up to 3 attempts with waits of 1s, 2s, 4s... capped
// at 8s.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		InitialWait: 1 * time.Second,
		MaxWait:     8 * time.Second,
		Multiplier:  2.0,
	}
}

// ExhaustedError reports that every attempt failed. Op names the external
// operation (e.g. "search", "generate", "grade") so the caller can translate
// it into a user-facing failure.
type ExhaustedError struct {
	Op       string
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s failed after %d attempts: %v", e.Op, e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as non-retryable. Do unwraps the marker before
// returning, so callers never see it.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do runs fn up to cfg.MaxAttempts times. Errors marked Permanent and context
// errors abort immediately; anything else counts as transient. After the last
// failed attempt the last error is surfaced inside an ExhaustedError tagged
// with op.
func Do[T any](ctx context.Context, cfg Config, op string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		out, err := fn(ctx)
		if err == nil {
			return out, nil
		}
		lastErr = err

		var perm *permanentError
		if errors.As(err, &perm) {
			return zero, perm.err
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return zero, err
		}

		if attempt == cfg.MaxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(wait(cfg, attempt)):
		}
	}

	return zero, &ExhaustedError{Op: op, Attempts: cfg.MaxAttempts, Err: lastErr}
}

func wait(cfg Config, attempt int) time.Duration {
	d := float64(cfg.InitialWait) * math.Pow(cfg.Multiplier, float64(attempt))
	if max := float64(cfg.MaxWait); d > max {
		d = max
	}
	return time.Duration(d)
}
