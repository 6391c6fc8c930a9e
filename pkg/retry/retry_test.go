package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastConfig() Config {
	return Config{
		MaxAttempts: 3,
		InitialWait: 1 * time.Millisecond,
		MaxWait:     8 * time.Millisecond,
		Multiplier:  2.0,
	}
}

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	out, err := Do(context.Background(), fastConfig(), "search", func(ctx context.Context) (string, error) {
		calls++
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "ok" {
		t.Fatalf("unexpected result: %q", out)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestDo_FailTwiceThenSucceed(t *testing.T) {
	calls := 0
	out, err := Do(context.Background(), fastConfig(), "generate", func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("transient")
		}
		return "third time lucky", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "third time lucky" {
		t.Fatalf("unexpected result: %q", out)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestDo_AllAttemptsFail(t *testing.T) {
	calls := 0
	underlying := errors.New("provider down")
	_, err := Do(context.Background(), fastConfig(), "grade", func(ctx context.Context) (string, error) {
		calls++
		return "", underlying
	})
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected ExhaustedError, got %T: %v", err, err)
	}
	if exhausted.Op != "grade" {
		t.Fatalf("expected op %q, got %q", "grade", exhausted.Op)
	}
	if !errors.Is(err, underlying) {
		t.Fatalf("last error must be preserved in the chain")
	}
}

func TestDo_PermanentErrorStopsImmediately(t *testing.T) {
	calls := 0
	cause := errors.New("missing precondition")
	_, err := Do(context.Background(), fastConfig(), "generate", func(ctx context.Context) (string, error) {
		calls++
		return "", Permanent(cause)
	})
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected the unwrapped cause, got %v", err)
	}
	var exhausted *ExhaustedError
	if errors.As(err, &exhausted) {
		t.Fatalf("permanent errors must not be reported as exhaustion")
	}
}

func TestDo_ContextCancellationAborts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := Do(ctx, Config{MaxAttempts: 3, InitialWait: time.Hour, MaxWait: time.Hour, Multiplier: 2.0}, "search",
		func(ctx context.Context) (string, error) {
			calls++
			cancel()
			return "", errors.New("transient")
		})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call before cancellation, got %d", calls)
	}
}

func TestWait_ExponentialCapped(t *testing.T) {
	cfg := Config{MaxAttempts: 5, InitialWait: time.Second, MaxWait: 8 * time.Second, Multiplier: 2.0}
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 8 * time.Second}, // capped
	}
	for _, tc := range cases {
		if got := wait(cfg, tc.attempt); got != tc.want {
			t.Errorf("wait(attempt=%d) = %v, want %v", tc.attempt, got, tc.want)
		}
	}
}
