package retry

import (
	"context"
	"errors"
	"testing"

	"tourbook/pkg/logger"
)

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), logger.Discard(), "noop", 3, func(ctx context.Context) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestDo_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := Do(context.Background(), logger.Discard(), "flaky", 3, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestDo_ExhaustsAttempts_ReturnsLastErrorUnwrapped(t *testing.T) {
	sentinel := errors.New("still broken")
	calls := 0
	err := Do(context.Background(), logger.Discard(), "broken", 4, func(ctx context.Context) error {
		calls++
		return sentinel
	})
	if calls != 4 {
		t.Errorf("expected 4 calls, got %d", calls)
	}
	// The caller gets the final attempt's error with no added wrapping.
	if err != sentinel {
		t.Errorf("expected the sentinel error itself, got %v", err)
	}
}

func TestDo_CancelledContextStopsAttempts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, logger.Discard(), "cancelled", 5, func(ctx context.Context) error {
		calls++
		cancel()
		return errors.New("fail")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected attempts to stop after cancellation, got %d calls", calls)
	}
}

func TestDoValue_ReturnsResult(t *testing.T) {
	calls := 0
	got, err := DoValue(context.Background(), logger.Discard(), "value", 3, func(ctx context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" {
		t.Errorf("expected %q, got %q", "ok", got)
	}
}

func TestDoValue_ZeroValueOnFailure(t *testing.T) {
	got, err := DoValue(context.Background(), logger.Discard(), "value", 2, func(ctx context.Context) (int, error) {
		return 42, errors.New("fail")
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if got != 0 {
		t.Errorf("expected zero value on failure, got %d", got)
	}
}
