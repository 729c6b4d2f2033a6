package health

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"tourbook/pkg/logger"
)

func newTestMonitor(t *testing.T, threshold int, opts ...Option) *Monitor {
	t.Helper()
	return NewMonitor(NewMemoryStore(), threshold, logger.Discard(), opts...)
}

func TestIsOpen_ThresholdBoundary(t *testing.T) {
	ctx := context.Background()
	m := newTestMonitor(t, 5)
	cause := errors.New("connection refused")

	for i := 0; i < 4; i++ {
		m.RecordFailure(ctx, "payment-gateway", cause)
	}
	if m.IsOpen(ctx, "payment-gateway") {
		t.Fatalf("circuit open after 4 failures, threshold is 5")
	}

	m.RecordFailure(ctx, "payment-gateway", cause)
	if !m.IsOpen(ctx, "payment-gateway") {
		t.Fatalf("circuit closed after 5 consecutive failures")
	}
}

func TestRecordSuccess_ClosesCircuit(t *testing.T) {
	ctx := context.Background()
	m := newTestMonitor(t, 3)

	for i := 0; i < 10; i++ {
		m.RecordFailure(ctx, "email-sender", errors.New("timeout"))
	}
	if !m.IsOpen(ctx, "email-sender") {
		t.Fatalf("expected open circuit")
	}

	m.RecordSuccess(ctx, "email-sender")

	if m.IsOpen(ctx, "email-sender") {
		t.Errorf("circuit still open after success")
	}
	snap, err := m.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if got := snap["email-sender"].ConsecutiveFailures; got != 0 {
		t.Errorf("expected 0 consecutive failures after success, got %d", got)
	}
}

func TestIsOpen_UnknownDependency(t *testing.T) {
	m := newTestMonitor(t, 5)
	if m.IsOpen(context.Background(), "never-reported") {
		t.Errorf("unknown dependency should read as closed")
	}
}

func TestReset_ClearsFailures(t *testing.T) {
	ctx := context.Background()
	m := newTestMonitor(t, 2)

	m.RecordFailure(ctx, "payment-gateway", errors.New("boom"))
	m.RecordFailure(ctx, "payment-gateway", errors.New("boom"))
	if !m.IsOpen(ctx, "payment-gateway") {
		t.Fatalf("expected open circuit before reset")
	}

	if err := m.Reset(ctx, "payment-gateway"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if m.IsOpen(ctx, "payment-gateway") {
		t.Errorf("circuit still open after reset")
	}
}

func TestThresholdOverride(t *testing.T) {
	ctx := context.Background()
	m := newTestMonitor(t, 5, WithThresholdOverride("payment-gateway", 2))

	m.RecordFailure(ctx, "payment-gateway", errors.New("boom"))
	m.RecordFailure(ctx, "payment-gateway", errors.New("boom"))
	m.RecordFailure(ctx, "email-sender", errors.New("boom"))
	m.RecordFailure(ctx, "email-sender", errors.New("boom"))

	if !m.IsOpen(ctx, "payment-gateway") {
		t.Errorf("override threshold 2 not honored for payment-gateway")
	}
	if m.IsOpen(ctx, "email-sender") {
		t.Errorf("email-sender should still use default threshold 5")
	}
}

func TestSnapshot_ReflectsAllDependencies(t *testing.T) {
	ctx := context.Background()
	m := newTestMonitor(t, 2)

	m.RecordFailure(ctx, "payment-gateway", errors.New("boom"))
	m.RecordFailure(ctx, "payment-gateway", errors.New("boom"))
	m.RecordFailure(ctx, "email-sender", errors.New("boom"))
	m.RecordSuccess(ctx, "event-bus")

	snap, err := m.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snap) != 3 {
		t.Fatalf("expected 3 records, got %d", len(snap))
	}
	if !snap["payment-gateway"].Open {
		t.Errorf("payment-gateway should be open")
	}
	if snap["email-sender"].Open {
		t.Errorf("email-sender should be closed at 1 failure")
	}
	if snap["event-bus"].Open || snap["event-bus"].ConsecutiveFailures != 0 {
		t.Errorf("event-bus should be healthy, got %+v", snap["event-bus"])
	}
	if snap["payment-gateway"].LastFailureAt == nil {
		t.Errorf("expected last_failure_at to be set")
	}
	if snap["event-bus"].LastSuccessAt == nil {
		t.Errorf("expected last_success_at to be set")
	}
}

func TestMonitor_ConcurrentReporters(t *testing.T) {
	ctx := context.Background()
	m := newTestMonitor(t, 1000)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				m.RecordFailure(ctx, "payment-gateway", fmt.Errorf("worker %d", n))
			}
		}(i)
	}
	wg.Wait()

	snap, err := m.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if got := snap["payment-gateway"].ConsecutiveFailures; got != 500 {
		t.Errorf("lost updates: expected 500 failures, got %d", got)
	}
}
