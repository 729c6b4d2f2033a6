package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	apperrors "tourbook/pkg/errors"
	"tourbook/pkg/logger"
	"tourbook/pkg/model"
)

func newTestService(t *testing.T) (*Service, *MemoryRepository) {
	t.Helper()
	repo := NewMemoryRepository()
	svc := NewService(repo, Config{
		DefaultMaxAttempts: 3,
		BackoffBase:        30 * time.Second,
		BackoffMax:         time.Hour,
	}, logger.Discard())
	return svc, repo
}

func TestEnqueueDefaults(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	id, err := svc.Enqueue(ctx, model.OpTypeEmailSend, map[string]any{"to": "a@b.com"})
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected non-empty operation id")
	}

	op, err := svc.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if op.Status != model.OperationPending {
		t.Errorf("expected status pending, got %s", op.Status)
	}
	if op.Attempts != 0 {
		t.Errorf("expected 0 attempts, got %d", op.Attempts)
	}
	if op.MaxAttempts != 3 {
		t.Errorf("expected default max attempts 3, got %d", op.MaxAttempts)
	}
	if op.NextRetryAt == nil {
		t.Error("expected next retry time set so the operation is immediately eligible")
	}
}

func TestEnqueueMaxAttemptsOverride(t *testing.T) {
	svc, _ := newTestService(t)

	id, err := svc.Enqueue(context.Background(), model.OpTypeWebhookSend, nil, WithMaxAttempts(5))
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	op, err := svc.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if op.MaxAttempts != 5 {
		t.Errorf("expected max attempts 5, got %d", op.MaxAttempts)
	}
}

func TestEnqueueEmptyType(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Enqueue(context.Background(), "", nil)
	if err == nil {
		t.Fatal("expected error for empty operation type")
	}
	if apperrors.CodeOf(err) != apperrors.CodeInvalidInput {
		t.Errorf("expected invalid input code, got %s", apperrors.CodeOf(err))
	}
}

func TestGetUnknownOperation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Get(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error")
	}
	if apperrors.CodeOf(err) != apperrors.CodeNotFound {
		t.Errorf("expected not found code, got %s", apperrors.CodeOf(err))
	}
}

// An operation with a budget of two attempts: the first failure reschedules
// it, the second moves it to the dead letter state permanently.
func TestFailureWalkToDeadLetter(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo, Config{
		DefaultMaxAttempts: 2,
		BackoffBase:        30 * time.Second,
		BackoffMax:         time.Hour,
	}, logger.Discard())
	ctx := context.Background()

	id, err := svc.Enqueue(ctx, model.OpTypePaymentCreate, map[string]any{"amount": 100})
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	// First attempt fails.
	if err := svc.MarkProcessing(ctx, id); err != nil {
		t.Fatalf("MarkProcessing failed: %v", err)
	}
	op, err := svc.MarkFailed(ctx, id, "connection refused")
	if err != nil {
		t.Fatalf("MarkFailed failed: %v", err)
	}
	if op.Status != model.OperationPending {
		t.Fatalf("expected pending after first failure, got %s", op.Status)
	}
	if op.Attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", op.Attempts)
	}
	if op.NextRetryAt == nil {
		t.Fatal("expected retry scheduled after first failure")
	}
	if op.LastError != "connection refused" {
		t.Errorf("expected last error recorded, got %q", op.LastError)
	}

	// Second and final attempt fails.
	if err := svc.MarkProcessing(ctx, id); err != nil {
		t.Fatalf("MarkProcessing failed: %v", err)
	}
	op, err = svc.MarkFailed(ctx, id, "connection refused")
	if err != nil {
		t.Fatalf("MarkFailed failed: %v", err)
	}
	if op.Status != model.OperationDeadLetter {
		t.Fatalf("expected dead_letter after exhausting attempts, got %s", op.Status)
	}
	if op.Attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", op.Attempts)
	}
	if op.NextRetryAt != nil {
		t.Error("dead letter operations must not have a retry scheduled")
	}
	if op.CompletedAt != nil {
		t.Error("dead letter operations must not carry a completion time")
	}
	if !op.Terminal() {
		t.Error("dead letter should be terminal")
	}
}

func TestCompletedLifecycle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	id, _ := svc.Enqueue(ctx, model.OpTypeEventPublish, nil)
	if err := svc.MarkProcessing(ctx, id); err != nil {
		t.Fatalf("MarkProcessing failed: %v", err)
	}
	if err := svc.MarkCompleted(ctx, id); err != nil {
		t.Fatalf("MarkCompleted failed: %v", err)
	}

	op, err := svc.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if op.Status != model.OperationCompleted {
		t.Fatalf("expected completed, got %s", op.Status)
	}
	if op.CompletedAt == nil {
		t.Error("expected completion time set")
	}
	if op.NextRetryAt != nil {
		t.Error("completed operations must not have a retry scheduled")
	}

	// Terminal: no further transitions.
	if err := svc.MarkProcessing(ctx, id); err == nil {
		t.Error("expected conflict claiming a completed operation")
	}
	if _, err := svc.MarkFailed(ctx, id, "late failure"); err == nil {
		t.Error("expected conflict failing a completed operation")
	}
}

func TestMarkCompletedRequiresProcessing(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	id, _ := svc.Enqueue(ctx, model.OpTypeEmailSend, nil)
	err := svc.MarkCompleted(ctx, id)
	if err == nil {
		t.Fatal("expected conflict completing a pending operation")
	}
	if apperrors.CodeOf(err) != apperrors.CodeConflict {
		t.Errorf("expected conflict code, got %s", apperrors.CodeOf(err))
	}
}

// Several workers race to claim the same operation. Exactly one must win.
func TestConcurrentClaimExactlyOneWinner(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	id, _ := svc.Enqueue(ctx, model.OpTypePaymentCreate, nil)

	const workers = 20
	var wg sync.WaitGroup
	wins := make(chan struct{}, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := svc.MarkProcessing(ctx, id); err == nil {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	won := 0
	for range wins {
		won++
	}
	if won != 1 {
		t.Fatalf("expected exactly one worker to claim the operation, got %d", won)
	}
}

func TestBackoffDoublesAndCaps(t *testing.T) {
	svc := NewService(NewMemoryRepository(), Config{
		DefaultMaxAttempts: 10,
		BackoffBase:        30 * time.Second,
		BackoffMax:         5 * time.Minute,
	}, logger.Discard())

	cases := []struct {
		attempts int
		want     time.Duration
	}{
		{1, 30 * time.Second},
		{2, time.Minute},
		{3, 2 * time.Minute},
		{4, 4 * time.Minute},
		{5, 5 * time.Minute},
		{6, 5 * time.Minute},
	}
	for _, tc := range cases {
		if got := svc.Backoff(tc.attempts); got != tc.want {
			t.Errorf("Backoff(%d) = %s, want %s", tc.attempts, got, tc.want)
		}
	}

	// Monotonic until the cap.
	prev := time.Duration(0)
	for attempts := 1; attempts <= 8; attempts++ {
		got := svc.Backoff(attempts)
		if got < prev {
			t.Fatalf("backoff decreased at attempt %d: %s < %s", attempts, got, prev)
		}
		prev = got
	}
}

func TestDueSkipsFutureAndNonPending(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	dueID, _ := svc.Enqueue(ctx, model.OpTypeEmailSend, nil)

	futureID, _ := svc.Enqueue(ctx, model.OpTypeEmailSend, nil)
	future, _ := repo.Get(ctx, futureID)
	later := time.Now().UTC().Add(time.Hour)
	future.NextRetryAt = &later
	if err := repo.UpdateIfStatus(ctx, futureID, model.OperationPending, future); err != nil {
		t.Fatalf("seeding future retry: %v", err)
	}

	claimedID, _ := svc.Enqueue(ctx, model.OpTypeEmailSend, nil)
	if err := svc.MarkProcessing(ctx, claimedID); err != nil {
		t.Fatalf("MarkProcessing failed: %v", err)
	}

	ops, err := svc.Due(ctx, 10)
	if err != nil {
		t.Fatalf("Due failed: %v", err)
	}
	if len(ops) != 1 {
		t.Fatalf("expected 1 due operation, got %d", len(ops))
	}
	if ops[0].ID != dueID {
		t.Errorf("expected due operation %s, got %s", dueID, ops[0].ID)
	}
}

func TestCounts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.Enqueue(ctx, model.OpTypeEmailSend, nil); err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}
	}
	id, _ := svc.Enqueue(ctx, model.OpTypeWebhookSend, nil)
	if err := svc.MarkProcessing(ctx, id); err != nil {
		t.Fatalf("MarkProcessing failed: %v", err)
	}
	if err := svc.MarkCompleted(ctx, id); err != nil {
		t.Fatalf("MarkCompleted failed: %v", err)
	}

	counts, err := svc.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts failed: %v", err)
	}
	if counts[model.OperationPending] != 3 {
		t.Errorf("expected 3 pending, got %d", counts[model.OperationPending])
	}
	if counts[model.OperationCompleted] != 1 {
		t.Errorf("expected 1 completed, got %d", counts[model.OperationCompleted])
	}
}
