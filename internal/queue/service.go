// Package queue is the durable store for operations that failed against a
// downstream dependency and must be replayed later. It owns the operation
// status machine and backoff schedule; the actual re-execution of payloads is
// the replay worker's job.
package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "tourbook/pkg/errors"
	"tourbook/pkg/logger"
	"tourbook/pkg/model"

	"github.com/google/uuid"
)

// Repository persists queued operations. UpdateIfStatus must be atomic: it
// replaces the mutable fields only when the stored status matches expect,
// which is what makes markProcessing a safe claim primitive across workers.
type Repository interface {
	Insert(ctx context.Context, op *model.QueuedOperation) error
	Get(ctx context.Context, id string) (*model.QueuedOperation, error)
	UpdateIfStatus(ctx context.Context, id string, expect model.OperationStatus, op *model.QueuedOperation) error
	Due(ctx context.Context, now time.Time, limit int) ([]*model.QueuedOperation, error)
	Counts(ctx context.Context) (map[model.OperationStatus]int64, error)
}

type Config struct {
	DefaultMaxAttempts int
	BackoffBase        time.Duration
	BackoffMax         time.Duration
}

type Service struct {
	repo Repository
	cfg  Config
	log  *logger.Logger
	now  func() time.Time
}

func NewService(repo Repository, cfg Config, log *logger.Logger) *Service {
	if cfg.DefaultMaxAttempts <= 0 {
		cfg.DefaultMaxAttempts = 3
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = 30 * time.Second
	}
	if cfg.BackoffMax < cfg.BackoffBase {
		cfg.BackoffMax = cfg.BackoffBase
	}
	return &Service{
		repo: repo,
		cfg:  cfg,
		log:  log,
		now:  time.Now,
	}
}

type enqueueOptions struct {
	maxAttempts int
}

type Option func(*enqueueOptions)

// WithMaxAttempts overrides the retry budget for a single operation.
func WithMaxAttempts(n int) Option {
	return func(o *enqueueOptions) {
		if n > 0 {
			o.maxAttempts = n
		}
	}
}

// Enqueue records an operation for later replay and returns its id. The
// operation is immediately eligible for pickup.
func (s *Service) Enqueue(ctx context.Context, opType string, payload map[string]any, opts ...Option) (string, error) {
	if opType == "" {
		return "", apperrors.InvalidInput("operation type cannot be empty")
	}

	options := enqueueOptions{maxAttempts: s.cfg.DefaultMaxAttempts}
	for _, opt := range opts {
		opt(&options)
	}

	now := s.now().UTC()
	op := &model.QueuedOperation{
		ID:          uuid.NewString(),
		Type:        opType,
		Payload:     payload,
		Status:      model.OperationPending,
		Attempts:    0,
		MaxAttempts: options.maxAttempts,
		NextRetryAt: &now,
		CreatedAt:   now,
	}

	if err := s.repo.Insert(ctx, op); err != nil {
		return "", apperrors.Internal("Failed to enqueue operation", err)
	}

	s.log.Info("Operation queued for deferred execution",
		"operation_id", op.ID,
		"type", op.Type,
		"max_attempts", op.MaxAttempts,
	)
	return op.ID, nil
}

// Get returns the operation or a not-found error.
func (s *Service) Get(ctx context.Context, id string) (*model.QueuedOperation, error) {
	op, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Operation", id)
		}
		return nil, apperrors.Internal("Failed to load operation", err)
	}
	return op, nil
}

// MarkProcessing claims a pending operation. Exactly one caller wins when
// several workers race on the same id; the losers get a conflict.
func (s *Service) MarkProcessing(ctx context.Context, id string) error {
	op, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperrors.NotFoundWithID("Operation", id)
		}
		return apperrors.Internal("Failed to load operation", err)
	}
	if op.Status != model.OperationPending {
		return s.transitionConflict(op, model.OperationProcessing)
	}

	updated := *op
	updated.Status = model.OperationProcessing

	if err := s.repo.UpdateIfStatus(ctx, id, model.OperationPending, &updated); err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			// Lost the claim race to another worker.
			return apperrors.Conflict(fmt.Sprintf("Operation %s is no longer pending", id))
		}
		return apperrors.Internal("Failed to mark operation processing", err)
	}
	return nil
}

// MarkCompleted finishes a processing operation.
func (s *Service) MarkCompleted(ctx context.Context, id string) error {
	op, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperrors.NotFoundWithID("Operation", id)
		}
		return apperrors.Internal("Failed to load operation", err)
	}
	if op.Status != model.OperationProcessing {
		return s.transitionConflict(op, model.OperationCompleted)
	}

	now := s.now().UTC()
	updated := *op
	updated.Status = model.OperationCompleted
	updated.CompletedAt = &now
	updated.NextRetryAt = nil

	if err := s.repo.UpdateIfStatus(ctx, id, model.OperationProcessing, &updated); err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			return apperrors.Conflict(fmt.Sprintf("Operation %s is no longer processing", id))
		}
		return apperrors.Internal("Failed to mark operation completed", err)
	}

	s.log.Info("Operation completed", "operation_id", id, "type", op.Type, "attempts", op.Attempts)
	return nil
}

// MarkFailed records a failed attempt. Below the retry budget the operation
// goes back to pending with a later nextRetryAt; at the budget it dead-letters
// and nothing is scheduled again. The updated operation is returned so
// callers can react to the dead-letter transition.
func (s *Service) MarkFailed(ctx context.Context, id string, errMsg string) (*model.QueuedOperation, error) {
	op, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Operation", id)
		}
		return nil, apperrors.Internal("Failed to load operation", err)
	}
	if op.Status != model.OperationProcessing {
		return nil, s.transitionConflict(op, model.OperationFailed)
	}

	updated := *op
	updated.Attempts = op.Attempts + 1
	updated.LastError = errMsg

	if updated.Attempts < updated.MaxAttempts {
		next := s.now().UTC().Add(s.Backoff(updated.Attempts))
		updated.Status = model.OperationPending
		updated.NextRetryAt = &next
	} else {
		updated.Status = model.OperationDeadLetter
		updated.NextRetryAt = nil
	}

	if err := s.repo.UpdateIfStatus(ctx, id, model.OperationProcessing, &updated); err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			return nil, apperrors.Conflict(fmt.Sprintf("Operation %s is no longer processing", id))
		}
		return nil, apperrors.Internal("Failed to mark operation failed", err)
	}

	if updated.Status == model.OperationDeadLetter {
		s.log.Error("Operation moved to dead letter",
			"operation_id", id,
			"type", updated.Type,
			"attempts", updated.Attempts,
			"last_error", errMsg,
		)
	} else {
		s.log.Warn("Operation attempt failed, retry scheduled",
			"operation_id", id,
			"type", updated.Type,
			"attempts", updated.Attempts,
			"max_attempts", updated.MaxAttempts,
			"next_retry_at", updated.NextRetryAt,
			"error", errMsg,
		)
	}
	return &updated, nil
}

// Due returns pending operations whose retry time has arrived.
func (s *Service) Due(ctx context.Context, limit int) ([]*model.QueuedOperation, error) {
	ops, err := s.repo.Due(ctx, s.now().UTC(), limit)
	if err != nil {
		return nil, apperrors.Internal("Failed to list due operations", err)
	}
	return ops, nil
}

// Counts returns the number of operations per status, for operators.
func (s *Service) Counts(ctx context.Context) (map[model.OperationStatus]int64, error) {
	counts, err := s.repo.Counts(ctx)
	if err != nil {
		return nil, apperrors.Internal("Failed to count operations", err)
	}
	return counts, nil
}

// Backoff returns the delay before retry number attempts+1: doubling from the
// base, capped at the configured max. Strictly increasing until the cap.
func (s *Service) Backoff(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	backoff := s.cfg.BackoffBase
	for i := 1; i < attempts; i++ {
		backoff *= 2
		if backoff >= s.cfg.BackoffMax {
			return s.cfg.BackoffMax
		}
	}
	if backoff > s.cfg.BackoffMax {
		return s.cfg.BackoffMax
	}
	return backoff
}

func (s *Service) transitionConflict(op *model.QueuedOperation, to model.OperationStatus) error {
	err := fmt.Errorf("%w: %s -> %s for operation %s", ErrInvalidTransition, op.Status, to, op.ID)
	return apperrors.Wrap(err, apperrors.CodeConflict,
		fmt.Sprintf("Operation %s is %s and cannot move to %s", op.ID, op.Status, to),
		409,
	)
}
