package queue

import (
	"context"
	"sort"
	"sync"
	"time"

	"tourbook/pkg/model"
)

// MemoryRepository is an in-process Repository for tests and single-node
// deployments without MongoDB. It honors the same status-guarded update
// contract as the Mongo implementation.
type MemoryRepository struct {
	mu  sync.Mutex
	ops map[string]*model.QueuedOperation
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		ops: make(map[string]*model.QueuedOperation),
	}
}

func (r *MemoryRepository) Insert(_ context.Context, op *model.QueuedOperation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *op
	r.ops[op.ID] = &clone
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (*model.QueuedOperation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	op, ok := r.ops[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *op
	return &clone, nil
}

func (r *MemoryRepository) UpdateIfStatus(_ context.Context, id string, expect model.OperationStatus, op *model.QueuedOperation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.ops[id]
	if !ok {
		return ErrNotFound
	}
	if current.Status != expect {
		return ErrInvalidTransition
	}
	clone := *op
	r.ops[id] = &clone
	return nil
}

func (r *MemoryRepository) Due(_ context.Context, now time.Time, limit int) ([]*model.QueuedOperation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var due []*model.QueuedOperation
	for _, op := range r.ops {
		if op.Status != model.OperationPending || op.NextRetryAt == nil {
			continue
		}
		if op.NextRetryAt.After(now) {
			continue
		}
		clone := *op
		due = append(due, &clone)
	}

	sort.Slice(due, func(i, j int) bool {
		return due[i].NextRetryAt.Before(*due[j].NextRetryAt)
	})
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (r *MemoryRepository) Counts(_ context.Context) (map[model.OperationStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := make(map[model.OperationStatus]int64)
	for _, op := range r.ops {
		counts[op.Status]++
	}
	return counts, nil
}
