package health

import (
	"context"
	"sync"
	"time"

	"tourbook/pkg/model"
)

// MemoryStore keeps health records in process memory. Suitable for tests and
// single-process deployments; state is lost on restart, which only means the
// breaker starts closed again.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*model.ServiceHealthRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*model.ServiceHealthRecord),
	}
}

func (s *MemoryStore) RecordFailure(_ context.Context, name string, at time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.records[name]
	if rec == nil {
		rec = &model.ServiceHealthRecord{Name: name}
		s.records[name] = rec
	}
	rec.ConsecutiveFailures++
	rec.LastFailureAt = &at
	return rec.ConsecutiveFailures, nil
}

func (s *MemoryStore) RecordSuccess(_ context.Context, name string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.records[name]
	if rec == nil {
		rec = &model.ServiceHealthRecord{Name: name}
		s.records[name] = rec
	}
	rec.ConsecutiveFailures = 0
	rec.LastSuccessAt = &at
	return nil
}

func (s *MemoryStore) Failures(_ context.Context, name string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec := s.records[name]; rec != nil {
		return rec.ConsecutiveFailures, nil
	}
	return 0, nil
}

func (s *MemoryStore) All(_ context.Context) ([]model.ServiceHealthRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.ServiceHealthRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, *rec)
	}
	return out, nil
}
