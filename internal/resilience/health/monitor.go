// Package health tracks consecutive failures per named downstream dependency
// and derives an open/closed circuit state from them. The breaker is a plain
// counter: no timer-driven half-open phase. Retry timing lives with the
// deferred operation queue; the breaker only lets callers skip a dependency
// that is known to be down.
package health

import (
	"context"
	"time"

	"tourbook/pkg/logger"
	"tourbook/pkg/model"
)

// State is the read-only circuit view for one dependency.
type State struct {
	Open                bool       `json:"open"`
	ConsecutiveFailures int        `json:"consecutive_failures"`
	LastFailureAt       *time.Time `json:"last_failure_at,omitempty"`
	LastSuccessAt       *time.Time `json:"last_success_at,omitempty"`
}

// Store persists health records. Implementations must make RecordFailure and
// RecordSuccess atomic per name so concurrent reporters cannot lose updates.
type Store interface {
	// RecordFailure increments the consecutive failure count for name,
	// creating the record if absent, and returns the new count.
	RecordFailure(ctx context.Context, name string, at time.Time) (int, error)
	// RecordSuccess zeroes the consecutive failure count for name.
	RecordSuccess(ctx context.Context, name string, at time.Time) error
	// Failures returns the current consecutive failure count; zero when the
	// dependency has never been reported.
	Failures(ctx context.Context, name string) (int, error)
	// All returns every known record.
	All(ctx context.Context) ([]model.ServiceHealthRecord, error)
}

type Monitor struct {
	store            Store
	defaultThreshold int
	overrides        map[string]int
	log              *logger.Logger
}

type Option func(*Monitor)

// WithThresholdOverride sets a per-dependency open threshold.
func WithThresholdOverride(name string, threshold int) Option {
	return func(m *Monitor) {
		m.overrides[name] = threshold
	}
}

// WithThresholdOverrides sets several per-dependency thresholds at once.
func WithThresholdOverrides(overrides map[string]int) Option {
	return func(m *Monitor) {
		for name, t := range overrides {
			m.overrides[name] = t
		}
	}
}

func NewMonitor(store Store, defaultThreshold int, log *logger.Logger, opts ...Option) *Monitor {
	if defaultThreshold <= 0 {
		defaultThreshold = 5
	}
	m := &Monitor{
		store:            store,
		defaultThreshold: defaultThreshold,
		overrides:        map[string]int{},
		log:              log,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Threshold returns the open threshold in effect for a dependency.
func (m *Monitor) Threshold(name string) int {
	if t, ok := m.overrides[name]; ok {
		return t
	}
	return m.defaultThreshold
}

// RecordFailure notes a failed call against a dependency. It never returns an
// error; health reporting must not break the operation that triggered it.
func (m *Monitor) RecordFailure(ctx context.Context, name string, cause error) {
	count, err := m.store.RecordFailure(ctx, name, time.Now().UTC())
	if err != nil {
		m.log.Warn("Failed to record service failure", "service", name, "error", err)
		return
	}
	threshold := m.Threshold(name)
	if count == threshold {
		m.log.Error("Circuit breaker opened",
			"service", name,
			"consecutive_failures", count,
			"threshold", threshold,
			"cause", cause,
		)
		return
	}
	m.log.Warn("Service failure recorded",
		"service", name,
		"consecutive_failures", count,
		"threshold", threshold,
		"cause", cause,
	)
}

// RecordSuccess notes a successful call, closing the circuit if it was open.
// A single success is enough: it stands in for a half-open probe succeeding.
func (m *Monitor) RecordSuccess(ctx context.Context, name string) {
	if err := m.store.RecordSuccess(ctx, name, time.Now().UTC()); err != nil {
		m.log.Warn("Failed to record service success", "service", name, "error", err)
	}
}

// IsOpen reports whether the circuit for name is open. Unknown dependencies
// and store errors both read as closed; callers should attempt the call and
// let failure reporting take over.
func (m *Monitor) IsOpen(ctx context.Context, name string) bool {
	count, err := m.store.Failures(ctx, name)
	if err != nil {
		m.log.Warn("Failed to read service health", "service", name, "error", err)
		return false
	}
	return count >= m.Threshold(name)
}

// Reset is the operator override: it zeroes the failure count regardless of
// history.
func (m *Monitor) Reset(ctx context.Context, name string) error {
	if err := m.store.RecordSuccess(ctx, name, time.Now().UTC()); err != nil {
		return err
	}
	m.log.Info("Circuit breaker reset", "service", name)
	return nil
}

// Snapshot returns the current circuit state of every known dependency.
func (m *Monitor) Snapshot(ctx context.Context) (map[string]State, error) {
	records, err := m.store.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]State, len(records))
	for _, rec := range records {
		out[rec.Name] = State{
			Open:                rec.ConsecutiveFailures >= m.Threshold(rec.Name),
			ConsecutiveFailures: rec.ConsecutiveFailures,
			LastFailureAt:       rec.LastFailureAt,
			LastSuccessAt:       rec.LastSuccessAt,
		}
	}
	return out, nil
}
