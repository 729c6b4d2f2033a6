// Package degrade routes failed dependency calls. Transient failures are
// recorded durably for later replay so the caller can move on; everything
// else is surfaced synchronously, unchanged, so real bugs stay visible.
package degrade

import (
	"context"

	"tourbook/internal/queue"
	"tourbook/pkg/logger"
)

// Action is a single attempt against a downstream dependency.
type Action func(ctx context.Context) (any, error)

// Descriptor tells the router how to queue the operation if the action fails
// transiently. Dependency is optional; when set, the outcome of the action is
// reported to the health monitor under that name.
type Descriptor struct {
	Type       string
	Payload    map[string]any
	Dependency string
}

// Outcome is the result of a routed call. Exactly one of three shapes comes
// back: success with Result, or Queued with OperationID, or an error from
// Execute itself.
type Outcome struct {
	Success     bool   `json:"success"`
	Result      any    `json:"result,omitempty"`
	Queued      bool   `json:"queued"`
	OperationID string `json:"operation_id,omitempty"`
}

// Enqueuer is the slice of the operation queue the router needs.
type Enqueuer interface {
	Enqueue(ctx context.Context, opType string, payload map[string]any, opts ...queue.Option) (string, error)
}

// HealthReporter receives per-dependency outcomes. RecordFailure and
// RecordSuccess must never fail the caller.
type HealthReporter interface {
	RecordFailure(ctx context.Context, name string, cause error)
	RecordSuccess(ctx context.Context, name string)
}

type Router struct {
	queue  Enqueuer
	health HealthReporter
	log    *logger.Logger
}

// NewRouter builds a degradation router. health may be nil if no circuit
// breaker tracking is wanted.
func NewRouter(queue Enqueuer, health HealthReporter, log *logger.Logger) *Router {
	return &Router{
		queue:  queue,
		health: health,
		log:    log,
	}
}

// Execute runs the action once and routes its failure. Fatal errors come back
// exactly as the action returned them; transient errors are swallowed into
// the queue and the caller gets a tracking id instead.
func (r *Router) Execute(ctx context.Context, action Action, desc Descriptor) (Outcome, error) {
	result, err := action(ctx)
	if err == nil {
		if r.health != nil && desc.Dependency != "" {
			r.health.RecordSuccess(ctx, desc.Dependency)
		}
		return Outcome{Success: true, Result: result}, nil
	}

	if r.health != nil && desc.Dependency != "" {
		r.health.RecordFailure(ctx, desc.Dependency, err)
	}

	if Classify(err) == KindFatal {
		r.log.Warn("Operation failed with non-retriable error",
			"type", desc.Type,
			"dependency", desc.Dependency,
			"error", err,
		)
		return Outcome{}, err
	}

	opID, enqueueErr := r.queue.Enqueue(ctx, desc.Type, desc.Payload)
	if enqueueErr != nil {
		// The queue itself is down. Surface the original failure; the
		// caller should not see a queue error for a payment problem.
		r.log.Error("Failed to queue degraded operation",
			"type", desc.Type,
			"error", enqueueErr,
			"original_error", err,
		)
		return Outcome{}, err
	}

	r.log.Info("Transient failure routed to retry queue",
		"type", desc.Type,
		"dependency", desc.Dependency,
		"operation_id", opID,
		"error", err,
	)
	return Outcome{Queued: true, OperationID: opID}, nil
}
