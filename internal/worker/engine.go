package worker

import (
	"context"
	"time"

	"tourbook/internal/queue"
	"tourbook/internal/resilience/health"
	apperrors "tourbook/pkg/errors"
	"tourbook/pkg/kafka"
	"tourbook/pkg/logger"
	"tourbook/pkg/model"
)

// AlertSink receives dead-letter notifications for operators.
type AlertSink interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type Config struct {
	PollInterval time.Duration
	BatchSize    int
}

type Engine struct {
	queue     *queue.Service
	monitor   *health.Monitor
	alerts    AlertSink
	executors map[string]Executor
	cfg       Config
	log       *logger.Logger
}

// New builds a replay engine. alerts may be nil; dead letters are then only
// logged.
func New(queueSvc *queue.Service, monitor *health.Monitor, alerts AlertSink, cfg Config, log *logger.Logger) *Engine {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 20
	}
	return &Engine{
		queue:     queueSvc,
		monitor:   monitor,
		alerts:    alerts,
		executors: make(map[string]Executor),
		cfg:       cfg,
		log:       log,
	}
}

func (e *Engine) Register(exec Executor) {
	e.executors[exec.Type()] = exec
}

// Run polls for due operations until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	e.log.Info("Replay worker started",
		"poll_interval", e.cfg.PollInterval,
		"batch_size", e.cfg.BatchSize,
		"executors", len(e.executors),
	)

	ticker := time.NewTicker(e.cfg.PollInterval)
	defer ticker.Stop()

	for {
		e.ProcessDue(ctx)

		select {
		case <-ctx.Done():
			e.log.Info("Replay worker stopping")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// ProcessDue drains one batch of due operations.
func (e *Engine) ProcessDue(ctx context.Context) {
	ops, err := e.queue.Due(ctx, e.cfg.BatchSize)
	if err != nil {
		e.log.Error("Failed to list due operations", "error", err)
		return
	}

	for _, op := range ops {
		if ctx.Err() != nil {
			return
		}
		e.process(ctx, op)
	}
}

func (e *Engine) process(ctx context.Context, op *model.QueuedOperation) {
	exec, ok := e.executors[op.Type]
	if !ok {
		e.failUnsupported(ctx, op)
		return
	}

	// An open circuit means the dependency is known down; leave the
	// operation pending and let a later poll retry once it recovers.
	dep := exec.Dependency()
	if dep != "" && e.monitor.IsOpen(ctx, dep) {
		e.log.Debug("Skipping operation, circuit open",
			"operation_id", op.ID,
			"type", op.Type,
			"dependency", dep,
		)
		return
	}

	if err := e.queue.MarkProcessing(ctx, op.ID); err != nil {
		// Conflicts mean another worker claimed it first.
		if apperrors.CodeOf(err) != apperrors.CodeConflict {
			e.log.Warn("Failed to claim operation", "operation_id", op.ID, "error", err)
		}
		return
	}

	if err := exec.Execute(ctx, op); err != nil {
		if dep != "" {
			e.monitor.RecordFailure(ctx, dep, err)
		}
		e.fail(ctx, op, err.Error())
		return
	}

	if dep != "" {
		e.monitor.RecordSuccess(ctx, dep)
	}
	if err := e.queue.MarkCompleted(ctx, op.ID); err != nil {
		e.log.Error("Failed to mark operation completed", "operation_id", op.ID, "error", err)
	}
}

func (e *Engine) failUnsupported(ctx context.Context, op *model.QueuedOperation) {
	e.log.Error("No executor registered for operation type", "operation_id", op.ID, "type", op.Type)
	if err := e.queue.MarkProcessing(ctx, op.ID); err != nil {
		return
	}
	e.fail(ctx, op, "no executor registered for type "+op.Type)
}

func (e *Engine) fail(ctx context.Context, op *model.QueuedOperation, errMsg string) {
	updated, err := e.queue.MarkFailed(ctx, op.ID, errMsg)
	if err != nil {
		e.log.Error("Failed to mark operation failed", "operation_id", op.ID, "error", err)
		return
	}
	if updated.Status == model.OperationDeadLetter {
		e.alertDeadLetter(ctx, updated)
	}
}

// alertDeadLetter notifies operators that an operation exhausted its retry
// budget. The original caller already got a "queued" response and moved on,
// so operators are the only remaining audience.
func (e *Engine) alertDeadLetter(ctx context.Context, op *model.QueuedOperation) {
	if e.alerts == nil {
		return
	}

	msg, err := kafka.NewMessage().
		WithKey(op.ID).
		WithEventType("operation.dead_letter").
		WithSource("tourbook-opsworker").
		WithValue(op).
		Build()
	if err != nil {
		e.log.Error("Failed to build dead letter alert", "operation_id", op.ID, "error", err)
		return
	}

	if err := e.alerts.Publish(context.WithoutCancel(ctx), msg); err != nil {
		e.log.Error("Failed to publish dead letter alert", "operation_id", op.ID, "error", err)
	}
}

var _ AlertSink = (*kafka.Producer)(nil)
