// Package worker replays queued operations against their downstream
// dependencies. It is the out-of-core collaborator of the operation queue:
// the queue owns the status machine, the worker owns the loop and the actual
// re-invocation of payloads.
package worker

import (
	"context"
	"fmt"

	"tourbook/internal/resilience/retry"
	"tourbook/pkg/kafka"
	"tourbook/pkg/logger"
	"tourbook/pkg/model"
)

const publishAttempts = 2

// Executor re-invokes one operation type against its dependency.
type Executor interface {
	// Type is the operation type this executor handles.
	Type() string
	// Dependency is the circuit breaker name guarding execution, empty for
	// none.
	Dependency() string
	Execute(ctx context.Context, op *model.QueuedOperation) error
}

// kafkaRelayExecutor forwards an operation payload to an outbound Kafka topic
// where the owning integration service consumes it. Payments, email, and
// webhooks all leave the platform this way.
type kafkaRelayExecutor struct {
	opType     string
	dependency string
	producer   *kafka.Producer
	log        *logger.Logger
}

func NewKafkaRelayExecutor(opType, dependency string, producer *kafka.Producer, log *logger.Logger) Executor {
	return &kafkaRelayExecutor{
		opType:     opType,
		dependency: dependency,
		producer:   producer,
		log:        log,
	}
}

func (e *kafkaRelayExecutor) Type() string       { return e.opType }
func (e *kafkaRelayExecutor) Dependency() string { return e.dependency }

func (e *kafkaRelayExecutor) Execute(ctx context.Context, op *model.QueuedOperation) error {
	msg, err := kafka.NewMessage().
		WithKey(op.ID).
		WithEventType(op.Type).
		WithSource("tourbook-opsworker").
		WithHeader("attempts", fmt.Sprintf("%d", op.Attempts)).
		WithValue(op.Payload).
		Build()
	if err != nil {
		return fmt.Errorf("building relay message: %w", err)
	}

	return retry.Do(ctx, e.log, "relay_"+e.opType, publishAttempts, func(ctx context.Context) error {
		return e.producer.Publish(ctx, msg)
	})
}
