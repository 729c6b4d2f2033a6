package model

import "time"

// OperationStatus is the state of a deferred operation. Statuses only move
// forward: pending → processing → completed, or processing → pending (retry
// scheduled), or processing → dead_letter once the retry budget is exhausted.
type OperationStatus string

const (
	OperationPending    OperationStatus = "pending"
	OperationProcessing OperationStatus = "processing"
	OperationCompleted  OperationStatus = "completed"
	OperationFailed     OperationStatus = "failed"
	OperationDeadLetter OperationStatus = "dead_letter"
)

// Operation type tags are open-ended; these are the ones the platform emits
// itself. External callers may enqueue types of their own.
const (
	OpTypePaymentCreate = "payment_create"
	OpTypePaymentRefund = "payment_refund"
	OpTypeEmailSend     = "email_send"
	OpTypeWebhookSend   = "webhook_send"
	OpTypeEventPublish  = "event_publish"
)

// QueuedOperation is a durable record of work that must be replayed against a
// downstream dependency. The payload is opaque to the queue; only the replay
// worker's executors interpret it.
type QueuedOperation struct {
	ID          string          `json:"id" bson:"_id"`
	Type        string          `json:"type" bson:"type"`
	Payload     map[string]any  `json:"payload" bson:"payload"`
	Status      OperationStatus `json:"status" bson:"status"`
	Attempts    int             `json:"attempts" bson:"attempts"`
	MaxAttempts int             `json:"max_attempts" bson:"max_attempts"`
	NextRetryAt *time.Time      `json:"next_retry_at,omitempty" bson:"next_retry_at,omitempty"`
	LastError   string          `json:"last_error,omitempty" bson:"last_error,omitempty"`
	CreatedAt   time.Time       `json:"created_at" bson:"created_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
}

// Terminal reports whether the operation can no longer change state.
func (o *QueuedOperation) Terminal() bool {
	return o.Status == OperationCompleted || o.Status == OperationDeadLetter
}
