package model

import "time"

// Names of the downstream dependencies the platform tracks health for.
// The set is open; anything that reports a failure gets a record.
const (
	DepPaymentGateway = "payment-gateway"
	DepEmailSender    = "email-sender"
	DepEventBus       = "event-bus"
	DepDatabase       = "database"
)

// ServiceHealthRecord tracks consecutive failures for one named dependency.
// The open/closed circuit state is derived from ConsecutiveFailures against a
// configured threshold; it is never stored on its own.
type ServiceHealthRecord struct {
	Name                string     `json:"name" bson:"_id"`
	ConsecutiveFailures int        `json:"consecutive_failures" bson:"consecutive_failures"`
	LastFailureAt       *time.Time `json:"last_failure_at,omitempty" bson:"last_failure_at,omitempty"`
	LastSuccessAt       *time.Time `json:"last_success_at,omitempty" bson:"last_success_at,omitempty"`
}
