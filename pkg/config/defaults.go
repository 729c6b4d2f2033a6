package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "tourbook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Booking business rules.
	DefaultDailyCapacity      = 50
	DefaultCancellationNotice = 24 * time.Hour
	DefaultBookingNumPrefix   = "TB"

	// Tour-date advisory lock.
	DefaultLockTTL           = 10 * time.Second
	DefaultLockWaitTimeout   = 10 * time.Second
	DefaultLockRetryInterval = 100 * time.Millisecond

	// Circuit breaker.
	DefaultCircuitOpenThreshold = 5

	// Deferred operation queue.
	DefaultQueueMaxAttempts = 3
	DefaultQueueBackoffBase = 30 * time.Second
	DefaultQueueBackoffMax  = 1 * time.Hour

	// Replay worker.
	DefaultWorkerPollInterval = 5 * time.Second
	DefaultWorkerBatchSize    = 20

	DefaultPageLimit    = 50
	DefaultMaxPageLimit = 200
)

// Default Kafka topics. Outbound topics carry replayed operations to the
// external processors that own the actual payment/email side effects.
const (
	DefaultTopicBookingEvents    = "tourbook.booking-events"
	DefaultTopicOpsAlerts        = "tourbook.ops-alerts"
	DefaultTopicOutboundPayments = "tourbook.outbound-payments"
	DefaultTopicOutboundEmail    = "tourbook.outbound-email"
	DefaultTopicOutboundWebhooks = "tourbook.outbound-webhooks"
)
