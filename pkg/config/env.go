package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvDailyCapacity      = "DAILY_CAPACITY"
	EnvCancellationNotice = "CANCELLATION_NOTICE"
	EnvBookingNumPrefix   = "BOOKING_NUMBER_PREFIX"

	EnvLockTTL           = "LOCK_TTL"
	EnvLockWaitTimeout   = "LOCK_WAIT_TIMEOUT"
	EnvLockRetryInterval = "LOCK_RETRY_INTERVAL"

	EnvCircuitOpenThreshold      = "CIRCUIT_OPEN_THRESHOLD"
	EnvCircuitThresholdOverrides = "CIRCUIT_THRESHOLD_OVERRIDES"

	EnvQueueMaxAttempts = "QUEUE_MAX_ATTEMPTS"
	EnvQueueBackoffBase = "QUEUE_BACKOFF_BASE"
	EnvQueueBackoffMax  = "QUEUE_BACKOFF_MAX"

	EnvWorkerPollInterval = "WORKER_POLL_INTERVAL"
	EnvWorkerBatchSize    = "WORKER_BATCH_SIZE"

	EnvTopicBookingEvents    = "TOPIC_BOOKING_EVENTS"
	EnvTopicOpsAlerts        = "TOPIC_OPS_ALERTS"
	EnvTopicOutboundPayments = "TOPIC_OUTBOUND_PAYMENTS"
	EnvTopicOutboundEmail    = "TOPIC_OUTBOUND_EMAIL"
	EnvTopicOutboundWebhooks = "TOPIC_OUTBOUND_WEBHOOKS"
)
