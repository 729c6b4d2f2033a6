package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"tourbook/pkg/client"
	"tourbook/pkg/logger"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	RequestTimeout time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	DailyCapacity      int
	CancellationNotice time.Duration
	BookingNumPrefix   string

	LockTTL           time.Duration
	LockWaitTimeout   time.Duration
	LockRetryInterval time.Duration

	CircuitOpenThreshold      int
	CircuitThresholdOverrides map[string]int

	QueueMaxAttempts int
	QueueBackoffBase time.Duration
	QueueBackoffMax  time.Duration

	WorkerPollInterval time.Duration
	WorkerBatchSize    int

	TopicBookingEvents    string
	TopicOpsAlerts        string
	TopicOutboundPayments string
	TopicOutboundEmail    string
	TopicOutboundWebhooks string

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		DailyCapacity:      getEnvNum(EnvDailyCapacity, DefaultDailyCapacity),
		CancellationNotice: getEnvDuration(EnvCancellationNotice, DefaultCancellationNotice),
		BookingNumPrefix:   getEnvStr(EnvBookingNumPrefix, DefaultBookingNumPrefix),

		LockTTL:           getEnvDuration(EnvLockTTL, DefaultLockTTL),
		LockWaitTimeout:   getEnvDuration(EnvLockWaitTimeout, DefaultLockWaitTimeout),
		LockRetryInterval: getEnvDuration(EnvLockRetryInterval, DefaultLockRetryInterval),

		CircuitOpenThreshold:      getEnvNum(EnvCircuitOpenThreshold, DefaultCircuitOpenThreshold),
		CircuitThresholdOverrides: getEnvPairs(EnvCircuitThresholdOverrides),

		QueueMaxAttempts: getEnvNum(EnvQueueMaxAttempts, DefaultQueueMaxAttempts),
		QueueBackoffBase: getEnvDuration(EnvQueueBackoffBase, DefaultQueueBackoffBase),
		QueueBackoffMax:  getEnvDuration(EnvQueueBackoffMax, DefaultQueueBackoffMax),

		WorkerPollInterval: getEnvDuration(EnvWorkerPollInterval, DefaultWorkerPollInterval),
		WorkerBatchSize:    getEnvNum(EnvWorkerBatchSize, DefaultWorkerBatchSize),

		TopicBookingEvents:    getEnvStr(EnvTopicBookingEvents, DefaultTopicBookingEvents),
		TopicOpsAlerts:        getEnvStr(EnvTopicOpsAlerts, DefaultTopicOpsAlerts),
		TopicOutboundPayments: getEnvStr(EnvTopicOutboundPayments, DefaultTopicOutboundPayments),
		TopicOutboundEmail:    getEnvStr(EnvTopicOutboundEmail, DefaultTopicOutboundEmail),
		TopicOutboundWebhooks: getEnvStr(EnvTopicOutboundWebhooks, DefaultTopicOutboundWebhooks),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

// CircuitThreshold returns the open threshold for a dependency, honoring
// per-dependency overrides.
func (cfg *Config) CircuitThreshold(name string) int {
	if t, ok := cfg.CircuitThresholdOverrides[name]; ok {
		return t
	}
	return cfg.CircuitOpenThreshold
}

func (cfg *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errs = append(errs, "MongoURI cannot be empty")
	} else if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errs = append(errs, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", cfg.MongoURI))
	}
	if cfg.MongoDatabaseName == "" {
		errs = append(errs, "MongoDatabaseName cannot be empty")
	}
	if cfg.MongoConnTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
	}

	if cfg.RequestTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.ReadTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}
	if cfg.MaxRequestSize <= 0 {
		errs = append(errs, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	if cfg.DailyCapacity <= 0 {
		errs = append(errs, fmt.Sprintf("DailyCapacity must be positive, got: %d", cfg.DailyCapacity))
	}
	if cfg.CancellationNotice < 0 {
		errs = append(errs, fmt.Sprintf("CancellationNotice cannot be negative, got: %s", cfg.CancellationNotice))
	}
	if cfg.BookingNumPrefix == "" {
		errs = append(errs, "BookingNumPrefix cannot be empty")
	}

	if cfg.LockTTL <= 0 {
		errs = append(errs, fmt.Sprintf("LockTTL must be positive, got: %s", cfg.LockTTL))
	}
	if cfg.LockWaitTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("LockWaitTimeout must be positive, got: %s", cfg.LockWaitTimeout))
	}
	if cfg.LockRetryInterval <= 0 {
		errs = append(errs, fmt.Sprintf("LockRetryInterval must be positive, got: %s", cfg.LockRetryInterval))
	}

	if cfg.CircuitOpenThreshold <= 0 {
		errs = append(errs, fmt.Sprintf("CircuitOpenThreshold must be positive, got: %d", cfg.CircuitOpenThreshold))
	}
	for name, threshold := range cfg.CircuitThresholdOverrides {
		if threshold <= 0 {
			errs = append(errs, fmt.Sprintf("Circuit threshold override for %q must be positive, got: %d", name, threshold))
		}
	}

	if cfg.QueueMaxAttempts <= 0 {
		errs = append(errs, fmt.Sprintf("QueueMaxAttempts must be positive, got: %d", cfg.QueueMaxAttempts))
	}
	if cfg.QueueBackoffBase <= 0 {
		errs = append(errs, fmt.Sprintf("QueueBackoffBase must be positive, got: %s", cfg.QueueBackoffBase))
	}
	if cfg.QueueBackoffMax < cfg.QueueBackoffBase {
		errs = append(errs, fmt.Sprintf("QueueBackoffMax (%s) must be >= QueueBackoffBase (%s)", cfg.QueueBackoffMax, cfg.QueueBackoffBase))
	}

	if cfg.WorkerPollInterval <= 0 {
		errs = append(errs, fmt.Sprintf("WorkerPollInterval must be positive, got: %s", cfg.WorkerPollInterval))
	}
	if cfg.WorkerBatchSize <= 0 {
		errs = append(errs, fmt.Sprintf("WorkerBatchSize must be positive, got: %d", cfg.WorkerBatchSize))
	}

	if len(errs) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, e := range errs {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, e)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"request_timeout", cfg.RequestTimeout,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"daily_capacity", cfg.DailyCapacity,
		"cancellation_notice", cfg.CancellationNotice,
		"booking_number_prefix", cfg.BookingNumPrefix,
		"lock_ttl", cfg.LockTTL,
		"lock_wait_timeout", cfg.LockWaitTimeout,
		"lock_retry_interval", cfg.LockRetryInterval,
		"circuit_open_threshold", cfg.CircuitOpenThreshold,
		"circuit_threshold_overrides", cfg.CircuitThresholdOverrides,
		"queue_max_attempts", cfg.QueueMaxAttempts,
		"queue_backoff_base", cfg.QueueBackoffBase,
		"queue_backoff_max", cfg.QueueBackoffMax,
		"worker_poll_interval", cfg.WorkerPollInterval,
		"worker_batch_size", cfg.WorkerBatchSize,
	)
}

func (cfg *Config) GracefulShutdown() {
	if cfg.Client != nil {
		cfg.Client.Close(cfg.Log)
	}
}

func redactMongoURI(uri string) string {
	re := regexp.MustCompile(`(mongodb(?:\+srv)?://)([^@/]+@)`)
	return re.ReplaceAllString(uri, "$1***@")
}

// NormalizePaginationLimit clamps a requested page size to the allowed range.
func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		return DefaultPageLimit
	}
	if limit > DefaultMaxPageLimit {
		return DefaultMaxPageLimit
	}
	return limit
}

// NormalizeOffset rejects negative offsets.
func NormalizeOffset(offset int64) int64 {
	if offset < 0 {
		return 0
	}
	return offset
}

func getEnvStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// getEnvPairs parses "name=3,other=5" into a map. Malformed entries are
// skipped rather than failing startup.
func getEnvPairs(key string) map[string]int {
	out := map[string]int{}
	raw := os.Getenv(key)
	if raw == "" {
		return out
	}
	for _, pair := range strings.Split(raw, ",") {
		name, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			continue
		}
		out[strings.TrimSpace(name)] = n
	}
	return out
}
