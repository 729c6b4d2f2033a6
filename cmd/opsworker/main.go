package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"tourbook/internal/queue"
	"tourbook/internal/resilience/health"
	"tourbook/internal/worker"
	"tourbook/pkg/config"
	"tourbook/pkg/kafka"
	kafka_config "tourbook/pkg/kafka/config"
	"tourbook/pkg/model"
)

const ServiceName = "opsworker"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting operations replay worker")

	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	queueService := queue.NewService(queue.NewMongoRepository(db), queue.Config{
		DefaultMaxAttempts: cfg.QueueMaxAttempts,
		BackoffBase:        cfg.QueueBackoffBase,
		BackoffMax:         cfg.QueueBackoffMax,
	}, cfg.Log)
	monitor := health.NewMonitor(
		health.NewMongoStore(db),
		cfg.CircuitOpenThreshold,
		cfg.Log,
		health.WithThresholdOverrides(cfg.CircuitThresholdOverrides),
	)

	engine := worker.New(queueService, monitor, newProducer(cfg, cfg.TopicOpsAlerts), worker.Config{
		PollInterval: cfg.WorkerPollInterval,
		BatchSize:    cfg.WorkerBatchSize,
	}, cfg.Log)

	registerExecutors(cfg, engine)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := engine.Run(ctx); err != nil {
		cfg.Log.Error("Worker stopped with error", "error", err)
	}
	cfg.Log.Info("Worker shut down")
}

// registerExecutors wires each deferred operation type to the outbound topic
// that carries it. Payment operations share one producer since they target the
// same gateway topic.
func registerExecutors(cfg *config.Config, engine *worker.Engine) {
	payments := newProducer(cfg, cfg.TopicOutboundPayments)
	email := newProducer(cfg, cfg.TopicOutboundEmail)
	webhooks := newProducer(cfg, cfg.TopicOutboundWebhooks)
	bookingEvents := newProducer(cfg, cfg.TopicBookingEvents)

	engine.Register(worker.NewKafkaRelayExecutor(model.OpTypePaymentCreate, model.DepPaymentGateway, payments, cfg.Log))
	engine.Register(worker.NewKafkaRelayExecutor(model.OpTypePaymentRefund, model.DepPaymentGateway, payments, cfg.Log))
	engine.Register(worker.NewKafkaRelayExecutor(model.OpTypeEmailSend, model.DepEmailSender, email, cfg.Log))
	engine.Register(worker.NewKafkaRelayExecutor(model.OpTypeWebhookSend, model.DepEventBus, webhooks, cfg.Log))
	engine.Register(worker.NewKafkaRelayExecutor(model.OpTypeEventPublish, model.DepEventBus, bookingEvents, cfg.Log))
}

func newProducer(cfg *config.Config, topic string) *kafka.Producer {
	producer, err := kafka.NewProducer(kafka_config.Load(), topic)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "topic", topic, "error", err)
	}
	return producer
}
