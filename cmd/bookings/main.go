package main

import (
	"tourbook/internal/bookings/events"
	"tourbook/internal/bookings/handler"
	"tourbook/internal/bookings/repository"
	"tourbook/internal/bookings/service"
	"tourbook/internal/bookings/validator"
	"tourbook/internal/queue"
	"tourbook/internal/resilience/degrade"
	reshandler "tourbook/internal/resilience/handler"
	"tourbook/internal/resilience/health"
	"tourbook/pkg/app"
	"tourbook/pkg/config"
	"tourbook/pkg/kafka"
	kafka_config "tourbook/pkg/kafka/config"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Bookings service")

	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	monitor := health.NewMonitor(
		health.NewMongoStore(db),
		cfg.CircuitOpenThreshold,
		cfg.Log,
		health.WithThresholdOverrides(cfg.CircuitThresholdOverrides),
	)
	queueService := queue.NewService(queue.NewMongoRepository(db), queue.Config{
		DefaultMaxAttempts: cfg.QueueMaxAttempts,
		BackoffBase:        cfg.QueueBackoffBase,
		BackoffMax:         cfg.QueueBackoffMax,
	}, cfg.Log)
	router := degrade.NewRouter(queueService, monitor, cfg.Log)

	bookingService := initServices(cfg, router)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		handler.NewBookingHandler(bookingService, cfg.Log),
		reshandler.NewOpsHandler(monitor, queueService, cfg.Log),
	)
	serverApp.Run()
}

func initServices(cfg *config.Config, router *degrade.Router) service.BookingService {
	bookingValidator := validator.NewBookingValidator(cfg.Log)
	bookingRepo := repository.NewMongoBookingRepository(cfg)
	customerRepo := repository.NewMongoCustomerRepository(cfg)
	lockRepo := repository.NewMongoDateLockRepository(cfg)
	counterRepo := repository.NewMongoCounterRepository(cfg)
	timelineRepo := repository.NewMongoTimelineRepository(cfg)

	bookingService := service.NewBookingService(
		bookingRepo,
		customerRepo,
		lockRepo,
		counterRepo,
		timelineRepo,
		bookingValidator,
		initEventPublisher(cfg, router),
		cfg,
	)

	cfg.Log.Info("Booking service initialized", "database", cfg.MongoDatabaseName)
	return bookingService
}

// initEventPublisher builds the Kafka publisher and routes it through the
// degradation router so a flaky broker queues events instead of failing
// bookings.
func initEventPublisher(cfg *config.Config, router *degrade.Router) events.Publisher {
	producer, err := kafka.NewProducer(kafka_config.Load(), cfg.TopicBookingEvents)
	if err != nil {
		cfg.Log.Fatal("Failed to create booking events producer", "error", err)
	}
	return events.NewDegradingPublisher(events.NewKafkaPublisher(producer), router)
}
