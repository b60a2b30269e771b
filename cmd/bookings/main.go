package main

import (
	"guichet/internal/booking/handler"
	"guichet/internal/booking/repository"
	"guichet/internal/booking/service"
	"guichet/internal/booking/validator"
	"guichet/pkg/app"
	"guichet/pkg/client"
	"guichet/pkg/config"
	"guichet/pkg/kafka"
	kafkaconfig "guichet/pkg/kafka/config"
	kafka_middleware "guichet/pkg/kafka/middleware"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}

	// Log all configuration values
	cfg.LogConfiguration()

	cfg.Log.Info("Starting Bookings service")
	bookingService := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewBookingHandler(bookingService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.BookingService {
	scheduleValidator := validator.NewScheduleValidator(cfg.Log)
	slotRepo := repository.NewMongoSlotRepository(cfg)
	siteRepo := repository.NewMongoSiteRepository(cfg)
	alertRepo := repository.NewMongoAlertRepository(cfg)
	staffing := client.NewStaffingClient(cfg.StaffingServiceURL)
	publisher := initAlertPublisher(cfg)

	bookingService := service.NewBookingService(
		slotRepo,
		siteRepo,
		alertRepo,
		staffing,
		scheduleValidator,
		publisher,
		cfg,
	)

	cfg.Log.Info("Booking service initialized", "database", cfg.MongoDatabaseName)
	return bookingService
}

func initAlertPublisher(cfg *config.Config) service.EventPublisher {
	kafkaCfg := kafkaconfig.Load()
	if err := kafkaCfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}

	producer, err := kafka.NewProducer(kafkaCfg, cfg.AlertsTopic, cfg.AlertsTopic+".dlq")
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	}

	return producer
}
