package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"guichet/pkg/client"
	"guichet/pkg/logger"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	RequestTimeout  time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	StaffingServiceURL string

	BookingMaxDaysAhead int
	BookingMaxRetries   int
	LeadTimeAlertDays   int
	SlotBatchMax        int
	AlertsTopic         string

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		RequestTimeout:  getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		StaffingServiceURL: getEnvStr(EnvStaffingServiceURL, DefaultStaffingServiceURL),

		BookingMaxDaysAhead: getEnvNum(EnvBookingMaxDaysAhead, DefaultBookingMaxDaysAhead),
		BookingMaxRetries:   getEnvNum(EnvBookingMaxRetries, DefaultBookingMaxRetries),
		LeadTimeAlertDays:   getEnvNum(EnvLeadTimeAlertDays, DefaultLeadTimeAlertDays),
		SlotBatchMax:        getEnvNum(EnvSlotBatchMax, DefaultSlotBatchMax),
		AlertsTopic:         getEnvStr(EnvAlertsTopic, DefaultAlertsTopic),
	}

	cfg.Log = logger.New(logger.Config{
		Level:   getEnvStr(EnvLogLevel, DefaultLogLevel),
		Format:  getEnvStr(EnvLogFormat, DefaultLogFormat),
		Service: serviceName,
	})

	cfg.Client = client.NewClient()
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)

	return cfg
}

func (cfg *Config) Validate() error {
	if cfg.MongoURI == "" {
		return fmt.Errorf("%s cannot be empty", EnvMongoURI)
	}
	if cfg.MongoDatabaseName == "" {
		return fmt.Errorf("%s cannot be empty", EnvMongoDatabaseName)
	}
	if cfg.BookingMaxRetries <= 0 {
		return fmt.Errorf("%s must be positive, got %d", EnvBookingMaxRetries, cfg.BookingMaxRetries)
	}
	if cfg.BookingMaxDaysAhead < 0 {
		return fmt.Errorf("%s cannot be negative, got %d", EnvBookingMaxDaysAhead, cfg.BookingMaxDaysAhead)
	}
	if cfg.LeadTimeAlertDays <= 0 {
		return fmt.Errorf("%s must be positive, got %d", EnvLeadTimeAlertDays, cfg.LeadTimeAlertDays)
	}
	if cfg.SlotBatchMax <= 0 {
		return fmt.Errorf("%s must be positive, got %d", EnvSlotBatchMax, cfg.SlotBatchMax)
	}
	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded",
		"mongo_database", cfg.MongoDatabaseName,
		"port", cfg.Port,
		"request_timeout", cfg.RequestTimeout,
		"booking_max_days_ahead", cfg.BookingMaxDaysAhead,
		"booking_max_retries", cfg.BookingMaxRetries,
		"lead_time_alert_days", cfg.LeadTimeAlertDays,
		"slot_batch_max", cfg.SlotBatchMax,
		"alerts_topic", cfg.AlertsTopic,
	)
}

func getEnvStr(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvNum(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
