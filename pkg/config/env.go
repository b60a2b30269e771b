package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort      = "PORT"
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"

	EnvRequestTimeout  = "REQUEST_TIMEOUT"
	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvStaffingServiceURL = "STAFFING_SERVICE_URL"

	EnvBookingMaxDaysAhead = "BOOKING_MAX_DAYS_AHEAD"
	EnvBookingMaxRetries   = "BOOKING_MAX_RETRIES"
	EnvLeadTimeAlertDays   = "LEAD_TIME_ALERT_DAYS"
	EnvSlotBatchMax        = "SLOT_BATCH_MAX"
	EnvAlertsTopic         = "ALERTS_TOPIC"
)
