package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "guichet"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort      = "8080"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultRequestTimeout  = 30 * time.Second
	DefaultReadTimeout     = 5 * time.Second
	DefaultWriteTimeout    = 10 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 15 * time.Second

	DefaultStaffingServiceURL = "http://localhost:8081"

	// Booking search looks at most this many business days past the
	// first reservable day unless the caller or the site says otherwise.
	DefaultBookingMaxDaysAhead = 3

	// Cap on search-and-reserve cycles per booking; each retry means a
	// concurrent writer won a slot between our read and our write.
	DefaultBookingMaxRetries = 10

	// A confirmed booking further out than this many business days
	// raises a long-lead-time alert.
	DefaultLeadTimeAlertDays = 3

	// Upper bound on slots created by one schedule-generation request.
	DefaultSlotBatchMax = 200

	DefaultAlertsTopic = "guichet.alerts"

	DefaultPaginationLimit = 20
	MaxPaginationLimit     = 100
)

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		return DefaultPaginationLimit
	}
	if limit > MaxPaginationLimit {
		return MaxPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	if offset < 0 {
		return 0
	}
	return offset
}
