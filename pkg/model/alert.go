package model

// AlertKind identifies the observational alert records the booking
// engine emits. Alerts never block or fail a booking call.
type AlertKind string

const (
	AlertNoSlotsAvailable AlertKind = "no_slots_available"
	AlertLongLeadTime     AlertKind = "long_lead_time"
)

type Alert struct {
	Meta    `bson:",inline"`
	Kind    AlertKind `json:"kind" bson:"kind"`
	SiteID  string    `json:"site_id" bson:"site_id"`
	Message string    `json:"message" bson:"message"`
}
