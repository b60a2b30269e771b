package service

import (
	"context"

	"guichet/internal/booking/repository"
	"guichet/pkg/config"
	"guichet/pkg/kafka"
	"guichet/pkg/model"
)

// EventPublisher is the slice of the Kafka producer the alert emitter
// needs.
type EventPublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// alertEmitter records observational alerts in the alerts collection
// and publishes them downstream. Emission is fire-and-forget: failures
// are logged and never surfaced to the booking caller.
type alertEmitter struct {
	repo      repository.AlertRepository
	publisher EventPublisher
	cfg       *config.Config
}

func newAlertEmitter(repo repository.AlertRepository, publisher EventPublisher, cfg *config.Config) *alertEmitter {
	return &alertEmitter{repo: repo, publisher: publisher, cfg: cfg}
}

func (e *alertEmitter) Emit(ctx context.Context, siteID string, kind model.AlertKind, message string) {
	alert := &model.Alert{
		Kind:    kind,
		SiteID:  siteID,
		Message: message,
	}

	if err := e.repo.Insert(ctx, alert); err != nil {
		e.cfg.Log.Error("Failed to record alert",
			"kind", kind,
			"site_id", siteID,
			"error", err,
		)
	}

	if e.publisher == nil {
		return
	}

	msg := kafka.NewMessage().
		WithKey(siteID).
		WithEventType(string(kind)).
		WithSource("bookings").
		WithValue(alert).
		Build()
	msg.Topic = e.cfg.AlertsTopic

	if err := e.publisher.Publish(ctx, msg); err != nil {
		e.cfg.Log.Error("Failed to publish alert event",
			"kind", kind,
			"site_id", siteID,
			"error", err,
		)
	}
}
