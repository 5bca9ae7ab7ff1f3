package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-gis-markers/pkg/helpers"
)

const (
	EventUserRegistered = "user.registered"
	EventUserDeleted    = "user.deleted"
	EventMarkerCreated  = "marker.created"
)

// Event is the JSON body placed on the events queue.
type Event struct {
	Type       string         `json:"type"`
	OccurredAt time.Time      `json:"occurred_at"`
	Data       map[string]any `json:"data"`
}

func NewEvent(eventType string, data map[string]any) Event {
	return Event{Type: eventType, OccurredAt: time.Now().UTC(), Data: data}
}

// EventPublisher delivers domain events. Delivery is best effort: a failed
// publish never fails the request that produced the event.
type EventPublisher interface {
	Publish(ctx context.Context, e Event)
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) {}

// RabbitEvents publishes events to RabbitMQ.
type RabbitEvents struct {
	Pub     *helpers.RabbitPublisher
	Logger  *logrus.Logger
	Timeout time.Duration
}

func NewRabbitEvents(pub *helpers.RabbitPublisher, logger *logrus.Logger) *RabbitEvents {
	return &RabbitEvents{Pub: pub, Logger: logger, Timeout: 2 * time.Second}
}

func (r *RabbitEvents) Publish(ctx context.Context, e Event) {
	if r == nil || r.Pub == nil {
		return
	}
	c, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.Timeout)
	defer cancel()
	if err := r.Pub.PublishJSON(c, e.Type, e); err != nil && r.Logger != nil {
		r.Logger.WithError(err).WithField("event", e.Type).Warn("publish event failed")
	}
}
