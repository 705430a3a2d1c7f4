package application

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/openpark/parkcore/internal/shared/domain"
)

// EventPublisher publishes serialized domain events to the message broker.
// The event bus publisher satisfies this.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload []byte) error
}

type eventEnvelope struct {
	EventID       uuid.UUID       `json:"event_id"`
	AggregateID   uuid.UUID       `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Data          json.RawMessage `json:"data"`
}

// PublishEvents drains an aggregate's uncommitted events onto the bus.
// Publication is best-effort: the state change is already persisted, so a
// broker failure is logged and never surfaced to the caller.
func PublishEvents(ctx context.Context, publisher EventPublisher, logger *slog.Logger, aggregate domain.AggregateRoot) {
	if publisher == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}

	for _, event := range aggregate.DomainEvents() {
		data, err := json.Marshal(event)
		if err != nil {
			logger.Error("failed to encode domain event",
				"routing_key", event.RoutingKey(),
				"event_id", event.EventID(),
				"error", err,
			)
			continue
		}

		envelope := eventEnvelope{
			EventID:       event.EventID(),
			AggregateID:   event.AggregateID(),
			AggregateType: event.AggregateType(),
			OccurredAt:    event.OccurredAt(),
			Data:          data,
		}
		body, err := json.Marshal(envelope)
		if err != nil {
			logger.Error("failed to encode event envelope",
				"routing_key", event.RoutingKey(),
				"event_id", event.EventID(),
				"error", err,
			)
			continue
		}

		if err := publisher.Publish(ctx, event.RoutingKey(), body); err != nil {
			logger.Warn("failed to publish domain event",
				"routing_key", event.RoutingKey(),
				"event_id", event.EventID(),
				"error", err,
			)
		}
	}
	aggregate.ClearDomainEvents()
}
