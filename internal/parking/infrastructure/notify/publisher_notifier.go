package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/openpark/parkcore/internal/parking/application"
	"github.com/openpark/parkcore/internal/shared/infrastructure/eventbus"
)

// PublisherNotifier delivers notifications through the event bus so a
// downstream consumer can push them to the owner. Delivery is best-effort:
// a publish failure is logged and swallowed.
type PublisherNotifier struct {
	publisher eventbus.Publisher
	logger    *slog.Logger
}

// NewPublisherNotifier creates an event-bus backed notifier.
func NewPublisherNotifier(publisher eventbus.Publisher, logger *slog.Logger) *PublisherNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &PublisherNotifier{publisher: publisher, logger: logger}
}

type notificationMessage struct {
	OwnerID    uuid.UUID      `json:"owner_id"`
	Kind       string         `json:"kind"`
	Payload    map[string]any `json:"payload,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Notify publishes the notification under parking.notification.<kind>.
func (n *PublisherNotifier) Notify(ctx context.Context, ownerID uuid.UUID, kind application.NotificationKind, payload map[string]any) {
	message := notificationMessage{
		OwnerID:    ownerID,
		Kind:       string(kind),
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	}

	body, err := json.Marshal(message)
	if err != nil {
		n.logger.Error("failed to encode notification",
			"owner_id", ownerID,
			"kind", kind,
			"error", err,
		)
		return
	}

	routingKey := "parking.notification." + string(kind)
	if err := n.publisher.Publish(ctx, routingKey, body); err != nil {
		n.logger.Warn("failed to publish notification",
			"owner_id", ownerID,
			"kind", kind,
			"error", err,
		)
	}
}
