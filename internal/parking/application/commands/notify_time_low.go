package commands

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openpark/parkcore/internal/parking/application"
	"github.com/openpark/parkcore/internal/parking/domain/session"
)

// NotifyTimeLowHandler sends a one-shot warning when an active street
// session's remaining paid time drops below the threshold. Delivery is
// best effort; a session is warned at most once per process lifetime.
type NotifyTimeLowHandler struct {
	sessions  session.Repository
	notifier  application.Notifier
	publisher application.EventPublisher
	threshold time.Duration

	mu       sync.Mutex
	notified map[uuid.UUID]struct{}
}

// NewNotifyTimeLowHandler creates a new NotifyTimeLowHandler.
func NewNotifyTimeLowHandler(sessions session.Repository, notifier application.Notifier, publisher application.EventPublisher, threshold time.Duration) *NotifyTimeLowHandler {
	if notifier == nil {
		notifier = application.NoopNotifier{}
	}
	return &NotifyTimeLowHandler{
		sessions:  sessions,
		notifier:  notifier,
		publisher: publisher,
		threshold: threshold,
		notified:  make(map[uuid.UUID]struct{}),
	}
}

// Handle warns owners of street sessions ending within the threshold and
// returns how many notifications were sent.
func (h *NotifyTimeLowHandler) Handle(ctx context.Context, now time.Time) (int, error) {
	candidates, err := h.sessions.FindActiveStreetEndingBefore(ctx, now.Add(h.threshold))
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, s := range candidates {
		remaining := s.RemainingAt(now)
		if remaining <= 0 {
			// Past the planned end already; the sweeper owns that case.
			continue
		}
		if !h.markNotified(s.ID()) {
			continue
		}

		h.notifier.Notify(ctx, s.OwnerID(), application.NotificationTimeLow, map[string]any{
			"session_id":        s.ID().String(),
			"plate":             s.Plate(),
			"remaining_seconds": int(remaining.Seconds()),
		})
		if err := s.RaiseTimeLow(remaining); err == nil {
			application.PublishEvents(ctx, h.publisher, nil, s)
		}
		sent++
	}

	return sent, nil
}

// markNotified records the session as warned; false if already warned.
func (h *NotifyTimeLowHandler) markNotified(id uuid.UUID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.notified[id]; ok {
		return false
	}
	h.notified[id] = struct{}{}
	return true
}
