package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/openpark/parkcore/internal/parking/application"
	"github.com/openpark/parkcore/internal/parking/domain/session"
)

// SweepExpiredHandler flips active street sessions past their planned end
// to expired. Garage sessions have no planned end and are never touched;
// street fees were collected at creation, so no payment is involved.
//
// The sweep works on a snapshot of candidates and updates them one by one:
// a session it cannot update is logged and skipped rather than aborting
// the whole sweep.
type SweepExpiredHandler struct {
	sessions  session.Repository
	notifier  application.Notifier
	publisher application.EventPublisher
	logger    *slog.Logger
}

// NewSweepExpiredHandler creates a new SweepExpiredHandler.
func NewSweepExpiredHandler(
	sessions session.Repository,
	notifier application.Notifier,
	publisher application.EventPublisher,
	logger *slog.Logger,
) *SweepExpiredHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = application.NoopNotifier{}
	}
	return &SweepExpiredHandler{
		sessions:  sessions,
		notifier:  notifier,
		publisher: publisher,
		logger:    logger,
	}
}

// Handle expires every overdue street session and returns how many were
// flipped. Already expired sessions are not candidates, so a second sweep
// with no intervening changes is a no-op.
func (h *SweepExpiredHandler) Handle(ctx context.Context, now time.Time) (int, error) {
	candidates, err := h.sessions.FindExpiredStreet(ctx, now)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, s := range candidates {
		if err := s.Expire(now); err != nil {
			h.logger.Warn("skipping session during sweep",
				"session_id", s.ID(),
				"error", err,
			)
			continue
		}
		if err := h.sessions.Update(ctx, s); err != nil {
			h.logger.Warn("failed to persist expiry, skipping",
				"session_id", s.ID(),
				"error", err,
			)
			continue
		}
		expired++
		application.PublishEvents(ctx, h.publisher, h.logger, s)

		h.notifier.Notify(ctx, s.OwnerID(), application.NotificationSessionExpired, map[string]any{
			"session_id": s.ID().String(),
			"plate":      s.Plate(),
			"zone_id":    s.ZoneID(),
		})
	}

	return expired, nil
}
