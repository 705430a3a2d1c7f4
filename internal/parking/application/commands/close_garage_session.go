package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	billingDomain "github.com/openpark/parkcore/internal/billing/domain"
	"github.com/openpark/parkcore/internal/parking/application"
	"github.com/openpark/parkcore/internal/parking/domain/capacity"
	"github.com/openpark/parkcore/internal/parking/domain/session"
	tariffDomain "github.com/openpark/parkcore/internal/tariff/domain"
)

// CloseGarageSessionCommand identifies the garage session to close and when
// the vehicle left.
type CloseGarageSessionCommand struct {
	SessionID   uuid.UUID
	DepartureAt time.Time
}

// CloseGarageSessionHandler terminates garage sessions: the stay is priced
// by the tariff engine, charged, and only then is the session closed and
// the reserved space released. On payment failure the session stays active
// and unpaid and the space stays reserved, so the vehicle is still
// considered parked and the close can be retried.
type CloseGarageSessionHandler struct {
	sessions      session.Repository
	garages       tariffDomain.GarageRepository
	subscriptions tariffDomain.SubscriptionRepository
	engine        *tariffDomain.Engine
	charger       billingDomain.Charger
	ledger        capacity.Ledger
	publisher     application.EventPublisher
	logger        *slog.Logger
}

// NewCloseGarageSessionHandler creates a new CloseGarageSessionHandler.
func NewCloseGarageSessionHandler(
	sessions session.Repository,
	garages tariffDomain.GarageRepository,
	subscriptions tariffDomain.SubscriptionRepository,
	engine *tariffDomain.Engine,
	charger billingDomain.Charger,
	ledger capacity.Ledger,
	publisher application.EventPublisher,
	logger *slog.Logger,
) *CloseGarageSessionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CloseGarageSessionHandler{
		sessions:      sessions,
		garages:       garages,
		subscriptions: subscriptions,
		engine:        engine,
		charger:       charger,
		ledger:        ledger,
		publisher:     publisher,
		logger:        logger,
	}
}

// Handle executes the CloseGarageSessionCommand.
func (h *CloseGarageSessionHandler) Handle(ctx context.Context, cmd CloseGarageSessionCommand) (*session.Session, error) {
	s, err := h.sessions.FindByID(ctx, cmd.SessionID)
	if err != nil {
		return nil, err
	}

	// Preconditions before any pricing or payment, so failures are
	// detected without touching state.
	if s.Kind() != session.KindGarage || !s.IsActive() {
		return nil, session.ErrInvalidTransition
	}
	if cmd.DepartureAt.Before(s.ArrivalAt()) {
		return nil, session.ErrInvalidTimeRange
	}

	garage, err := h.garages.FindByID(ctx, s.GarageID())
	if err != nil {
		return nil, err
	}

	sub, err := h.findSubscription(ctx, s.OwnerID())
	if err != nil {
		return nil, err
	}

	cost, err := h.engine.PriceGarage(garage, s.ArrivalAt(), cmd.DepartureAt, sub)
	if err != nil {
		return nil, err
	}

	paymentRef := uuid.Nil
	if !cost.IsZero() {
		payment, err := h.charger.Charge(ctx, s.OwnerID(), cost)
		if err != nil {
			// Session stays active and unpaid, capacity stays reserved.
			return nil, err
		}
		paymentRef = payment.ID
	}

	if err := s.CloseGarage(cmd.DepartureAt, cost, paymentRef); err != nil {
		return nil, err
	}

	if err := h.sessions.Update(ctx, s); err != nil {
		return nil, err
	}
	application.PublishEvents(ctx, h.publisher, h.logger, s)

	if err := h.ledger.Release(ctx, garage.ID, s.Vehicle()); err != nil {
		// The session is already closed; a failed release needs operator
		// attention but must not fail the close.
		h.logger.Error("capacity release failed",
			"session_id", s.ID(),
			"garage_id", garage.ID,
			"error", err,
		)
	}

	return s, nil
}

func (h *CloseGarageSessionHandler) findSubscription(ctx context.Context, ownerID uuid.UUID) (*tariffDomain.Subscription, error) {
	sub, err := h.subscriptions.FindActiveByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, tariffDomain.ErrSubscriptionNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return sub, nil
}
