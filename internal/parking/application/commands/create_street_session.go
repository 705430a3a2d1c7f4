package commands

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	billingDomain "github.com/openpark/parkcore/internal/billing/domain"
	"github.com/openpark/parkcore/internal/parking/application"
	"github.com/openpark/parkcore/internal/parking/domain/session"
	"github.com/openpark/parkcore/internal/parking/domain/value_objects"
	tariffDomain "github.com/openpark/parkcore/internal/tariff/domain"
)

// CreateStreetSessionCommand contains the data needed to open a street session.
type CreateStreetSessionCommand struct {
	OwnerID      uuid.UUID
	Vehicle      value_objects.VehicleKind
	Plate        string
	ZoneID       string
	PlannedHours int
	PlannedMins  int
}

// CreateStreetSessionHandler opens street sessions: the fee is fixed by the
// tariff engine and collected before anything is persisted. A payment
// failure leaves no partial state behind.
type CreateStreetSessionHandler struct {
	sessions      session.Repository
	zones         tariffDomain.ZoneRepository
	subscriptions tariffDomain.SubscriptionRepository
	engine        *tariffDomain.Engine
	charger       billingDomain.Charger
	publisher     application.EventPublisher
}

// NewCreateStreetSessionHandler creates a new CreateStreetSessionHandler.
func NewCreateStreetSessionHandler(
	sessions session.Repository,
	zones tariffDomain.ZoneRepository,
	subscriptions tariffDomain.SubscriptionRepository,
	engine *tariffDomain.Engine,
	charger billingDomain.Charger,
	publisher application.EventPublisher,
) *CreateStreetSessionHandler {
	return &CreateStreetSessionHandler{
		sessions:      sessions,
		zones:         zones,
		subscriptions: subscriptions,
		engine:        engine,
		charger:       charger,
		publisher:     publisher,
	}
}

// Handle executes the CreateStreetSessionCommand.
func (h *CreateStreetSessionHandler) Handle(ctx context.Context, cmd CreateStreetSessionCommand) (*session.Session, error) {
	// Single-active-session invariant, checked up front. The repository's
	// conditional Create closes the race window on concurrent calls.
	if _, err := h.sessions.FindActiveByOwner(ctx, cmd.OwnerID); err == nil {
		return nil, session.ErrOwnerHasActiveSession
	} else if !errors.Is(err, session.ErrNotFound) {
		return nil, err
	}

	zone, err := h.zones.FindByID(ctx, cmd.ZoneID)
	if err != nil {
		return nil, err
	}

	duration, err := value_objects.NewPlannedDuration(cmd.PlannedHours, cmd.PlannedMins)
	if err != nil {
		return nil, err
	}

	sub, err := h.findSubscription(ctx, cmd.OwnerID)
	if err != nil {
		return nil, err
	}

	cost, err := h.engine.PriceStreet(zone, duration, sub, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	paymentRef := uuid.Nil
	if !cost.IsZero() {
		payment, err := h.charger.Charge(ctx, cmd.OwnerID, cost)
		if err != nil {
			return nil, err
		}
		paymentRef = payment.ID
	}

	s, err := session.NewStreetSession(cmd.OwnerID, cmd.Vehicle, cmd.Plate, cmd.ZoneID, duration, cost)
	if err != nil {
		return nil, err
	}
	if err := s.MarkPaid(paymentRef); err != nil {
		return nil, err
	}

	if err := h.sessions.Create(ctx, s); err != nil {
		return nil, err
	}
	application.PublishEvents(ctx, h.publisher, nil, s)

	return s, nil
}

func (h *CreateStreetSessionHandler) findSubscription(ctx context.Context, ownerID uuid.UUID) (*tariffDomain.Subscription, error) {
	sub, err := h.subscriptions.FindActiveByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, tariffDomain.ErrSubscriptionNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return sub, nil
}
