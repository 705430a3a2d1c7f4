package commands

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/openpark/parkcore/internal/parking/application"
	"github.com/openpark/parkcore/internal/parking/domain/capacity"
	"github.com/openpark/parkcore/internal/parking/domain/session"
	"github.com/openpark/parkcore/internal/parking/domain/value_objects"
	tariffDomain "github.com/openpark/parkcore/internal/tariff/domain"
)

// CreateGarageSessionCommand contains the data needed to open a garage session.
type CreateGarageSessionCommand struct {
	OwnerID  uuid.UUID
	Vehicle  value_objects.VehicleKind
	Plate    string
	GarageID uuid.UUID
}

// CreateGarageSessionHandler opens garage sessions. A space is reserved in
// the capacity ledger before the session is persisted; no payment occurs at
// entry. A failed reservation leaves no partial state behind.
type CreateGarageSessionHandler struct {
	sessions  session.Repository
	garages   tariffDomain.GarageRepository
	ledger    capacity.Ledger
	publisher application.EventPublisher
}

// NewCreateGarageSessionHandler creates a new CreateGarageSessionHandler.
func NewCreateGarageSessionHandler(
	sessions session.Repository,
	garages tariffDomain.GarageRepository,
	ledger capacity.Ledger,
	publisher application.EventPublisher,
) *CreateGarageSessionHandler {
	return &CreateGarageSessionHandler{
		sessions:  sessions,
		garages:   garages,
		ledger:    ledger,
		publisher: publisher,
	}
}

// Handle executes the CreateGarageSessionCommand.
func (h *CreateGarageSessionHandler) Handle(ctx context.Context, cmd CreateGarageSessionCommand) (*session.Session, error) {
	if _, err := h.sessions.FindActiveByOwner(ctx, cmd.OwnerID); err == nil {
		return nil, session.ErrOwnerHasActiveSession
	} else if !errors.Is(err, session.ErrNotFound) {
		return nil, err
	}

	garage, err := h.garages.FindByID(ctx, cmd.GarageID)
	if err != nil {
		return nil, err
	}

	if err := h.ledger.Reserve(ctx, garage.ID, cmd.Vehicle); err != nil {
		return nil, err
	}

	s, err := session.NewGarageSession(cmd.OwnerID, cmd.Vehicle, cmd.Plate, garage.ID)
	if err != nil {
		h.releaseReservation(ctx, garage.ID, cmd.Vehicle)
		return nil, err
	}

	if err := h.sessions.Create(ctx, s); err != nil {
		h.releaseReservation(ctx, garage.ID, cmd.Vehicle)
		return nil, err
	}
	application.PublishEvents(ctx, h.publisher, nil, s)

	return s, nil
}

// releaseReservation compensates a reservation whose session never came to
// exist, so the space is not leaked.
func (h *CreateGarageSessionHandler) releaseReservation(ctx context.Context, garageID uuid.UUID, vehicle value_objects.VehicleKind) {
	_ = h.ledger.Release(ctx, garageID, vehicle)
}
