package commands

import (
	"context"

	"github.com/google/uuid"

	"github.com/openpark/parkcore/internal/parking/application"
	"github.com/openpark/parkcore/internal/parking/domain/session"
)

// CloseStreetSessionCommand identifies the street session to close.
type CloseStreetSessionCommand struct {
	SessionID uuid.UUID
}

// CloseStreetSessionHandler terminates street sessions. The cost was fixed
// and collected at creation, so closing involves no payment. Closing an
// already terminated or expired session is an error, not a no-op.
type CloseStreetSessionHandler struct {
	sessions  session.Repository
	publisher application.EventPublisher
}

// NewCloseStreetSessionHandler creates a new CloseStreetSessionHandler.
func NewCloseStreetSessionHandler(sessions session.Repository, publisher application.EventPublisher) *CloseStreetSessionHandler {
	return &CloseStreetSessionHandler{sessions: sessions, publisher: publisher}
}

// Handle executes the CloseStreetSessionCommand.
func (h *CloseStreetSessionHandler) Handle(ctx context.Context, cmd CloseStreetSessionCommand) (*session.Session, error) {
	s, err := h.sessions.FindByID(ctx, cmd.SessionID)
	if err != nil {
		return nil, err
	}

	if err := s.CloseStreet(); err != nil {
		return nil, err
	}

	if err := h.sessions.Update(ctx, s); err != nil {
		return nil, err
	}
	application.PublishEvents(ctx, h.publisher, nil, s)

	return s, nil
}
