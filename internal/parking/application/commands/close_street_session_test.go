package commands

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/openpark/parkcore/internal/parking/domain/session"
	"github.com/openpark/parkcore/internal/parking/domain/value_objects"
)

func activeStreetSession(t *testing.T, ownerID uuid.UUID) *session.Session {
	t.Helper()
	s, err := session.NewStreetSession(
		ownerID,
		value_objects.VehicleCar,
		"AB-123-CD",
		"blue",
		value_objects.MustNewPlannedDuration(2, 0),
		value_objects.MustNewMoney(200),
	)
	require.NoError(t, err)
	s.ClearDomainEvents()
	return s
}

func TestCloseStreetSessionHandler_Handle(t *testing.T) {
	ownerID := uuid.New()

	t.Run("closes an active session", func(t *testing.T) {
		sessions := new(mockSessionRepo)
		publisher := &recordingPublisher{}
		handler := NewCloseStreetSessionHandler(sessions, publisher)

		ctx := context.Background()
		s := activeStreetSession(t, ownerID)
		sessions.On("FindByID", ctx, s.ID()).Return(s, nil)
		sessions.On("Update", ctx, s).Return(nil)

		closed, err := handler.Handle(ctx, CloseStreetSessionCommand{SessionID: s.ID()})

		require.NoError(t, err)
		assert.Equal(t, session.StatusTerminated, closed.Status())
		// The fee was fixed at creation; closing does not touch it.
		assert.Equal(t, int64(200), closed.Cost().Cents())
		assert.Equal(t, []string{session.RoutingKeyTerminated}, publisher.routingKeys())

		sessions.AssertExpectations(t)
	})

	t.Run("unknown session", func(t *testing.T) {
		sessions := new(mockSessionRepo)
		handler := NewCloseStreetSessionHandler(sessions, nil)

		ctx := context.Background()
		id := uuid.New()
		sessions.On("FindByID", ctx, id).Return(nil, session.ErrNotFound)

		_, err := handler.Handle(ctx, CloseStreetSessionCommand{SessionID: id})

		assert.ErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("already terminated", func(t *testing.T) {
		sessions := new(mockSessionRepo)
		handler := NewCloseStreetSessionHandler(sessions, nil)

		ctx := context.Background()
		s := activeStreetSession(t, ownerID)
		require.NoError(t, s.CloseStreet())
		sessions.On("FindByID", ctx, s.ID()).Return(s, nil)

		_, err := handler.Handle(ctx, CloseStreetSessionCommand{SessionID: s.ID()})

		assert.ErrorIs(t, err, session.ErrInvalidTransition)
		sessions.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("expired session cannot be closed", func(t *testing.T) {
		sessions := new(mockSessionRepo)
		handler := NewCloseStreetSessionHandler(sessions, nil)

		ctx := context.Background()
		s := activeStreetSession(t, ownerID)
		require.NoError(t, s.Expire(s.PlannedEndAt().Add(1)))
		sessions.On("FindByID", ctx, s.ID()).Return(s, nil)

		_, err := handler.Handle(ctx, CloseStreetSessionCommand{SessionID: s.ID()})

		assert.ErrorIs(t, err, session.ErrInvalidTransition)
	})
}
