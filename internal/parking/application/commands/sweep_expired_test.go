package commands

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpark/parkcore/internal/parking/application"
	"github.com/openpark/parkcore/internal/parking/domain/session"
	"github.com/openpark/parkcore/internal/parking/domain/value_objects"
	"github.com/openpark/parkcore/internal/parking/infrastructure/persistence"
)

func seedStreetSession(t *testing.T, repo *persistence.MemorySessionRepository, duration value_objects.PlannedDuration) *session.Session {
	t.Helper()
	s, err := session.NewStreetSession(uuid.New(), value_objects.VehicleCar, "AB-123-CD", "blue", duration, value_objects.ZeroMoney())
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), s))
	return s
}

func TestSweepExpiredHandler_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("expires overdue street sessions", func(t *testing.T) {
		repo := persistence.NewMemorySessionRepository()
		notifier := &recordingNotifier{}
		publisher := &recordingPublisher{}
		handler := NewSweepExpiredHandler(repo, notifier, publisher, nil)

		overdue := seedStreetSession(t, repo, value_objects.MustNewPlannedDuration(0, 30))
		running := seedStreetSession(t, repo, value_objects.MustNewPlannedDuration(4, 0))

		now := overdue.PlannedEndAt().Add(time.Minute)
		expired, err := handler.Handle(ctx, now)

		require.NoError(t, err)
		assert.Equal(t, 1, expired)

		got, err := repo.FindByID(ctx, overdue.ID())
		require.NoError(t, err)
		assert.Equal(t, session.StatusExpired, got.Status())

		got, err = repo.FindByID(ctx, running.ID())
		require.NoError(t, err)
		assert.Equal(t, session.StatusActive, got.Status())

		notifications := notifier.notifications()
		require.Len(t, notifications, 1)
		assert.Equal(t, overdue.OwnerID(), notifications[0].OwnerID)
		assert.Equal(t, application.NotificationSessionExpired, notifications[0].Kind)

		assert.Equal(t, []string{session.RoutingKeyExpired}, publisher.routingKeys())
	})

	t.Run("second sweep is a no-op", func(t *testing.T) {
		repo := persistence.NewMemorySessionRepository()
		notifier := &recordingNotifier{}
		handler := NewSweepExpiredHandler(repo, notifier, nil, nil)

		overdue := seedStreetSession(t, repo, value_objects.MustNewPlannedDuration(0, 30))
		now := overdue.PlannedEndAt().Add(time.Minute)

		expired, err := handler.Handle(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, 1, expired)

		expired, err = handler.Handle(ctx, now.Add(time.Minute))
		require.NoError(t, err)
		assert.Equal(t, 0, expired)
		assert.Len(t, notifier.notifications(), 1)
	})

	t.Run("garage sessions are never swept", func(t *testing.T) {
		repo := persistence.NewMemorySessionRepository()
		handler := NewSweepExpiredHandler(repo, nil, nil, nil)

		g, err := session.NewGarageSession(uuid.New(), value_objects.VehicleCar, "AB-123-CD", uuid.New())
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, g))

		expired, err := handler.Handle(ctx, time.Now().Add(48*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 0, expired)

		got, err := repo.FindByID(ctx, g.ID())
		require.NoError(t, err)
		assert.Equal(t, session.StatusActive, got.Status())
	})

	t.Run("repository failure aborts the sweep", func(t *testing.T) {
		sessions := new(mockSessionRepo)
		handler := NewSweepExpiredHandler(sessions, nil, nil, nil)

		now := time.Now()
		sessions.On("FindExpiredStreet", ctx, now).Return(nil, assert.AnError)

		_, err := handler.Handle(ctx, now)
		assert.ErrorIs(t, err, assert.AnError)
	})
}
