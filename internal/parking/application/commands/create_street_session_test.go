package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	billingDomain "github.com/openpark/parkcore/internal/billing/domain"
	"github.com/openpark/parkcore/internal/parking/domain/session"
	"github.com/openpark/parkcore/internal/parking/domain/value_objects"
	tariffDomain "github.com/openpark/parkcore/internal/tariff/domain"
)

func blueZone() *tariffDomain.Zone {
	return &tariffDomain.Zone{ID: tariffDomain.ZoneBlue, Label: "Blue", MaxDuration: 24 * time.Hour}
}

func TestCreateStreetSessionHandler_Handle(t *testing.T) {
	ownerID := uuid.New()
	engine := tariffDomain.NewEngine(tariffDomain.DefaultConfig())

	cmd := CreateStreetSessionCommand{
		OwnerID:      ownerID,
		Vehicle:      value_objects.VehicleCar,
		Plate:        "AB-123-CD",
		ZoneID:       tariffDomain.ZoneBlue,
		PlannedHours: 2,
	}

	t.Run("creates, charges and publishes", func(t *testing.T) {
		sessions := new(mockSessionRepo)
		zones := new(mockZoneRepo)
		subs := new(mockSubscriptionRepo)
		charger := new(mockCharger)
		publisher := &recordingPublisher{}
		handler := NewCreateStreetSessionHandler(sessions, zones, subs, engine, charger, publisher)

		ctx := context.Background()
		sessions.On("FindActiveByOwner", ctx, ownerID).Return(nil, session.ErrNotFound)
		zones.On("FindByID", ctx, tariffDomain.ZoneBlue).Return(blueZone(), nil)
		subs.On("FindActiveByOwner", ctx, ownerID).Return(nil, tariffDomain.ErrSubscriptionNotFound)
		// 120 minutes in blue costs 2.00.
		amount := value_objects.MustNewMoney(200)
		charger.On("Charge", ctx, ownerID, amount).Return(succeededPayment(ownerID, amount), nil)
		sessions.On("Create", ctx, mock.AnythingOfType("*session.Session")).Return(nil)

		s, err := handler.Handle(ctx, cmd)

		require.NoError(t, err)
		assert.Equal(t, session.KindStreet, s.Kind())
		assert.Equal(t, int64(200), s.Cost().Cents())
		assert.Equal(t, session.PaymentPaid, s.PaymentStatus())
		assert.NotEqual(t, uuid.Nil, s.PaymentRef())
		assert.Equal(t, []string{session.RoutingKeyCreated}, publisher.routingKeys())
		assert.Empty(t, s.DomainEvents())

		sessions.AssertExpectations(t)
		charger.AssertExpectations(t)
	})

	t.Run("free stay skips the charger", func(t *testing.T) {
		sessions := new(mockSessionRepo)
		zones := new(mockZoneRepo)
		subs := new(mockSubscriptionRepo)
		charger := new(mockCharger)
		handler := NewCreateStreetSessionHandler(sessions, zones, subs, engine, charger, nil)

		ctx := context.Background()
		sessions.On("FindActiveByOwner", ctx, ownerID).Return(nil, session.ErrNotFound)
		zones.On("FindByID", ctx, tariffDomain.ZoneBlue).Return(blueZone(), nil)
		subs.On("FindActiveByOwner", ctx, ownerID).Return(nil, tariffDomain.ErrSubscriptionNotFound)
		sessions.On("Create", ctx, mock.AnythingOfType("*session.Session")).Return(nil)

		free := cmd
		free.PlannedHours = 1
		free.PlannedMins = 30

		s, err := handler.Handle(ctx, free)

		require.NoError(t, err)
		assert.True(t, s.Cost().IsZero())
		assert.Equal(t, uuid.Nil, s.PaymentRef())
		charger.AssertNotCalled(t, "Charge", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("owner already has an active session", func(t *testing.T) {
		sessions := new(mockSessionRepo)
		handler := NewCreateStreetSessionHandler(sessions, new(mockZoneRepo), new(mockSubscriptionRepo), engine, new(mockCharger), nil)

		ctx := context.Background()
		existing, _ := session.NewStreetSession(ownerID, value_objects.VehicleCar, "XX-000-XX", tariffDomain.ZoneRed, value_objects.MustNewPlannedDuration(1, 0), value_objects.ZeroMoney())
		sessions.On("FindActiveByOwner", ctx, ownerID).Return(existing, nil)

		_, err := handler.Handle(ctx, cmd)

		assert.ErrorIs(t, err, session.ErrOwnerHasActiveSession)
		sessions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unknown zone", func(t *testing.T) {
		sessions := new(mockSessionRepo)
		zones := new(mockZoneRepo)
		handler := NewCreateStreetSessionHandler(sessions, zones, new(mockSubscriptionRepo), engine, new(mockCharger), nil)

		ctx := context.Background()
		sessions.On("FindActiveByOwner", ctx, ownerID).Return(nil, session.ErrNotFound)
		zones.On("FindByID", ctx, "nowhere").Return(nil, tariffDomain.ErrZoneNotFound)

		bad := cmd
		bad.ZoneID = "nowhere"
		_, err := handler.Handle(ctx, bad)

		assert.ErrorIs(t, err, tariffDomain.ErrZoneNotFound)
	})

	t.Run("duration past the zone maximum", func(t *testing.T) {
		sessions := new(mockSessionRepo)
		zones := new(mockZoneRepo)
		subs := new(mockSubscriptionRepo)
		handler := NewCreateStreetSessionHandler(sessions, zones, subs, engine, new(mockCharger), nil)

		ctx := context.Background()
		sessions.On("FindActiveByOwner", ctx, ownerID).Return(nil, session.ErrNotFound)
		zone := blueZone()
		zone.MaxDuration = time.Hour
		zones.On("FindByID", ctx, tariffDomain.ZoneBlue).Return(zone, nil)
		subs.On("FindActiveByOwner", ctx, ownerID).Return(nil, tariffDomain.ErrSubscriptionNotFound)

		_, err := handler.Handle(ctx, cmd)

		assert.ErrorIs(t, err, tariffDomain.ErrDurationExceedsMax)
		sessions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("payment failure leaves no state behind", func(t *testing.T) {
		sessions := new(mockSessionRepo)
		zones := new(mockZoneRepo)
		subs := new(mockSubscriptionRepo)
		charger := new(mockCharger)
		handler := NewCreateStreetSessionHandler(sessions, zones, subs, engine, charger, nil)

		ctx := context.Background()
		sessions.On("FindActiveByOwner", ctx, ownerID).Return(nil, session.ErrNotFound)
		zones.On("FindByID", ctx, tariffDomain.ZoneBlue).Return(blueZone(), nil)
		subs.On("FindActiveByOwner", ctx, ownerID).Return(nil, tariffDomain.ErrSubscriptionNotFound)
		charger.On("Charge", ctx, ownerID, mock.Anything).Return(nil, billingDomain.ErrPaymentFailed)

		_, err := handler.Handle(ctx, cmd)

		assert.ErrorIs(t, err, billingDomain.ErrPaymentFailed)
		sessions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("race lost at the conditional insert", func(t *testing.T) {
		sessions := new(mockSessionRepo)
		zones := new(mockZoneRepo)
		subs := new(mockSubscriptionRepo)
		charger := new(mockCharger)
		handler := NewCreateStreetSessionHandler(sessions, zones, subs, engine, charger, nil)

		ctx := context.Background()
		sessions.On("FindActiveByOwner", ctx, ownerID).Return(nil, session.ErrNotFound)
		zones.On("FindByID", ctx, tariffDomain.ZoneBlue).Return(blueZone(), nil)
		subs.On("FindActiveByOwner", ctx, ownerID).Return(nil, tariffDomain.ErrSubscriptionNotFound)
		amount := value_objects.MustNewMoney(200)
		charger.On("Charge", ctx, ownerID, amount).Return(succeededPayment(ownerID, amount), nil)
		sessions.On("Create", ctx, mock.AnythingOfType("*session.Session")).Return(session.ErrOwnerHasActiveSession)

		_, err := handler.Handle(ctx, cmd)

		assert.ErrorIs(t, err, session.ErrOwnerHasActiveSession)
	})

	t.Run("covering subscription zeroes the fee", func(t *testing.T) {
		sessions := new(mockSessionRepo)
		zones := new(mockZoneRepo)
		subs := new(mockSubscriptionRepo)
		charger := new(mockCharger)
		handler := NewCreateStreetSessionHandler(sessions, zones, subs, engine, charger, nil)

		ctx := context.Background()
		now := time.Now()
		sessions.On("FindActiveByOwner", ctx, ownerID).Return(nil, session.ErrNotFound)
		zones.On("FindByID", ctx, tariffDomain.ZoneBlue).Return(blueZone(), nil)
		subs.On("FindActiveByOwner", ctx, ownerID).Return(&tariffDomain.Subscription{
			ID:         uuid.New(),
			OwnerID:    ownerID,
			Kind:       tariffDomain.SubscriptionAnnual,
			ValidFrom:  now.Add(-time.Hour),
			ValidUntil: now.Add(365 * 24 * time.Hour),
			Active:     true,
		}, nil)
		sessions.On("Create", ctx, mock.AnythingOfType("*session.Session")).Return(nil)

		s, err := handler.Handle(ctx, cmd)

		require.NoError(t, err)
		assert.True(t, s.Cost().IsZero())
		charger.AssertNotCalled(t, "Charge", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("subscription lookup failure aborts", func(t *testing.T) {
		sessions := new(mockSessionRepo)
		zones := new(mockZoneRepo)
		subs := new(mockSubscriptionRepo)
		handler := NewCreateStreetSessionHandler(sessions, zones, subs, engine, new(mockCharger), nil)

		ctx := context.Background()
		dbErr := errors.New("connection reset")
		sessions.On("FindActiveByOwner", ctx, ownerID).Return(nil, session.ErrNotFound)
		zones.On("FindByID", ctx, tariffDomain.ZoneBlue).Return(blueZone(), nil)
		subs.On("FindActiveByOwner", ctx, ownerID).Return(nil, dbErr)

		_, err := handler.Handle(ctx, cmd)

		assert.ErrorIs(t, err, dbErr)
	})
}
