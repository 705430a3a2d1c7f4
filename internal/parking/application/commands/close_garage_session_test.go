package commands

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	billingDomain "github.com/openpark/parkcore/internal/billing/domain"
	"github.com/openpark/parkcore/internal/parking/application"
	"github.com/openpark/parkcore/internal/parking/domain/session"
	"github.com/openpark/parkcore/internal/parking/domain/value_objects"
	tariffDomain "github.com/openpark/parkcore/internal/tariff/domain"
)

func activeGarageSession(t *testing.T, ownerID, garageID uuid.UUID) *session.Session {
	t.Helper()
	s, err := session.NewGarageSession(ownerID, value_objects.VehicleCar, "AB-123-CD", garageID)
	require.NoError(t, err)
	s.ClearDomainEvents()
	return s
}

func TestCloseGarageSessionHandler_Handle(t *testing.T) {
	ownerID := uuid.New()
	garageID := uuid.New()
	engine := tariffDomain.NewEngine(tariffDomain.DefaultConfig())
	garage := &tariffDomain.Garage{ID: garageID, Label: "Central", HourlyRate: value_objects.MustNewMoney(300)}

	newHandler := func(sessions *mockSessionRepo, garages *mockGarageRepo, subs *mockSubscriptionRepo, charger *mockCharger, ledger *mockLedger, publisher *recordingPublisher) *CloseGarageSessionHandler {
		var pub application.EventPublisher
		if publisher != nil {
			pub = publisher
		}
		return NewCloseGarageSessionHandler(sessions, garages, subs, engine, charger, ledger, pub, nil)
	}

	t.Run("prices, charges, closes and releases", func(t *testing.T) {
		sessions := new(mockSessionRepo)
		garages := new(mockGarageRepo)
		subs := new(mockSubscriptionRepo)
		charger := new(mockCharger)
		ledger := new(mockLedger)
		publisher := &recordingPublisher{}
		handler := newHandler(sessions, garages, subs, charger, ledger, publisher)

		ctx := context.Background()
		s := activeGarageSession(t, ownerID, garageID)
		departure := s.ArrivalAt().Add(100 * time.Minute)
		// 100 minutes round up to two hours at 3.00/h.
		amount := value_objects.MustNewMoney(600)

		sessions.On("FindByID", ctx, s.ID()).Return(s, nil)
		garages.On("FindByID", ctx, garageID).Return(garage, nil)
		subs.On("FindActiveByOwner", ctx, ownerID).Return(nil, tariffDomain.ErrSubscriptionNotFound)
		charger.On("Charge", ctx, ownerID, amount).Return(succeededPayment(ownerID, amount), nil)
		sessions.On("Update", ctx, s).Return(nil)
		ledger.On("Release", ctx, garageID, value_objects.VehicleCar).Return(nil)

		closed, err := handler.Handle(ctx, CloseGarageSessionCommand{SessionID: s.ID(), DepartureAt: departure})

		require.NoError(t, err)
		assert.Equal(t, session.StatusTerminated, closed.Status())
		assert.Equal(t, int64(600), closed.Cost().Cents())
		assert.Equal(t, session.PaymentPaid, closed.PaymentStatus())
		assert.Equal(t, []string{session.RoutingKeyTerminated}, publisher.routingKeys())

		sessions.AssertExpectations(t)
		ledger.AssertExpectations(t)
	})

	t.Run("payment failure keeps the session active and the space reserved", func(t *testing.T) {
		sessions := new(mockSessionRepo)
		garages := new(mockGarageRepo)
		subs := new(mockSubscriptionRepo)
		charger := new(mockCharger)
		ledger := new(mockLedger)
		handler := newHandler(sessions, garages, subs, charger, ledger, nil)

		ctx := context.Background()
		s := activeGarageSession(t, ownerID, garageID)
		departure := s.ArrivalAt().Add(time.Hour)

		sessions.On("FindByID", ctx, s.ID()).Return(s, nil)
		garages.On("FindByID", ctx, garageID).Return(garage, nil)
		subs.On("FindActiveByOwner", ctx, ownerID).Return(nil, tariffDomain.ErrSubscriptionNotFound)
		charger.On("Charge", ctx, ownerID, mock.Anything).Return(nil, billingDomain.ErrPaymentFailed)

		_, err := handler.Handle(ctx, CloseGarageSessionCommand{SessionID: s.ID(), DepartureAt: departure})

		assert.ErrorIs(t, err, billingDomain.ErrPaymentFailed)
		assert.Equal(t, session.StatusActive, s.Status())
		assert.Equal(t, session.PaymentUnpaid, s.PaymentStatus())
		sessions.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		ledger.AssertNotCalled(t, "Release", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("departure before arrival", func(t *testing.T) {
		sessions := new(mockSessionRepo)
		handler := newHandler(sessions, new(mockGarageRepo), new(mockSubscriptionRepo), new(mockCharger), new(mockLedger), nil)

		ctx := context.Background()
		s := activeGarageSession(t, ownerID, garageID)
		sessions.On("FindByID", ctx, s.ID()).Return(s, nil)

		_, err := handler.Handle(ctx, CloseGarageSessionCommand{SessionID: s.ID(), DepartureAt: s.ArrivalAt().Add(-time.Minute)})

		assert.ErrorIs(t, err, session.ErrInvalidTimeRange)
	})

	t.Run("closing a street session", func(t *testing.T) {
		sessions := new(mockSessionRepo)
		handler := newHandler(sessions, new(mockGarageRepo), new(mockSubscriptionRepo), new(mockCharger), new(mockLedger), nil)

		ctx := context.Background()
		s := activeStreetSession(t, ownerID)
		sessions.On("FindByID", ctx, s.ID()).Return(s, nil)

		_, err := handler.Handle(ctx, CloseGarageSessionCommand{SessionID: s.ID(), DepartureAt: time.Now()})

		assert.ErrorIs(t, err, session.ErrInvalidTransition)
	})

	t.Run("already terminated", func(t *testing.T) {
		sessions := new(mockSessionRepo)
		ledger := new(mockLedger)
		handler := newHandler(sessions, new(mockGarageRepo), new(mockSubscriptionRepo), new(mockCharger), ledger, nil)

		ctx := context.Background()
		s := activeGarageSession(t, ownerID, garageID)
		departure := s.ArrivalAt().Add(time.Hour)
		require.NoError(t, s.CloseGarage(departure, value_objects.MustNewMoney(300), uuid.New()))
		sessions.On("FindByID", ctx, s.ID()).Return(s, nil)

		_, err := handler.Handle(ctx, CloseGarageSessionCommand{SessionID: s.ID(), DepartureAt: departure})

		assert.ErrorIs(t, err, session.ErrInvalidTransition)
		ledger.AssertNotCalled(t, "Release", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("covering subscription skips the charger", func(t *testing.T) {
		sessions := new(mockSessionRepo)
		garages := new(mockGarageRepo)
		subs := new(mockSubscriptionRepo)
		charger := new(mockCharger)
		ledger := new(mockLedger)
		handler := newHandler(sessions, garages, subs, charger, ledger, nil)

		ctx := context.Background()
		s := activeGarageSession(t, ownerID, garageID)
		departure := s.ArrivalAt().Add(3 * time.Hour)

		sessions.On("FindByID", ctx, s.ID()).Return(s, nil)
		garages.On("FindByID", ctx, garageID).Return(garage, nil)
		subs.On("FindActiveByOwner", ctx, ownerID).Return(&tariffDomain.Subscription{
			ID:         uuid.New(),
			OwnerID:    ownerID,
			Kind:       tariffDomain.SubscriptionAnnual,
			ValidFrom:  s.ArrivalAt().Add(-time.Hour),
			ValidUntil: s.ArrivalAt().Add(365 * 24 * time.Hour),
			Active:     true,
		}, nil)
		sessions.On("Update", ctx, s).Return(nil)
		ledger.On("Release", ctx, garageID, value_objects.VehicleCar).Return(nil)

		closed, err := handler.Handle(ctx, CloseGarageSessionCommand{SessionID: s.ID(), DepartureAt: departure})

		require.NoError(t, err)
		assert.True(t, closed.Cost().IsZero())
		assert.Equal(t, uuid.Nil, closed.PaymentRef())
		charger.AssertNotCalled(t, "Charge", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("failed release does not fail the close", func(t *testing.T) {
		sessions := new(mockSessionRepo)
		garages := new(mockGarageRepo)
		subs := new(mockSubscriptionRepo)
		charger := new(mockCharger)
		ledger := new(mockLedger)
		handler := newHandler(sessions, garages, subs, charger, ledger, nil)

		ctx := context.Background()
		s := activeGarageSession(t, ownerID, garageID)
		departure := s.ArrivalAt().Add(time.Hour)
		amount := value_objects.MustNewMoney(300)

		sessions.On("FindByID", ctx, s.ID()).Return(s, nil)
		garages.On("FindByID", ctx, garageID).Return(garage, nil)
		subs.On("FindActiveByOwner", ctx, ownerID).Return(nil, tariffDomain.ErrSubscriptionNotFound)
		charger.On("Charge", ctx, ownerID, amount).Return(succeededPayment(ownerID, amount), nil)
		sessions.On("Update", ctx, s).Return(nil)
		ledger.On("Release", ctx, garageID, value_objects.VehicleCar).Return(assert.AnError)

		closed, err := handler.Handle(ctx, CloseGarageSessionCommand{SessionID: s.ID(), DepartureAt: departure})

		require.NoError(t, err)
		assert.Equal(t, session.StatusTerminated, closed.Status())
	})
}
