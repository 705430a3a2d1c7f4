package commands

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	billingDomain "github.com/openpark/parkcore/internal/billing/domain"
	"github.com/openpark/parkcore/internal/parking/application"
	"github.com/openpark/parkcore/internal/parking/domain/session"
	"github.com/openpark/parkcore/internal/parking/domain/value_objects"
	tariffDomain "github.com/openpark/parkcore/internal/tariff/domain"
)

// mockSessionRepo is a mock implementation of session.Repository.
type mockSessionRepo struct {
	mock.Mock
}

func (m *mockSessionRepo) Create(ctx context.Context, s *session.Session) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *mockSessionRepo) Update(ctx context.Context, s *session.Session) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *mockSessionRepo) FindByID(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.Session), args.Error(1)
}

func (m *mockSessionRepo) FindActiveByOwner(ctx context.Context, ownerID uuid.UUID) (*session.Session, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.Session), args.Error(1)
}

func (m *mockSessionRepo) FindExpiredStreet(ctx context.Context, now time.Time) ([]*session.Session, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*session.Session), args.Error(1)
}

func (m *mockSessionRepo) FindActiveStreetEndingBefore(ctx context.Context, t time.Time) ([]*session.Session, error) {
	args := m.Called(ctx, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*session.Session), args.Error(1)
}

// mockZoneRepo is a mock implementation of tariffDomain.ZoneRepository.
type mockZoneRepo struct {
	mock.Mock
}

func (m *mockZoneRepo) FindByID(ctx context.Context, id string) (*tariffDomain.Zone, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tariffDomain.Zone), args.Error(1)
}

// mockGarageRepo is a mock implementation of tariffDomain.GarageRepository.
type mockGarageRepo struct {
	mock.Mock
}

func (m *mockGarageRepo) FindByID(ctx context.Context, id uuid.UUID) (*tariffDomain.Garage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tariffDomain.Garage), args.Error(1)
}

// mockSubscriptionRepo is a mock implementation of tariffDomain.SubscriptionRepository.
type mockSubscriptionRepo struct {
	mock.Mock
}

func (m *mockSubscriptionRepo) FindActiveByOwner(ctx context.Context, ownerID uuid.UUID) (*tariffDomain.Subscription, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tariffDomain.Subscription), args.Error(1)
}

// mockCharger is a mock implementation of billingDomain.Charger.
type mockCharger struct {
	mock.Mock
}

func (m *mockCharger) Charge(ctx context.Context, ownerID uuid.UUID, amount value_objects.Money) (*billingDomain.Payment, error) {
	args := m.Called(ctx, ownerID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billingDomain.Payment), args.Error(1)
}

// mockLedger is a mock implementation of capacity.Ledger.
type mockLedger struct {
	mock.Mock
}

func (m *mockLedger) Reserve(ctx context.Context, garageID uuid.UUID, vehicle value_objects.VehicleKind) error {
	args := m.Called(ctx, garageID, vehicle)
	return args.Error(0)
}

func (m *mockLedger) Release(ctx context.Context, garageID uuid.UUID, vehicle value_objects.VehicleKind) error {
	args := m.Called(ctx, garageID, vehicle)
	return args.Error(0)
}

// recordingNotifier captures notifications for assertions.
type recordingNotifier struct {
	mu    sync.Mutex
	calls []recordedNotification
}

type recordedNotification struct {
	OwnerID uuid.UUID
	Kind    application.NotificationKind
	Payload map[string]any
}

func (n *recordingNotifier) Notify(_ context.Context, ownerID uuid.UUID, kind application.NotificationKind, payload map[string]any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, recordedNotification{OwnerID: ownerID, Kind: kind, Payload: payload})
}

func (n *recordingNotifier) notifications() []recordedNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]recordedNotification(nil), n.calls...)
}

// recordingPublisher captures published routing keys for assertions.
type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
}

func (p *recordingPublisher) Publish(_ context.Context, routingKey string, _ []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, routingKey)
	return nil
}

func (p *recordingPublisher) routingKeys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.keys...)
}

func succeededPayment(ownerID uuid.UUID, amount value_objects.Money) *billingDomain.Payment {
	return &billingDomain.Payment{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Amount:    amount,
		Timestamp: time.Now().UTC(),
		Status:    billingDomain.PaymentSucceeded,
	}
}
