package infrastructure

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/openpark/parkcore/internal/billing/domain"
	"github.com/openpark/parkcore/internal/parking/domain/value_objects"
)

// FakeCharger approves every charge. Used in local mode, where no payment
// provider is configured.
type FakeCharger struct{}

// NewFakeCharger creates a charger that always succeeds.
func NewFakeCharger() *FakeCharger {
	return &FakeCharger{}
}

// Charge returns a succeeded payment for the requested amount.
func (c *FakeCharger) Charge(_ context.Context, ownerID uuid.UUID, amount value_objects.Money) (*domain.Payment, error) {
	return &domain.Payment{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Amount:    amount,
		Timestamp: time.Now().UTC(),
		Status:    domain.PaymentSucceeded,
	}, nil
}
