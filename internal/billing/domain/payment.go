package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/openpark/parkcore/internal/parking/domain/value_objects"
)

var ErrPaymentFailed = errors.New("payment failed")

// PaymentStatus represents the outcome of a charge.
type PaymentStatus string

const (
	PaymentSucceeded PaymentStatus = "succeeded"
	PaymentFailed    PaymentStatus = "failed"
)

// Payment is the record of a single charge attempt. The core only consumes
// the result produced by the payment provider; it never re-derives it.
type Payment struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Amount    value_objects.Money
	Timestamp time.Time
	Status    PaymentStatus
}

// Charger is the payment port. Synchronous and idempotent per call; the
// core does not retry automatically. Implementations must return
// ErrPaymentFailed (possibly wrapped) for any declined or timed-out charge.
type Charger interface {
	Charge(ctx context.Context, ownerID uuid.UUID, amount value_objects.Money) (*Payment, error)
}
