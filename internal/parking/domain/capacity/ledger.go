package capacity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/openpark/parkcore/internal/parking/domain/value_objects"
)

var (
	ErrNoSpace        = errors.New("no space available")
	ErrGarageNotFound = errors.New("garage not found")
)

// Ledger tracks available garage spaces per vehicle kind.
//
// Reserve and Release must be atomic per (garage, vehicle kind): a reserve
// is a single conditional decrement that fails with ErrNoSpace when no
// space is left, never a read followed by a write. Release increments but
// never past the garage's total for that kind, so a double release cannot
// corrupt the count upward.
type Ledger interface {
	Reserve(ctx context.Context, garageID uuid.UUID, vehicle value_objects.VehicleKind) error
	Release(ctx context.Context, garageID uuid.UUID, vehicle value_objects.VehicleKind) error
}
