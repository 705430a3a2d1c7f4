package capacity

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openpark/parkcore/internal/parking/domain/capacity"
	"github.com/openpark/parkcore/internal/parking/domain/value_objects"
)

// PostgresLedger tracks garage space counts in the garages table. Every
// reserve and release is a single conditional UPDATE, so concurrent callers
// can never take the count below zero or above the garage's total.
type PostgresLedger struct {
	pool *pgxpool.Pool
}

// NewPostgresLedger creates a new PostgreSQL-backed capacity ledger.
func NewPostgresLedger(pool *pgxpool.Pool) *PostgresLedger {
	return &PostgresLedger{pool: pool}
}

// Reserve decrements the available count for the vehicle's space kind.
func (l *PostgresLedger) Reserve(ctx context.Context, garageID uuid.UUID, vehicle value_objects.VehicleKind) error {
	available, _ := spaceColumns(vehicle)
	query := fmt.Sprintf(`
		UPDATE garages SET %s = %s - 1, updated_at = NOW()
		WHERE id = $1 AND %s > 0
	`, available, available, available)

	tag, err := l.pool.Exec(ctx, query, garageID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return l.missReason(ctx, garageID, capacity.ErrNoSpace)
	}
	return nil
}

// Release increments the available count, capped at the garage's total.
func (l *PostgresLedger) Release(ctx context.Context, garageID uuid.UUID, vehicle value_objects.VehicleKind) error {
	available, total := spaceColumns(vehicle)
	query := fmt.Sprintf(`
		UPDATE garages SET %s = %s + 1, updated_at = NOW()
		WHERE id = $1 AND %s < %s
	`, available, available, available, total)

	tag, err := l.pool.Exec(ctx, query, garageID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Already at capacity counts as released; only a missing garage
		// is an error.
		return l.missReason(ctx, garageID, nil)
	}
	return nil
}

// missReason distinguishes a missing garage from a failed condition.
func (l *PostgresLedger) missReason(ctx context.Context, garageID uuid.UUID, conditionErr error) error {
	var exists bool
	err := l.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM garages WHERE id = $1)`, garageID).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return capacity.ErrGarageNotFound
	}
	return conditionErr
}

func spaceColumns(vehicle value_objects.VehicleKind) (available, total string) {
	if vehicle.UsesMotoSpace() {
		return "available_moto_spaces", "total_moto_spaces"
	}
	return "available_car_spaces", "total_car_spaces"
}
