package capacity

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/openpark/parkcore/internal/parking/domain/capacity"
	"github.com/openpark/parkcore/internal/parking/domain/value_objects"
)

// SQLiteLedger tracks garage space counts in the garages table of the
// local-mode SQLite database. Same conditional-UPDATE scheme as the
// PostgreSQL ledger.
type SQLiteLedger struct {
	dbConn *sql.DB
}

// NewSQLiteLedger creates a new SQLite-backed capacity ledger.
func NewSQLiteLedger(dbConn *sql.DB) *SQLiteLedger {
	return &SQLiteLedger{dbConn: dbConn}
}

// Reserve decrements the available count for the vehicle's space kind.
func (l *SQLiteLedger) Reserve(ctx context.Context, garageID uuid.UUID, vehicle value_objects.VehicleKind) error {
	available, _ := spaceColumns(vehicle)
	query := fmt.Sprintf(`
		UPDATE garages SET %s = %s - 1
		WHERE id = ? AND %s > 0
	`, available, available, available)

	result, err := l.dbConn.ExecContext(ctx, query, garageID.String())
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return l.missReason(ctx, garageID, capacity.ErrNoSpace)
	}
	return nil
}

// Release increments the available count, capped at the garage's total.
func (l *SQLiteLedger) Release(ctx context.Context, garageID uuid.UUID, vehicle value_objects.VehicleKind) error {
	available, total := spaceColumns(vehicle)
	query := fmt.Sprintf(`
		UPDATE garages SET %s = %s + 1
		WHERE id = ? AND %s < %s
	`, available, available, available, total)

	result, err := l.dbConn.ExecContext(ctx, query, garageID.String())
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return l.missReason(ctx, garageID, nil)
	}
	return nil
}

func (l *SQLiteLedger) missReason(ctx context.Context, garageID uuid.UUID, conditionErr error) error {
	var exists bool
	err := l.dbConn.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM garages WHERE id = ?)`, garageID.String(),
	).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return capacity.ErrGarageNotFound
	}
	return conditionErr
}
