package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/openpark/parkcore/internal/parking/domain/session"
	"github.com/openpark/parkcore/internal/parking/domain/value_objects"
)

// SQLiteSessionRepository implements session.Repository using SQLite, the
// local-mode store. IDs and timestamps are stored as text (RFC 3339).
type SQLiteSessionRepository struct {
	dbConn *sql.DB
}

// NewSQLiteSessionRepository creates a new SQLite session repository.
func NewSQLiteSessionRepository(dbConn *sql.DB) *SQLiteSessionRepository {
	return &SQLiteSessionRepository{dbConn: dbConn}
}

const sqliteSessionColumns = `
	id, owner_id, vehicle, plate, kind, zone_id, garage_id,
	planned_minutes, planned_end_at, arrival_at, departure_at,
	cost_cents, status, payment_status, payment_ref,
	version, created_at, updated_at
`

// Create stores a new session, conditional on the owner having no active
// one. The guard subquery runs inside the INSERT statement, which SQLite
// executes atomically.
func (r *SQLiteSessionRepository) Create(ctx context.Context, s *session.Session) error {
	query := `
		INSERT INTO parking_sessions (` + sqliteSessionColumns + `)
		SELECT ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?
		WHERE NOT EXISTS (
			SELECT 1 FROM parking_sessions
			WHERE owner_id = ?2 AND status = 'active'
		)
	`

	row := toSQLiteRow(s)
	result, err := r.dbConn.ExecContext(ctx, query,
		row.ID, row.OwnerID, row.Vehicle, row.Plate, row.Kind,
		row.ZoneID, row.GarageID, row.PlannedMinutes, row.PlannedEndAt,
		row.ArrivalAt, row.DepartureAt, row.CostCents, row.Status,
		row.PaymentStatus, row.PaymentRef, row.Version, row.CreatedAt, row.UpdatedAt,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return session.ErrOwnerHasActiveSession
	}
	return nil
}

// Update persists changes to an existing session with optimistic locking.
func (r *SQLiteSessionRepository) Update(ctx context.Context, s *session.Session) error {
	query := `
		UPDATE parking_sessions SET
			departure_at = ?,
			cost_cents = ?,
			status = ?,
			payment_status = ?,
			payment_ref = ?,
			version = version + 1,
			updated_at = ?
		WHERE id = ? AND version = ?
	`

	row := toSQLiteRow(s)
	result, err := r.dbConn.ExecContext(ctx, query,
		row.DepartureAt, row.CostCents, row.Status, row.PaymentStatus,
		row.PaymentRef, time.Now().UTC().Format(time.RFC3339), row.ID, row.Version,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOptimisticLocking
	}
	return nil
}

// FindByID retrieves a session by its ID.
func (r *SQLiteSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	query := `SELECT ` + sqliteSessionColumns + ` FROM parking_sessions WHERE id = ?`
	return r.querySession(ctx, query, id.String())
}

// FindActiveByOwner retrieves the owner's active session, if any.
func (r *SQLiteSessionRepository) FindActiveByOwner(ctx context.Context, ownerID uuid.UUID) (*session.Session, error) {
	query := `SELECT ` + sqliteSessionColumns + ` FROM parking_sessions WHERE owner_id = ? AND status = 'active'`
	return r.querySession(ctx, query, ownerID.String())
}

// FindExpiredStreet retrieves active street sessions past their planned end.
func (r *SQLiteSessionRepository) FindExpiredStreet(ctx context.Context, now time.Time) ([]*session.Session, error) {
	query := `
		SELECT ` + sqliteSessionColumns + ` FROM parking_sessions
		WHERE kind = 'street' AND status = 'active' AND planned_end_at < ?
		ORDER BY planned_end_at
	`
	return r.querySessions(ctx, query, now.UTC().Format(time.RFC3339))
}

// FindActiveStreetEndingBefore retrieves active street sessions whose
// planned end falls before the given instant.
func (r *SQLiteSessionRepository) FindActiveStreetEndingBefore(ctx context.Context, t time.Time) ([]*session.Session, error) {
	query := `
		SELECT ` + sqliteSessionColumns + ` FROM parking_sessions
		WHERE kind = 'street' AND status = 'active' AND planned_end_at <= ?
		ORDER BY planned_end_at
	`
	return r.querySessions(ctx, query, t.UTC().Format(time.RFC3339))
}

func (r *SQLiteSessionRepository) querySession(ctx context.Context, query string, arg any) (*session.Session, error) {
	row, err := scanSQLiteSession(r.dbConn.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, session.ErrNotFound
		}
		return nil, err
	}
	return row.toSession()
}

func (r *SQLiteSessionRepository) querySessions(ctx context.Context, query string, arg any) ([]*session.Session, error) {
	rows, err := r.dbConn.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*session.Session
	for rows.Next() {
		row, err := scanSQLiteSession(rows)
		if err != nil {
			return nil, err
		}
		s, err := row.toSession()
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// sqliteSessionRow is the text-typed row shape used by the SQLite store.
type sqliteSessionRow struct {
	ID             string
	OwnerID        string
	Vehicle        string
	Plate          string
	Kind           string
	ZoneID         sql.NullString
	GarageID       sql.NullString
	PlannedMinutes sql.NullInt64
	PlannedEndAt   sql.NullString
	ArrivalAt      sql.NullString
	DepartureAt    sql.NullString
	CostCents      int64
	Status         string
	PaymentStatus  string
	PaymentRef     sql.NullString
	Version        int
	CreatedAt      string
	UpdatedAt      string
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteSession(scanner rowScanner) (sqliteSessionRow, error) {
	var row sqliteSessionRow
	err := scanner.Scan(
		&row.ID, &row.OwnerID, &row.Vehicle, &row.Plate, &row.Kind,
		&row.ZoneID, &row.GarageID, &row.PlannedMinutes, &row.PlannedEndAt,
		&row.ArrivalAt, &row.DepartureAt, &row.CostCents, &row.Status,
		&row.PaymentStatus, &row.PaymentRef, &row.Version, &row.CreatedAt, &row.UpdatedAt,
	)
	return row, err
}

func toSQLiteRow(s *session.Session) sqliteSessionRow {
	row := sqliteSessionRow{
		ID:            s.ID().String(),
		OwnerID:       s.OwnerID().String(),
		Vehicle:       s.Vehicle().String(),
		Plate:         s.Plate(),
		Kind:          s.Kind().String(),
		CostCents:     s.Cost().Cents(),
		Status:        s.Status().String(),
		PaymentStatus: s.PaymentStatus().String(),
		Version:       s.Version(),
		CreatedAt:     s.CreatedAt().Format(time.RFC3339),
		UpdatedAt:     s.UpdatedAt().Format(time.RFC3339),
	}

	switch s.Kind() {
	case session.KindStreet:
		row.ZoneID = sql.NullString{String: s.ZoneID(), Valid: true}
		row.PlannedMinutes = sql.NullInt64{Int64: int64(s.PlannedDuration().Minutes()), Valid: true}
		row.PlannedEndAt = sql.NullString{String: s.PlannedEndAt().UTC().Format(time.RFC3339), Valid: true}
	case session.KindGarage:
		row.GarageID = sql.NullString{String: s.GarageID().String(), Valid: true}
		row.ArrivalAt = sql.NullString{String: s.ArrivalAt().UTC().Format(time.RFC3339), Valid: true}
		if d := s.DepartureAt(); d != nil {
			row.DepartureAt = sql.NullString{String: d.UTC().Format(time.RFC3339), Valid: true}
		}
	}

	if s.PaymentRef() != uuid.Nil {
		row.PaymentRef = sql.NullString{String: s.PaymentRef().String(), Valid: true}
	}
	return row
}

func (row sqliteSessionRow) toSession() (*session.Session, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid session id in database: %w", err)
	}
	ownerID, err := uuid.Parse(row.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("invalid owner id in database: %w", err)
	}
	vehicle, err := value_objects.ParseVehicleKind(row.Vehicle)
	if err != nil {
		return nil, err
	}
	kind, err := session.ParseKind(row.Kind)
	if err != nil {
		return nil, err
	}
	status, err := session.ParseStatus(row.Status)
	if err != nil {
		return nil, err
	}
	paymentStatus, err := session.ParsePaymentStatus(row.PaymentStatus)
	if err != nil {
		return nil, err
	}
	cost, err := value_objects.NewMoney(row.CostCents)
	if err != nil {
		return nil, fmt.Errorf("invalid cost in database: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339, row.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at in database: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339, row.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid updated_at in database: %w", err)
	}

	state := session.RehydrateState{
		ID:            id,
		OwnerID:       ownerID,
		Vehicle:       vehicle,
		Plate:         row.Plate,
		Kind:          kind,
		Cost:          cost,
		Status:        status,
		PaymentStatus: paymentStatus,
		Version:       row.Version,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}
	if row.ZoneID.Valid {
		state.ZoneID = row.ZoneID.String
	}
	if row.GarageID.Valid {
		garageID, err := uuid.Parse(row.GarageID.String)
		if err != nil {
			return nil, fmt.Errorf("invalid garage id in database: %w", err)
		}
		state.GarageID = garageID
	}
	if row.PlannedMinutes.Valid {
		state.PlannedDuration = value_objects.RehydratePlannedDuration(int(row.PlannedMinutes.Int64))
	}
	if row.PlannedEndAt.Valid {
		endAt, err := time.Parse(time.RFC3339, row.PlannedEndAt.String)
		if err != nil {
			return nil, fmt.Errorf("invalid planned_end_at in database: %w", err)
		}
		state.PlannedEndAt = endAt
	}
	if row.ArrivalAt.Valid {
		arrival, err := time.Parse(time.RFC3339, row.ArrivalAt.String)
		if err != nil {
			return nil, fmt.Errorf("invalid arrival_at in database: %w", err)
		}
		state.ArrivalAt = arrival
	}
	if row.DepartureAt.Valid {
		departure, err := time.Parse(time.RFC3339, row.DepartureAt.String)
		if err != nil {
			return nil, fmt.Errorf("invalid departure_at in database: %w", err)
		}
		state.DepartureAt = &departure
	}
	if row.PaymentRef.Valid {
		ref, err := uuid.Parse(row.PaymentRef.String)
		if err != nil {
			return nil, fmt.Errorf("invalid payment ref in database: %w", err)
		}
		state.PaymentRef = ref
	}

	return session.Rehydrate(state), nil
}
