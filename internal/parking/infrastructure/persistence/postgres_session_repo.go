package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openpark/parkcore/internal/parking/domain/session"
	"github.com/openpark/parkcore/internal/parking/domain/value_objects"
)

var ErrOptimisticLocking = errors.New("optimistic locking conflict")

// uniqueViolation is the postgres error code raised by the partial unique
// index on (owner_id) WHERE status = 'active'.
const uniqueViolation = "23505"

// PostgresSessionRepository implements session.Repository using PostgreSQL.
type PostgresSessionRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresSessionRepository creates a new PostgreSQL session repository.
func NewPostgresSessionRepository(pool *pgxpool.Pool) *PostgresSessionRepository {
	return &PostgresSessionRepository{pool: pool}
}

const sessionColumns = `
	id, owner_id, vehicle, plate, kind, zone_id, garage_id,
	planned_minutes, planned_end_at, arrival_at, departure_at,
	cost_cents, status, payment_status, payment_ref,
	version, created_at, updated_at
`

// Create persists a new session. The insert is conditional on the owner
// having no active session: the WHERE NOT EXISTS guard plus the partial
// unique index make the check-and-create atomic under concurrency.
func (r *PostgresSessionRepository) Create(ctx context.Context, s *session.Session) error {
	query := `
		INSERT INTO parking_sessions (` + sessionColumns + `)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18
		WHERE NOT EXISTS (
			SELECT 1 FROM parking_sessions
			WHERE owner_id = $2 AND status = 'active'
		)
	`

	row := toRow(s)
	tag, err := r.pool.Exec(ctx, query,
		row.ID, row.OwnerID, row.Vehicle, row.Plate, row.Kind,
		row.ZoneID, row.GarageID, row.PlannedMinutes, row.PlannedEndAt,
		row.ArrivalAt, row.DepartureAt, row.CostCents, row.Status,
		row.PaymentStatus, row.PaymentRef, row.Version, row.CreatedAt, row.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return session.ErrOwnerHasActiveSession
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return session.ErrOwnerHasActiveSession
	}
	return nil
}

// Update persists changes to an existing session with optimistic locking.
func (r *PostgresSessionRepository) Update(ctx context.Context, s *session.Session) error {
	query := `
		UPDATE parking_sessions SET
			departure_at = $1,
			cost_cents = $2,
			status = $3,
			payment_status = $4,
			payment_ref = $5,
			version = version + 1,
			updated_at = NOW()
		WHERE id = $6 AND version = $7
	`

	row := toRow(s)
	tag, err := r.pool.Exec(ctx, query,
		row.DepartureAt, row.CostCents, row.Status, row.PaymentStatus,
		row.PaymentRef, row.ID, row.Version,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrOptimisticLocking
	}
	return nil
}

// FindByID retrieves a session by its ID.
func (r *PostgresSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM parking_sessions WHERE id = $1`
	return r.querySession(ctx, query, id)
}

// FindActiveByOwner retrieves the owner's active session, if any.
func (r *PostgresSessionRepository) FindActiveByOwner(ctx context.Context, ownerID uuid.UUID) (*session.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM parking_sessions WHERE owner_id = $1 AND status = 'active'`
	return r.querySession(ctx, query, ownerID)
}

// FindExpiredStreet retrieves active street sessions past their planned end.
func (r *PostgresSessionRepository) FindExpiredStreet(ctx context.Context, now time.Time) ([]*session.Session, error) {
	query := `
		SELECT ` + sessionColumns + ` FROM parking_sessions
		WHERE kind = 'street' AND status = 'active' AND planned_end_at < $1
		ORDER BY planned_end_at
	`
	return r.querySessions(ctx, query, now)
}

// FindActiveStreetEndingBefore retrieves active street sessions whose
// planned end falls before the given instant.
func (r *PostgresSessionRepository) FindActiveStreetEndingBefore(ctx context.Context, t time.Time) ([]*session.Session, error) {
	query := `
		SELECT ` + sessionColumns + ` FROM parking_sessions
		WHERE kind = 'street' AND status = 'active' AND planned_end_at <= $1
		ORDER BY planned_end_at
	`
	return r.querySessions(ctx, query, t)
}

func (r *PostgresSessionRepository) querySession(ctx context.Context, query string, arg any) (*session.Session, error) {
	var row sessionRow
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&row.ID, &row.OwnerID, &row.Vehicle, &row.Plate, &row.Kind,
		&row.ZoneID, &row.GarageID, &row.PlannedMinutes, &row.PlannedEndAt,
		&row.ArrivalAt, &row.DepartureAt, &row.CostCents, &row.Status,
		&row.PaymentStatus, &row.PaymentRef, &row.Version, &row.CreatedAt, &row.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, session.ErrNotFound
		}
		return nil, err
	}
	return row.toSession()
}

func (r *PostgresSessionRepository) querySessions(ctx context.Context, query string, arg any) ([]*session.Session, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*session.Session
	for rows.Next() {
		var row sessionRow
		err := rows.Scan(
			&row.ID, &row.OwnerID, &row.Vehicle, &row.Plate, &row.Kind,
			&row.ZoneID, &row.GarageID, &row.PlannedMinutes, &row.PlannedEndAt,
			&row.ArrivalAt, &row.DepartureAt, &row.CostCents, &row.Status,
			&row.PaymentStatus, &row.PaymentRef, &row.Version, &row.CreatedAt, &row.UpdatedAt,
		)
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

// sessionRow represents a database row for parking sessions.
type sessionRow struct {
	ID             uuid.UUID
	OwnerID        uuid.UUID
	Vehicle        string
	Plate          string
	Kind           string
	ZoneID         *string
	GarageID       *uuid.UUID
	PlannedMinutes *int
	PlannedEndAt   *time.Time
	ArrivalAt      *time.Time
	DepartureAt    *time.Time
	CostCents      int64
	Status         string
	PaymentStatus  string
	PaymentRef     *uuid.UUID
	Version        int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func toRow(s *session.Session) sessionRow {
	row := sessionRow{
		ID:            s.ID(),
		OwnerID:       s.OwnerID(),
		Vehicle:       s.Vehicle().String(),
		Plate:         s.Plate(),
		Kind:          s.Kind().String(),
		CostCents:     s.Cost().Cents(),
		Status:        s.Status().String(),
		PaymentStatus: s.PaymentStatus().String(),
		Version:       s.Version(),
		CreatedAt:     s.CreatedAt(),
		UpdatedAt:     s.UpdatedAt(),
	}

	switch s.Kind() {
	case session.KindStreet:
		zoneID := s.ZoneID()
		minutes := s.PlannedDuration().Minutes()
		endAt := s.PlannedEndAt()
		row.ZoneID = &zoneID
		row.PlannedMinutes = &minutes
		row.PlannedEndAt = &endAt
	case session.KindGarage:
		garageID := s.GarageID()
		arrival := s.ArrivalAt()
		row.GarageID = &garageID
		row.ArrivalAt = &arrival
		row.DepartureAt = s.DepartureAt()
	}

	if s.PaymentRef() != uuid.Nil {
		ref := s.PaymentRef()
		row.PaymentRef = &ref
	}
	return row
}

func (row sessionRow) toSession() (*session.Session, error) {
	vehicle, err := value_objects.ParseVehicleKind(row.Vehicle)
	if err != nil {
		return nil, fmt.Errorf("invalid vehicle in database: %w", err)
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

	state := session.RehydrateState{
		ID:            row.ID,
		OwnerID:       row.OwnerID,
		Vehicle:       vehicle,
		Plate:         row.Plate,
		Kind:          kind,
		Cost:          cost,
		Status:        status,
		PaymentStatus: paymentStatus,
		Version:       row.Version,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
	if row.ZoneID != nil {
		state.ZoneID = *row.ZoneID
	}
	if row.GarageID != nil {
		state.GarageID = *row.GarageID
	}
	if row.PlannedMinutes != nil {
		state.PlannedDuration = value_objects.RehydratePlannedDuration(*row.PlannedMinutes)
	}
	if row.PlannedEndAt != nil {
		state.PlannedEndAt = *row.PlannedEndAt
	}
	if row.ArrivalAt != nil {
		state.ArrivalAt = *row.ArrivalAt
	}
	state.DepartureAt = row.DepartureAt
	if row.PaymentRef != nil {
		state.PaymentRef = *row.PaymentRef
	}

	return session.Rehydrate(state), nil
}
