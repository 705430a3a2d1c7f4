package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/openpark/parkcore/internal/parking/domain/value_objects"
	"github.com/openpark/parkcore/internal/tariff/domain"
)

// SQLiteZoneRepository loads street zones from the local-mode SQLite database.
type SQLiteZoneRepository struct {
	dbConn *sql.DB
}

// NewSQLiteZoneRepository creates a new SQLite zone repository.
func NewSQLiteZoneRepository(dbConn *sql.DB) *SQLiteZoneRepository {
	return &SQLiteZoneRepository{dbConn: dbConn}
}

// FindByID retrieves a zone by its identifier.
func (r *SQLiteZoneRepository) FindByID(ctx context.Context, id string) (*domain.Zone, error) {
	query := `
		SELECT id, label, hourly_rate_cents, max_duration_minutes
		FROM zones WHERE id = ?
	`

	var (
		zone            domain.Zone
		hourlyRateCents int64
		maxMinutes      int
	)
	err := r.dbConn.QueryRowContext(ctx, query, id).Scan(&zone.ID, &zone.Label, &hourlyRateCents, &maxMinutes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrZoneNotFound
		}
		return nil, err
	}

	zone.HourlyRate, err = value_objects.NewMoney(hourlyRateCents)
	if err != nil {
		return nil, fmt.Errorf("invalid hourly rate in database: %w", err)
	}
	zone.MaxDuration = time.Duration(maxMinutes) * time.Minute
	return &zone, nil
}

// SQLiteGarageRepository loads garages from the local-mode SQLite database.
type SQLiteGarageRepository struct {
	dbConn *sql.DB
}

// NewSQLiteGarageRepository creates a new SQLite garage repository.
func NewSQLiteGarageRepository(dbConn *sql.DB) *SQLiteGarageRepository {
	return &SQLiteGarageRepository{dbConn: dbConn}
}

// FindByID retrieves a garage by its ID.
func (r *SQLiteGarageRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Garage, error) {
	query := `
		SELECT id, label, address, max_height_cm,
			total_car_spaces, available_car_spaces,
			total_moto_spaces, available_moto_spaces,
			evening_rate_eligible, is_relay_garage,
			hourly_rate_cents, evening_rate_cents
		FROM garages WHERE id = ?
	`

	var (
		garage           domain.Garage
		rawID            string
		hourlyRateCents  int64
		eveningRateCents int64
	)
	err := r.dbConn.QueryRowContext(ctx, query, id.String()).Scan(
		&rawID, &garage.Label, &garage.Address, &garage.MaxHeightCm,
		&garage.TotalCarSpaces, &garage.AvailableCarSpaces,
		&garage.TotalMotoSpaces, &garage.AvailableMotoSpaces,
		&garage.EveningRateEligible, &garage.IsRelayGarage,
		&hourlyRateCents, &eveningRateCents,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrGarageNotFound
		}
		return nil, err
	}

	garage.ID, err = uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("invalid garage id in database: %w", err)
	}
	garage.HourlyRate, err = value_objects.NewMoney(hourlyRateCents)
	if err != nil {
		return nil, fmt.Errorf("invalid hourly rate in database: %w", err)
	}
	garage.EveningRate, err = value_objects.NewMoney(eveningRateCents)
	if err != nil {
		return nil, fmt.Errorf("invalid evening rate in database: %w", err)
	}
	return &garage, nil
}

// SQLiteSubscriptionRepository loads subscriptions from the local-mode
// SQLite database.
type SQLiteSubscriptionRepository struct {
	dbConn *sql.DB
}

// NewSQLiteSubscriptionRepository creates a new SQLite subscription repository.
func NewSQLiteSubscriptionRepository(dbConn *sql.DB) *SQLiteSubscriptionRepository {
	return &SQLiteSubscriptionRepository{dbConn: dbConn}
}

// FindActiveByOwner retrieves the owner's active subscription. When the
// owner holds several, the one expiring last wins.
func (r *SQLiteSubscriptionRepository) FindActiveByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.Subscription, error) {
	query := `
		SELECT id, owner_id, kind, COALESCE(zone_id, ''), tariff_cents,
			valid_from, valid_until, active
		FROM subscriptions
		WHERE owner_id = ? AND active = 1
		ORDER BY valid_until DESC
		LIMIT 1
	`

	var (
		sub         domain.Subscription
		rawID       string
		rawOwnerID  string
		kind        string
		tariffCents int64
		validFrom   string
		validUntil  string
	)
	err := r.dbConn.QueryRowContext(ctx, query, ownerID.String()).Scan(
		&rawID, &rawOwnerID, &kind, &sub.ZoneID, &tariffCents,
		&validFrom, &validUntil, &sub.Active,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSubscriptionNotFound
		}
		return nil, err
	}

	sub.ID, err = uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("invalid subscription id in database: %w", err)
	}
	sub.OwnerID, err = uuid.Parse(rawOwnerID)
	if err != nil {
		return nil, fmt.Errorf("invalid owner id in database: %w", err)
	}
	sub.Kind = domain.SubscriptionKind(kind)
	sub.Tariff, err = value_objects.NewMoney(tariffCents)
	if err != nil {
		return nil, fmt.Errorf("invalid tariff in database: %w", err)
	}
	sub.ValidFrom, err = time.Parse(time.RFC3339, validFrom)
	if err != nil {
		return nil, fmt.Errorf("invalid valid_from in database: %w", err)
	}
	sub.ValidUntil, err = time.Parse(time.RFC3339, validUntil)
	if err != nil {
		return nil, fmt.Errorf("invalid valid_until in database: %w", err)
	}
	return &sub, nil
}
