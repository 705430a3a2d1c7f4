package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openpark/parkcore/internal/parking/domain/value_objects"
	"github.com/openpark/parkcore/internal/tariff/domain"
)

// PostgresZoneRepository loads street zones from PostgreSQL.
type PostgresZoneRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresZoneRepository creates a new PostgreSQL zone repository.
func NewPostgresZoneRepository(pool *pgxpool.Pool) *PostgresZoneRepository {
	return &PostgresZoneRepository{pool: pool}
}

// FindByID retrieves a zone by its identifier.
func (r *PostgresZoneRepository) FindByID(ctx context.Context, id string) (*domain.Zone, error) {
	query := `
		SELECT id, label, hourly_rate_cents, max_duration_minutes
		FROM zones WHERE id = $1
	`

	var (
		zone            domain.Zone
		hourlyRateCents int64
		maxMinutes      int
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(&zone.ID, &zone.Label, &hourlyRateCents, &maxMinutes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
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

// PostgresGarageRepository loads garages from PostgreSQL.
type PostgresGarageRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresGarageRepository creates a new PostgreSQL garage repository.
func NewPostgresGarageRepository(pool *pgxpool.Pool) *PostgresGarageRepository {
	return &PostgresGarageRepository{pool: pool}
}

// FindByID retrieves a garage by its ID.
func (r *PostgresGarageRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Garage, error) {
	query := `
		SELECT id, label, address, max_height_cm,
			total_car_spaces, available_car_spaces,
			total_moto_spaces, available_moto_spaces,
			evening_rate_eligible, is_relay_garage,
			hourly_rate_cents, evening_rate_cents
		FROM garages WHERE id = $1
	`

	var (
		garage           domain.Garage
		hourlyRateCents  int64
		eveningRateCents int64
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&garage.ID, &garage.Label, &garage.Address, &garage.MaxHeightCm,
		&garage.TotalCarSpaces, &garage.AvailableCarSpaces,
		&garage.TotalMotoSpaces, &garage.AvailableMotoSpaces,
		&garage.EveningRateEligible, &garage.IsRelayGarage,
		&hourlyRateCents, &eveningRateCents,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrGarageNotFound
		}
		return nil, err
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

// PostgresSubscriptionRepository loads subscriptions written by the external
// billing flow. Read-only on this side.
type PostgresSubscriptionRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresSubscriptionRepository creates a new PostgreSQL subscription repository.
func NewPostgresSubscriptionRepository(pool *pgxpool.Pool) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{pool: pool}
}

// FindActiveByOwner retrieves the owner's active subscription. When the
// owner holds several, the one expiring last wins.
func (r *PostgresSubscriptionRepository) FindActiveByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.Subscription, error) {
	query := `
		SELECT id, owner_id, kind, COALESCE(zone_id, ''), tariff_cents,
			valid_from, valid_until, active
		FROM subscriptions
		WHERE owner_id = $1 AND active = TRUE
		ORDER BY valid_until DESC
		LIMIT 1
	`

	var (
		sub         domain.Subscription
		kind        string
		tariffCents int64
	)
	err := r.pool.QueryRow(ctx, query, ownerID).Scan(
		&sub.ID, &sub.OwnerID, &kind, &sub.ZoneID, &tariffCents,
		&sub.ValidFrom, &sub.ValidUntil, &sub.Active,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSubscriptionNotFound
		}
		return nil, err
	}

	sub.Kind = domain.SubscriptionKind(kind)
	sub.Tariff, err = value_objects.NewMoney(tariffCents)
	if err != nil {
		return nil, fmt.Errorf("invalid tariff in database: %w", err)
	}
	return &sub, nil
}
