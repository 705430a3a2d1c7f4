package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrZoneNotFound         = errors.New("zone not found")
	ErrGarageNotFound       = errors.New("garage not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
)

// ZoneRepository loads street zone reference data.
type ZoneRepository interface {
	FindByID(ctx context.Context, id string) (*Zone, error)
}

// GarageRepository loads garage reference data.
type GarageRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Garage, error)
}

// SubscriptionRepository loads the owner's current subscription, if any.
type SubscriptionRepository interface {
	FindActiveByOwner(ctx context.Context, ownerID uuid.UUID) (*Subscription, error)
}
