package persistence

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openpark/parkcore/internal/tariff/domain"
)

// MemoryZoneRepository is an in-memory zone store for local mode and tests.
// It comes pre-seeded with the built-in zones.
type MemoryZoneRepository struct {
	mu    sync.RWMutex
	zones map[string]domain.Zone
}

// NewMemoryZoneRepository creates a zone repository seeded with the
// built-in zones.
func NewMemoryZoneRepository() *MemoryZoneRepository {
	repo := &MemoryZoneRepository{zones: make(map[string]domain.Zone)}
	for _, id := range []string{domain.ZoneBlue, domain.ZoneGreen, domain.ZoneYellow, domain.ZoneOrange, domain.ZoneRed} {
		repo.zones[id] = domain.Zone{ID: id, Label: id, MaxDuration: 24 * time.Hour}
	}
	return repo
}

// Save adds or replaces a zone.
func (r *MemoryZoneRepository) Save(zone domain.Zone) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.zones[zone.ID] = zone
}

// FindByID retrieves a zone by its identifier.
func (r *MemoryZoneRepository) FindByID(_ context.Context, id string) (*domain.Zone, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	zone, ok := r.zones[id]
	if !ok {
		return nil, domain.ErrZoneNotFound
	}
	return &zone, nil
}

// MemoryGarageRepository is an in-memory garage store for local mode and tests.
type MemoryGarageRepository struct {
	mu      sync.RWMutex
	garages map[uuid.UUID]domain.Garage
}

// NewMemoryGarageRepository creates an empty garage repository.
func NewMemoryGarageRepository() *MemoryGarageRepository {
	return &MemoryGarageRepository{garages: make(map[uuid.UUID]domain.Garage)}
}

// Save adds or replaces a garage.
func (r *MemoryGarageRepository) Save(garage domain.Garage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.garages[garage.ID] = garage
}

// FindByID retrieves a garage by its ID.
func (r *MemoryGarageRepository) FindByID(_ context.Context, id uuid.UUID) (*domain.Garage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	garage, ok := r.garages[id]
	if !ok {
		return nil, domain.ErrGarageNotFound
	}
	return &garage, nil
}

// MemorySubscriptionRepository is an in-memory subscription store for local
// mode and tests.
type MemorySubscriptionRepository struct {
	mu   sync.RWMutex
	subs map[uuid.UUID][]domain.Subscription
}

// NewMemorySubscriptionRepository creates an empty subscription repository.
func NewMemorySubscriptionRepository() *MemorySubscriptionRepository {
	return &MemorySubscriptionRepository{subs: make(map[uuid.UUID][]domain.Subscription)}
}

// Save adds a subscription for its owner.
func (r *MemorySubscriptionRepository) Save(sub domain.Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs[sub.OwnerID] = append(r.subs[sub.OwnerID], sub)
}

// FindActiveByOwner retrieves the owner's active subscription. When the
// owner holds several, the one expiring last wins.
func (r *MemorySubscriptionRepository) FindActiveByOwner(_ context.Context, ownerID uuid.UUID) (*domain.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best *domain.Subscription
	for i := range r.subs[ownerID] {
		sub := r.subs[ownerID][i]
		if !sub.Active {
			continue
		}
		if best == nil || sub.ValidUntil.After(best.ValidUntil) {
			copied := sub
			best = &copied
		}
	}
	if best == nil {
		return nil, domain.ErrSubscriptionNotFound
	}
	return best, nil
}
