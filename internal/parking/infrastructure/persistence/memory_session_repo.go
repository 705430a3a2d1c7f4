package persistence

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openpark/parkcore/internal/parking/domain/session"
)

// MemorySessionRepository implements session.Repository in memory. Used by
// tests and by local mode when no database is configured.
//
// State is stored as snapshots: reads return freshly rehydrated aggregates,
// so a caller mutating a session does not leak into the store until Update.
type MemorySessionRepository struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]session.RehydrateState
}

// NewMemorySessionRepository creates an empty in-memory session repository.
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[uuid.UUID]session.RehydrateState),
	}
}

// Create stores a new session; the no-active-session check and the insert
// happen under one lock, making the conditional write atomic.
func (r *MemorySessionRepository) Create(_ context.Context, s *session.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, state := range r.sessions {
		if state.OwnerID == s.OwnerID() && state.Status == session.StatusActive {
			return session.ErrOwnerHasActiveSession
		}
	}
	r.sessions[s.ID()] = snapshot(s)
	return nil
}

// Update replaces the stored snapshot of an existing session.
func (r *MemorySessionRepository) Update(_ context.Context, s *session.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[s.ID()]; !ok {
		return session.ErrNotFound
	}
	r.sessions[s.ID()] = snapshot(s)
	return nil
}

// FindByID retrieves a session by its ID.
func (r *MemorySessionRepository) FindByID(_ context.Context, id uuid.UUID) (*session.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.sessions[id]
	if !ok {
		return nil, session.ErrNotFound
	}
	return session.Rehydrate(state), nil
}

// FindActiveByOwner retrieves the owner's active session, if any.
func (r *MemorySessionRepository) FindActiveByOwner(_ context.Context, ownerID uuid.UUID) (*session.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, state := range r.sessions {
		if state.OwnerID == ownerID && state.Status == session.StatusActive {
			return session.Rehydrate(state), nil
		}
	}
	return nil, session.ErrNotFound
}

// FindExpiredStreet retrieves active street sessions past their planned end.
func (r *MemorySessionRepository) FindExpiredStreet(_ context.Context, now time.Time) ([]*session.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*session.Session
	for _, state := range r.sessions {
		if state.Kind == session.KindStreet && state.Status == session.StatusActive && state.PlannedEndAt.Before(now) {
			out = append(out, session.Rehydrate(state))
		}
	}
	return out, nil
}

// FindActiveStreetEndingBefore retrieves active street sessions whose
// planned end falls before the given instant.
func (r *MemorySessionRepository) FindActiveStreetEndingBefore(_ context.Context, t time.Time) ([]*session.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*session.Session
	for _, state := range r.sessions {
		if state.Kind == session.KindStreet && state.Status == session.StatusActive && !state.PlannedEndAt.After(t) {
			out = append(out, session.Rehydrate(state))
		}
	}
	return out, nil
}

func snapshot(s *session.Session) session.RehydrateState {
	var departure *time.Time
	if d := s.DepartureAt(); d != nil {
		copied := *d
		departure = &copied
	}
	return session.RehydrateState{
		ID:              s.ID(),
		OwnerID:         s.OwnerID(),
		Vehicle:         s.Vehicle(),
		Plate:           s.Plate(),
		Kind:            s.Kind(),
		ZoneID:          s.ZoneID(),
		GarageID:        s.GarageID(),
		PlannedDuration: s.PlannedDuration(),
		PlannedEndAt:    s.PlannedEndAt(),
		ArrivalAt:       s.ArrivalAt(),
		DepartureAt:     departure,
		Cost:            s.Cost(),
		Status:          s.Status(),
		PaymentStatus:   s.PaymentStatus(),
		PaymentRef:      s.PaymentRef(),
		Version:         s.Version(),
		CreatedAt:       s.CreatedAt(),
		UpdatedAt:       s.UpdatedAt(),
	}
}
