package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound             = errors.New("session not found")
	ErrOwnerHasActiveSession = errors.New("owner already has an active session")
)

// Repository defines the interface for session persistence.
//
// Create is a conditional write: it must fail with ErrOwnerHasActiveSession
// when the owner already holds an active session, atomically with the
// insert, so that two concurrent creates cannot both succeed.
type Repository interface {
	Create(ctx context.Context, s *Session) error
	Update(ctx context.Context, s *Session) error
	FindByID(ctx context.Context, id uuid.UUID) (*Session, error)
	FindActiveByOwner(ctx context.Context, ownerID uuid.UUID) (*Session, error)
	FindExpiredStreet(ctx context.Context, now time.Time) ([]*Session, error)
	FindActiveStreetEndingBefore(ctx context.Context, t time.Time) ([]*Session, error)
}
