package session

import (
	"github.com/google/uuid"
	"github.com/openpark/parkcore/internal/shared/domain"
)

const (
	AggregateType = "ParkingSession"

	RoutingKeyCreated    = "parking.session.created"
	RoutingKeyTerminated = "parking.session.terminated"
	RoutingKeyExpired    = "parking.session.expired"
	RoutingKeyTimeLow    = "parking.session.time_low"
)

// SessionCreated is emitted when a new session is opened.
type SessionCreated struct {
	domain.BaseEvent
	OwnerID     uuid.UUID `json:"owner_id"`
	Kind        string    `json:"kind"`
	LocationRef string    `json:"location_ref"`
}

// NewSessionCreated creates a SessionCreated event.
func NewSessionCreated(sessionID, ownerID uuid.UUID, kind, locationRef string) SessionCreated {
	return SessionCreated{
		BaseEvent:   domain.NewBaseEvent(sessionID, AggregateType, RoutingKeyCreated),
		OwnerID:     ownerID,
		Kind:        kind,
		LocationRef: locationRef,
	}
}

// SessionTerminated is emitted on a normal close, street or garage.
type SessionTerminated struct {
	domain.BaseEvent
	OwnerID   uuid.UUID `json:"owner_id"`
	CostCents int64     `json:"cost_cents"`
}

// NewSessionTerminated creates a SessionTerminated event.
func NewSessionTerminated(sessionID, ownerID uuid.UUID, costCents int64) SessionTerminated {
	return SessionTerminated{
		BaseEvent: domain.NewBaseEvent(sessionID, AggregateType, RoutingKeyTerminated),
		OwnerID:   ownerID,
		CostCents: costCents,
	}
}

// SessionTimeLow is emitted once when a street session's remaining paid
// time drops below the warning threshold.
type SessionTimeLow struct {
	domain.BaseEvent
	OwnerID          uuid.UUID `json:"owner_id"`
	RemainingSeconds int       `json:"remaining_seconds"`
}

// NewSessionTimeLow creates a SessionTimeLow event.
func NewSessionTimeLow(sessionID, ownerID uuid.UUID, remainingSeconds int) SessionTimeLow {
	return SessionTimeLow{
		BaseEvent:        domain.NewBaseEvent(sessionID, AggregateType, RoutingKeyTimeLow),
		OwnerID:          ownerID,
		RemainingSeconds: remainingSeconds,
	}
}

// SessionExpired is emitted when a street session runs past its planned end.
type SessionExpired struct {
	domain.BaseEvent
	OwnerID uuid.UUID `json:"owner_id"`
}

// NewSessionExpired creates a SessionExpired event.
func NewSessionExpired(sessionID, ownerID uuid.UUID) SessionExpired {
	return SessionExpired{
		BaseEvent: domain.NewBaseEvent(sessionID, AggregateType, RoutingKeyExpired),
		OwnerID:   ownerID,
	}
}
