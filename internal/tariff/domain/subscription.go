package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/openpark/parkcore/internal/parking/domain/value_objects"
)

// SubscriptionKind classifies prepaid parking plans.
type SubscriptionKind string

const (
	SubscriptionZonePass  SubscriptionKind = "zone_pass"
	SubscriptionWeekly    SubscriptionKind = "weekly"
	SubscriptionAnnual    SubscriptionKind = "annual"
	SubscriptionPayPerUse SubscriptionKind = "pay_per_use"
)

// Subscription is a prepaid plan created by an external billing flow and
// consulted read-only here. An applicable subscription zeroes out the
// per-session fee; pay-per-use plans never do.
type Subscription struct {
	ID         uuid.UUID
	OwnerID    uuid.UUID
	Kind       SubscriptionKind
	ZoneID     string // set for zone passes only
	Tariff     value_objects.Money
	ValidFrom  time.Time
	ValidUntil time.Time
	Active     bool
}

// IsCurrent reports whether the subscription is active and inside its
// validity window at the given instant.
func (s *Subscription) IsCurrent(at time.Time) bool {
	if s == nil || !s.Active {
		return false
	}
	return !at.Before(s.ValidFrom) && !at.After(s.ValidUntil)
}

// CoversZone reports whether the subscription prepays street parking in the
// given zone at the given instant.
func (s *Subscription) CoversZone(zoneID string, at time.Time) bool {
	if !s.IsCurrent(at) || s.Kind == SubscriptionPayPerUse {
		return false
	}
	if s.Kind == SubscriptionZonePass {
		return s.ZoneID == zoneID
	}
	return true
}

// CoversGarage reports whether the subscription prepays garage parking at
// the given instant. Zone passes prepay a street zone only.
func (s *Subscription) CoversGarage(at time.Time) bool {
	if !s.IsCurrent(at) || s.Kind == SubscriptionPayPerUse {
		return false
	}
	return s.Kind != SubscriptionZonePass
}
