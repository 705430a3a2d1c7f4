package session

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/openpark/parkcore/internal/parking/domain/value_objects"
	"github.com/openpark/parkcore/internal/shared/domain"
)

var (
	ErrEmptyPlate         = errors.New("vehicle plate cannot be empty")
	ErrInvalidTransition  = errors.New("invalid session state transition")
	ErrInvalidTimeRange   = errors.New("departure cannot precede arrival")
	ErrAlreadyPaid        = errors.New("session is already paid")
	ErrMissingLocationRef = errors.New("session location reference is missing")
)

// Status represents the session lifecycle state.
// Terminated and Expired are terminal; no transition leaves them.
type Status int

const (
	StatusActive Status = iota
	StatusTerminated
	StatusExpired
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusTerminated:
		return "terminated"
	case StatusExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// ParseStatus parses a stored status string.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "active":
		return StatusActive, nil
	case "terminated":
		return StatusTerminated, nil
	case "expired":
		return StatusExpired, nil
	default:
		return StatusActive, errors.New("unknown session status: " + s)
	}
}

// Kind distinguishes on-street from garage sessions. Fixed at creation.
type Kind int

const (
	KindStreet Kind = iota
	KindGarage
)

func (k Kind) String() string {
	if k == KindGarage {
		return "garage"
	}
	return "street"
}

// ParseKind parses a stored kind string.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "street":
		return KindStreet, nil
	case "garage":
		return KindGarage, nil
	default:
		return KindStreet, errors.New("unknown session kind: " + s)
	}
}

// PaymentStatus tracks whether the session fee has been collected.
type PaymentStatus int

const (
	PaymentUnpaid PaymentStatus = iota
	PaymentPaid
)

func (p PaymentStatus) String() string {
	if p == PaymentPaid {
		return "paid"
	}
	return "unpaid"
}

// ParsePaymentStatus parses a stored payment status string.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch s {
	case "paid":
		return PaymentPaid, nil
	case "unpaid":
		return PaymentUnpaid, nil
	default:
		return PaymentUnpaid, errors.New("unknown payment status: " + s)
	}
}

// Session is a time-bounded parking session, either on-street or in a garage.
//
// Street sessions carry a planned duration paid at creation; garage sessions
// carry an arrival time and are priced at close. Exactly one of the two
// location references (zoneID, garageID) is populated, matching the kind.
type Session struct {
	domain.BaseAggregateRoot
	ownerID         uuid.UUID
	vehicle         value_objects.VehicleKind
	plate           string
	kind            Kind
	zoneID          string
	garageID        uuid.UUID
	plannedDuration value_objects.PlannedDuration
	plannedEndAt    time.Time
	arrivalAt       time.Time
	departureAt     *time.Time
	cost            value_objects.Money
	status          Status
	paymentStatus   PaymentStatus
	paymentRef      uuid.UUID
}

// NewStreetSession creates an active street session with its cost fixed
// up front. The caller collects payment before persisting and attaches the
// payment reference via MarkPaid.
func NewStreetSession(ownerID uuid.UUID, vehicle value_objects.VehicleKind, plate, zoneID string, plannedDuration value_objects.PlannedDuration, cost value_objects.Money) (*Session, error) {
	plate = strings.TrimSpace(plate)
	if plate == "" {
		return nil, ErrEmptyPlate
	}
	if zoneID == "" {
		return nil, ErrMissingLocationRef
	}

	s := &Session{
		BaseAggregateRoot: domain.NewBaseAggregateRoot(),
		ownerID:           ownerID,
		vehicle:           vehicle,
		plate:             plate,
		kind:              KindStreet,
		zoneID:            zoneID,
		plannedDuration:   plannedDuration,
		cost:              cost,
		status:            StatusActive,
		paymentStatus:     PaymentUnpaid,
	}
	s.plannedEndAt = s.CreatedAt().Add(plannedDuration.Value())

	s.AddDomainEvent(NewSessionCreated(s.ID(), s.ownerID, s.kind.String(), zoneID))

	return s, nil
}

// NewGarageSession creates an active garage session. No payment occurs at
// entry; the cost stays zero until close.
func NewGarageSession(ownerID uuid.UUID, vehicle value_objects.VehicleKind, plate string, garageID uuid.UUID) (*Session, error) {
	plate = strings.TrimSpace(plate)
	if plate == "" {
		return nil, ErrEmptyPlate
	}
	if garageID == uuid.Nil {
		return nil, ErrMissingLocationRef
	}

	s := &Session{
		BaseAggregateRoot: domain.NewBaseAggregateRoot(),
		ownerID:           ownerID,
		vehicle:           vehicle,
		plate:             plate,
		kind:              KindGarage,
		garageID:          garageID,
		cost:              value_objects.ZeroMoney(),
		status:            StatusActive,
		paymentStatus:     PaymentUnpaid,
	}
	s.arrivalAt = s.CreatedAt()

	s.AddDomainEvent(NewSessionCreated(s.ID(), s.ownerID, s.kind.String(), garageID.String()))

	return s, nil
}

// Getters

func (s *Session) OwnerID() uuid.UUID                              { return s.ownerID }
func (s *Session) Vehicle() value_objects.VehicleKind              { return s.vehicle }
func (s *Session) Plate() string                                   { return s.plate }
func (s *Session) Kind() Kind                                      { return s.kind }
func (s *Session) ZoneID() string                                  { return s.zoneID }
func (s *Session) GarageID() uuid.UUID                             { return s.garageID }
func (s *Session) PlannedDuration() value_objects.PlannedDuration  { return s.plannedDuration }
func (s *Session) PlannedEndAt() time.Time                         { return s.plannedEndAt }
func (s *Session) ArrivalAt() time.Time                            { return s.arrivalAt }
func (s *Session) DepartureAt() *time.Time                         { return s.departureAt }
func (s *Session) Cost() value_objects.Money                       { return s.cost }
func (s *Session) Status() Status                                  { return s.status }
func (s *Session) PaymentStatus() PaymentStatus                    { return s.paymentStatus }
func (s *Session) PaymentRef() uuid.UUID                           { return s.paymentRef }
func (s *Session) IsActive() bool                                  { return s.status == StatusActive }

// RemainingAt returns how much paid time a street session has left at the
// given instant. Zero for garage or non-active sessions.
func (s *Session) RemainingAt(now time.Time) time.Duration {
	if s.kind != KindStreet || s.status != StatusActive {
		return 0
	}
	remaining := s.plannedEndAt.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// MarkPaid records a successful charge against the session.
func (s *Session) MarkPaid(paymentRef uuid.UUID) error {
	if s.paymentStatus == PaymentPaid {
		return ErrAlreadyPaid
	}
	s.paymentStatus = PaymentPaid
	s.paymentRef = paymentRef
	s.Touch()
	return nil
}

// CloseStreet terminates an active street session. The cost was fixed and
// collected at creation, so no payment is involved.
func (s *Session) CloseStreet() error {
	if s.kind != KindStreet || s.status != StatusActive {
		return ErrInvalidTransition
	}
	s.status = StatusTerminated
	s.Touch()
	s.AddDomainEvent(NewSessionTerminated(s.ID(), s.ownerID, s.cost.Cents()))
	return nil
}

// CloseGarage terminates an active garage session with the priced cost and
// the payment collected for it. Capacity release is the caller's concern.
func (s *Session) CloseGarage(departureAt time.Time, cost value_objects.Money, paymentRef uuid.UUID) error {
	if s.kind != KindGarage || s.status != StatusActive {
		return ErrInvalidTransition
	}
	if departureAt.Before(s.arrivalAt) {
		return ErrInvalidTimeRange
	}
	s.departureAt = &departureAt
	s.cost = cost
	s.paymentStatus = PaymentPaid
	s.paymentRef = paymentRef
	s.status = StatusTerminated
	s.Touch()
	s.AddDomainEvent(NewSessionTerminated(s.ID(), s.ownerID, cost.Cents()))
	return nil
}

// Expire flips an active street session past its planned end to expired.
// Garage sessions have no planned end and never expire.
func (s *Session) Expire(now time.Time) error {
	if s.kind != KindStreet || s.status != StatusActive {
		return ErrInvalidTransition
	}
	if !s.plannedEndAt.Before(now) {
		return ErrInvalidTransition
	}
	s.status = StatusExpired
	s.Touch()
	s.AddDomainEvent(NewSessionExpired(s.ID(), s.ownerID))
	return nil
}

// RaiseTimeLow records the low-remaining-time warning on an active street
// session. Callers are responsible for raising it at most once.
func (s *Session) RaiseTimeLow(remaining time.Duration) error {
	if s.kind != KindStreet || s.status != StatusActive {
		return ErrInvalidTransition
	}
	s.AddDomainEvent(NewSessionTimeLow(s.ID(), s.ownerID, int(remaining.Seconds())))
	return nil
}

// RehydrateState recreates a session from persisted state. The repository
// layer owns the field mapping; no events are emitted.
type RehydrateState struct {
	ID              uuid.UUID
	OwnerID         uuid.UUID
	Vehicle         value_objects.VehicleKind
	Plate           string
	Kind            Kind
	ZoneID          string
	GarageID        uuid.UUID
	PlannedDuration value_objects.PlannedDuration
	PlannedEndAt    time.Time
	ArrivalAt       time.Time
	DepartureAt     *time.Time
	Cost            value_objects.Money
	Status          Status
	PaymentStatus   PaymentStatus
	PaymentRef      uuid.UUID
	Version         int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Rehydrate rebuilds a Session aggregate from storage.
func Rehydrate(state RehydrateState) *Session {
	return &Session{
		BaseAggregateRoot: domain.RehydrateBaseAggregateRoot(
			domain.RehydrateBaseEntity(state.ID, state.CreatedAt, state.UpdatedAt),
			state.Version,
		),
		ownerID:         state.OwnerID,
		vehicle:         state.Vehicle,
		plate:           state.Plate,
		kind:            state.Kind,
		zoneID:          state.ZoneID,
		garageID:        state.GarageID,
		plannedDuration: state.PlannedDuration,
		plannedEndAt:    state.PlannedEndAt,
		arrivalAt:       state.ArrivalAt,
		departureAt:     state.DepartureAt,
		cost:            state.Cost,
		status:          state.Status,
		paymentStatus:   state.PaymentStatus,
		paymentRef:      state.PaymentRef,
	}
}
