package domain

import (
	"github.com/google/uuid"
	"github.com/openpark/parkcore/internal/parking/domain/value_objects"
)

// Garage is an enclosed parking facility: capacity counters plus tariff
// settings. The capacity invariant 0 <= available <= total for each vehicle
// kind is enforced by the capacity ledger, not here.
type Garage struct {
	ID                  uuid.UUID
	Label               string
	Address             string
	MaxHeightCm         int
	TotalCarSpaces      int
	AvailableCarSpaces  int
	TotalMotoSpaces     int
	AvailableMotoSpaces int
	EveningRateEligible bool
	IsRelayGarage       bool
	// HourlyRate of zero means the engine's default rate applies.
	HourlyRate  value_objects.Money
	EveningRate value_objects.Money
}
