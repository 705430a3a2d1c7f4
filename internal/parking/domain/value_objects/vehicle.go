package value_objects

import (
	"errors"
	"fmt"
)

var ErrUnknownVehicleKind = errors.New("unknown vehicle kind")

// VehicleKind classifies the parked vehicle.
type VehicleKind int

const (
	VehicleCar VehicleKind = iota
	VehicleMotorcycle
	VehicleTruck
)

func (k VehicleKind) String() string {
	switch k {
	case VehicleCar:
		return "car"
	case VehicleMotorcycle:
		return "motorcycle"
	case VehicleTruck:
		return "truck"
	default:
		return "unknown"
	}
}

// UsesMotoSpace reports whether the vehicle occupies a motorcycle space.
// Trucks take a car space; garages only meter car and motorcycle counters.
func (k VehicleKind) UsesMotoSpace() bool {
	return k == VehicleMotorcycle
}

// ParseVehicleKind parses a stored vehicle kind string.
func ParseVehicleKind(s string) (VehicleKind, error) {
	switch s {
	case "car":
		return VehicleCar, nil
	case "motorcycle":
		return VehicleMotorcycle, nil
	case "truck":
		return VehicleTruck, nil
	default:
		return VehicleCar, fmt.Errorf("%w: %q", ErrUnknownVehicleKind, s)
	}
}
