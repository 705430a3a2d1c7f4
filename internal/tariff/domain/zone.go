package domain

import (
	"time"

	"github.com/openpark/parkcore/internal/parking/domain/value_objects"
)

// Built-in zone identifiers, each with its own tiered fee schedule.
const (
	ZoneBlue   = "blue"
	ZoneGreen  = "green"
	ZoneYellow = "yellow"
	ZoneOrange = "orange"
	ZoneRed    = "red"
)

// Zone is an on-street pricing area. Immutable reference data.
//
// The hourly rate is a linear fallback used only for zones without a
// built-in tier schedule.
type Zone struct {
	ID          string
	Label       string
	HourlyRate  value_objects.Money
	MaxDuration time.Duration
}
