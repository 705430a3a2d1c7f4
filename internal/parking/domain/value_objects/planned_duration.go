package value_objects

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidPlannedDuration = errors.New("planned duration must be positive")

// PlannedDuration is the duration a street session is paid for up front.
type PlannedDuration struct {
	value time.Duration
}

// NewPlannedDuration creates a PlannedDuration from hours and minutes.
func NewPlannedDuration(hours, minutes int) (PlannedDuration, error) {
	if hours < 0 || minutes < 0 {
		return PlannedDuration{}, ErrInvalidPlannedDuration
	}
	d := time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute
	if d <= 0 {
		return PlannedDuration{}, ErrInvalidPlannedDuration
	}
	return PlannedDuration{value: d}, nil
}

// MustNewPlannedDuration creates a PlannedDuration or panics on error.
func MustNewPlannedDuration(hours, minutes int) PlannedDuration {
	d, err := NewPlannedDuration(hours, minutes)
	if err != nil {
		panic(err)
	}
	return d
}

// RehydratePlannedDuration recreates a PlannedDuration from persisted minutes.
func RehydratePlannedDuration(minutes int) PlannedDuration {
	return PlannedDuration{value: time.Duration(minutes) * time.Minute}
}

// Minutes returns the total duration in minutes.
func (d PlannedDuration) Minutes() int {
	return int(d.value.Minutes())
}

// Value returns the underlying time.Duration.
func (d PlannedDuration) Value() time.Duration {
	return d.value
}

// IsZero returns true for the zero value (garage sessions carry none).
func (d PlannedDuration) IsZero() bool {
	return d.value == 0
}

// Exceeds reports whether the duration is longer than the given limit.
func (d PlannedDuration) Exceeds(limit time.Duration) bool {
	return d.value > limit
}

// String returns a human-readable representation, e.g. "1h30m".
func (d PlannedDuration) String() string {
	hours := int(d.value.Hours())
	minutes := int(d.value.Minutes()) % 60
	if hours > 0 && minutes > 0 {
		return fmt.Sprintf("%dh%dm", hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dm", minutes)
}
