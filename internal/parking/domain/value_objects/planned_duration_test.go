package value_objects

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPlannedDuration(t *testing.T) {
	d, err := NewPlannedDuration(1, 30)
	require.NoError(t, err)
	assert.Equal(t, 90, d.Minutes())
	assert.Equal(t, 90*time.Minute, d.Value())
	assert.False(t, d.IsZero())
}

func TestNewPlannedDuration_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		hours   int
		minutes int
	}{
		{"zero", 0, 0},
		{"negative hours", -1, 30},
		{"negative minutes", 1, -30},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewPlannedDuration(tc.hours, tc.minutes)
			assert.ErrorIs(t, err, ErrInvalidPlannedDuration)
		})
	}
}

func TestPlannedDuration_Exceeds(t *testing.T) {
	d := MustNewPlannedDuration(2, 0)
	assert.True(t, d.Exceeds(90*time.Minute))
	assert.False(t, d.Exceeds(2*time.Hour))
}

func TestRehydratePlannedDuration(t *testing.T) {
	d := RehydratePlannedDuration(45)
	assert.Equal(t, 45, d.Minutes())
}

func TestPlannedDuration_String(t *testing.T) {
	assert.Equal(t, "1h30m", MustNewPlannedDuration(1, 30).String())
	assert.Equal(t, "2h", MustNewPlannedDuration(2, 0).String())
	assert.Equal(t, "45m", MustNewPlannedDuration(0, 45).String())
}
