package value_objects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVehicleKind(t *testing.T) {
	tests := []struct {
		input string
		want  VehicleKind
	}{
		{"car", VehicleCar},
		{"motorcycle", VehicleMotorcycle},
		{"truck", VehicleTruck},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			kind, err := ParseVehicleKind(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, kind)
			assert.Equal(t, tc.input, kind.String())
		})
	}
}

func TestParseVehicleKind_Unknown(t *testing.T) {
	_, err := ParseVehicleKind("bicycle")
	assert.ErrorIs(t, err, ErrUnknownVehicleKind)
}

func TestVehicleKind_UsesMotoSpace(t *testing.T) {
	assert.False(t, VehicleCar.UsesMotoSpace())
	assert.True(t, VehicleMotorcycle.UsesMotoSpace())
	// Trucks occupy a car space.
	assert.False(t, VehicleTruck.UsesMotoSpace())
}
