package units

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToSeconds(t *testing.T) {
	tests := []struct {
		name    string
		amount  float64
		unit    Unit
		want    float64
		wantErr bool
	}{
		{name: "seconds passthrough", amount: 42, unit: UnitSeconds, want: 42},
		{name: "500 words", amount: 500, unit: UnitWords, want: 50},
		{name: "2 images", amount: 2, unit: UnitImages, want: 20},
		{name: "1.5 minutes", amount: 1.5, unit: UnitMinutes, want: 90},
		{name: "zero amount", amount: 0, unit: UnitWords, want: 0},
		{name: "unknown unit", amount: 10, unit: Unit("tokens"), wantErr: true},
		{name: "empty unit", amount: 10, unit: Unit(""), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToSeconds(tt.amount, tt.unit)
			if tt.wantErr {
				require.Error(t, err)
				var invalid *InvalidUnitError
				require.True(t, errors.As(err, &invalid))
				assert.Equal(t, tt.unit, invalid.Unit)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestUnitValid(t *testing.T) {
	for _, u := range []Unit{UnitSeconds, UnitWords, UnitImages, UnitMinutes} {
		assert.True(t, u.Valid(), string(u))
	}
	assert.False(t, Unit("hours").Valid())
}
