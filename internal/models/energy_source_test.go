package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnergySource(t *testing.T) {
	tests := []struct {
		in      string
		family  string
		want    EnergySource
		wantErr bool
	}{
		{"HEATING_GAS", "HEATING", HeatingGas, false},
		{"gas", "HEATING", HeatingGas, false},
		{"district heating", "DHW", DHWDistrictHeating, false},
		{"heat-pump", "DHW", DHWHeatPump, false},
		{"", "DHW", DHWOther, false},
		{"plutonium", "HEATING", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseEnergySource(tt.in, tt.family)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.True(t, DHWSolar.IsDHW())
	assert.True(t, HeatingWood.IsHeating())
	assert.False(t, HeatingWood.IsDHW())
}

func TestShortName(t *testing.T) {
	assert.Equal(t, "Wall_1948", ShortName("http://uesl_data/sources/archetypes/constructions#Wall_1948"))
	assert.Equal(t, "Roof", ShortName("a/b/Roof"))
	assert.Equal(t, "plain", ShortName("plain"))
}
