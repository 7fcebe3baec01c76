package graphdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archetype-resolver/internal/common/config"
	apperrors "archetype-resolver/internal/common/errors"
	"archetype-resolver/internal/models"
)

func walls(names ...string) []models.Construction {
	out := make([]models.Construction, len(names))
	for i, n := range names {
		out[i] = models.Construction{Name: n, BuildingElement: models.ElementWall}
	}
	return out
}

func TestDefaultSelector(t *testing.T) {
	sel := NewDefaultSelector(map[string]config.ArchetypeConfig{
		"1948_sfh_archetype": {
			URI: "http://uesl_data/sources/archetypes/1948_SFH_Archetype",
			DefaultConstructionSpecific: config.DefaultConstructionSpecific{
				Active: true,
				Wall:   "Wall_1948_B",
			},
		},
		"1990_sfh_archetype": {
			URI: "http://uesl_data/sources/archetypes/1990_SFH_Archetype",
			DefaultConstructionSpecific: config.DefaultConstructionSpecific{
				Active: false,
				Wall:   "Wall_1990_B",
			},
		},
	})

	tests := []struct {
		name      string
		options   []models.Construction
		shortName string
		want      string
	}{
		{"configured by key", walls("Wall_1948_A", "Wall_1948_B"), "1948_SFH_ARCHETYPE", "Wall_1948_B"},
		{"configured by uri short name", walls("Wall_1948_A", "Wall_1948_B"), "1948_SFH_Archetype", "Wall_1948_B"},
		{"inactive takes first", walls("Wall_1990_A", "Wall_1990_B"), "1990_SFH_ARCHETYPE", "Wall_1990_A"},
		{"unknown archetype takes first", walls("X", "Y"), "2020_MFH", "X"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sel.GetDefaultConstruction(tt.options, tt.shortName)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Name)
		})
	}
}

func TestDefaultSelector_Errors(t *testing.T) {
	sel := NewDefaultSelector(map[string]config.ArchetypeConfig{
		"a": {URI: "http://x/A", DefaultConstructionSpecific: config.DefaultConstructionSpecific{Active: true, Wall: "Missing"}},
	})

	_, err := sel.GetDefaultConstruction(nil, "a")
	assert.True(t, apperrors.IsExternalDataError(err))

	_, err = sel.GetDefaultConstruction(walls("W1"), "a")
	assert.True(t, apperrors.IsConfigurationError(err))
}
