package local

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "archetype-resolver/internal/common/errors"
	"archetype-resolver/internal/graphdb"
	"archetype-resolver/internal/models"
	"archetype-resolver/internal/units"
)

const (
	uri1918 = "http://uesl_data/sources/archetypes/1918_SFH_Archetype"
	uri1990 = "http://uesl_data/sources/archetypes/1990_SFH_Archetype"
)

func openTestReader(t *testing.T) *Reader {
	t.Helper()
	r, err := Open("testdata/archetypes.yaml", units.NewSystem())
	require.NoError(t, err)
	return r
}

// ==========================
// Construction sets
// ==========================

func TestGetBldgElemConstructionArchetype(t *testing.T) {
	r := openTestReader(t)

	set, err := r.GetBldgElemConstructionArchetype(context.Background(), uri1918)
	require.NoError(t, err)

	assert.Equal(t, uri1918, set.Name)
	assert.Equal(t, "1918_SFH_ARCHETYPE", set.ShortName)
	require.Len(t, set.Walls, 2)
	assert.Equal(t, "Wall_1918_A", set.Walls[0].Name)
	assert.Equal(t, models.ElementWall, set.Walls[0].BuildingElement)
	require.Len(t, set.Walls[0].Layers, 2)
	assert.Equal(t, units.Millimeter, set.Walls[0].Layers[0].Thickness.Unit)
	assert.Equal(t, units.Meter, set.Walls[0].Layers[1].Thickness.Unit)
	assert.Len(t, set.InternalCeilings, 1)
}

func TestGetBldgElemConstructionArchetype_UnknownURI(t *testing.T) {
	r := openTestReader(t)

	_, err := r.GetBldgElemConstructionArchetype(context.Background(), "http://nowhere")
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, apperrors.ErrExternalDataFailed))
}

// ==========================
// Scalar properties
// ==========================

func TestArchetypeProperties(t *testing.T) {
	r := openTestReader(t)
	ctx := context.Background()

	ac, err := r.GetAgeClassOfArchetype(ctx, uri1990)
	require.NoError(t, err)
	assert.Equal(t, "[1919,1990]", ac.String())

	ac, err = r.GetAgeClassOfArchetype(ctx, uri1918)
	require.NoError(t, err)
	assert.Nil(t, ac.MinAge)

	glazing, err := r.GetGlazingRatio(ctx, uri1990)
	require.NoError(t, err)
	assert.Equal(t, 0.2, glazing.Value)
	assert.Equal(t, units.Dimensionless, glazing.Unit)

	infiltration, err := r.GetInfiltrationRate(ctx, uri1990)
	require.NoError(t, err)
	assert.Equal(t, units.PerHour, infiltration.Unit)

	shading, err := r.GetWindowShadingConstr(ctx, uri1990)
	require.NoError(t, err)
	assert.True(t, shading.IsShadingAvailable)
}

func TestGetLayers(t *testing.T) {
	r := openTestReader(t)
	ctx := context.Background()

	layers, err := r.GetLayers(ctx, "Wall_1918_A_R_1990")
	require.NoError(t, err)
	require.Len(t, layers, 1)
	assert.Equal(t, units.Centimeter, layers[0].Thickness.Unit)

	_, err = r.GetLayers(ctx, "Wall_1918_A_R_2100")
	assert.True(t, apperrors.IsExternalDataError(err))

	_, err = r.GetWindowLayers(ctx, "Window_1990")
	assert.NoError(t, err)

	_, err = r.GetWindowLayers(ctx, "Wall_1990_A")
	assert.True(t, apperrors.IsExternalDataError(err))
}

// ==========================
// Document parsing
// ==========================

func TestParseDocument_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", "archetypes: []"},
		{"missing uri", "archetypes: [{name: x}]"},
		{"duplicate uri", "archetypes: [{uri: a}, {uri: a}]"},
		{"unknown element", "archetypes: [{uri: a, constructions: {door: [D]}}]"},
		{"construction without element", "archetypes: [{uri: a}]\nconstructions: [{name: W}]"},
		{"not yaml", "archetypes: [:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := graphdb.ParseDocument([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open("testdata/missing.yaml", units.NewSystem())
	assert.Error(t, err)
}
