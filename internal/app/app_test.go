package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archetype-resolver/internal/common/config"
	"archetype-resolver/internal/common/logger"
	"archetype-resolver/internal/models"
)

const (
	uri1918 = "http://uesl_data/sources/archetypes/1918_SFH_Archetype"
	uri1990 = "http://uesl_data/sources/archetypes/1990_SFH_Archetype"
)

func sampleConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadFromFile("../../configs/config.yaml")
	require.NoError(t, err)
	return cfg
}

// ==========================
// Bootstrap
// ==========================

func TestNew_SampleConfiguration(t *testing.T) {
	cfg := sampleConfig(t)
	a, err := New(context.Background(), cfg, logger.NewTestLogger(t))
	require.NoError(t, err)
	defer a.Close()

	r, err := a.Resolver()
	require.NoError(t, err)
	assert.Equal(t, "graphdb_age_class", r.Name())
	assert.Equal(t, []int{1, 2, 3, 4, 5}, r.Buildings())

	tests := []struct {
		id  int
		uri string
	}{
		{1, uri1918},
		{2, uri1990},
		{5, uri1990},
	}
	for _, tt := range tests {
		resolved, err := a.Factory.ArchetypeFor(context.Background(), tt.id)
		require.NoError(t, err)
		assert.Equal(t, tt.uri, resolved.ArchetypeURI)
	}

	assert.Empty(t, a.Checks())
}

func TestNew_RetrofitFactory(t *testing.T) {
	cfg := sampleConfig(t)
	cfg.Factory = config.FactoryRetrofit

	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	resolved, err := a.Factory.ArchetypeFor(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, uri1918, resolved.ArchetypeURI)
	assert.Equal(t, []models.BuildingElement{models.ElementWall}, resolved.RetrofittedElements)
	assert.Equal(t, "Wall_1918_A_R_1990", resolved.Wall.Default.Name)
}

func TestNew_UnknownFactory(t *testing.T) {
	cfg := sampleConfig(t)
	cfg.Factory = "nearest_neighbour"

	_, err := New(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "graphdb_age_class")
}

// ==========================
// Report sinks
// ==========================

func TestExporters(t *testing.T) {
	cfg := sampleConfig(t)
	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	exporters, err := a.Exporters(context.Background())
	require.NoError(t, err)
	assert.Empty(t, exporters)

	cfg.Report.CSVPath = filepath.Join(t.TempDir(), "assignments.csv")
	cfg.Report.ElasticsearchIndex = "archetype-assignments"
	cfg.Database.Elasticsearch.Addresses = []string{"http://127.0.0.1:9200"}

	exporters, err = a.Exporters(context.Background())
	require.NoError(t, err)
	require.Len(t, exporters, 2)
	assert.Equal(t, "csv", exporters[0].Name())
	assert.Equal(t, "elasticsearch", exporters[1].Name())
}
