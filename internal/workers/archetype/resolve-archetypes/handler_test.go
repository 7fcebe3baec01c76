package resolvearchetypes

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zaptest"

	"archetype-resolver/internal/archetype"
	"archetype-resolver/internal/common/config"
	"archetype-resolver/internal/common/errors"
	"archetype-resolver/internal/common/logger"
	"archetype-resolver/internal/common/observability"
	"archetype-resolver/internal/graphdb/graphdbtest"
	"archetype-resolver/internal/lookup"
	"archetype-resolver/internal/models"
	"archetype-resolver/internal/report"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
	}
}

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewZapAdapter(zaptest.NewLogger(t))
}

func createTestFactory(t *testing.T) archetype.Factory {
	t.Helper()
	f, err := archetype.NewRetrofitFactory(context.Background(), archetype.Inputs{
		Config: &config.Config{
			Archetypes: map[string]config.ArchetypeConfig{
				"a1": {URI: graphdbtest.URIA1},
				"a2": {URI: graphdbtest.URIA2},
				"a3": {URI: graphdbtest.URIA3},
			},
			FixedInfiltrationProfileValue: 1.0,
		},
		Reader: graphdbtest.NewScenarioReader(),
		Logger: createTestLogger(t),
		Buildings: lookup.Buildings{
			10: {ID: 10, YearOfConstruction: 1950, DHWCarrier: models.DHWGas, HeatingCarrier: models.HeatingGas},
			11: {ID: 11, YearOfConstruction: 1910, DHWCarrier: models.DHWOil, HeatingCarrier: models.HeatingOil},
		},
		Retrofits: lookup.RetrofitRecords{10: {Wall: models.Year(2005)}},
	})
	require.NoError(t, err)
	return f
}

func boolPtr(b bool) *bool { return &b }

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	tests := []struct {
		name              string
		config            *Config
		input             *Input
		wantConstructions bool
		wantFailed        []int
	}{
		{
			name:       "summary only",
			config:     createTestConfig(),
			input:      &Input{BuildingIDs: []int{10, 11}},
			wantFailed: []int{},
		},
		{
			name:              "constructions on request",
			config:            createTestConfig(),
			input:             &Input{BuildingIDs: []int{10, 11}, IncludeConstructions: boolPtr(true)},
			wantConstructions: true,
			wantFailed:        []int{},
		},
		{
			name:              "constructions by default",
			config:            &Config{Timeout: time.Second, IncludeConstructions: true},
			input:             &Input{BuildingIDs: []int{10, 11}},
			wantConstructions: true,
			wantFailed:        []int{},
		},
		{
			name:       "unknown building is reported",
			config:     createTestConfig(),
			input:      &Input{BuildingIDs: []int{10, 99}},
			wantFailed: []int{99},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(tt.config, createTestFactory(t), nil, createTestLogger(t))

			out, err := h.Execute(context.Background(), tt.input)
			require.NoError(t, err)

			assert.NotEmpty(t, out.RunID)
			assert.Equal(t, archetype.FactoryRetrofit, out.Factory)
			assert.Len(t, out.Archetypes, len(tt.input.BuildingIDs))
			assert.Equal(t, tt.wantFailed, out.FailedBuildingIDs)
			assert.Equal(t, len(tt.input.BuildingIDs)-len(tt.wantFailed), out.ResolvedCount)

			assert.Equal(t, 10, out.Archetypes[0].BuildingID)
			assert.Equal(t, "Wall_A2_R_1991", out.Archetypes[0].Wall)
			assert.Equal(t, []string{"wall"}, out.Archetypes[0].Retrofitted)

			if tt.wantConstructions {
				require.Contains(t, out.Constructions, "10")
				assert.Equal(t, graphdbtest.URIA2, out.Constructions["10"].ArchetypeURI)
			} else {
				assert.Nil(t, out.Constructions)
			}
		})
	}
}

func TestHandler_Execute_InvalidInput(t *testing.T) {
	h := NewHandler(createTestConfig(), createTestFactory(t), nil, createTestLogger(t))

	for _, input := range []*Input{nil, {}} {
		_, err := h.Execute(context.Background(), input)
		require.Error(t, err)
		assert.True(t, errors.IsConfigurationError(err))
	}
}

func TestHandler_Execute_Cancelled(t *testing.T) {
	h := NewHandler(createTestConfig(), createTestFactory(t), nil, createTestLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.Execute(ctx, &Input{BuildingIDs: []int{10}})
	require.Error(t, err)
	assert.True(t, errors.IsExternalDataError(err))
	assert.ErrorIs(t, err, context.Canceled)
}

// ==========================
// Reports and metrics
// ==========================

func TestHandler_Execute_ExportsAndRecords(t *testing.T) {
	reader := metric.NewManualReader()
	obs := observability.NewWithReader("test", reader)
	path := filepath.Join(t.TempDir(), "assignments.csv")

	h := NewHandler(createTestConfig(), createTestFactory(t), obs, createTestLogger(t), report.NewCSVWriter(path))
	_, err := h.Execute(context.Background(), &Input{BuildingIDs: []int{10, 11, 12}})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Wall_A2_R_1991")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.NotEmpty(t, rm.ScopeMetrics)
	found := false
	for _, m := range rm.ScopeMetrics[0].Metrics {
		if m.Name == "archetype.batches" {
			found = true
		}
	}
	assert.True(t, found)
}

// ==========================
// Config
// ==========================

func TestLoadConfig(t *testing.T) {
	assert.Equal(t, 30*time.Second, LoadConfig(nil).Timeout)

	cfg := &config.Config{Workers: map[string]config.WorkerConfig{
		TaskType: {Enabled: true, Timeout: 1500},
	}}
	assert.Equal(t, 1500*time.Millisecond, LoadConfig(cfg).Timeout)
}
