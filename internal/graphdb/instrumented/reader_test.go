package instrumented

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"archetype-resolver/internal/common/logger"
	"archetype-resolver/internal/common/metrics"
	"archetype-resolver/internal/graphdb"
	"archetype-resolver/internal/graphdb/graphdbtest"
)

func TestReader_RecordsQueries(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := New(graphdbtest.NewScenarioReader(), logger.NewZapAdapter(zap.New(core)))
	ctx := context.Background()

	okBefore := testutil.ToFloat64(metrics.GraphQueries.WithLabelValues(graphdb.OpLayers, "ok"))
	errBefore := testutil.ToFloat64(metrics.GraphQueries.WithLabelValues(graphdb.OpLayers, "error"))

	layers, err := r.GetLayers(ctx, "Wall_A1_R_1990")
	require.NoError(t, err)
	assert.Len(t, layers, 1)

	_, err = r.GetLayers(ctx, "Wall_A3_R_2050")
	require.Error(t, err)

	assert.Equal(t, okBefore+1, testutil.ToFloat64(metrics.GraphQueries.WithLabelValues(graphdb.OpLayers, "ok")))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(metrics.GraphQueries.WithLabelValues(graphdb.OpLayers, "error")))

	require.Equal(t, 2, logs.Len())
	entries := logs.All()
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "Wall_A3_R_2050", entries[1].ContextMap()["argument"])
}

func TestReader_PassesThroughResults(t *testing.T) {
	inner := graphdbtest.NewCountingReader(graphdbtest.NewScenarioReader())
	r := New(inner, logger.NewNoOpLogger())
	ctx := context.Background()

	set, err := r.GetBldgElemConstructionArchetype(ctx, graphdbtest.URIA2)
	require.NoError(t, err)
	assert.Equal(t, "A2", set.ShortName)

	ac, err := r.GetAgeClassOfArchetype(ctx, graphdbtest.URIA2)
	require.NoError(t, err)
	assert.Equal(t, "[1919,1990]", ac.String())

	_, err = r.GetWindowShadingConstr(ctx, graphdbtest.URIA2)
	require.NoError(t, err)
	_, err = r.GetGlazingRatio(ctx, graphdbtest.URIA2)
	require.NoError(t, err)
	_, err = r.GetInfiltrationRate(ctx, graphdbtest.URIA2)
	require.NoError(t, err)
	_, err = r.GetWindowLayers(ctx, "Window_A2")
	require.NoError(t, err)

	assert.Equal(t, 1, inner.Calls(graphdb.OpConstructionArchetype))
	assert.Equal(t, 1, inner.Calls(graphdb.OpWindowLayers))
}
