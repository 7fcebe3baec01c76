package rediscache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archetype-resolver/internal/common/logger"
	"archetype-resolver/internal/graphdb"
	"archetype-resolver/internal/graphdb/graphdbtest"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestCache(t *testing.T) (*Reader, *graphdbtest.CountingReader, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	inner := graphdbtest.NewCountingReader(graphdbtest.NewScenarioReader())
	return New(inner, client, time.Hour, "archetype:", logger.NewTestLogger(t)), inner, mr
}

// ==========================
// Read-through behaviour
// ==========================

func TestReader_ReadThrough(t *testing.T) {
	cache, inner, mr := createTestCache(t)
	ctx := context.Background()

	first, err := cache.GetBldgElemConstructionArchetype(ctx, graphdbtest.URIA2)
	require.NoError(t, err)
	second, err := cache.GetBldgElemConstructionArchetype(ctx, graphdbtest.URIA2)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.Calls(graphdb.OpConstructionArchetype))
	assert.Equal(t, first, second)

	key := cache.Key(graphdb.OpConstructionArchetype, graphdbtest.URIA2)
	assert.Equal(t, "archetype:get_bldg_elem_construction_archetype:"+graphdbtest.URIA2, key)
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Hour, mr.TTL(key))
}

func TestReader_AllOperationsCached(t *testing.T) {
	cache, inner, _ := createTestCache(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ac, err := cache.GetAgeClassOfArchetype(ctx, graphdbtest.URIA3)
		require.NoError(t, err)
		assert.Equal(t, "[1991,+inf]", ac.String())

		_, err = cache.GetGlazingRatio(ctx, graphdbtest.URIA3)
		require.NoError(t, err)
		infiltration, err := cache.GetInfiltrationRate(ctx, graphdbtest.URIA3)
		require.NoError(t, err)
		assert.Equal(t, 0.3, infiltration.Value)
		_, err = cache.GetWindowShadingConstr(ctx, graphdbtest.URIA3)
		require.NoError(t, err)
		_, err = cache.GetLayers(ctx, "Wall_A2_R_1991")
		require.NoError(t, err)
		_, err = cache.GetWindowLayers(ctx, "Window_A2_R_1991")
		require.NoError(t, err)
	}

	for _, op := range []string{
		graphdb.OpAgeClass, graphdb.OpGlazingRatio, graphdb.OpInfiltrationRate,
		graphdb.OpWindowShading, graphdb.OpLayers, graphdb.OpWindowLayers,
	} {
		assert.Equal(t, 1, inner.Calls(op), op)
	}
}

func TestReader_ErrorsAreNotCached(t *testing.T) {
	cache, inner, mr := createTestCache(t)
	ctx := context.Background()

	_, err := cache.GetLayers(ctx, "Wall_A3_R_2050")
	require.Error(t, err)
	_, err = cache.GetLayers(ctx, "Wall_A3_R_2050")
	require.Error(t, err)

	assert.Equal(t, 2, inner.Calls(graphdb.OpLayers))
	assert.False(t, mr.Exists(cache.Key(graphdb.OpLayers, "Wall_A3_R_2050")))
}

func TestReader_RedisUnavailable(t *testing.T) {
	cache, inner, mr := createTestCache(t)
	mr.Close()

	set, err := cache.GetBldgElemConstructionArchetype(context.Background(), graphdbtest.URIA1)
	require.NoError(t, err)
	assert.Equal(t, "A1", set.ShortName)
	assert.Equal(t, 1, inner.Calls(graphdb.OpConstructionArchetype))
}

func TestReader_CorruptEntry(t *testing.T) {
	client, mock := redismock.NewClientMock()
	inner := graphdbtest.NewCountingReader(graphdbtest.NewScenarioReader())
	cache := New(inner, client, time.Minute, "archetype:", logger.NewNoOpLogger())

	key := cache.Key(graphdb.OpGlazingRatio, graphdbtest.URIA1)
	mock.ExpectGet(key).SetVal("{not json")
	mock.Regexp().ExpectSet(key, `.*`, time.Minute).SetVal("OK")

	ratio, err := cache.GetGlazingRatio(context.Background(), graphdbtest.URIA1)
	require.NoError(t, err)
	assert.Equal(t, 0.15, ratio.Value)
	assert.Equal(t, 1, inner.Calls(graphdb.OpGlazingRatio))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReader_WriteFailureIsIgnored(t *testing.T) {
	client, mock := redismock.NewClientMock()
	inner := graphdbtest.NewCountingReader(graphdbtest.NewScenarioReader())
	cache := New(inner, client, time.Minute, "archetype:", logger.NewNoOpLogger())

	key := cache.Key(graphdb.OpAgeClass, graphdbtest.URIA2)
	mock.ExpectGet(key).RedisNil()
	mock.Regexp().ExpectSet(key, `.*`, time.Minute).SetErr(errors.New("READONLY"))

	ac, err := cache.GetAgeClassOfArchetype(context.Background(), graphdbtest.URIA2)
	require.NoError(t, err)
	assert.Equal(t, "[1919,1990]", ac.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Invalidation
// ==========================

func TestReader_Invalidate(t *testing.T) {
	cache, inner, mr := createTestCache(t)
	ctx := context.Background()
	require.NoError(t, mr.Set("other:key", "keep"))

	_, err := cache.GetGlazingRatio(ctx, graphdbtest.URIA1)
	require.NoError(t, err)
	_, err = cache.GetGlazingRatio(ctx, graphdbtest.URIA2)
	require.NoError(t, err)

	removed, err := cache.Invalidate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.True(t, mr.Exists("other:key"))

	_, err = cache.GetGlazingRatio(ctx, graphdbtest.URIA1)
	require.NoError(t, err)
	assert.Equal(t, 3, inner.Calls(graphdb.OpGlazingRatio))
}
