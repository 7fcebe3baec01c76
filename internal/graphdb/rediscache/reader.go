// Package rediscache is a read-through redis cache in front of a
// graphdb.Reader, shared by all worker processes that resolve archetypes
// against the same data source.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"archetype-resolver/internal/common/logger"
	"archetype-resolver/internal/graphdb"
	"archetype-resolver/internal/models"
	"archetype-resolver/internal/units"
)

// Reader caches every result of the wrapped reader as JSON under
// "<prefix><operation>:<argument>". Errors are never cached; a failing
// redis degrades to direct reads.
type Reader struct {
	next   graphdb.Reader
	client redis.Cmdable
	ttl    time.Duration
	prefix string
	logger logger.Logger
}

var _ graphdb.Reader = (*Reader)(nil)

func New(next graphdb.Reader, client redis.Cmdable, ttl time.Duration, prefix string, log logger.Logger) *Reader {
	return &Reader{next: next, client: client, ttl: ttl, prefix: prefix, logger: log}
}

// Key returns the redis key of an operation result.
func (r *Reader) Key(op, arg string) string {
	return r.prefix + op + ":" + arg
}

func cached[T any](ctx context.Context, r *Reader, op, arg string, fetch func() (T, error)) (T, error) {
	key := r.Key(op, arg)

	val, err := r.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		var out T
		if jsonErr := json.Unmarshal([]byte(val), &out); jsonErr == nil {
			return out, nil
		}
		r.logger.Warn("discarding undecodable cache entry", map[string]interface{}{"key": key})
	case !errors.Is(err, redis.Nil):
		r.logger.Warn("archetype cache read failed", map[string]interface{}{"key": key, "error": err})
	}

	out, err := fetch()
	if err != nil {
		return out, err
	}

	data, err := json.Marshal(out)
	if err != nil {
		r.logger.Warn("failed to encode cache entry", map[string]interface{}{"key": key, "error": err})
		return out, nil
	}
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		r.logger.Warn("archetype cache write failed", map[string]interface{}{"key": key, "error": err})
	}
	return out, nil
}

func (r *Reader) GetBldgElemConstructionArchetype(ctx context.Context, uri string) (*models.BuildingElementConstructionSet, error) {
	return cached(ctx, r, graphdb.OpConstructionArchetype, uri, func() (*models.BuildingElementConstructionSet, error) {
		return r.next.GetBldgElemConstructionArchetype(ctx, uri)
	})
}

func (r *Reader) GetAgeClassOfArchetype(ctx context.Context, uri string) (models.AgeClass, error) {
	return cached(ctx, r, graphdb.OpAgeClass, uri, func() (models.AgeClass, error) {
		return r.next.GetAgeClassOfArchetype(ctx, uri)
	})
}

func (r *Reader) GetWindowShadingConstr(ctx context.Context, uri string) (models.WindowShadingConstruction, error) {
	return cached(ctx, r, graphdb.OpWindowShading, uri, func() (models.WindowShadingConstruction, error) {
		return r.next.GetWindowShadingConstr(ctx, uri)
	})
}

func (r *Reader) GetGlazingRatio(ctx context.Context, uri string) (units.Quantity, error) {
	return cached(ctx, r, graphdb.OpGlazingRatio, uri, func() (units.Quantity, error) {
		return r.next.GetGlazingRatio(ctx, uri)
	})
}

func (r *Reader) GetInfiltrationRate(ctx context.Context, uri string) (units.Quantity, error) {
	return cached(ctx, r, graphdb.OpInfiltrationRate, uri, func() (units.Quantity, error) {
		return r.next.GetInfiltrationRate(ctx, uri)
	})
}

func (r *Reader) GetLayers(ctx context.Context, constructionName string) ([]models.Layer, error) {
	return cached(ctx, r, graphdb.OpLayers, constructionName, func() ([]models.Layer, error) {
		return r.next.GetLayers(ctx, constructionName)
	})
}

func (r *Reader) GetWindowLayers(ctx context.Context, constructionName string) ([]models.Layer, error) {
	return cached(ctx, r, graphdb.OpWindowLayers, constructionName, func() ([]models.Layer, error) {
		return r.next.GetWindowLayers(ctx, constructionName)
	})
}

// Invalidate removes every cached entry under the prefix, e.g. after the
// archetype database was re-imported.
func (r *Reader) Invalidate(ctx context.Context) (int, error) {
	var (
		cursor  uint64
		removed int
	)
	for {
		keys, next, err := r.client.Scan(ctx, cursor, r.prefix+"*", 100).Result()
		if err != nil {
			return removed, err
		}
		if len(keys) > 0 {
			n, err := r.client.Del(ctx, keys...).Result()
			if err != nil {
				return removed, err
			}
			removed += int(n)
		}
		if next == 0 {
			return removed, nil
		}
		cursor = next
	}
}
