// Package backend assembles the graph reader stack selected by the
// configuration: the data source, the optional shared redis cache and the
// instrumentation decorator.
package backend

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"archetype-resolver/internal/common/config"
	"archetype-resolver/internal/common/database"
	apperrors "archetype-resolver/internal/common/errors"
	"archetype-resolver/internal/common/logger"
	"archetype-resolver/internal/graphdb"
	"archetype-resolver/internal/graphdb/instrumented"
	"archetype-resolver/internal/graphdb/local"
	"archetype-resolver/internal/graphdb/postgres"
	"archetype-resolver/internal/graphdb/rediscache"
	"archetype-resolver/internal/units"
)

// Backend is an opened reader stack and the connections behind it.
type Backend struct {
	Reader graphdb.Reader
	// Cache is nil when the redis cache is disabled.
	Cache *rediscache.Reader
	DB    *sql.DB
	Redis *redis.Client
}

// Open connects to the configured source and wraps it.
func Open(ctx context.Context, cfg *config.Config, sys *units.System, log logger.Logger) (*Backend, error) {
	b := &Backend{}
	var source graphdb.Reader

	switch cfg.GraphDB.Source {
	case config.SourceLocal:
		r, err := local.Open(cfg.GraphDB.LocalFile, sys)
		if err != nil {
			return nil, apperrors.NewConfigurationError(err.Error())
		}
		source = r
	case config.SourcePostgres:
		db, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return nil, err
		}
		if err := database.PingPostgres(ctx, db); err != nil {
			db.Close()
			return nil, apperrors.NewExternalDataError("connect", cfg.Database.Postgres.Host, err)
		}
		b.DB = db
		source = postgres.NewReader(db, sys)
	default:
		return nil, apperrors.NewConfigurationError(fmt.Sprintf("unknown graphdb source %q", cfg.GraphDB.Source))
	}

	var client redis.Cmdable
	if cfg.GraphDB.Cache.Enabled {
		b.Redis = database.NewRedis(cfg.Database.Redis)
		client = b.Redis
		if err := database.PingRedis(ctx, b.Redis); err != nil {
			log.Warn("redis cache unavailable, reading through", map[string]interface{}{
				"address": cfg.Database.Redis.Address,
				"error":   err.Error(),
			})
		}
	}

	b.Reader, b.Cache = Wrap(source, cfg.GraphDB.Cache, client, log)
	log.Info("graph reader ready", map[string]interface{}{
		"source": cfg.GraphDB.Source,
		"cached": b.Cache != nil,
	})
	return b, nil
}

// Wrap puts the redis cache, when client is set and caching is enabled, and
// the instrumentation in front of source. Instrumentation sits below the
// cache so only real source queries are counted.
func Wrap(source graphdb.Reader, cache config.GraphCacheConfig, client redis.Cmdable, log logger.Logger) (graphdb.Reader, *rediscache.Reader) {
	reader := graphdb.Reader(instrumented.New(source, log))
	if !cache.Enabled || client == nil {
		return reader, nil
	}
	c := rediscache.New(reader, client, time.Duration(cache.TTL)*time.Second, cache.KeyPrefix, log)
	return c, c
}

// Close releases the connections.
func (b *Backend) Close() error {
	var first error
	if b.Redis != nil {
		if err := b.Redis.Close(); err != nil {
			first = err
		}
	}
	if b.DB != nil {
		if err := b.DB.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
