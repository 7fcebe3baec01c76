// Package app assembles what both binaries run on: the logger, the graph
// reader stack, the configured archetype factory and the report sinks.
package app

import (
	"context"
	"fmt"

	"archetype-resolver/internal/archetype"
	"archetype-resolver/internal/common/aws"
	"archetype-resolver/internal/common/config"
	"archetype-resolver/internal/common/database"
	apperrors "archetype-resolver/internal/common/errors"
	"archetype-resolver/internal/common/logger"
	"archetype-resolver/internal/graphdb/backend"
	"archetype-resolver/internal/report"
	"archetype-resolver/internal/units"
)

type App struct {
	Config  *config.Config
	Logger  logger.Logger
	Units   *units.System
	Backend *backend.Backend
	Factory archetype.Factory
}

// NewLogger builds the process logger from the logging section.
func NewLogger(cfg config.LoggingConfig) (logger.Logger, error) {
	return logger.NewFromOptions(logger.Options{
		Level:  cfg.Level,
		Format: cfg.Format,
		Output: cfg.Output,
	})
}

// New opens the reader stack and builds the factory named in cfg.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	sys := units.NewSystem()

	b, err := backend.Open(ctx, cfg, sys, log)
	if err != nil {
		return nil, err
	}

	f, err := archetype.DefaultRegistry().FromConfig(ctx, archetype.Inputs{
		Config: cfg,
		Reader: b.Reader,
		Units:  sys,
		Logger: log,
	})
	if err != nil {
		b.Close()
		return nil, err
	}

	log.Info("archetype factory ready", map[string]interface{}{
		"factory":    cfg.Factory,
		"archetypes": len(cfg.Archetypes),
	})

	return &App{Config: cfg, Logger: log, Units: sys, Backend: b, Factory: f}, nil
}

// Resolver returns the factory with its lookup operations.
func (a *App) Resolver() (*archetype.Resolver, error) {
	r, ok := a.Factory.(*archetype.Resolver)
	if !ok {
		return nil, apperrors.NewConfigurationError(fmt.Sprintf("factory %q has no lookup operations", a.Config.Factory))
	}
	return r, nil
}

// Exporters returns the report sinks enabled in the report section.
func (a *App) Exporters(ctx context.Context) ([]report.Exporter, error) {
	rc := a.Config.Report
	var out []report.Exporter

	if rc.CSVPath != "" {
		out = append(out, report.NewCSVWriter(rc.CSVPath))
	}
	if rc.ElasticsearchIndex != "" {
		es, err := database.NewElasticsearch(a.Config.Database.Elasticsearch)
		if err != nil {
			return nil, apperrors.NewConfigurationError(err.Error())
		}
		out = append(out, report.NewElasticsearchIndexer(es, rc.ElasticsearchIndex, a.Logger))
	}
	if rc.SNS.Enabled {
		client, err := aws.NewSNSClient(ctx, rc.SNS.Region)
		if err != nil {
			return nil, apperrors.NewConfigurationError(err.Error())
		}
		out = append(out, report.NewSNSNotifier(client, rc.SNS.TopicARN))
	}
	return out, nil
}

// Checks returns health probes for the connections the backend holds.
func (a *App) Checks() map[string]func(context.Context) error {
	checks := map[string]func(context.Context) error{}
	if a.Backend.DB != nil {
		db := a.Backend.DB
		checks["postgres"] = func(ctx context.Context) error { return database.PingPostgres(ctx, db) }
	}
	if a.Backend.Redis != nil {
		client := a.Backend.Redis
		checks["redis"] = func(ctx context.Context) error { return database.PingRedis(ctx, client) }
	}
	return checks
}

func (a *App) Close() error {
	return a.Backend.Close()
}
