// Package instrumented records prometheus metrics and debug logs for every
// call of a graphdb.Reader.
package instrumented

import (
	"context"
	"time"

	"archetype-resolver/internal/common/logger"
	"archetype-resolver/internal/common/metrics"
	"archetype-resolver/internal/graphdb"
	"archetype-resolver/internal/models"
	"archetype-resolver/internal/units"
)

type Reader struct {
	next   graphdb.Reader
	logger logger.Logger
}

var _ graphdb.Reader = (*Reader)(nil)

func New(next graphdb.Reader, log logger.Logger) *Reader {
	return &Reader{next: next, logger: log}
}

func (r *Reader) observe(op, arg string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	elapsed := time.Since(start)
	metrics.GraphQueries.WithLabelValues(op, status).Inc()
	metrics.GraphQueryDuration.WithLabelValues(op).Observe(elapsed.Seconds())

	fields := map[string]interface{}{
		"operation": op,
		"argument":  arg,
		"duration":  elapsed.String(),
	}
	if err != nil {
		fields["error"] = err
		r.logger.Warn("graph query failed", fields)
		return
	}
	r.logger.Debug("graph query", fields)
}

func (r *Reader) GetBldgElemConstructionArchetype(ctx context.Context, uri string) (out *models.BuildingElementConstructionSet, err error) {
	defer func(start time.Time) { r.observe(graphdb.OpConstructionArchetype, uri, start, err) }(time.Now())
	return r.next.GetBldgElemConstructionArchetype(ctx, uri)
}

func (r *Reader) GetAgeClassOfArchetype(ctx context.Context, uri string) (out models.AgeClass, err error) {
	defer func(start time.Time) { r.observe(graphdb.OpAgeClass, uri, start, err) }(time.Now())
	return r.next.GetAgeClassOfArchetype(ctx, uri)
}

func (r *Reader) GetWindowShadingConstr(ctx context.Context, uri string) (out models.WindowShadingConstruction, err error) {
	defer func(start time.Time) { r.observe(graphdb.OpWindowShading, uri, start, err) }(time.Now())
	return r.next.GetWindowShadingConstr(ctx, uri)
}

func (r *Reader) GetGlazingRatio(ctx context.Context, uri string) (out units.Quantity, err error) {
	defer func(start time.Time) { r.observe(graphdb.OpGlazingRatio, uri, start, err) }(time.Now())
	return r.next.GetGlazingRatio(ctx, uri)
}

func (r *Reader) GetInfiltrationRate(ctx context.Context, uri string) (out units.Quantity, err error) {
	defer func(start time.Time) { r.observe(graphdb.OpInfiltrationRate, uri, start, err) }(time.Now())
	return r.next.GetInfiltrationRate(ctx, uri)
}

func (r *Reader) GetLayers(ctx context.Context, constructionName string) (out []models.Layer, err error) {
	defer func(start time.Time) { r.observe(graphdb.OpLayers, constructionName, start, err) }(time.Now())
	return r.next.GetLayers(ctx, constructionName)
}

func (r *Reader) GetWindowLayers(ctx context.Context, constructionName string) (out []models.Layer, err error) {
	defer func(start time.Time) { r.observe(graphdb.OpWindowLayers, constructionName, start, err) }(time.Now())
	return r.next.GetWindowLayers(ctx, constructionName)
}
