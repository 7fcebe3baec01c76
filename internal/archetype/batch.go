// internal/archetype/batch.go
package archetype

import (
	"context"
	"time"

	"github.com/google/uuid"

	apperrors "archetype-resolver/internal/common/errors"
	"archetype-resolver/internal/common/logger"
	"archetype-resolver/internal/common/metrics"
	"archetype-resolver/internal/models"
)

// BatchResult is the outcome of resolving a list of buildings.
type BatchResult struct {
	RunID     string                            `json:"runId"`
	Factory   string                            `json:"factory"`
	StartedAt time.Time                         `json:"startedAt"`
	Duration  time.Duration                     `json:"duration"`
	IDs       []int                             `json:"buildingIds"`
	Resolved  map[int]*models.ResolvedArchetype `json:"-"`
	Failed    []int                             `json:"failedBuildingIds"`
	Errors    map[int]error                     `json:"-"`
}

// Succeeded returns the ids resolved without error, in processing order.
func (b *BatchResult) Succeeded() []int {
	out := make([]int, 0, len(b.Resolved))
	for _, id := range b.IDs {
		if _, ok := b.Resolved[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// ErrorCode returns the error code recorded for a failed building.
func (b *BatchResult) ErrorCode(id int) string {
	err, ok := b.Errors[id]
	if !ok {
		return ""
	}
	return string(apperrors.AsStandardError(err).Code)
}

// BatchOption tunes RunBatch.
type BatchOption func(*batchOptions)

type batchOptions struct {
	progress func(done, total int)
}

// WithProgress calls fn after every building.
func WithProgress(fn func(done, total int)) BatchOption {
	return func(o *batchOptions) { o.progress = fn }
}

// RunBatch resolves ids in order. A failing building is logged at error
// level and recorded; it never stops the batch. Only a cancelled context
// ends the batch early, leaving the remaining ids out of the result.
func RunBatch(ctx context.Context, f Factory, ids []int, log logger.Logger, opts ...BatchOption) (*BatchResult, error) {
	var o batchOptions
	for _, opt := range opts {
		opt(&o)
	}

	name := factoryName(f)
	res := &BatchResult{
		RunID:     uuid.New().String(),
		Factory:   name,
		StartedAt: time.Now().UTC(),
		Resolved:  make(map[int]*models.ResolvedArchetype, len(ids)),
		Errors:    map[int]error{},
	}
	log = log.WithFields(map[string]interface{}{"runId": res.RunID})
	defer func() { res.Duration = time.Since(res.StartedAt) }()

	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.IDs = append(res.IDs, id)
		a, err := f.ArchetypeFor(ctx, id)
		if err != nil {
			code := apperrors.AsStandardError(err).Code
			log.WithError(err).Error("failed to resolve archetype", map[string]interface{}{
				"buildingId": id,
				"errorCode":  code,
			})
			metrics.BuildingResolutions.WithLabelValues(name, string(code)).Inc()
			res.Failed = append(res.Failed, id)
			res.Errors[id] = err
		} else {
			metrics.BuildingResolutions.WithLabelValues(name, "ok").Inc()
			res.Resolved[id] = a
		}
		if o.progress != nil {
			o.progress(i+1, len(ids))
		}
	}

	if len(res.Failed) > 0 {
		log.Error("archetype resolution failed for some buildings", map[string]interface{}{
			"failedBuildingIds": res.Failed,
			"failed":            len(res.Failed),
			"total":             len(ids),
		})
	}
	return res, nil
}

func factoryName(f Factory) string {
	if n, ok := f.(interface{ Name() string }); ok {
		return n.Name()
	}
	return "custom"
}
