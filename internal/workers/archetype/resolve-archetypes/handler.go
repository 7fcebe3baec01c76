// internal/workers/archetype/resolve-archetypes/handler.go
package resolvearchetypes

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"archetype-resolver/internal/archetype"
	"archetype-resolver/internal/common/errors"
	"archetype-resolver/internal/common/logger"
	"archetype-resolver/internal/common/metrics"
	"archetype-resolver/internal/common/observability"
	"archetype-resolver/internal/common/validation"
	"archetype-resolver/internal/models"
	"archetype-resolver/internal/report"
)

const (
	TaskType = "resolve-archetypes"
)

// Handler resolves the buildings named in a job. The zeebe worker runs
// handlers concurrently, so access to the resolver is serialized.
type Handler struct {
	config       *Config
	mu           sync.Mutex
	factory      archetype.Factory
	exporters    []report.Exporter
	obs          *observability.Observability
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, factory archetype.Factory, obs *observability.Observability, log logger.Logger, exporters ...report.Exporter) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		factory:      factory,
		exporters:    exporters,
		obs:          obs,
		errorHandler: errors.NewErrorHandler(l),
		logger:       l,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := h.parseInput(job)
	if err != nil {
		h.fail(ctx, client, job, err)
		return
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		h.fail(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	vars, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, errors.NewConfigurationError(fmt.Sprintf("parse job variables: %v", err))
	}
	if err := validation.ValidateResolveInput(vars); err != nil {
		return nil, err
	}
	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		return nil, errors.NewConfigurationError(fmt.Sprintf("parse input: %v", err))
	}
	return &input, nil
}

// Execute resolves every building of input. Failing buildings are reported
// in the output; only a cancelled context fails the job.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil || len(input.BuildingIDs) == 0 {
		return nil, errors.NewConfigurationError("buildingIds must not be empty")
	}

	h.mu.Lock()
	res, err := archetype.RunBatch(ctx, h.factory, input.BuildingIDs, h.logger)
	h.mu.Unlock()
	if err != nil {
		return nil, errors.NewExternalDataError("resolve", TaskType, err)
	}
	if h.obs != nil {
		h.obs.RecordBatch(ctx, res.Factory, len(res.Resolved), len(res.Failed), res.Duration)
	}

	if len(h.exporters) > 0 {
		// a failing sink does not fail the job; ExportAll logs it
		_ = report.ExportAll(ctx, res, h.logger, h.exporters...)
	}

	out := &Output{
		RunID:             res.RunID,
		Factory:           res.Factory,
		Archetypes:        report.Rows(res),
		FailedBuildingIDs: append([]int{}, res.Failed...),
		ResolvedCount:     len(res.Resolved),
	}
	include := h.config.IncludeConstructions
	if input.IncludeConstructions != nil {
		include = *input.IncludeConstructions
	}
	if include {
		out.Constructions = make(map[string]*models.ResolvedArchetype, len(res.Resolved))
		for id, a := range res.Resolved {
			out.Constructions[strconv.Itoa(id)] = a
		}
	}
	return out, nil
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	code := errors.AsStandardError(err).Code
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(code)).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, err)
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	h.logger.Info("job completed", map[string]interface{}{
		"jobKey":   job.Key,
		"runId":    output.RunID,
		"resolved": output.ResolvedCount,
		"failed":   len(output.FailedBuildingIDs),
	})
}
