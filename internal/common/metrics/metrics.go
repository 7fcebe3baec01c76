// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	// ConstructionSetCache counts lookups of the per-archetype construction
	// set cache, by result ("hit" or "miss").
	ConstructionSetCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archetype_construction_set_cache_total",
			Help: "Construction set cache lookups by result",
		},
		[]string{"result"},
	)

	// GraphQueries counts graph data source calls by operation and status.
	GraphQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archetype_graph_queries_total",
			Help: "Graph data source queries by operation and status",
		},
		[]string{"operation", "status"},
	)

	GraphQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "archetype_graph_query_duration_seconds",
			Help:    "Duration of graph data source queries in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		},
		[]string{"operation"},
	)

	// BuildingResolutions counts per-building archetype resolutions by
	// status ("ok" or the error code).
	BuildingResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archetype_building_resolutions_total",
			Help: "Archetype resolutions per building by status",
		},
		[]string{"factory", "status"},
	)

	RetrofitOverrides = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archetype_retrofit_overrides_total",
			Help: "Constructions substituted by a retrofit archetype, per element",
		},
		[]string{"element"},
	)
)
