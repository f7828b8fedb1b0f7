// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline outcomes used as the "outcome" label of PipelineRunsTotal.
const (
	OutcomeSuccess   = "success"
	OutcomeNoData    = "no_data"
	OutcomeFailed    = "failed"
	OutcomeCancelled = "cancelled"
	OutcomeSkipped   = "skipped"
)

var (
	// Pipeline Metrics
	PipelineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cadence_pipeline_runs_total",
			Help: "Total number of pipeline runs by outcome",
		},
		[]string{"outcome"},
	)

	PipelineRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cadence_pipeline_run_duration_seconds",
			Help:    "Duration of complete pipeline runs in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800, 3600},
		},
	)

	PipelinePhaseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cadence_pipeline_phase_duration_seconds",
			Help:    "Duration of individual pipeline phases in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300, 1200},
		},
		[]string{"phase"}, // "load", "normalize", "train", "checkpoint", "predict", "rank", "fallback", "persist", "publish"
	)

	PipelineLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cadence_pipeline_last_success_timestamp",
			Help: "Unix timestamp of the last successful pipeline run",
		},
	)

	// Training Metrics
	GridSearchBestRMSE = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cadence_grid_search_best_rmse",
			Help: "Mean cross-validated RMSE of the winning hyperparameters",
		},
	)

	GridSearchBestMAE = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cadence_grid_search_best_mae",
			Help: "Mean cross-validated MAE of the winning hyperparameters",
		},
	)

	GridSearchPointsEvaluated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cadence_grid_search_points_total",
			Help: "Total number of hyperparameter combinations evaluated",
		},
	)

	TrainingSamples = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cadence_training_samples",
			Help: "Number of normalized interactions in the last training set",
		},
	)

	// Prediction and Fallback Metrics
	PredictionsGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cadence_predictions_generated_total",
			Help: "Total number of anti-set predictions produced",
		},
	)

	FallbackUsersBackfilled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cadence_fallback_users_backfilled_total",
			Help: "Total number of users whose list received borrowed entries",
		},
	)

	FallbackEntriesAppended = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cadence_fallback_entries_appended_total",
			Help: "Total number of entries borrowed from friends",
		},
	)

	FriendLookupGaps = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cadence_friend_lookup_gaps_total",
			Help: "Total number of friend edges whose target had no ranked list",
		},
	)

	ShortLists = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cadence_short_lists",
			Help: "Number of users whose final list is shorter than N in the last run",
		},
	)

	// Persistence Metrics
	RecommendationsPersisted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cadence_recommendations_persisted_total",
			Help: "Total number of recommendation rows written",
		},
		[]string{"mode"}, // "replace", "append"
	)

	CheckpointsSaved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cadence_checkpoints_saved_total",
			Help: "Total number of model checkpoint saves",
		},
		[]string{"status"}, // "success", "error"
	)

	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cadence_db_query_duration_seconds",
			Help:    "Duration of database queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cadence_db_query_errors_total",
			Help: "Total number of database query errors",
		},
		[]string{"operation", "table"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cadence_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cadence_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cadence_api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cadence_api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Event Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cadence_events_published_total",
			Help: "Total number of playlist events published",
		},
		[]string{"status"}, // "success", "error", "rejected"
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cadence_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// Application Info
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cadence_app_info",
			Help: "Application version information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordPipelineRun records the outcome and duration of a pipeline run.
func RecordPipelineRun(outcome string, duration time.Duration) {
	PipelineRunsTotal.WithLabelValues(outcome).Inc()
	PipelineRunDuration.Observe(duration.Seconds())
	if outcome == OutcomeSuccess {
		PipelineLastSuccess.Set(float64(time.Now().Unix()))
	}
}

// ObservePhase records the duration of a single pipeline phase.
func ObservePhase(phase string, duration time.Duration) {
	PipelinePhaseDuration.WithLabelValues(phase).Observe(duration.Seconds())
}

// RecordGridSearch records the winning accuracy and how many points were tried.
func RecordGridSearch(bestRMSE, bestMAE float64, points, samples int) {
	GridSearchBestRMSE.Set(bestRMSE)
	GridSearchBestMAE.Set(bestMAE)
	GridSearchPointsEvaluated.Add(float64(points))
	TrainingSamples.Set(float64(samples))
}

// RecordPredictions records the number of predictions generated.
func RecordPredictions(n int) {
	PredictionsGenerated.Add(float64(n))
}

// RecordFallback records social backfill statistics for one run.
func RecordFallback(usersBackfilled, entriesAppended, gaps, shortLists int) {
	FallbackUsersBackfilled.Add(float64(usersBackfilled))
	FallbackEntriesAppended.Add(float64(entriesAppended))
	FriendLookupGaps.Add(float64(gaps))
	ShortLists.Set(float64(shortLists))
}

// RecordPersist records rows written in the given persist mode.
func RecordPersist(mode string, rows int) {
	RecommendationsPersisted.WithLabelValues(mode).Add(float64(rows))
}

// RecordCheckpoint records a checkpoint save attempt.
func RecordCheckpoint(err error) {
	CheckpointsSaved.WithLabelValues(statusLabel(err)).Inc()
}

// RecordDBQuery records a database query metric.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordEventPublish records the result of a publish attempt.
func RecordEventPublish(status string) {
	EventsPublished.WithLabelValues(status).Inc()
}

// SetCircuitBreakerState exports a breaker's state (0=closed, 1=half-open, 2=open).
func SetCircuitBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
