// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

// Package metrics defines the Prometheus instrumentation for Cadence.
//
// All collectors are registered with the default registry through promauto
// and served by the API at /metrics. Callers use the Record* helpers rather
// than touching the vectors directly:
//
//	start := time.Now()
//	lists, stats := recommend.Fallback(...)
//	metrics.ObservePhase("fallback", time.Since(start))
//	metrics.RecordFallback(stats.UsersBackfilled, stats.EntriesAppended, len(stats.Gaps), stats.ShortLists)
//
// Metric families:
//
//   - cadence_pipeline_*: runs by outcome, run and phase durations, last success
//   - cadence_grid_search_*, cadence_training_samples: training quality
//   - cadence_predictions_*, cadence_fallback_*, cadence_friend_lookup_gaps_total
//   - cadence_recommendations_persisted_total, cadence_checkpoints_saved_total
//   - cadence_db_*, cadence_api_*: storage and HTTP latency
//   - cadence_events_published_total, cadence_circuit_breaker_state
package metrics
