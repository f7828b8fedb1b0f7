// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/cadence/internal/models"
)

// pingTimeout bounds the database check in health probes.
const pingTimeout = 2 * time.Second

func (h *Handler) ping(ctx context.Context) bool {
	if h.store == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return h.store.Ping(ctx) == nil
}

// Health reports database connectivity and pipeline state.
//
// GET /api/v1/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	health := models.HealthStatus{
		Status:            models.HealthHealthy,
		Version:           Version,
		DatabaseConnected: h.ping(r.Context()),
		Uptime:            time.Since(h.startTime).Seconds(),
	}
	if !health.DatabaseConnected {
		health.Status = models.HealthDegraded
	}

	if h.runs != nil {
		health.PipelineRunning = h.runs.Running()
		if last := h.runs.LastRun(); last != nil {
			health.LastRunID = last.RunID
			health.LastRunOutcome = last.Outcome
			finished := last.FinishedAt
			health.LastRunAt = &finished
		}
	}

	respondSuccess(w, health, start)
}

// HealthLive is the liveness probe. It never touches dependencies.
//
// GET /api/v1/health/live
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	respondSuccess(w, map[string]string{"status": "alive"}, time.Now())
}

// HealthReady is the readiness probe: 503 until the database answers.
//
// GET /api/v1/health/ready
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if !h.ping(r.Context()) {
		respondError(w, r, http.StatusServiceUnavailable, models.ErrCodeServiceUnavailable,
			"Database not ready", nil)
		return
	}
	respondSuccess(w, map[string]string{"status": "ready"}, start)
}
