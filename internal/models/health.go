// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package models

import "time"

// Health states reported by the health endpoints.
const (
	HealthHealthy  = "healthy"
	HealthDegraded = "degraded"
)

// HealthStatus is the body of GET /api/v1/health.
type HealthStatus struct {
	Status            string     `json:"status"`
	Version           string     `json:"version"`
	DatabaseConnected bool       `json:"database_connected"`
	PipelineRunning   bool       `json:"pipeline_running"`
	LastRunID         string     `json:"last_run_id,omitempty"`
	LastRunOutcome    string     `json:"last_run_outcome,omitempty"`
	LastRunAt         *time.Time `json:"last_run_at,omitempty"`
	Uptime            float64    `json:"uptime_seconds"`
}
