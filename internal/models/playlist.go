// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package models

import (
	"time"

	"github.com/tomtom215/cadence/internal/recommend"
)

// PlaylistResponse is the body of GET /api/v1/users/{userID}/playlist.
type PlaylistResponse struct {
	UserID  string                    `json:"user_id"`
	RunID   string                    `json:"run_id,omitempty"`
	Entries []recommend.PlaylistEntry `json:"entries"`
}

// FriendsResponse is the body of GET /api/v1/users/{userID}/friends.
type FriendsResponse struct {
	UserID  string   `json:"user_id"`
	Friends []string `json:"friends"`
}

// Run statuses stored in RunSummary.Status.
const (
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
)

// RunSummary is the persisted record of one pipeline run, served by
// GET /api/v1/runs/latest.
type RunSummary struct {
	RunID      string    `json:"run_id"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Interactions int `json:"interactions"`
	Users        int `json:"users"`
	Songs        int `json:"songs"`
	FriendEdges  int `json:"friend_edges"`

	Epochs         int     `json:"epochs"`
	LearningRate   float64 `json:"learning_rate"`
	Regularization float64 `json:"regularization"`
	RMSE           float64 `json:"rmse"`
	MAE            float64 `json:"mae"`
	ModelVersion   int     `json:"model_version,omitempty"`

	Predictions     int    `json:"predictions"`
	UsersBackfilled int    `json:"users_backfilled"`
	EntriesAppended int    `json:"entries_appended"`
	FriendGaps      int    `json:"friend_gaps"`
	ShortLists      int    `json:"short_lists"`
	RowsWritten     int    `json:"rows_written"`
	PersistMode     string `json:"persist_mode"`
}

// Duration returns how long the run took.
func (r *RunSummary) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
