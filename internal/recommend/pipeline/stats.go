// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package pipeline

import (
	"time"

	"github.com/tomtom215/cadence/internal/models"
	"github.com/tomtom215/cadence/internal/recommend"
	"github.com/tomtom215/cadence/internal/recommend/algorithms"
)

// RunStats describes one pipeline run.
type RunStats struct {
	RunID      string
	Outcome    string
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time

	// Input sizes.
	Interactions int
	Users        int
	Songs        int
	FriendEdges  int

	// Best is the winning grid point.
	Best         algorithms.GridPoint
	GridPoints   int
	ModelVersion int

	Predictions int
	Fallback    recommend.FallbackStats
	RowsWritten int
	PersistMode recommend.PersistMode
}

// Duration returns the wall time of the run.
func (s *RunStats) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return time.Since(s.StartedAt)
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// Summary converts the stats to the stored run record.
func (s *RunStats) Summary() *models.RunSummary {
	r := &models.RunSummary{
		RunID:           s.RunID,
		Status:          models.RunStatusSucceeded,
		StartedAt:       s.StartedAt,
		FinishedAt:      s.FinishedAt,
		Interactions:    s.Interactions,
		Users:           s.Users,
		Songs:           s.Songs,
		FriendEdges:     s.FriendEdges,
		Epochs:          s.Best.Params.Epochs,
		LearningRate:    s.Best.Params.LearningRate,
		Regularization:  s.Best.Params.Regularization,
		RMSE:            s.Best.Accuracy.RMSE,
		MAE:             s.Best.Accuracy.MAE,
		ModelVersion:    s.ModelVersion,
		Predictions:     s.Predictions,
		UsersBackfilled: s.Fallback.UsersBackfilled,
		EntriesAppended: s.Fallback.EntriesAppended,
		FriendGaps:      len(s.Fallback.Gaps),
		ShortLists:      s.Fallback.ShortLists,
		RowsWritten:     s.RowsWritten,
		PersistMode:     string(s.PersistMode),
	}
	if s.Err != nil {
		r.Status = models.RunStatusFailed
		r.Error = s.Err.Error()
	}
	return r
}
