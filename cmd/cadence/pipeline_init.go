// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package main

import (
	"fmt"

	"github.com/tomtom215/cadence/internal/config"
	"github.com/tomtom215/cadence/internal/database"
	"github.com/tomtom215/cadence/internal/logging"
	"github.com/tomtom215/cadence/internal/recommend/pipeline"
	"github.com/tomtom215/cadence/internal/recommend/storage"
)

// buildPipeline wires the stores, checkpoints and publisher into a
// Pipeline. checkpoints and events may be nil.
func buildPipeline(cfg *config.Config, db *database.DB, checkpoints *storage.Store, events *EventComponents) (*pipeline.Pipeline, error) {
	rcfg := cfg.Recommend.ToRecommendConfig()

	opts := pipeline.Options{
		Source:         db,
		Sink:           db,
		Runs:           db,
		RetainVersions: cfg.Checkpoint.RetainVersions,
	}
	// Assign only non-nil pointers so the interfaces stay nil.
	if checkpoints != nil {
		opts.Checkpoints = checkpoints
	}
	if events != nil && events.Publisher != nil {
		opts.Publisher = events.Publisher
	}

	p, err := pipeline.New(rcfg, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline: %w", err)
	}

	logging.Info().
		Int("list_length", rcfg.ListLength).
		Int("folds", rcfg.Folds).
		Int("grid_points", rcfg.Grid.Size()).
		Int("factors", rcfg.Factors).
		Int64("seed", rcfg.EffectiveSeed()).
		Str("persist_mode", string(rcfg.PersistMode)).
		Str("dedup", string(rcfg.Fallback.Dedup)).
		Bool("checkpoints", opts.Checkpoints != nil).
		Bool("events", opts.Publisher != nil).
		Msg("Pipeline configured")

	return p, nil
}
