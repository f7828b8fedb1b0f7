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
	"github.com/tomtom215/cadence/internal/recommend/storage"
)

// openDatabase opens the relational store and creates its schema.
func openDatabase(cfg *config.Config) (*database.DB, error) {
	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	logging.Info().
		Str("driver", db.Driver()).
		Str("path", db.GetDatabasePath()).
		Msg("Database initialized")
	return db, nil
}

// openCheckpoints opens the badger checkpoint store. Returns nil when
// checkpointing is disabled.
func openCheckpoints(cfg *config.Config) (*storage.Store, error) {
	if !cfg.Checkpoint.Enabled {
		logging.Info().Msg("Model checkpoints disabled")
		return nil, nil
	}

	store, err := storage.Open(storage.Config{
		Path:     cfg.Checkpoint.Path,
		InMemory: cfg.Checkpoint.InMemory,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint store: %w", err)
	}
	logging.Info().
		Str("path", cfg.Checkpoint.Path).
		Bool("in_memory", cfg.Checkpoint.InMemory).
		Int("retain_versions", cfg.Checkpoint.RetainVersions).
		Msg("Checkpoint store opened")
	return store, nil
}

// closeWithLog closes c, logging any error.
func closeWithLog(c interface{ Close() error }, what string) {
	if err := c.Close(); err != nil {
		logging.Error().Err(err).Str("resource", what).Msg("Close failed")
	}
}
