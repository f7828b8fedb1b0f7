// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

/*
database_schema.go - Database Schema Management

Tables:
  - interactions: raw listening counts, one row per (user_id, song_id)
  - friend_edges: directed social edges, user_id follows friend_id
  - songs: the catalog joined into playlists for display
  - recommendations: persisted playlist slots, one rank sequence per run
  - pipeline_runs: run summaries served by the runs endpoint

The statements are portable between DuckDB and SQLite. Both drivers accept
the same column types, ON CONFLICT clauses and ? placeholders.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

const (
	tableInteractions    = "interactions"
	tableFriendEdges     = "friend_edges"
	tableSongs           = "songs"
	tableRecommendations = "recommendations"
	tablePipelineRuns    = "pipeline_runs"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core database tables
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

// createIndexes creates the lookup indexes
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range indexCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", query, err)
		}
	}
	return nil
}

func tableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS interactions (
			user_id TEXT NOT NULL,
			song_id TEXT NOT NULL,
			raw_count INTEGER NOT NULL CHECK (raw_count >= 0),
			PRIMARY KEY (user_id, song_id)
		)`,

		`CREATE TABLE IF NOT EXISTS friend_edges (
			user_id TEXT NOT NULL,
			friend_id TEXT NOT NULL,
			PRIMARY KEY (user_id, friend_id)
		)`,

		`CREATE TABLE IF NOT EXISTS songs (
			song_id TEXT PRIMARY KEY,
			song_name TEXT NOT NULL,
			artist_name TEXT NOT NULL
		)`,

		// Unique per run: append mode keeps one rank sequence per run_id.
		`CREATE TABLE IF NOT EXISTS recommendations (
			run_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			song_id TEXT NOT NULL,
			rank INTEGER NOT NULL CHECK (rank >= 1),
			score DOUBLE NOT NULL,
			source TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			write_seq BIGINT NOT NULL,
			PRIMARY KEY (run_id, user_id, rank)
		)`,

		`CREATE TABLE IF NOT EXISTS pipeline_runs (
			run_id TEXT PRIMARY KEY,
			status TEXT NOT NULL,
			error TEXT NOT NULL,
			started_at TIMESTAMP NOT NULL,
			finished_at TIMESTAMP NOT NULL,
			interactions INTEGER NOT NULL,
			users INTEGER NOT NULL,
			songs INTEGER NOT NULL,
			friend_edges INTEGER NOT NULL,
			epochs INTEGER NOT NULL,
			learning_rate DOUBLE NOT NULL,
			regularization DOUBLE NOT NULL,
			rmse DOUBLE NOT NULL,
			mae DOUBLE NOT NULL,
			model_version INTEGER NOT NULL,
			predictions INTEGER NOT NULL,
			users_backfilled INTEGER NOT NULL,
			entries_appended INTEGER NOT NULL,
			friend_gaps INTEGER NOT NULL,
			short_lists INTEGER NOT NULL,
			rows_written INTEGER NOT NULL,
			persist_mode TEXT NOT NULL
		)`,
	}
}

func indexCreationQueries() []string {
	return []string{
		`CREATE INDEX IF NOT EXISTS idx_recommendations_user ON recommendations(user_id, write_seq)`,
		`CREATE INDEX IF NOT EXISTS idx_pipeline_runs_finished ON pipeline_runs(finished_at)`,
	}
}
