// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/cadence/internal/metrics"
	"github.com/tomtom215/cadence/internal/models"
)

const runColumns = `run_id, status, error, started_at, finished_at,
	interactions, users, songs, friend_edges,
	epochs, learning_rate, regularization, rmse, mae, model_version,
	predictions, users_backfilled, entries_appended, friend_gaps, short_lists,
	rows_written, persist_mode`

// SaveRun records a pipeline run summary. Saving the same run id twice
// overwrites the earlier summary.
func (db *DB) SaveRun(ctx context.Context, run *models.RunSummary) (err error) {
	if run == nil || run.RunID == "" {
		return fmt.Errorf("run summary requires a run id")
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("upsert", tablePipelineRuns, time.Since(start), err) }()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackOnError(tx, &err)

	if _, err = tx.ExecContext(ctx, `DELETE FROM pipeline_runs WHERE run_id = ?`, run.RunID); err != nil {
		return fmt.Errorf("failed to clear run %s: %w", run.RunID, err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO pipeline_runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.Status, run.Error, run.StartedAt.UTC(), run.FinishedAt.UTC(),
		run.Interactions, run.Users, run.Songs, run.FriendEdges,
		run.Epochs, run.LearningRate, run.Regularization, run.RMSE, run.MAE, run.ModelVersion,
		run.Predictions, run.UsersBackfilled, run.EntriesAppended, run.FriendGaps, run.ShortLists,
		run.RowsWritten, run.PersistMode,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", run.RunID, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// LatestRun returns the most recently finished run, or ErrNotFound.
func (db *DB) LatestRun(ctx context.Context) (run *models.RunSummary, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { recordLookup("latest", tablePipelineRuns, start, err) }()

	row := db.conn.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM pipeline_runs ORDER BY finished_at DESC, run_id DESC LIMIT 1`)

	var r models.RunSummary
	err = row.Scan(
		&r.RunID, &r.Status, &r.Error, &r.StartedAt, &r.FinishedAt,
		&r.Interactions, &r.Users, &r.Songs, &r.FriendEdges,
		&r.Epochs, &r.LearningRate, &r.Regularization, &r.RMSE, &r.MAE, &r.ModelVersion,
		&r.Predictions, &r.UsersBackfilled, &r.EntriesAppended, &r.FriendGaps, &r.ShortLists,
		&r.RowsWritten, &r.PersistMode,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest run: %w", err)
	}
	return &r, nil
}
