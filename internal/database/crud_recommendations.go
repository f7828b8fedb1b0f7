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
	"github.com/tomtom215/cadence/internal/recommend"
)

const insertRecommendation = `INSERT INTO recommendations
	(run_id, user_id, song_id, rank, score, source, created_at, write_seq)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

// StoredRecommendation is a persisted row with the run that wrote it.
type StoredRecommendation struct {
	RunID string `json:"run_id"`
	recommend.RecommendationRow
	CreatedAt time.Time `json:"created_at"`
}

// ReplaceRecommendations deletes every stored row of the given users and
// inserts rows in the same transaction. Users with no rows end up with an
// empty playlist. Any failure rolls the whole batch back and is returned as
// a *recommend.PersistenceError.
func (db *DB) ReplaceRecommendations(ctx context.Context, runID string, users []string, rows []recommend.RecommendationRow) (int, error) {
	n, err := db.writeRecommendations(ctx, runID, users, rows, true)
	if err != nil {
		return 0, &recommend.PersistenceError{Op: string(recommend.PersistReplace), Err: err}
	}
	return n, nil
}

// AppendRecommendations inserts a new rank sequence tagged with runID and
// keeps earlier sequences. Running it twice stores duplicate ranks under
// different run ids.
func (db *DB) AppendRecommendations(ctx context.Context, runID string, rows []recommend.RecommendationRow) (int, error) {
	n, err := db.writeRecommendations(ctx, runID, nil, rows, false)
	if err != nil {
		return 0, &recommend.PersistenceError{Op: string(recommend.PersistAppend), Err: err}
	}
	return n, nil
}

func (db *DB) writeRecommendations(ctx context.Context, runID string, users []string, rows []recommend.RecommendationRow, replace bool) (written int, err error) {
	if runID == "" {
		return 0, fmt.Errorf("run id is required")
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	op := "append"
	if replace {
		op = "replace"
	}
	start := time.Now()
	defer func() { metrics.RecordDBQuery(op, tableRecommendations, time.Since(start), err) }()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackOnError(tx, &err)

	if replace {
		if err = deleteUserRecommendations(ctx, tx, users, rows); err != nil {
			return 0, err
		}
	}

	seq, err := nextWriteSeq(ctx, tx)
	if err != nil {
		return 0, err
	}

	createdAt := time.Now().UTC()
	err = insertRows(ctx, tx, insertRecommendation, len(rows), func(i int) []any {
		r := rows[i]
		return []any{runID, r.UserID, r.SongID, r.Rank, r.Score, r.Source.String(), createdAt, seq}
	})
	if err != nil {
		return 0, fmt.Errorf("failed to insert recommendations: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return len(rows), nil
}

// nextWriteSeq returns a sequence number above every stored batch. Batches
// are written one at a time under the pipeline run lock, so the value orders
// runs even when their timestamps collide.
func nextWriteSeq(ctx context.Context, tx *sql.Tx) (int64, error) {
	var seq int64
	err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(write_seq), 0) + 1 FROM recommendations`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate write sequence: %w", err)
	}
	return seq, nil
}

// deleteUserRecommendations clears the listed users and every user that
// appears in rows.
func deleteUserRecommendations(ctx context.Context, tx *sql.Tx, users []string, rows []recommend.RecommendationRow) error {
	targets := make(map[string]struct{}, len(users))
	for _, u := range users {
		targets[u] = struct{}{}
	}
	for _, r := range rows {
		targets[r.UserID] = struct{}{}
	}

	stmt, err := tx.PrepareContext(ctx, `DELETE FROM recommendations WHERE user_id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare delete: %w", err)
	}
	defer closeWithLog(stmt, "prepared statement")

	for u := range targets {
		if _, err := stmt.ExecContext(ctx, u); err != nil {
			return fmt.Errorf("failed to delete recommendations for %s: %w", u, err)
		}
	}
	return nil
}

// latestRunID returns the run that most recently wrote rows for the user.
func (db *DB) latestRunID(ctx context.Context, userID string) (string, error) {
	var runID string
	err := db.conn.QueryRowContext(ctx,
		`SELECT run_id FROM recommendations WHERE user_id = ?
		ORDER BY write_seq DESC LIMIT 1`, userID).Scan(&runID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to find latest run: %w", err)
	}
	return runID, nil
}

// Playlist returns the user's latest rank sequence joined with the catalog,
// at most limit entries in rank order. Songs missing from the catalog keep
// empty names. A user with no stored rows yields ErrNotFound.
func (db *DB) Playlist(ctx context.Context, userID string, limit int) (runID string, entries []recommend.PlaylistEntry, err error) {
	if limit < 0 {
		limit = 0
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { recordLookup("playlist", tableRecommendations, start, err) }()

	runID, err = db.latestRunID(ctx, userID)
	if err != nil {
		return "", nil, err
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT r.rank, r.song_id, COALESCE(s.song_name, ''), COALESCE(s.artist_name, ''), r.score, r.source
		FROM recommendations r
		LEFT JOIN songs s ON s.song_id = r.song_id
		WHERE r.user_id = ? AND r.run_id = ?
		ORDER BY r.rank
		LIMIT ?`, userID, runID, limit)
	if err != nil {
		return "", nil, fmt.Errorf("failed to query playlist: %w", err)
	}
	defer closeWithLog(rows, "rows")

	entries = make([]recommend.PlaylistEntry, 0, limit)
	for rows.Next() {
		var e recommend.PlaylistEntry
		if err = rows.Scan(&e.Rank, &e.SongID, &e.SongName, &e.ArtistName, &e.Score, &e.Source); err != nil {
			return "", nil, fmt.Errorf("failed to scan playlist entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return "", nil, fmt.Errorf("failed to iterate playlist: %w", err)
	}
	return runID, entries, nil
}

// Recommendations returns every stored row of a user across runs, oldest run
// first, ranks ascending.
func (db *DB) Recommendations(ctx context.Context, userID string) (out []StoredRecommendation, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("select_user", tableRecommendations, time.Since(start), err) }()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT run_id, user_id, song_id, rank, score, source, created_at
		FROM recommendations
		WHERE user_id = ?
		ORDER BY write_seq, rank`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendations: %w", err)
	}
	defer closeWithLog(rows, "rows")

	for rows.Next() {
		var (
			r      StoredRecommendation
			source string
		)
		if err = rows.Scan(&r.RunID, &r.UserID, &r.SongID, &r.Rank, &r.Score, &source, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}
		r.Source = recommend.ParseEntrySource(source)
		out = append(out, r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recommendations: %w", err)
	}
	return out, nil
}
