// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/cadence/internal/config"
	"github.com/tomtom215/cadence/internal/metrics"
)

// defaultQueryTimeout applies to operations whose context has no deadline.
const defaultQueryTimeout = 30 * time.Second

// ensureContext returns a context with the default timeout if none is set.
func (db *DB) ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return context.WithTimeout(context.Background(), defaultQueryTimeout)
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		return context.WithTimeout(ctx, defaultQueryTimeout)
	}

	return ctx, func() {}
}

// Checkpoint forces a WAL checkpoint
func (db *DB) Checkpoint(ctx context.Context) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	stmt := "CHECKPOINT"
	if db.driver == config.DriverSQLite {
		stmt = "PRAGMA wal_checkpoint(TRUNCATE)"
	}

	if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("checkpoint failed: %w", err)
	}
	return nil
}

// GetDatabasePath returns the path to the database file
func (db *DB) GetDatabasePath() string {
	return db.cfg.Path
}

// Counts holds the row counts of the input tables.
type Counts struct {
	Interactions int64 `json:"interactions"`
	FriendEdges  int64 `json:"friend_edges"`
	Songs        int64 `json:"songs"`
}

// GetRecordCounts returns the count of records in the input tables.
func (db *DB) GetRecordCounts(ctx context.Context) (Counts, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var c Counts
	targets := []struct {
		table string
		dest  *int64
	}{
		{tableInteractions, &c.Interactions},
		{tableFriendEdges, &c.FriendEdges},
		{tableSongs, &c.Songs},
	}

	for _, t := range targets {
		start := time.Now()
		err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+t.table).Scan(t.dest)
		metrics.RecordDBQuery("count", t.table, time.Since(start), err)
		if err != nil {
			return Counts{}, fmt.Errorf("failed to count %s: %w", t.table, err)
		}
	}
	return c, nil
}

// recordLookup records a single-entity lookup. A miss is not a query error.
func recordLookup(operation, table string, start time.Time, err error) {
	if errors.Is(err, ErrNotFound) {
		err = nil
	}
	metrics.RecordDBQuery(operation, table, time.Since(start), err)
}
