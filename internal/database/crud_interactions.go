// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/cadence/internal/metrics"
	"github.com/tomtom215/cadence/internal/recommend"
)

// Interactions returns every listening count ordered by user then song.
func (db *DB) Interactions(ctx context.Context) (out []recommend.Interaction, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("select", tableInteractions, time.Since(start), err) }()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT user_id, song_id, raw_count FROM interactions ORDER BY user_id, song_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query interactions: %w", err)
	}
	defer closeWithLog(rows, "rows")

	for rows.Next() {
		var in recommend.Interaction
		if err = rows.Scan(&in.UserID, &in.SongID, &in.Count); err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}
		out = append(out, in)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate interactions: %w", err)
	}
	return out, nil
}

// UpsertInteractions writes listening counts. An existing (user_id, song_id)
// row takes the new count; within one call the last duplicate wins.
func (db *DB) UpsertInteractions(ctx context.Context, interactions []recommend.Interaction) (int, error) {
	type pair struct{ user, song string }
	index := make(map[pair]int, len(interactions))
	deduped := make([]recommend.Interaction, 0, len(interactions))
	for i, in := range interactions {
		if in.Count < 0 {
			return 0, fmt.Errorf("interaction %d (%s, %s): negative count %d", i, in.UserID, in.SongID, in.Count)
		}
		k := pair{in.UserID, in.SongID}
		if j, ok := index[k]; ok {
			deduped[j] = in
			continue
		}
		index[k] = len(deduped)
		deduped = append(deduped, in)
	}
	interactions = deduped

	const query = `INSERT INTO interactions (user_id, song_id, raw_count) VALUES (?, ?, ?)
		ON CONFLICT (user_id, song_id) DO UPDATE SET raw_count = excluded.raw_count`

	return db.execBatch(ctx, tableInteractions, query, len(interactions), func(i int) []any {
		in := interactions[i]
		return []any{in.UserID, in.SongID, in.Count}
	})
}
