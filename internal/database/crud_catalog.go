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

// Songs returns the catalog ordered by song id.
func (db *DB) Songs(ctx context.Context) (out []recommend.Song, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("select", tableSongs, time.Since(start), err) }()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT song_id, song_name, artist_name FROM songs ORDER BY song_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}
	defer closeWithLog(rows, "rows")

	for rows.Next() {
		var s recommend.Song
		if err = rows.Scan(&s.ID, &s.Name, &s.Artist); err != nil {
			return nil, fmt.Errorf("failed to scan song: %w", err)
		}
		out = append(out, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate songs: %w", err)
	}
	return out, nil
}

// CatalogIDs returns the set of known song ids.
func (db *DB) CatalogIDs(ctx context.Context) (map[string]struct{}, error) {
	songs, err := db.Songs(ctx)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]struct{}, len(songs))
	for _, s := range songs {
		ids[s.ID] = struct{}{}
	}
	return ids, nil
}

// UpsertSongs writes catalog entries, replacing name and artist of songs
// that already exist. Within one call the last duplicate wins.
func (db *DB) UpsertSongs(ctx context.Context, songs []recommend.Song) (int, error) {
	index := make(map[string]int, len(songs))
	deduped := make([]recommend.Song, 0, len(songs))
	for _, s := range songs {
		if j, ok := index[s.ID]; ok {
			deduped[j] = s
			continue
		}
		index[s.ID] = len(deduped)
		deduped = append(deduped, s)
	}
	songs = deduped

	const query = `INSERT INTO songs (song_id, song_name, artist_name) VALUES (?, ?, ?)
		ON CONFLICT (song_id) DO UPDATE SET song_name = excluded.song_name, artist_name = excluded.artist_name`

	return db.execBatch(ctx, tableSongs, query, len(songs), func(i int) []any {
		s := songs[i]
		return []any{s.ID, s.Name, s.Artist}
	})
}
