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

// FriendEdges returns every directed edge ordered by user then friend.
func (db *DB) FriendEdges(ctx context.Context) (out []recommend.FriendEdge, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("select", tableFriendEdges, time.Since(start), err) }()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT user_id, friend_id FROM friend_edges ORDER BY user_id, friend_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query friend edges: %w", err)
	}
	defer closeWithLog(rows, "rows")

	for rows.Next() {
		var e recommend.FriendEdge
		if err = rows.Scan(&e.UserID, &e.FriendID); err != nil {
			return nil, fmt.Errorf("failed to scan friend edge: %w", err)
		}
		out = append(out, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate friend edges: %w", err)
	}
	return out, nil
}

// Friends returns the ids a user follows, sorted.
func (db *DB) Friends(ctx context.Context, userID string) (out []string, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("select_user", tableFriendEdges, time.Since(start), err) }()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT friend_id FROM friend_edges WHERE user_id = ? ORDER BY friend_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query friends: %w", err)
	}
	defer closeWithLog(rows, "rows")

	out = []string{}
	for rows.Next() {
		var id string
		if err = rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan friend: %w", err)
		}
		out = append(out, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate friends: %w", err)
	}
	return out, nil
}

// InsertFriendEdges stores directed edges. Self-edges and repeats are
// skipped and existing edges are left untouched. It returns the number of
// edges sent to the store.
func (db *DB) InsertFriendEdges(ctx context.Context, edges []recommend.FriendEdge) (int, error) {
	seen := make(map[recommend.FriendEdge]struct{}, len(edges))
	kept := make([]recommend.FriendEdge, 0, len(edges))
	for _, e := range edges {
		if e.UserID == e.FriendID {
			continue
		}
		if _, dup := seen[e]; dup {
			continue
		}
		seen[e] = struct{}{}
		kept = append(kept, e)
	}

	const query = `INSERT INTO friend_edges (user_id, friend_id) VALUES (?, ?)
		ON CONFLICT (user_id, friend_id) DO NOTHING`

	return db.execBatch(ctx, tableFriendEdges, query, len(kept), func(i int) []any {
		return []any{kept[i].UserID, kept[i].FriendID}
	})
}
