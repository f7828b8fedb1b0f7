// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

// Package database is the relational store behind the recommendation
// pipeline and the read API.
//
// # Overview
//
// A single DB value serves every collaborator the pipeline needs:
//
//   - Catalog: songs (song_id, song_name, artist_name)
//   - Ratings: interactions (user_id, song_id, raw_count)
//   - Social: friend_edges (user_id, friend_id), directed
//   - Recommendations: persisted playlist slots tagged with the run that
//     wrote them
//   - Runs: one summary row per pipeline run
//
// # Drivers
//
// DuckDB (github.com/duckdb/duckdb-go/v2) is the default. The pure-Go SQLite
// driver (modernc.org/sqlite) is available with database.driver: sqlite for
// hosts without CGO. The schema and queries are shared between both.
//
// # Persistence Modes
//
// ReplaceRecommendations deletes every prior row of the batch's users and
// inserts the new lists in one transaction, so re-running a batch yields the
// same stored lists. AppendRecommendations keeps earlier runs; Playlist reads
// only the user's most recent run. Both return *recommend.PersistenceError on
// failure after rolling the whole batch back.
//
// # Usage
//
//	db, err := database.New(&cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	runID, entries, err := db.Playlist(ctx, "alice", 10)
//
// # Thread Safety
//
// DB is safe for concurrent use. Every operation without a context deadline
// gets a 30 second timeout.
package database
