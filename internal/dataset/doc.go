// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

// Package dataset loads songs, listening counts and friend edges from CSV
// exports or YAML fixture files and imports them into the store.
//
// CSV files are matched by header name, so exports carrying extra columns
// load unchanged:
//
//	songs.csv         song_id, song_name, artist_name
//	user_songs.csv    user_id, song_id, listening_count
//	user_friends.csv  user_id, friend_id
//
// Every row is validated with the shared validator (non-empty entity ids
// without whitespace, non-negative counts). The first invalid row aborts the
// load with a *ParseError naming the file and line.
//
// Example:
//
//	d, err := dataset.LoadCSV(dataset.Paths{Songs: "songs.csv", Interactions: "user_songs.csv"})
//	if err != nil {
//	    return err
//	}
//	stats, err := dataset.Import(ctx, db, d)
package dataset
