// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package models

import (
	"time"
)

// EventTypePlaylistsUpdated identifies PlaylistsUpdated messages.
const EventTypePlaylistsUpdated = "playlists.updated"

// PlaylistsUpdated is published after a run has persisted its playlists.
// Consumers re-read playlists through the API; the event carries no entries.
type PlaylistsUpdated struct {
	EventID     string    `json:"event_id"`
	Type        string    `json:"type"`
	RunID       string    `json:"run_id"`
	PersistMode string    `json:"persist_mode"`
	Users       int       `json:"users"`
	RowsWritten int       `json:"rows_written"`
	ShortLists  int       `json:"short_lists"`
	FinishedAt  time.Time `json:"finished_at"`
}
