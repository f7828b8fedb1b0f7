// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package recommend

import (
	"sort"
)

// Interaction is a raw implicit listening signal.
type Interaction struct {
	// UserID identifies the listener.
	UserID string `json:"user_id"`

	// SongID identifies the song.
	SongID string `json:"song_id"`

	// Count is the raw play count. Must be non-negative.
	Count int `json:"count"`
}

// NormalizedInteraction is an Interaction after global min-max scaling.
type NormalizedInteraction struct {
	UserID string  `json:"user_id"`
	SongID string  `json:"song_id"`
	Score  float64 `json:"score"`
}

// FriendEdge is a directed social edge: UserID follows FriendID.
type FriendEdge struct {
	UserID   string `json:"user_id"`
	FriendID string `json:"friend_id"`
}

// Song is a catalog entry.
type Song struct {
	ID     string `json:"song_id"`
	Name   string `json:"song_name"`
	Artist string `json:"artist_name"`
}

// Prediction is an estimated score for a pair absent from the interaction set.
type Prediction struct {
	UserID string  `json:"user_id"`
	SongID string  `json:"song_id"`
	Score  float64 `json:"score"`
}

// EntrySource records how an entry reached a playlist.
type EntrySource int

const (
	// SourceDirect entries come from the user's own predictions.
	SourceDirect EntrySource = iota
	// SourceFriend entries were borrowed from a friend's preliminary list.
	SourceFriend
)

// String returns the stored name of the source.
func (s EntrySource) String() string {
	switch s {
	case SourceDirect:
		return "direct"
	case SourceFriend:
		return "friend"
	default:
		return "unknown"
	}
}

// ParseEntrySource converts a stored name back to an EntrySource.
// Unknown names map to SourceDirect.
func ParseEntrySource(s string) EntrySource {
	if s == "friend" {
		return SourceFriend
	}
	return SourceDirect
}

// RankedEntry is one slot of a playlist.
type RankedEntry struct {
	SongID string      `json:"song_id"`
	Score  float64     `json:"score"`
	Source EntrySource `json:"source"`
}

// RankedList is a user's ordered playlist, bounded by the list length it was
// created with.
type RankedList struct {
	UserID  string        `json:"user_id"`
	Entries []RankedEntry `json:"entries"`
}

// NewRankedList creates an empty list with capacity for n entries.
func NewRankedList(userID string, n int) *RankedList {
	if n < 0 {
		n = 0
	}
	return &RankedList{
		UserID:  userID,
		Entries: make([]RankedEntry, 0, n),
	}
}

// Len returns the number of entries.
func (l *RankedList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Entries)
}

// Full reports whether the list holds at least n entries.
func (l *RankedList) Full(n int) bool {
	return l.Len() >= n
}

// SongIDs returns the song ids in rank order.
func (l *RankedList) SongIDs() []string {
	if l == nil {
		return nil
	}
	ids := make([]string, len(l.Entries))
	for i, e := range l.Entries {
		ids[i] = e.SongID
	}
	return ids
}

// Contains reports whether the song already occupies a slot.
func (l *RankedList) Contains(songID string) bool {
	if l == nil {
		return false
	}
	for _, e := range l.Entries {
		if e.SongID == songID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy with capacity for n entries.
func (l *RankedList) Clone(n int) *RankedList {
	if n < l.Len() {
		n = l.Len()
	}
	c := NewRankedList(l.UserID, n)
	c.Entries = append(c.Entries, l.Entries...)
	return c
}

// Rows converts the list to persisted rows with ranks starting at 1.
func (l *RankedList) Rows() []RecommendationRow {
	rows := make([]RecommendationRow, len(l.Entries))
	for i, e := range l.Entries {
		rows[i] = RecommendationRow{
			UserID: l.UserID,
			SongID: e.SongID,
			Rank:   i + 1,
			Score:  e.Score,
			Source: e.Source,
		}
	}
	return rows
}

// RecommendationRow is the persisted form of a playlist slot.
type RecommendationRow struct {
	UserID string      `json:"user_id"`
	SongID string      `json:"song_id"`
	Rank   int         `json:"rank"`
	Score  float64     `json:"score"`
	Source EntrySource `json:"source"`
}

// PlaylistEntry is a persisted slot joined with the catalog for display.
type PlaylistEntry struct {
	Rank       int     `json:"rank"`
	SongID     string  `json:"song_id"`
	SongName   string  `json:"song_name"`
	ArtistName string  `json:"artist_name"`
	Score      float64 `json:"score"`
	Source     string  `json:"source"`
}

// Users returns the sorted distinct user ids of the interactions.
func Users(interactions []Interaction) []string {
	seen := make(map[string]struct{})
	for _, in := range interactions {
		seen[in.UserID] = struct{}{}
	}
	return sortedKeys(seen)
}

// Songs returns the sorted distinct song ids of the interactions.
func Songs(interactions []Interaction) []string {
	seen := make(map[string]struct{})
	for _, in := range interactions {
		seen[in.SongID] = struct{}{}
	}
	return sortedKeys(seen)
}

// UserUniverse returns every user that should receive a playlist: users with
// interactions plus users that are the source of a friend edge.
func UserUniverse(interactions []Interaction, edges []FriendEdge) []string {
	seen := make(map[string]struct{})
	for _, in := range interactions {
		seen[in.UserID] = struct{}{}
	}
	for _, e := range edges {
		seen[e.UserID] = struct{}{}
	}
	return sortedKeys(seen)
}

// SeenSet indexes interactions by user for anti-set checks.
type SeenSet map[string]map[string]struct{}

// NewSeenSet builds a SeenSet from interactions.
func NewSeenSet(interactions []Interaction) SeenSet {
	s := make(SeenSet)
	for _, in := range interactions {
		songs, ok := s[in.UserID]
		if !ok {
			songs = make(map[string]struct{})
			s[in.UserID] = songs
		}
		songs[in.SongID] = struct{}{}
	}
	return s
}

// Has reports whether the user interacted with the song.
func (s SeenSet) Has(userID, songID string) bool {
	_, ok := s[userID][songID]
	return ok
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
