// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package dataset

import (
	"context"
	"fmt"

	"github.com/tomtom215/cadence/internal/logging"
	"github.com/tomtom215/cadence/internal/recommend"
	"github.com/tomtom215/cadence/internal/validation"
)

// SongRecord is one catalog row of a fixture file.
type SongRecord struct {
	SongID     string `yaml:"song_id" validate:"required,entityid"`
	SongName   string `yaml:"song_name" validate:"required"`
	ArtistName string `yaml:"artist_name" validate:"required"`
}

// InteractionRecord is one listening count of a fixture file.
type InteractionRecord struct {
	UserID string `yaml:"user_id" validate:"required,entityid"`
	SongID string `yaml:"song_id" validate:"required,entityid"`
	Count  int    `yaml:"count" validate:"gte=0"`
}

// FriendRecord is one directed edge of a fixture file.
type FriendRecord struct {
	UserID   string `yaml:"user_id" validate:"required,entityid"`
	FriendID string `yaml:"friend_id" validate:"required,entityid"`
}

// Dataset is a parsed set of input collections. Any of them may be empty.
type Dataset struct {
	Songs        []recommend.Song
	Interactions []recommend.Interaction
	FriendEdges  []recommend.FriendEdge
}

// Empty reports whether the dataset holds no rows at all.
func (d *Dataset) Empty() bool {
	return d == nil || len(d.Songs)+len(d.Interactions)+len(d.FriendEdges) == 0
}

// Merge appends other's rows to d.
func (d *Dataset) Merge(other *Dataset) {
	if other == nil {
		return
	}
	d.Songs = append(d.Songs, other.Songs...)
	d.Interactions = append(d.Interactions, other.Interactions...)
	d.FriendEdges = append(d.FriendEdges, other.FriendEdges...)
}

// Sink receives imported rows. *database.DB satisfies it.
type Sink interface {
	UpsertSongs(ctx context.Context, songs []recommend.Song) (int, error)
	UpsertInteractions(ctx context.Context, interactions []recommend.Interaction) (int, error)
	InsertFriendEdges(ctx context.Context, edges []recommend.FriendEdge) (int, error)
}

// ImportStats counts the rows sent to the sink.
type ImportStats struct {
	Songs        int `json:"songs"`
	Interactions int `json:"interactions"`
	FriendEdges  int `json:"friend_edges"`
}

// Import writes the dataset to the sink: catalog first, then interactions,
// then friend edges. Each collection is written in its own transaction; a
// failure stops the import and reports what was already written.
func Import(ctx context.Context, sink Sink, d *Dataset) (ImportStats, error) {
	var stats ImportStats
	if d == nil {
		return stats, nil
	}

	n, err := sink.UpsertSongs(ctx, d.Songs)
	if err != nil {
		return stats, fmt.Errorf("import songs: %w", err)
	}
	stats.Songs = n

	n, err = sink.UpsertInteractions(ctx, d.Interactions)
	if err != nil {
		return stats, fmt.Errorf("import interactions: %w", err)
	}
	stats.Interactions = n

	n, err = sink.InsertFriendEdges(ctx, d.FriendEdges)
	if err != nil {
		return stats, fmt.Errorf("import friend edges: %w", err)
	}
	stats.FriendEdges = n

	logging.Ctx(ctx).Info().
		Int("songs", stats.Songs).
		Int("interactions", stats.Interactions).
		Int("friend_edges", stats.FriendEdges).
		Msg("Dataset imported")

	return stats, nil
}

func (r SongRecord) toSong() recommend.Song {
	return recommend.Song{ID: r.SongID, Name: r.SongName, Artist: r.ArtistName}
}

func (r InteractionRecord) toInteraction() recommend.Interaction {
	return recommend.Interaction{UserID: r.UserID, SongID: r.SongID, Count: r.Count}
}

func (r FriendRecord) toEdge() recommend.FriendEdge {
	return recommend.FriendEdge{UserID: r.UserID, FriendID: r.FriendID}
}

// validateRecord runs the struct tags of a fixture record.
func validateRecord(source string, line int, record interface{}) error {
	if verr := validation.ValidateStruct(record); verr != nil {
		return &ParseError{Source: source, Line: line, Err: verr}
	}
	return nil
}

// ParseError locates an invalid row in an input file.
type ParseError struct {
	Source string
	Line   int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %v", e.Source, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

// Unwrap returns the underlying parse or validation error.
func (e *ParseError) Unwrap() error {
	return e.Err
}
