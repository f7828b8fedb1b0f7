// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package recommend

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
)

func TestEntrySource_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		source EntrySource
		want   string
	}{
		{SourceDirect, "direct"},
		{SourceFriend, "friend"},
		{EntrySource(9), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			if got := tt.source.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
			if tt.want != "unknown" && ParseEntrySource(tt.want) != tt.source {
				t.Errorf("ParseEntrySource(%q) = %v, want %v", tt.want, ParseEntrySource(tt.want), tt.source)
			}
		})
	}
}

func TestRankedList_Rows(t *testing.T) {
	t.Parallel()

	l := NewRankedList("A", 3)
	l.Entries = append(l.Entries,
		RankedEntry{SongID: "S1", Score: 0.9},
		RankedEntry{SongID: "S2", Score: 0.5, Source: SourceFriend},
	)

	rows := l.Rows()
	want := []RecommendationRow{
		{UserID: "A", SongID: "S1", Rank: 1, Score: 0.9, Source: SourceDirect},
		{UserID: "A", SongID: "S2", Rank: 2, Score: 0.5, Source: SourceFriend},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("Rows() = %+v, want %+v", rows, want)
	}
}

func TestRankedList_NilSafe(t *testing.T) {
	t.Parallel()

	var l *RankedList
	if l.Len() != 0 {
		t.Errorf("nil Len() = %d, want 0", l.Len())
	}
	if l.Contains("S1") {
		t.Error("nil Contains() = true, want false")
	}
	if l.SongIDs() != nil {
		t.Error("nil SongIDs() != nil")
	}
}

func TestUserUniverse(t *testing.T) {
	t.Parallel()

	interactions := []Interaction{
		{UserID: "B", SongID: "S1", Count: 1},
		{UserID: "A", SongID: "S2", Count: 1},
	}
	edges := []FriendEdge{
		{UserID: "C", FriendID: "A"},
		{UserID: "A", FriendID: "D"},
	}

	got := UserUniverse(interactions, edges)
	want := []string{"A", "B", "C"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("UserUniverse() = %v, want %v", got, want)
	}
	if got := Songs(interactions); !reflect.DeepEqual(got, []string{"S1", "S2"}) {
		t.Errorf("Songs() = %v, want [S1 S2]", got)
	}
}

func TestErrorTaxonomy(t *testing.T) {
	t.Parallel()

	cause := errors.New("disk full")

	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"data insufficiency", &DataInsufficiencyError{Reason: "empty"}, ErrDataInsufficient},
		{"training", &TrainingError{Reason: "too few users", Users: 1, Items: 4}, ErrTraining},
		{"model not trained", &ModelNotTrainedError{Model: "svd"}, ErrModelNotTrained},
		{"persistence", &PersistenceError{Op: "insert", Err: cause}, ErrPersistence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			wrapped := fmt.Errorf("run: %w", tt.err)
			if !errors.Is(wrapped, tt.sentinel) {
				t.Errorf("errors.Is(%v, sentinel) = false, want true", wrapped)
			}
			if tt.err.Error() == "" {
				t.Error("Error() returned empty string")
			}
		})
	}

	perr := &PersistenceError{Op: "commit", Err: cause}
	if !errors.Is(perr, cause) {
		t.Error("PersistenceError does not unwrap to its cause")
	}
}
