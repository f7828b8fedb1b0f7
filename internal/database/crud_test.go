// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package database

import (
	"context"
	"reflect"
	"testing"

	"github.com/tomtom215/cadence/internal/recommend"
)

func testSongs() []recommend.Song {
	return []recommend.Song{
		{ID: "s1", Name: "Harvest Moon", Artist: "Neil Young"},
		{ID: "s2", Name: "Pink Moon", Artist: "Nick Drake"},
		{ID: "s3", Name: "Blue Moon", Artist: "Billie Holiday"},
		{ID: "s4", Name: "Moonage Daydream", Artist: "David Bowie"},
		{ID: "s5", Name: "Moon River", Artist: "Audrey Hepburn"},
	}
}

func testInteractions() []recommend.Interaction {
	return []recommend.Interaction{
		{UserID: "alice", SongID: "s1", Count: 5},
		{UserID: "alice", SongID: "s2", Count: 1},
		{UserID: "alice", SongID: "s3", Count: 10},
		{UserID: "bob", SongID: "s4", Count: 3},
		{UserID: "bob", SongID: "s5", Count: 7},
	}
}

func seedInputs(t *testing.T, db *DB) {
	t.Helper()
	ctx := context.Background()

	if _, err := db.UpsertSongs(ctx, testSongs()); err != nil {
		t.Fatalf("UpsertSongs() error = %v", err)
	}
	if _, err := db.UpsertInteractions(ctx, testInteractions()); err != nil {
		t.Fatalf("UpsertInteractions() error = %v", err)
	}
	edges := []recommend.FriendEdge{
		{UserID: "alice", FriendID: "bob"},
		{UserID: "bob", FriendID: "carol"},
	}
	if _, err := db.InsertFriendEdges(ctx, edges); err != nil {
		t.Fatalf("InsertFriendEdges() error = %v", err)
	}
}

func TestInteractions(t *testing.T) {
	forEachDriver(t, func(t *testing.T, db *DB) {
		ctx := context.Background()
		seedInputs(t, db)

		got, err := db.Interactions(ctx)
		if err != nil {
			t.Fatalf("Interactions() error = %v", err)
		}
		if !reflect.DeepEqual(got, testInteractions()) {
			t.Errorf("Interactions() = %v, want %v", got, testInteractions())
		}

		// Upsert replaces the count; the last duplicate in a batch wins.
		n, err := db.UpsertInteractions(ctx, []recommend.Interaction{
			{UserID: "alice", SongID: "s1", Count: 2},
			{UserID: "alice", SongID: "s1", Count: 9},
		})
		if err != nil {
			t.Fatalf("UpsertInteractions() error = %v", err)
		}
		if n != 1 {
			t.Errorf("UpsertInteractions() wrote %d rows, want 1", n)
		}

		got, err = db.Interactions(ctx)
		if err != nil {
			t.Fatalf("Interactions() error = %v", err)
		}
		if len(got) != len(testInteractions()) {
			t.Fatalf("len(Interactions()) = %d, want %d", len(got), len(testInteractions()))
		}
		if got[0].Count != 9 {
			t.Errorf("alice/s1 count = %d, want 9", got[0].Count)
		}
	})
}

func TestUpsertInteractions_NegativeCount(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := db.UpsertInteractions(ctx, []recommend.Interaction{
		{UserID: "alice", SongID: "s1", Count: 1},
		{UserID: "alice", SongID: "s2", Count: -1},
	})
	if err == nil {
		t.Fatal("UpsertInteractions() error = nil, want error for negative count")
	}

	got, err := db.Interactions(ctx)
	if err != nil {
		t.Fatalf("Interactions() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Interactions() = %v, want nothing written", got)
	}
}

func TestFriendEdges(t *testing.T) {
	forEachDriver(t, func(t *testing.T, db *DB) {
		ctx := context.Background()

		n, err := db.InsertFriendEdges(ctx, []recommend.FriendEdge{
			{UserID: "alice", FriendID: "carol"},
			{UserID: "alice", FriendID: "bob"},
			{UserID: "alice", FriendID: "bob"},
			{UserID: "alice", FriendID: "alice"},
			{UserID: "bob", FriendID: "alice"},
		})
		if err != nil {
			t.Fatalf("InsertFriendEdges() error = %v", err)
		}
		if n != 3 {
			t.Errorf("InsertFriendEdges() = %d, want 3 (self-edge and repeat dropped)", n)
		}

		// Existing edges are ignored on a second insert.
		if _, err := db.InsertFriendEdges(ctx, []recommend.FriendEdge{{UserID: "alice", FriendID: "bob"}}); err != nil {
			t.Fatalf("InsertFriendEdges() repeat error = %v", err)
		}

		edges, err := db.FriendEdges(ctx)
		if err != nil {
			t.Fatalf("FriendEdges() error = %v", err)
		}
		want := []recommend.FriendEdge{
			{UserID: "alice", FriendID: "bob"},
			{UserID: "alice", FriendID: "carol"},
			{UserID: "bob", FriendID: "alice"},
		}
		if !reflect.DeepEqual(edges, want) {
			t.Errorf("FriendEdges() = %v, want %v", edges, want)
		}

		friends, err := db.Friends(ctx, "alice")
		if err != nil {
			t.Fatalf("Friends() error = %v", err)
		}
		if !reflect.DeepEqual(friends, []string{"bob", "carol"}) {
			t.Errorf("Friends(alice) = %v, want [bob carol]", friends)
		}

		none, err := db.Friends(ctx, "nobody")
		if err != nil {
			t.Fatalf("Friends() error = %v", err)
		}
		if none == nil || len(none) != 0 {
			t.Errorf("Friends(nobody) = %#v, want empty non-nil slice", none)
		}
	})
}

func TestSongs(t *testing.T) {
	forEachDriver(t, func(t *testing.T, db *DB) {
		ctx := context.Background()

		if _, err := db.UpsertSongs(ctx, testSongs()); err != nil {
			t.Fatalf("UpsertSongs() error = %v", err)
		}
		renamed := recommend.Song{ID: "s2", Name: "Pink Moon (Remastered)", Artist: "Nick Drake"}
		if _, err := db.UpsertSongs(ctx, []recommend.Song{renamed}); err != nil {
			t.Fatalf("UpsertSongs() error = %v", err)
		}

		songs, err := db.Songs(ctx)
		if err != nil {
			t.Fatalf("Songs() error = %v", err)
		}
		if len(songs) != 5 {
			t.Fatalf("len(Songs()) = %d, want 5", len(songs))
		}
		if songs[1] != renamed {
			t.Errorf("Songs()[1] = %+v, want %+v", songs[1], renamed)
		}

		ids, err := db.CatalogIDs(ctx)
		if err != nil {
			t.Fatalf("CatalogIDs() error = %v", err)
		}
		if _, ok := ids["s5"]; !ok || len(ids) != 5 {
			t.Errorf("CatalogIDs() = %v, want 5 ids including s5", ids)
		}
	})
}
