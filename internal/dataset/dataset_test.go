// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/tomtom215/cadence/internal/recommend"
)

// ========================================
// CSV
// ========================================

func TestReadSongsCSV(t *testing.T) {
	t.Parallel()

	input := "\ufeffsong_id,song_name,artist_id,Artist_Name,year\n" +
		"s1,Harvest Moon,a1,Neil Young,1992\n" +
		"\n" +
		"s2,\"Moon, River\",a2,Audrey Hepburn,1961\n"

	songs, err := ReadSongsCSV("songs.csv", strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadSongsCSV() error = %v", err)
	}
	want := []recommend.Song{
		{ID: "s1", Name: "Harvest Moon", Artist: "Neil Young"},
		{ID: "s2", Name: "Moon, River", Artist: "Audrey Hepburn"},
	}
	if !reflect.DeepEqual(songs, want) {
		t.Errorf("ReadSongsCSV() = %+v, want %+v", songs, want)
	}
}

func TestReadInteractionsCSV(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    []recommend.Interaction
		wantErr bool
	}{
		{
			name:  "listening_count column with surrogate id",
			input: "id,user_id,song_id,listening_count\n1,alice,s1,5\n2,alice,s2,0\n",
			want: []recommend.Interaction{
				{UserID: "alice", SongID: "s1", Count: 5},
				{UserID: "alice", SongID: "s2", Count: 0},
			},
		},
		{
			name:  "raw_count column and float counts",
			input: "user_id,song_id,raw_count\nbob,s3,3.0\n",
			want:  []recommend.Interaction{{UserID: "bob", SongID: "s3", Count: 3}},
		},
		{
			name:    "negative count",
			input:   "user_id,song_id,count\nbob,s3,-1\n",
			wantErr: true,
		},
		{
			name:    "fractional count",
			input:   "user_id,song_id,count\nbob,s3,1.5\n",
			wantErr: true,
		},
		{
			name:    "missing count column",
			input:   "user_id,song_id\nbob,s3\n",
			wantErr: true,
		},
		{
			name:    "id with whitespace",
			input:   "user_id,song_id,count\n\"bo b\",s3,1\n",
			wantErr: true,
		},
		{
			name:    "empty file",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ReadInteractionsCSV("user_songs.csv", strings.NewReader(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ReadInteractionsCSV() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var pe *ParseError
				if !errors.As(err, &pe) {
					t.Errorf("error = %T, want *ParseError", err)
				}
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ReadInteractionsCSV() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestReadInteractionsCSV_ErrorLine(t *testing.T) {
	t.Parallel()

	input := "user_id,song_id,count\nalice,s1,1\nalice,s2,x\n"
	_, err := ReadInteractionsCSV("user_songs.csv", strings.NewReader(input))

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %v, want *ParseError", err)
	}
	if pe.Line != 3 {
		t.Errorf("Line = %d, want 3", pe.Line)
	}
	if !strings.Contains(err.Error(), "user_songs.csv:3") {
		t.Errorf("Error() = %q, want file and line", err.Error())
	}
}

func TestReadFriendsCSV(t *testing.T) {
	t.Parallel()

	input := "id,user_id,friend_id\n1,alice,bob\n2,bob,alice\n"
	edges, err := ReadFriendsCSV("user_friends.csv", strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadFriendsCSV() error = %v", err)
	}
	want := []recommend.FriendEdge{
		{UserID: "alice", FriendID: "bob"},
		{UserID: "bob", FriendID: "alice"},
	}
	if !reflect.DeepEqual(edges, want) {
		t.Errorf("ReadFriendsCSV() = %+v, want %+v", edges, want)
	}

	if _, err := ReadFriendsCSV("f.csv", strings.NewReader("user_id,friend_id\nalice,\n")); err == nil {
		t.Error("ReadFriendsCSV() with empty friend_id error = nil, want error")
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadCSV(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	paths := Paths{
		Songs:        writeFile(t, dir, "songs.csv", "song_id,song_name,artist_name\ns1,One,U2\n"),
		Interactions: writeFile(t, dir, "user_songs.csv", "user_id,song_id,listening_count\nalice,s1,4\n"),
	}

	d, err := LoadCSV(paths)
	if err != nil {
		t.Fatalf("LoadCSV() error = %v", err)
	}
	if len(d.Songs) != 1 || len(d.Interactions) != 1 || len(d.FriendEdges) != 0 {
		t.Errorf("LoadCSV() = %+v, want 1 song, 1 interaction, no edges", d)
	}

	if _, err := LoadCSV(Paths{Friends: filepath.Join(dir, "missing.csv")}); err == nil {
		t.Error("LoadCSV(missing file) error = nil, want error")
	}
}

// ========================================
// YAML
// ========================================

func TestReadYAML(t *testing.T) {
	t.Parallel()

	input := `
songs:
  - {song_id: s1, song_name: Harvest Moon, artist_name: Neil Young}
interactions:
  - {user_id: alice, song_id: s1, count: 5}
  - {user_id: bob, song_id: s1, count: 0}
friends:
  - {user_id: alice, friend_id: bob}
`
	d, err := ReadYAML("fixture.yaml", strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadYAML() error = %v", err)
	}

	want := &Dataset{
		Songs: []recommend.Song{{ID: "s1", Name: "Harvest Moon", Artist: "Neil Young"}},
		Interactions: []recommend.Interaction{
			{UserID: "alice", SongID: "s1", Count: 5},
			{UserID: "bob", SongID: "s1", Count: 0},
		},
		FriendEdges: []recommend.FriendEdge{{UserID: "alice", FriendID: "bob"}},
	}
	if !reflect.DeepEqual(d, want) {
		t.Errorf("ReadYAML() = %+v, want %+v", d, want)
	}
}

func TestReadYAML_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{"unknown section", "playlists:\n  - x\n"},
		{"negative count", "interactions:\n  - {user_id: a, song_id: s, count: -2}\n"},
		{"missing song name", "songs:\n  - {song_id: s1, artist_name: X}\n"},
		{"malformed", "songs: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ReadYAML("fixture.yaml", strings.NewReader(tt.input))
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Errorf("ReadYAML() error = %v, want *ParseError", err)
			}
		})
	}
}

func TestReadYAML_Empty(t *testing.T) {
	t.Parallel()

	d, err := ReadYAML("empty.yaml", strings.NewReader(""))
	if err != nil {
		t.Fatalf("ReadYAML() error = %v", err)
	}
	if !d.Empty() {
		t.Errorf("ReadYAML(empty) = %+v, want empty dataset", d)
	}
}

func TestLoadYAML(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "fixture.yml", "friends:\n  - {user_id: a, friend_id: b}\n")
	if !IsYAML(path) {
		t.Errorf("IsYAML(%s) = false, want true", path)
	}

	d, err := LoadYAML(path)
	if err != nil {
		t.Fatalf("LoadYAML() error = %v", err)
	}
	if len(d.FriendEdges) != 1 {
		t.Errorf("len(FriendEdges) = %d, want 1", len(d.FriendEdges))
	}
}

func TestIsYAML(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		"a.yaml":     true,
		"a.YML":      true,
		"a.csv":      false,
		"yaml":       false,
		"dir.yaml/x": false,
	}
	for path, want := range tests {
		if got := IsYAML(path); got != want {
			t.Errorf("IsYAML(%q) = %v, want %v", path, got, want)
		}
	}
}

// ========================================
// Import
// ========================================

type fakeSink struct {
	songs        []recommend.Song
	interactions []recommend.Interaction
	edges        []recommend.FriendEdge
	failOn       string
}

func (f *fakeSink) UpsertSongs(_ context.Context, songs []recommend.Song) (int, error) {
	if f.failOn == "songs" {
		return 0, errors.New("boom")
	}
	f.songs = append(f.songs, songs...)
	return len(songs), nil
}

func (f *fakeSink) UpsertInteractions(_ context.Context, in []recommend.Interaction) (int, error) {
	if f.failOn == "interactions" {
		return 0, errors.New("boom")
	}
	f.interactions = append(f.interactions, in...)
	return len(in), nil
}

func (f *fakeSink) InsertFriendEdges(_ context.Context, edges []recommend.FriendEdge) (int, error) {
	if f.failOn == "edges" {
		return 0, errors.New("boom")
	}
	f.edges = append(f.edges, edges...)
	return len(edges), nil
}

func testDataset() *Dataset {
	return &Dataset{
		Songs:        []recommend.Song{{ID: "s1", Name: "One", Artist: "U2"}},
		Interactions: []recommend.Interaction{{UserID: "alice", SongID: "s1", Count: 2}},
		FriendEdges:  []recommend.FriendEdge{{UserID: "alice", FriendID: "bob"}},
	}
}

func TestImport(t *testing.T) {
	t.Parallel()

	sink := &fakeSink{}
	stats, err := Import(context.Background(), sink, testDataset())
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if stats != (ImportStats{Songs: 1, Interactions: 1, FriendEdges: 1}) {
		t.Errorf("Import() stats = %+v", stats)
	}
	if len(sink.songs) != 1 || len(sink.interactions) != 1 || len(sink.edges) != 1 {
		t.Errorf("sink received %d/%d/%d rows, want 1/1/1", len(sink.songs), len(sink.interactions), len(sink.edges))
	}

	if _, err := Import(context.Background(), sink, nil); err != nil {
		t.Errorf("Import(nil) error = %v, want nil", err)
	}
}

func TestImport_StopsOnFailure(t *testing.T) {
	t.Parallel()

	sink := &fakeSink{failOn: "interactions"}
	stats, err := Import(context.Background(), sink, testDataset())
	if err == nil {
		t.Fatal("Import() error = nil, want error")
	}
	if stats.Songs != 1 || stats.Interactions != 0 || stats.FriendEdges != 0 {
		t.Errorf("stats = %+v, want songs written only", stats)
	}
	if len(sink.edges) != 0 {
		t.Error("friend edges should not be written after a failure")
	}
}

func TestDataset_Merge(t *testing.T) {
	t.Parallel()

	d := &Dataset{}
	if !d.Empty() {
		t.Error("zero Dataset should be empty")
	}
	d.Merge(testDataset())
	d.Merge(testDataset())
	d.Merge(nil)
	if len(d.Songs) != 2 || len(d.Interactions) != 2 || len(d.FriendEdges) != 2 {
		t.Errorf("Merge() = %+v, want two of each", d)
	}
}
