// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/tomtom215/cadence/internal/recommend"
)

// Column names accepted in CSV headers. Headers are matched case-insensitively
// and unknown columns are ignored, so exports with extra attributes (year,
// genre, popularity, surrogate ids) load unchanged.
var (
	songIDColumns     = []string{"song_id"}
	songNameColumns   = []string{"song_name", "title"}
	artistNameColumns = []string{"artist_name", "artist"}
	userIDColumns     = []string{"user_id"}
	friendIDColumns   = []string{"friend_id"}
	countColumns      = []string{"listening_count", "raw_count", "count", "play_count"}
)

// csvTable is a header-indexed CSV reader.
type csvTable struct {
	source string
	reader *csv.Reader
	index  map[string]int
	line   int
}

func newCSVTable(source string, r io.Reader) (*csvTable, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &ParseError{Source: source, Line: 1, Err: errors.New("missing header row")}
	}
	if err != nil {
		return nil, &ParseError{Source: source, Line: 1, Err: err}
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	return &csvTable{source: source, reader: reader, index: index, line: 1}, nil
}

// column resolves the first present alias.
func (t *csvTable) column(aliases []string) (int, error) {
	for _, a := range aliases {
		if i, ok := t.index[a]; ok {
			return i, nil
		}
	}
	return 0, &ParseError{Source: t.source, Line: 1, Err: fmt.Errorf("missing column %q", aliases[0])}
}

// next returns the following non-blank record, or io.EOF.
func (t *csvTable) next() ([]string, error) {
	for {
		record, err := t.reader.Read()
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		if err != nil {
			// csv.ParseError carries its own line number.
			return nil, &ParseError{Source: t.source, Err: err}
		}
		t.line, _ = t.reader.FieldPos(0)
		if blank(record) {
			continue
		}
		return record, nil
	}
}

func (t *csvTable) field(record []string, col int) string {
	if col >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[col])
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// ReadSongsCSV parses a catalog with song_id, song_name and artist_name
// columns.
func ReadSongsCSV(source string, r io.Reader) ([]recommend.Song, error) {
	t, err := newCSVTable(source, r)
	if err != nil {
		return nil, err
	}
	idCol, err := t.column(songIDColumns)
	if err != nil {
		return nil, err
	}
	nameCol, err := t.column(songNameColumns)
	if err != nil {
		return nil, err
	}
	artistCol, err := t.column(artistNameColumns)
	if err != nil {
		return nil, err
	}

	var songs []recommend.Song
	for {
		record, err := t.next()
		if errors.Is(err, io.EOF) {
			return songs, nil
		}
		if err != nil {
			return nil, err
		}

		rec := SongRecord{
			SongID:     t.field(record, idCol),
			SongName:   t.field(record, nameCol),
			ArtistName: t.field(record, artistCol),
		}
		if err := validateRecord(source, t.line, rec); err != nil {
			return nil, err
		}
		songs = append(songs, rec.toSong())
	}
}

// ReadInteractionsCSV parses listening counts with user_id, song_id and a
// count column (listening_count, raw_count, count or play_count).
func ReadInteractionsCSV(source string, r io.Reader) ([]recommend.Interaction, error) {
	t, err := newCSVTable(source, r)
	if err != nil {
		return nil, err
	}
	userCol, err := t.column(userIDColumns)
	if err != nil {
		return nil, err
	}
	songCol, err := t.column(songIDColumns)
	if err != nil {
		return nil, err
	}
	countCol, err := t.column(countColumns)
	if err != nil {
		return nil, err
	}

	var interactions []recommend.Interaction
	for {
		record, err := t.next()
		if errors.Is(err, io.EOF) {
			return interactions, nil
		}
		if err != nil {
			return nil, err
		}

		raw := t.field(record, countCol)
		count, err := parseCount(raw)
		if err != nil {
			return nil, &ParseError{Source: source, Line: t.line, Err: err}
		}

		rec := InteractionRecord{
			UserID: t.field(record, userCol),
			SongID: t.field(record, songCol),
			Count:  count,
		}
		if err := validateRecord(source, t.line, rec); err != nil {
			return nil, err
		}
		interactions = append(interactions, rec.toInteraction())
	}
}

// parseCount accepts integers and integral floats ("3.0"), which spreadsheet
// exports commonly produce.
func parseCount(raw string) (int, error) {
	if n, err := strconv.Atoi(raw); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("invalid count %q", raw)
	}
	return int(f), nil
}

// ReadFriendsCSV parses directed edges with user_id and friend_id columns.
func ReadFriendsCSV(source string, r io.Reader) ([]recommend.FriendEdge, error) {
	t, err := newCSVTable(source, r)
	if err != nil {
		return nil, err
	}
	userCol, err := t.column(userIDColumns)
	if err != nil {
		return nil, err
	}
	friendCol, err := t.column(friendIDColumns)
	if err != nil {
		return nil, err
	}

	var edges []recommend.FriendEdge
	for {
		record, err := t.next()
		if errors.Is(err, io.EOF) {
			return edges, nil
		}
		if err != nil {
			return nil, err
		}

		rec := FriendRecord{
			UserID:   t.field(record, userCol),
			FriendID: t.field(record, friendCol),
		}
		if err := validateRecord(source, t.line, rec); err != nil {
			return nil, err
		}
		edges = append(edges, rec.toEdge())
	}
}

// Paths names the CSV files of a dataset. Empty paths are skipped.
type Paths struct {
	Songs        string
	Interactions string
	Friends      string
}

// LoadCSV reads every non-empty path into one dataset.
func LoadCSV(paths Paths) (*Dataset, error) {
	d := &Dataset{}

	if paths.Songs != "" {
		if err := readFile(paths.Songs, func(r io.Reader) error {
			songs, err := ReadSongsCSV(paths.Songs, r)
			d.Songs = songs
			return err
		}); err != nil {
			return nil, err
		}
	}

	if paths.Interactions != "" {
		if err := readFile(paths.Interactions, func(r io.Reader) error {
			interactions, err := ReadInteractionsCSV(paths.Interactions, r)
			d.Interactions = interactions
			return err
		}); err != nil {
			return nil, err
		}
	}

	if paths.Friends != "" {
		if err := readFile(paths.Friends, func(r io.Reader) error {
			edges, err := ReadFriendsCSV(paths.Friends, r)
			d.FriendEdges = edges
			return err
		}); err != nil {
			return nil, err
		}
	}

	return d, nil
}

func readFile(path string, fn func(io.Reader) error) error {
	//nolint:gosec // G304: path comes from the operator's command line
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return fn(f)
}
