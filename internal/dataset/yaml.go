// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package dataset

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tomtom215/cadence/internal/recommend"
)

// fixture is the YAML document layout:
//
//	songs:
//	  - {song_id: s1, song_name: Harvest Moon, artist_name: Neil Young}
//	interactions:
//	  - {user_id: alice, song_id: s1, count: 5}
//	friends:
//	  - {user_id: alice, friend_id: bob}
type fixture struct {
	Songs        []SongRecord        `yaml:"songs"`
	Interactions []InteractionRecord `yaml:"interactions"`
	Friends      []FriendRecord      `yaml:"friends"`
}

// ReadYAML parses a fixture document. Unknown top-level keys are rejected so
// that a misspelled section does not load as empty.
func ReadYAML(source string, r io.Reader) (*Dataset, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f fixture
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &Dataset{}, nil
		}
		return nil, &ParseError{Source: source, Err: err}
	}

	d := &Dataset{
		Songs:        make([]recommend.Song, 0, len(f.Songs)),
		Interactions: make([]recommend.Interaction, 0, len(f.Interactions)),
		FriendEdges:  make([]recommend.FriendEdge, 0, len(f.Friends)),
	}

	for i, rec := range f.Songs {
		if err := validateRecord(fmt.Sprintf("%s songs[%d]", source, i), 0, rec); err != nil {
			return nil, err
		}
		d.Songs = append(d.Songs, rec.toSong())
	}
	for i, rec := range f.Interactions {
		if err := validateRecord(fmt.Sprintf("%s interactions[%d]", source, i), 0, rec); err != nil {
			return nil, err
		}
		d.Interactions = append(d.Interactions, rec.toInteraction())
	}
	for i, rec := range f.Friends {
		if err := validateRecord(fmt.Sprintf("%s friends[%d]", source, i), 0, rec); err != nil {
			return nil, err
		}
		d.FriendEdges = append(d.FriendEdges, rec.toEdge())
	}

	return d, nil
}

// LoadYAML reads a fixture file.
func LoadYAML(path string) (*Dataset, error) {
	var d *Dataset
	err := readFile(path, func(r io.Reader) error {
		var err error
		d, err = ReadYAML(path, r)
		return err
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// IsYAML reports whether the path has a YAML extension.
func IsYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}
