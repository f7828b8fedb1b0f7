// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/tomtom215/cadence/internal/dataset"
	"github.com/tomtom215/cadence/internal/logging"
)

// loadCommand imports CSV files and YAML fixtures into the store.
//
//	cadence load -songs songs.csv -interactions counts.csv -friends friends.csv
//	cadence load fixtures/small.yaml
func loadCommand(ctx context.Context, args []string, stdout io.Writer) error {
	fs := newFlagSet("load")
	var common commonFlags
	common.register(fs)
	var paths dataset.Paths
	fs.StringVar(&paths.Songs, "songs", "", "songs CSV (song_id,song_name,artist_name)")
	fs.StringVar(&paths.Interactions, "interactions", "", "listening counts CSV (user_id,song_id,count)")
	fs.StringVar(&paths.Friends, "friends", "", "friendships CSV (user_id,friend_id)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	d, err := readDatasets(paths, fs.Args())
	if err != nil {
		return err
	}
	if d.Empty() {
		return fmt.Errorf("%w: nothing to load; pass -songs, -interactions, -friends or YAML fixture files", errUsage)
	}

	cfg, err := common.setup()
	if err != nil {
		return err
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer closeWithLog(db, "database")

	stats, err := dataset.Import(ctx, db, d)
	logging.Info().
		Int("songs", stats.Songs).
		Int("interactions", stats.Interactions).
		Int("friend_edges", stats.FriendEdges).
		Msg("Dataset imported")
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	if _, err := fmt.Fprintf(stdout, "loaded %d songs, %d interactions, %d friend edges\n",
		stats.Songs, stats.Interactions, stats.FriendEdges); err != nil {
		return err
	}

	counts, err := db.GetRecordCounts(ctx)
	if err != nil {
		return fmt.Errorf("count stored rows: %w", err)
	}
	_, err = fmt.Fprintf(stdout, "store now holds %d songs, %d interactions, %d friend edges\n",
		counts.Songs, counts.Interactions, counts.FriendEdges)
	return err
}

// readDatasets merges the CSV files and every YAML fixture argument.
func readDatasets(paths dataset.Paths, fixtures []string) (*dataset.Dataset, error) {
	d, err := dataset.LoadCSV(paths)
	if err != nil {
		return nil, err
	}

	for _, path := range fixtures {
		if !dataset.IsYAML(path) {
			return nil, fmt.Errorf("%w: %s is not a .yaml or .yml fixture", errUsage, path)
		}
		fixture, err := dataset.LoadYAML(path)
		if err != nil {
			return nil, err
		}
		d.Merge(fixture)
	}
	return d, nil
}
