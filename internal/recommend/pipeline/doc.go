// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

/*
Package pipeline runs the batch that turns listening counts and the friend
graph into stored playlists.

A run moves through fixed phases, each one finished before the next starts:

	load -> normalize -> train -> checkpoint -> predict -> rank -> fallback -> persist

Training and prediction fan out over worker pools inside package algorithms;
fallback fans out per user. The model checkpoint is written and the context
checked before prediction, so a cancelled run never persists partial output.
Persistence is one transaction per run.

The collaborators are small interfaces (Source, Sink, RunRecorder,
Checkpointer, Publisher). The database store implements the first three,
the badger store implements Checkpointer and the event processor implements
Publisher.

Usage:

	p, err := pipeline.New(cfg, pipeline.Options{
	    Source:         db,
	    Sink:           db,
	    Runs:           db,
	    Checkpoints:    checkpoints,
	    Publisher:      publisher,
	    RetainVersions: 3,
	})
	stats, err := p.Run(ctx)

Only one run executes at a time; a concurrent Run returns ErrRunInProgress.
*/
package pipeline
