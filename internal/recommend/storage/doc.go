// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

// Package storage provides versioned checkpoints of trained latent models.
//
// Every pipeline run saves its fitted model before prediction starts, so a
// run aborted during prediction or persistence leaves the trained model
// behind for inspection or reuse.
//
// # Storage Format
//
// Checkpoints live in BadgerDB under two keys per version:
//
//	meta:{name}:{version}   JSON ModelMetadata
//	model:{name}:{version}  gzip-compressed gob model state
//
// The SHA-256 checksum in the metadata covers the uncompressed gob bytes and
// is verified on every Load.
//
// # Usage Example
//
//	store, err := storage.Open(storage.Config{Path: "/data/checkpoints"})
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	meta, err := store.SaveLatentModel(ctx, model, storage.ModelMetadata{RunID: runID})
//
//	restored, meta, err := store.LoadLatentModel(ctx, 0) // 0 = latest
//
// # Thread Safety
//
// All Store methods are safe for concurrent use.
package storage
