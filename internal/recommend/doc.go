// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

// Package recommend holds the domain model and the pure stages of the batch
// playlist pipeline.
//
// # Architecture
//
// A pipeline run moves strictly forward through six phases:
//
//  1. Normalize: global min-max rescaling of raw listening counts
//  2. Train: grid-searched biased matrix factorization (package algorithms)
//  3. Predict: anti-set scoring of every unseen user-song pair (package algorithms)
//  4. Rank: top-N per user with an explicit song_id tie-break
//  5. Fallback: friends' preliminary lists backfill short playlists
//  6. Persist: one transaction per batch (package pipeline + database)
//
// This package implements phases 1, 4 and 5 and owns the types shared by all
// phases. It has no dependencies on other internal packages so that the
// algorithms, storage and pipeline packages can import it freely.
//
// # Determinism
//
// Every ordering decision is explicit. Ranking breaks score ties by ascending
// song_id, and fallback only reads the preliminary (pre-fallback) lists of
// friends, so the result never depends on map iteration order.
//
// # Usage
//
//	scored, err := recommend.Normalize(interactions)
//	if err != nil {
//	    return err // *DataInsufficiencyError
//	}
//
//	lists := recommend.Rank(predictions, users, cfg.ListLength)
//	final, stats := recommend.Fallback(lists, edges, recommend.FallbackOptions{
//	    ListLength: cfg.ListLength,
//	    Dedup:      cfg.Fallback.Dedup,
//	})
package recommend
