// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

// Package logging provides the zerolog-based structured logger used across
// Cadence.
//
// A single global logger is configured once from main and read through
// package-level helpers. JSON is the default output; console output is meant
// for local development.
//
// # Quick Start
//
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	logging.Info().Int("users", n).Msg("Normalized interactions")
//	logging.Error().Err(err).Msg("Persist failed")
//
// # Run and Request IDs
//
// Each pipeline run carries a run ID and each HTTP request a request ID.
// Both travel in the context and are attached by Ctx:
//
//	ctx = logging.ContextWithRunID(ctx, runID)
//	logging.Ctx(ctx).Info().Msg("Training started")
//	// {"level":"info","run_id":"...","message":"Training started"}
//
// # Adapters
//
// NewSlogLogger returns an slog.Logger writing through zerolog, which is what
// the suture supervisor's sutureslog handler expects.
//
// # Best Practices
//
// Always terminate log chains with .Msg() or .Send():
//
//	logging.Info().Str("key", "value").Msg("message")  // Correct
//	logging.Info().Str("key", "value")                 // WRONG - log not emitted
package logging
