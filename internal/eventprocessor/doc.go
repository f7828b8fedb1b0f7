// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

// Package eventprocessor announces finished pipeline runs over NATS.
//
// After a run persists its playlists the pipeline publishes one
// models.PlaylistsUpdated event, JSON encoded, on the configured subject
// (default "playlists.updated"). Downstream consumers treat it as a cache
// invalidation signal and re-read playlists through the HTTP API.
//
// Components:
//
//   - Publisher: watermill publisher wrapper with a gobreaker circuit breaker.
//     NewNATSPublisher builds one on watermill-nats; tests use the watermill
//     gochannel pubsub through NewPublisher.
//   - EmbeddedServer: optional in-process nats-server for single-node
//     deployments, run under the supervisor tree.
//   - WatermillLogger: routes watermill and NATS client logs to zerolog.
//
// Publishing is best effort. A failed publish is logged by the pipeline and
// never fails the run; the breaker keeps an unreachable server from slowing
// every run down.
package eventprocessor
