// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

/*
Package models defines the API envelope and read models shared by the
database layer and the HTTP API.

  - APIResponse, Metadata, APIError: the response envelope
  - PlaylistResponse, FriendsResponse: user-facing read models
  - RunSummary: the stored record of a pipeline run

Domain types (interactions, ranked lists, playlist entries) live in package
recommend; this package only wraps them for transport.
*/
package models
