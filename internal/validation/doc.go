// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

// Package validation provides struct validation using go-playground/validator v10.
//
// A thread-safe singleton validator is shared by configuration loading and
// the HTTP API. Field errors are translated to readable messages and can be
// converted to the API's VALIDATION_ERROR format.
//
// # Custom Tags
//
//   - entityid: a user or song identifier (1-128 printable characters,
//     no whitespace or slashes)
//   - dedup: one of none, against_direct, all
//   - persistmode: replace or append
//
// # Usage
//
//	type playlistRequest struct {
//	    UserID string `validate:"required,entityid"`
//	    Limit  int    `validate:"min=0,max=1000"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	    return
//	}
package validation
