// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/cadence/internal/models"
	"github.com/tomtom215/cadence/internal/recommend"
	"github.com/tomtom215/cadence/internal/validation"
)

// PlaylistRequest holds the validated playlist query.
type PlaylistRequest struct {
	UserID string `validate:"required,entityid"`
	Limit  int    `validate:"min=1"`
}

type playlistResult struct {
	runID   string
	entries []recommend.PlaylistEntry
}

// userIDParam extracts and checks the {userID} path parameter, writing a
// 400 response when it is unusable.
func userIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := chi.URLParam(r, "userID")
	if !validation.IsEntityID(userID) {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeInvalidUserID, "Invalid user id", nil)
		return "", false
	}
	return userID, true
}

// Playlist returns a user's ranked playlist from their latest run, joined
// with song names.
//
// GET /api/v1/users/{userID}/playlist?limit=N
func (h *Handler) Playlist(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	limit, err := getIntParam(r, "limit", h.config.DefaultLimit)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, err.Error(), nil)
		return
	}
	req := PlaylistRequest{UserID: userID, Limit: limit}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}
	if req.Limit > h.config.MaxLimit {
		req.Limit = h.config.MaxLimit
	}

	key := "playlist:" + req.UserID + ":" + strconv.Itoa(req.Limit)
	res, err := cachedRead(r.Context(), h, key, func(ctx context.Context) (playlistResult, error) {
		runID, entries, err := h.store.Playlist(ctx, req.UserID, req.Limit)
		return playlistResult{runID: runID, entries: entries}, err
	})
	if err != nil {
		respondStoreError(w, r, err, "No playlist for user")
		return
	}

	respondSuccess(w, models.PlaylistResponse{
		UserID:  req.UserID,
		RunID:   res.runID,
		Entries: res.entries,
	}, start)
}

// Friends lists the users a user follows. A user with no friends gets an
// empty list.
//
// GET /api/v1/users/{userID}/friends
func (h *Handler) Friends(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	friends, err := cachedRead(r.Context(), h, "friends:"+userID, func(ctx context.Context) ([]string, error) {
		return h.store.Friends(ctx, userID)
	})
	if err != nil {
		respondStoreError(w, r, err, "User not found")
		return
	}
	if friends == nil {
		friends = []string{}
	}

	respondSuccess(w, models.FriendsResponse{UserID: userID, Friends: friends}, start)
}

// LatestRun returns the summary of the most recent pipeline run.
//
// GET /api/v1/runs/latest
func (h *Handler) LatestRun(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	run, err := read(r.Context(), h, h.store.LatestRun)
	if err != nil {
		respondStoreError(w, r, err, "No pipeline run recorded")
		return
	}

	respondSuccess(w, run, start)
}
