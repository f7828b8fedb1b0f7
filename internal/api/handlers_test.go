// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cadence/internal/database"
	"github.com/tomtom215/cadence/internal/models"
	"github.com/tomtom215/cadence/internal/recommend"
	"github.com/tomtom215/cadence/internal/recommend/pipeline"
)

// fakeStore is an in-memory Store.
type fakeStore struct {
	mu        sync.Mutex
	playlists map[string][]recommend.PlaylistEntry
	friends   map[string][]string
	latest    *models.RunSummary
	err       error
	pingErr   error
	lastLimit int
	calls     int
}

func newFakeStore() *fakeStore {
	entries := make([]recommend.PlaylistEntry, 0, 12)
	for i := 1; i <= 12; i++ {
		entries = append(entries, recommend.PlaylistEntry{
			Rank:       i,
			SongID:     "s" + string(rune('a'+i-1)),
			SongName:   "Song",
			ArtistName: "Artist",
			Score:      5 - float64(i)/10,
			Source:     recommend.SourceDirect.String(),
		})
	}
	return &fakeStore{
		playlists: map[string][]recommend.PlaylistEntry{"alice": entries},
		friends:   map[string][]string{"alice": {"bob", "carol"}},
		latest: &models.RunSummary{
			RunID:  "run-1",
			Status: models.RunStatusSucceeded,
			RMSE:   0.91,
		},
	}
}

func (f *fakeStore) Playlist(_ context.Context, userID string, limit int) (string, []recommend.PlaylistEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastLimit = limit
	if f.err != nil {
		return "", nil, f.err
	}
	entries, ok := f.playlists[userID]
	if !ok {
		return "", nil, database.ErrNotFound
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return "run-1", entries, nil
}

func (f *fakeStore) Friends(_ context.Context, userID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.friends[userID], nil
}

func (f *fakeStore) LatestRun(context.Context) (*models.RunSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.latest == nil {
		return nil, database.ErrNotFound
	}
	return f.latest, nil
}

func (f *fakeStore) Ping(context.Context) error {
	return f.pingErr
}

type fakeMonitor struct {
	running bool
	last    *pipeline.RunStats
}

func (m *fakeMonitor) Running() bool               { return m.running }
func (m *fakeMonitor) LastRun() *pipeline.RunStats { return m.last }

// envelope mirrors models.APIResponse with raw data for per-test decoding.
type envelope struct {
	Status string           `json:"status"`
	Data   json.RawMessage  `json:"data"`
	Error  *models.APIError `json:"error"`
}

func testHandlerConfig() HandlerConfig {
	cfg := DefaultHandlerConfig()
	cfg.MaxLimit = 10
	cfg.Breaker.FailureThreshold = 2
	cfg.Breaker.Timeout = time.Hour
	cfg.CacheTTL = 0
	return cfg
}

func newTestServer(t *testing.T, store Store, runs RunMonitor) http.Handler {
	t.Helper()
	mc := DefaultChiMiddlewareConfig()
	mc.RateLimitDisabled = true
	return NewRouter(NewHandler(store, runs, testHandlerConfig()), mc).SetupChi()
}

func doGet(t *testing.T, h http.Handler, target string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %s: %v (body %q)", target, err, rec.Body.String())
	}
	return rec, env
}

func TestPlaylist(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		target      string
		wantStatus  int
		wantCode    string
		wantEntries int
		wantLimit   int
	}{
		{name: "default limit", target: "/api/v1/users/alice/playlist", wantStatus: http.StatusOK, wantEntries: 10, wantLimit: 10},
		{name: "explicit limit", target: "/api/v1/users/alice/playlist?limit=3", wantStatus: http.StatusOK, wantEntries: 3, wantLimit: 3},
		{name: "limit capped", target: "/api/v1/users/alice/playlist?limit=500", wantStatus: http.StatusOK, wantEntries: 10, wantLimit: 10},
		{name: "zero limit", target: "/api/v1/users/alice/playlist?limit=0", wantStatus: http.StatusBadRequest, wantCode: models.ErrCodeValidation},
		{name: "non-integer limit", target: "/api/v1/users/alice/playlist?limit=ten", wantStatus: http.StatusBadRequest, wantCode: models.ErrCodeValidation},
		{name: "invalid user id", target: "/api/v1/users/bad%20id/playlist", wantStatus: http.StatusBadRequest, wantCode: models.ErrCodeInvalidUserID},
		{name: "unknown user", target: "/api/v1/users/nobody/playlist", wantStatus: http.StatusNotFound, wantCode: models.ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := newFakeStore()
			rec, env := doGet(t, newTestServer(t, store, nil), tt.target)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantCode != "" {
				if env.Error == nil || env.Error.Code != tt.wantCode {
					t.Fatalf("error = %+v, want code %s", env.Error, tt.wantCode)
				}
				return
			}

			var got models.PlaylistResponse
			if err := json.Unmarshal(env.Data, &got); err != nil {
				t.Fatalf("decode data: %v", err)
			}
			if got.UserID != "alice" || got.RunID != "run-1" {
				t.Errorf("user/run = %s/%s, want alice/run-1", got.UserID, got.RunID)
			}
			if len(got.Entries) != tt.wantEntries {
				t.Errorf("entries = %d, want %d", len(got.Entries), tt.wantEntries)
			}
			if store.lastLimit != tt.wantLimit {
				t.Errorf("store limit = %d, want %d", store.lastLimit, tt.wantLimit)
			}
			for i, e := range got.Entries {
				if e.Rank != i+1 {
					t.Errorf("entries[%d].Rank = %d, want %d", i, e.Rank, i+1)
				}
			}
		})
	}
}

func TestFriends(t *testing.T) {
	t.Parallel()

	h := newTestServer(t, newFakeStore(), nil)

	t.Run("with friends", func(t *testing.T) {
		t.Parallel()
		rec, env := doGet(t, h, "/api/v1/users/alice/friends")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var got models.FriendsResponse
		if err := json.Unmarshal(env.Data, &got); err != nil {
			t.Fatalf("decode data: %v", err)
		}
		if len(got.Friends) != 2 || got.Friends[0] != "bob" {
			t.Errorf("friends = %v, want [bob carol]", got.Friends)
		}
	})

	t.Run("no friends is an empty list", func(t *testing.T) {
		t.Parallel()
		rec, env := doGet(t, h, "/api/v1/users/dave/friends")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if string(env.Data) != `{"user_id":"dave","friends":[]}` {
			t.Errorf("data = %s", env.Data)
		}
	})
}

func TestLatestRun(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	rec, env := doGet(t, newTestServer(t, store, nil), "/api/v1/runs/latest")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got models.RunSummary
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if got.RunID != "run-1" || got.RMSE != 0.91 {
		t.Errorf("run = %+v", got)
	}

	empty := newFakeStore()
	empty.latest = nil
	rec, env = doGet(t, newTestServer(t, empty, nil), "/api/v1/runs/latest")
	if rec.Code != http.StatusNotFound || env.Error.Code != models.ErrCodeNotFound {
		t.Errorf("status = %d, error = %+v, want 404 NOT_FOUND", rec.Code, env.Error)
	}
}

func TestStoreFailureOpensBreaker(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.err = errors.New("disk on fire")
	h := newTestServer(t, store, nil)

	for i := 0; i < 2; i++ {
		rec, env := doGet(t, h, "/api/v1/users/alice/playlist")
		if rec.Code != http.StatusInternalServerError || env.Error.Code != models.ErrCodeDatabase {
			t.Fatalf("request %d: status = %d, error = %+v, want 500 DATABASE_ERROR", i, rec.Code, env.Error)
		}
	}

	rec, env := doGet(t, h, "/api/v1/users/alice/playlist")
	if rec.Code != http.StatusServiceUnavailable || env.Error.Code != models.ErrCodeServiceUnavailable {
		t.Fatalf("status = %d, error = %+v, want 503 SERVICE_UNAVAILABLE", rec.Code, env.Error)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After on open breaker")
	}
	if store.calls != 2 {
		t.Errorf("store calls = %d, want 2 (open breaker must not reach the store)", store.calls)
	}
}

func TestNotFoundDoesNotTripBreaker(t *testing.T) {
	t.Parallel()

	h := newTestServer(t, newFakeStore(), nil)
	for i := 0; i < 5; i++ {
		rec, _ := doGet(t, h, "/api/v1/users/nobody/playlist")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("request %d: status = %d, want 404", i, rec.Code)
		}
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	finished := time.Date(2026, 10, 1, 3, 0, 0, 0, time.UTC)
	runs := &fakeMonitor{
		running: true,
		last:    &pipeline.RunStats{RunID: "run-7", Outcome: "success", FinishedAt: finished},
	}

	t.Run("healthy", func(t *testing.T) {
		t.Parallel()
		rec, env := doGet(t, newTestServer(t, newFakeStore(), runs), "/api/v1/health")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var got models.HealthStatus
		if err := json.Unmarshal(env.Data, &got); err != nil {
			t.Fatalf("decode data: %v", err)
		}
		if got.Status != models.HealthHealthy || !got.DatabaseConnected {
			t.Errorf("status = %s, db = %v, want healthy/true", got.Status, got.DatabaseConnected)
		}
		if !got.PipelineRunning || got.LastRunID != "run-7" || got.LastRunOutcome != "success" {
			t.Errorf("pipeline fields = %+v", got)
		}
		if got.LastRunAt == nil || !got.LastRunAt.Equal(finished) {
			t.Errorf("LastRunAt = %v, want %v", got.LastRunAt, finished)
		}
	})

	t.Run("degraded without database", func(t *testing.T) {
		t.Parallel()
		store := newFakeStore()
		store.pingErr = errors.New("closed")
		h := newTestServer(t, store, nil)

		_, env := doGet(t, h, "/api/v1/health")
		var got models.HealthStatus
		if err := json.Unmarshal(env.Data, &got); err != nil {
			t.Fatalf("decode data: %v", err)
		}
		if got.Status != models.HealthDegraded {
			t.Errorf("status = %s, want degraded", got.Status)
		}

		rec, env := doGet(t, h, "/api/v1/health/ready")
		if rec.Code != http.StatusServiceUnavailable || env.Error.Code != models.ErrCodeServiceUnavailable {
			t.Errorf("ready status = %d, want 503", rec.Code)
		}

		rec, _ = doGet(t, h, "/api/v1/health/live")
		if rec.Code != http.StatusOK {
			t.Errorf("live status = %d, want 200", rec.Code)
		}
	})
}

func TestRouter_RequestIDAndUnknownRoute(t *testing.T) {
	t.Parallel()

	rec, env := doGet(t, newTestServer(t, newFakeStore(), nil), "/api/v1/nope")
	if rec.Code != http.StatusNotFound || env.Error == nil || env.Error.Code != models.ErrCodeNotFound {
		t.Errorf("status = %d, error = %+v, want 404 NOT_FOUND", rec.Code, env.Error)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}
}

func TestPlaylistCache(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	cfg := testHandlerConfig()
	cfg.CacheTTL = time.Minute
	handler := NewHandler(store, nil, cfg)
	mc := DefaultChiMiddlewareConfig()
	mc.RateLimitDisabled = true
	srv := NewRouter(handler, mc).SetupChi()

	for i := 0; i < 3; i++ {
		if rec, _ := doGet(t, srv, "/api/v1/users/alice/playlist?limit=5"); rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
	}
	if store.calls != 1 {
		t.Errorf("store calls = %d, want 1 with a warm cache", store.calls)
	}

	// A different limit is a different cache key.
	doGet(t, srv, "/api/v1/users/alice/playlist?limit=3")
	if store.calls != 2 {
		t.Errorf("store calls = %d, want 2", store.calls)
	}

	handler.OnRunCompleted(&pipeline.RunStats{RunID: "run-2"})
	doGet(t, srv, "/api/v1/users/alice/playlist?limit=5")
	if store.calls != 3 {
		t.Errorf("store calls = %d, want 3 after a completed run", store.calls)
	}
}

func TestPlaylistCache_ErrorsAreNotCached(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	cfg := testHandlerConfig()
	cfg.CacheTTL = time.Minute
	mc := DefaultChiMiddlewareConfig()
	mc.RateLimitDisabled = true
	srv := NewRouter(NewHandler(store, nil, cfg), mc).SetupChi()

	if rec, _ := doGet(t, srv, "/api/v1/users/zed/playlist"); rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	doGet(t, srv, "/api/v1/users/zed/playlist")
	if store.calls != 2 {
		t.Errorf("store calls = %d, want 2 (misses must not be cached)", store.calls)
	}
}
