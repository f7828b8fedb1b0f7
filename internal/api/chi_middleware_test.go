// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tomtom215/cadence/internal/config"
	"github.com/tomtom215/cadence/internal/models"
)

func TestMiddlewareConfigFromServer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		server       *config.ServerConfig
		wantDisabled bool
		wantWindow   time.Duration
		wantOrigins  int
	}{
		{name: "nil uses defaults", server: nil, wantWindow: time.Minute},
		{
			name:        "explicit values",
			server:      &config.ServerConfig{CORSOrigins: []string{"https://a.example"}, RateLimitReqs: 5, RateLimitWindow: 10 * time.Second},
			wantWindow:  10 * time.Second,
			wantOrigins: 1,
		},
		{
			name:         "zero budget disables limiting",
			server:       &config.ServerConfig{RateLimitReqs: 0},
			wantDisabled: true,
			wantWindow:   time.Minute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := MiddlewareConfigFromServer(tt.server)
			if got.RateLimitDisabled != tt.wantDisabled {
				t.Errorf("RateLimitDisabled = %v, want %v", got.RateLimitDisabled, tt.wantDisabled)
			}
			if got.RateLimitWindow != tt.wantWindow {
				t.Errorf("RateLimitWindow = %v, want %v", got.RateLimitWindow, tt.wantWindow)
			}
			if len(got.CORSAllowedOrigins) != tt.wantOrigins {
				t.Errorf("origins = %v, want %d", got.CORSAllowedOrigins, tt.wantOrigins)
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	mc := DefaultChiMiddlewareConfig()
	mc.RateLimitRequests = 2
	mc.RateLimitWindow = time.Minute
	h := NewRouter(NewHandler(newFakeStore(), nil, testHandlerConfig()), mc).SetupChi()

	for i := 0; i < 2; i++ {
		rec, _ := doGet(t, h, "/api/v1/users/alice/friends")
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, rec.Code)
		}
	}

	rec, env := doGet(t, h, "/api/v1/users/alice/friends")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if env.Error == nil || env.Error.Code != models.ErrCodeRateLimited {
		t.Errorf("error = %+v, want %s", env.Error, models.ErrCodeRateLimited)
	}

	// Health probes sit outside the limiter.
	rec, _ = doGet(t, h, "/api/v1/health/live")
	if rec.Code != http.StatusOK {
		t.Errorf("live status = %d, want 200", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()

	mc := DefaultChiMiddlewareConfig()
	mc.CORSAllowedOrigins = []string{"https://ui.example"}
	h := NewRouter(NewHandler(newFakeStore(), nil, testHandlerConfig()), mc).SetupChi()

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/users/alice/playlist", nil)
	req.Header.Set("Origin", "https://ui.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://ui.example" {
		t.Errorf("Access-Control-Allow-Origin = %q, want https://ui.example", got)
	}
}
