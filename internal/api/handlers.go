// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package api

import (
	"context"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/cadence/internal/cache"
	"github.com/tomtom215/cadence/internal/logging"
	"github.com/tomtom215/cadence/internal/models"
	"github.com/tomtom215/cadence/internal/recommend"
	"github.com/tomtom215/cadence/internal/recommend/pipeline"
)

// Version is reported by the health endpoint.
var Version = "dev"

// Store is the read side of the recommendation store.
// *database.DB satisfies it.
type Store interface {
	Playlist(ctx context.Context, userID string, limit int) (string, []recommend.PlaylistEntry, error)
	Friends(ctx context.Context, userID string) ([]string, error)
	LatestRun(ctx context.Context) (*models.RunSummary, error)
	Ping(ctx context.Context) error
}

// RunMonitor exposes pipeline state to the health endpoints.
// *pipeline.Pipeline satisfies it.
type RunMonitor interface {
	Running() bool
	LastRun() *pipeline.RunStats
}

// HandlerConfig holds handler tunables.
type HandlerConfig struct {
	// DefaultLimit is the playlist length when no limit is requested.
	DefaultLimit int

	// MaxLimit caps the limit query parameter.
	MaxLimit int

	// QueryTimeout bounds each store call.
	QueryTimeout time.Duration

	// Breaker configures the circuit breaker around store reads.
	Breaker BreakerConfig

	// CacheTTL is how long playlist and friends reads are cached.
	// Zero disables the cache.
	CacheTTL time.Duration

	// CacheSize bounds the number of cached responses.
	CacheSize int
}

// DefaultHandlerConfig returns the handler defaults.
func DefaultHandlerConfig() HandlerConfig {
	return HandlerConfig{
		DefaultLimit: 10,
		MaxLimit:     100,
		QueryTimeout: 10 * time.Second,
		Breaker:      DefaultBreakerConfig(),
		CacheTTL:     30 * time.Second,
		CacheSize:    cache.DefaultCapacity,
	}
}

// Handler serves the read API.
//
// Handler methods are split across files:
//   - handlers.go: Handler struct and constructor
//   - handlers_helpers.go: response helpers and parameter parsing
//   - handlers_health.go: health endpoints
//   - handlers_playlist.go: playlist, friends and run endpoints
type Handler struct {
	store     Store
	runs      RunMonitor
	config    HandlerConfig
	breaker   *gobreaker.CircuitBreaker[any]
	cache     *cache.LRU[any]
	startTime time.Time
}

// NewHandler creates a handler. runs may be nil when no pipeline runs in the
// same process (the serve command).
func NewHandler(store Store, runs RunMonitor, cfg HandlerConfig) *Handler {
	defaults := DefaultHandlerConfig()
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = defaults.DefaultLimit
	}
	if cfg.MaxLimit < cfg.DefaultLimit {
		cfg.MaxLimit = max(defaults.MaxLimit, cfg.DefaultLimit)
	}
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = defaults.QueryTimeout
	}

	h := &Handler{
		store:     store,
		runs:      runs,
		config:    cfg,
		breaker:   NewStoreBreaker(cfg.Breaker),
		startTime: time.Now(),
	}
	if cfg.CacheTTL > 0 {
		h.cache = cache.NewLRU[any](cfg.CacheSize, cfg.CacheTTL)
	}
	return h
}

// ClearCache drops every cached read. Safe for concurrent use.
func (h *Handler) ClearCache() {
	if h.cache != nil {
		h.cache.Clear()
		logging.Debug().Msg("API read cache cleared")
	}
}

// OnRunCompleted is invoked after each successful pipeline run so readers
// see the new playlists immediately instead of after the cache TTL.
func (h *Handler) OnRunCompleted(stats *pipeline.RunStats) {
	h.ClearCache()
	if stats != nil {
		logging.Info().Str("run_id", stats.RunID).Msg("Playlists refreshed")
	}
}
