// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package config

import (
	"time"

	"github.com/tomtom215/cadence/internal/recommend"
)

// Config holds all application configuration loaded from defaults, an
// optional YAML file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in values matching the reference pipeline
//  2. Config File: Optional YAML config file (cadence.yaml)
//  3. Environment Variables: CADENCE_* overrides
//
// Configuration Categories:
//
//  1. Storage:
//     - Database: relational store for interactions, edges, songs and playlists
//     - Checkpoint: badger store for trained model versions
//
//  2. Pipeline:
//     - Recommend: list length, grid, folds, seed, fallback and persist policies
//     - Schedule: retraining interval and per-run timeout
//
//  3. Surfaces:
//     - Events: NATS publication of playlists.updated
//     - Server: HTTP read API
//
//  4. Observability:
//     - Logging: Log levels and output formats
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//	db, err := database.New(&cfg.Database)
//	p := pipeline.New(db, cfg.Recommend.ToRecommendConfig(), ...)
type Config struct {
	Database   DatabaseConfig   `koanf:"database"`
	Recommend  RecommendConfig  `koanf:"recommend"`
	Checkpoint CheckpointConfig `koanf:"checkpoint"`
	Events     EventsConfig     `koanf:"events"`
	Schedule   ScheduleConfig   `koanf:"schedule"`
	Server     ServerConfig     `koanf:"server"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// Database drivers.
const (
	DriverDuckDB = "duckdb"
	DriverSQLite = "sqlite"
)

// DatabaseConfig holds relational store settings.
type DatabaseConfig struct {
	// Driver selects the SQL backend: duckdb or sqlite.
	// Default: duckdb
	Driver string `koanf:"driver" validate:"oneof=duckdb sqlite"`

	// Path is the database file, or ":memory:" for an in-process database.
	Path string `koanf:"path" validate:"required"`

	// Threads is the DuckDB thread count (0 = use NumCPU). Ignored by sqlite.
	Threads int `koanf:"threads" validate:"gte=0"`

	// MaxMemory is the DuckDB memory limit, e.g. "2GB". Ignored by sqlite.
	MaxMemory string `koanf:"max_memory"`
}

// RecommendConfig holds the pipeline tunables.
// See recommend.Config for semantics.
type RecommendConfig struct {
	ListLength  int            `koanf:"list_length" validate:"min=1,max=1000"`
	Folds       int            `koanf:"folds" validate:"min=2"`
	Grid        GridConfig     `koanf:"grid"`
	Factors     int            `koanf:"factors" validate:"min=1"`
	InitStdDev  float64        `koanf:"init_std_dev" validate:"gte=0"`
	Seed        int64          `koanf:"seed"`
	Workers     int            `koanf:"workers" validate:"gte=0"`
	Clip        bool           `koanf:"clip"`
	Fallback    FallbackConfig `koanf:"fallback"`
	PersistMode string         `koanf:"persist_mode" validate:"persistmode"`
}

// GridConfig is the hyperparameter search space.
type GridConfig struct {
	Epochs          []int     `koanf:"epochs" validate:"min=1,dive,min=1"`
	LearningRates   []float64 `koanf:"learning_rates" validate:"min=1,dive,gt=0"`
	Regularizations []float64 `koanf:"regularizations" validate:"min=1,dive,gte=0"`
}

// FallbackConfig controls the social backfill.
type FallbackConfig struct {
	Dedup            string `koanf:"dedup" validate:"dedup"`
	RestrictToUnseen bool   `koanf:"restrict_to_unseen"`
}

// CheckpointConfig holds model checkpoint settings.
type CheckpointConfig struct {
	// Enabled saves each trained model before prediction.
	// Default: true
	Enabled bool `koanf:"enabled"`

	// Path is the badger directory.
	// Default: /data/checkpoints
	Path string `koanf:"path"`

	// InMemory keeps checkpoints in memory only (tests, ephemeral runs).
	InMemory bool `koanf:"in_memory"`

	// RetainVersions is how many model versions to keep after each save.
	// 0 keeps every version.
	// Default: 3
	RetainVersions int `koanf:"retain_versions" validate:"gte=0"`
}

// EventsConfig holds playlist event publication settings.
type EventsConfig struct {
	// Enabled publishes playlists.updated after every persisted run.
	// Default: false
	Enabled bool `koanf:"enabled"`

	// URL is the NATS server connection URL.
	// Default: nats://127.0.0.1:4222
	URL string `koanf:"url"`

	// EmbeddedServer starts an in-process NATS server bound to URL's port.
	EmbeddedServer bool `koanf:"embedded_server"`

	// Subject is the NATS subject playlist events are published to.
	Subject string `koanf:"subject"`

	// BreakerMaxFailures opens the circuit after this many consecutive failures.
	BreakerMaxFailures uint32 `koanf:"breaker_max_failures" validate:"min=1"`

	// BreakerTimeout is how long the circuit stays open before probing.
	BreakerTimeout time.Duration `koanf:"breaker_timeout"`
}

// ScheduleConfig controls supervised retraining.
type ScheduleConfig struct {
	// Interval between pipeline runs. 0 disables periodic runs.
	// Default: 24h
	Interval time.Duration `koanf:"interval" validate:"gte=0"`

	// RunOnStartup runs the pipeline as soon as the service starts.
	// Default: true
	RunOnStartup bool `koanf:"run_on_startup"`

	// Timeout bounds a single run.
	// Default: 30m
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs" validate:"gte=0"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	// CacheTTL is how long playlist reads are cached. Zero disables caching.
	CacheTTL  time.Duration `koanf:"cache_ttl" validate:"gte=0"`
	CacheSize int           `koanf:"cache_size" validate:"gte=0"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// JSON is recommended for production (structured, machine-parseable).
	// Console is human-readable for development.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes file:line in log output.
	// Default: false
	Caller bool `koanf:"caller"`
}

// ToRecommendConfig converts the loaded settings to the pipeline's config type.
func (r *RecommendConfig) ToRecommendConfig() *recommend.Config {
	return &recommend.Config{
		ListLength: r.ListLength,
		Folds:      r.Folds,
		Grid: recommend.GridConfig{
			Epochs:          append([]int(nil), r.Grid.Epochs...),
			LearningRates:   append([]float64(nil), r.Grid.LearningRates...),
			Regularizations: append([]float64(nil), r.Grid.Regularizations...),
		},
		Factors:    r.Factors,
		InitStdDev: r.InitStdDev,
		Seed:       r.Seed,
		Workers:    r.Workers,
		Clip:       r.Clip,
		Fallback: recommend.FallbackConfig{
			Dedup:            recommend.DedupPolicy(r.Fallback.Dedup),
			RestrictToUnseen: r.Fallback.RestrictToUnseen,
		},
		PersistMode: recommend.PersistMode(r.PersistMode),
	}
}

// Load reads configuration using LoadWithKoanf.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
