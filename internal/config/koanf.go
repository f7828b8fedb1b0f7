// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"cadence.yaml",
	"cadence.yml",
	"/etc/cadence/config.yaml",
	"/etc/cadence/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// envPrefix is stripped from environment variables before mapping.
const envPrefix = "CADENCE_"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:    DriverDuckDB,
			Path:      "/data/cadence.duckdb",
			Threads:   0, // 0 = use runtime.NumCPU()
			MaxMemory: "1GB",
		},
		Recommend: RecommendConfig{
			ListLength: 10,
			Folds:      3,
			Grid: GridConfig{
				Epochs:          []int{5, 10},
				LearningRates:   []float64{0.002, 0.005},
				Regularizations: []float64{0.4, 0.6},
			},
			Factors:    100,
			InitStdDev: 0.1,
			Seed:       42,
			Workers:    0, // 0 = use GOMAXPROCS
			Clip:       false,
			Fallback: FallbackConfig{
				Dedup:            "none",
				RestrictToUnseen: false,
			},
			PersistMode: "replace",
		},
		Checkpoint: CheckpointConfig{
			Enabled:        true,
			Path:           "/data/checkpoints",
			RetainVersions: 3,
		},
		Events: EventsConfig{
			Enabled:            false, // opt-in
			URL:                "nats://127.0.0.1:4222",
			EmbeddedServer:     true,
			Subject:            "playlists.updated",
			BreakerMaxFailures: 5,
			BreakerTimeout:     30 * time.Second,
		},
		Schedule: ScheduleConfig{
			Interval:     24 * time.Hour,
			RunOnStartup: true,
			Timeout:      30 * time.Minute,
		},
		Server: ServerConfig{
			Port:            8857,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CacheTTL:        30 * time.Second,
			CacheSize:       1024,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any mapped setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Environment variables (highest priority)
	// CADENCE_LIST_LENGTH -> recommend.list_length
	if err := k.Load(env.Provider(envPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"recommend.grid.epochs",
	"recommend.grid.learning_rates",
	"recommend.grid.regularizations",
	"server.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps CADENCE_-prefixed variable names (prefix included,
// lower-cased) to koanf paths.
var envMappings = map[string]string{
	// Database
	"cadence_db_driver":     "database.driver",
	"cadence_db_path":       "database.path",
	"cadence_db_threads":    "database.threads",
	"cadence_db_max_memory": "database.max_memory",

	// Pipeline
	"cadence_list_length":                 "recommend.list_length",
	"cadence_folds":                       "recommend.folds",
	"cadence_grid_epochs":                 "recommend.grid.epochs",
	"cadence_grid_learning_rates":         "recommend.grid.learning_rates",
	"cadence_grid_regularizations":        "recommend.grid.regularizations",
	"cadence_factors":                     "recommend.factors",
	"cadence_init_std_dev":                "recommend.init_std_dev",
	"cadence_seed":                        "recommend.seed",
	"cadence_workers":                     "recommend.workers",
	"cadence_clip":                        "recommend.clip",
	"cadence_fallback_dedup":              "recommend.fallback.dedup",
	"cadence_fallback_restrict_to_unseen": "recommend.fallback.restrict_to_unseen",
	"cadence_persist_mode":                "recommend.persist_mode",

	// Checkpoints
	"cadence_checkpoint_enabled":   "checkpoint.enabled",
	"cadence_checkpoint_path":      "checkpoint.path",
	"cadence_checkpoint_in_memory": "checkpoint.in_memory",
	"cadence_checkpoint_retain":    "checkpoint.retain_versions",

	// Events
	"cadence_events_enabled":       "events.enabled",
	"cadence_nats_url":             "events.url",
	"cadence_nats_embedded":        "events.embedded_server",
	"cadence_events_subject":       "events.subject",
	"cadence_breaker_max_failures": "events.breaker_max_failures",
	"cadence_breaker_timeout":      "events.breaker_timeout",

	// Schedule
	"cadence_schedule_interval":       "schedule.interval",
	"cadence_schedule_run_on_startup": "schedule.run_on_startup",
	"cadence_schedule_timeout":        "schedule.timeout",

	// Server
	"cadence_http_port":         "server.port",
	"cadence_http_host":         "server.host",
	"cadence_http_timeout":      "server.timeout",
	"cadence_cors_origins":      "server.cors_origins",
	"cadence_rate_limit_reqs":   "server.rate_limit_reqs",
	"cadence_rate_limit_window": "server.rate_limit_window",
	"cadence_cache_ttl":         "server.cache_ttl",
	"cadence_cache_size":        "server.cache_size",

	// Logging
	"cadence_log_level":  "logging.level",
	"cadence_log_format": "logging.format",
	"cadence_log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - CADENCE_LIST_LENGTH -> recommend.list_length
//   - CADENCE_DB_PATH -> database.path
//   - CADENCE_NATS_URL -> events.url
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}

	// Unmapped keys are skipped so stray variables cannot pollute config.
	return ""
}
