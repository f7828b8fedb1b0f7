// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package recommend

import (
	"fmt"
)

// DedupPolicy controls whether fallback entries may repeat songs.
type DedupPolicy string

const (
	// DedupNone appends fallback entries without any duplicate check.
	DedupNone DedupPolicy = "none"

	// DedupAgainstDirect skips fallback songs already in the user's direct
	// entries. Two friends contributing the same song still produce two slots.
	DedupAgainstDirect DedupPolicy = "against_direct"

	// DedupAll keeps every song unique within the final list.
	DedupAll DedupPolicy = "all"
)

// Valid reports whether the policy is known.
func (p DedupPolicy) Valid() bool {
	switch p {
	case DedupNone, DedupAgainstDirect, DedupAll:
		return true
	default:
		return false
	}
}

// PersistMode selects how a run's lists are written.
type PersistMode string

const (
	// PersistReplace deletes each user's prior rows and inserts the new list
	// in the same transaction.
	PersistReplace PersistMode = "replace"

	// PersistAppend inserts a new rank sequence per run and keeps old ones.
	PersistAppend PersistMode = "append"
)

// Valid reports whether the mode is known.
func (m PersistMode) Valid() bool {
	return m == PersistReplace || m == PersistAppend
}

// Config contains all tunables of a pipeline run.
type Config struct {
	// ListLength is N, the playlist length per user.
	// Default: 10.
	ListLength int `json:"list_length"`

	// Folds is the cross-validation fold count K.
	// Default: 3.
	Folds int `json:"folds"`

	// Grid is the hyperparameter search space.
	Grid GridConfig `json:"grid"`

	// Factors is the latent dimension of user and item vectors.
	// Default: 100.
	Factors int `json:"factors"`

	// InitStdDev is the standard deviation of the initial factor values.
	// Default: 0.1.
	InitStdDev float64 `json:"init_std_dev"`

	// Seed drives every random choice (fold split, init, shuffles).
	// If zero, a fixed default seed is used.
	Seed int64 `json:"seed"`

	// Workers bounds the grid search and predictor worker pools.
	// 0 uses GOMAXPROCS.
	Workers int `json:"workers"`

	// Clip restricts predictions to [0, 1].
	// Default: false.
	Clip bool `json:"clip"`

	// Fallback controls the social backfill.
	Fallback FallbackConfig `json:"fallback"`

	// PersistMode is "replace" or "append".
	// Default: replace.
	PersistMode PersistMode `json:"persist_mode"`
}

// GridConfig is the hyperparameter grid searched by the trainer.
type GridConfig struct {
	// Epochs lists the SGD pass counts to try.
	// Default: [5, 10].
	Epochs []int `json:"epochs"`

	// LearningRates lists the SGD step sizes to try.
	// Default: [0.002, 0.005].
	LearningRates []float64 `json:"learning_rates"`

	// Regularizations lists the L2 penalties to try.
	// Default: [0.4, 0.6].
	Regularizations []float64 `json:"regularizations"`
}

// Size returns the number of grid points.
func (g GridConfig) Size() int {
	return len(g.Epochs) * len(g.LearningRates) * len(g.Regularizations)
}

// FallbackConfig controls SocialFallback.
type FallbackConfig struct {
	// Dedup is the duplicate policy for borrowed entries.
	// Default: none.
	Dedup DedupPolicy `json:"dedup"`

	// RestrictToUnseen drops borrowed songs the user already listened to or
	// that are missing from the catalog.
	// Default: false.
	RestrictToUnseen bool `json:"restrict_to_unseen"`
}

// DefaultSeed is used when Config.Seed is zero.
const DefaultSeed int64 = 42

// DefaultConfig returns the configuration matching the reference pipeline.
func DefaultConfig() *Config {
	return &Config{
		ListLength: 10,
		Folds:      3,
		Grid: GridConfig{
			Epochs:          []int{5, 10},
			LearningRates:   []float64{0.002, 0.005},
			Regularizations: []float64{0.4, 0.6},
		},
		Factors:    100,
		InitStdDev: 0.1,
		Seed:       DefaultSeed,
		Workers:    0,
		Clip:       false,
		Fallback: FallbackConfig{
			Dedup:            DedupNone,
			RestrictToUnseen: false,
		},
		PersistMode: PersistReplace,
	}
}

// Validate checks the configuration for errors.
//
//nolint:gocyclo // validation needs to check many fields
func (c *Config) Validate() error {
	if c.ListLength < 1 {
		return fmt.Errorf("recommend.list_length must be positive, got %d", c.ListLength)
	}
	if c.Folds < 2 {
		return fmt.Errorf("recommend.folds must be at least 2, got %d", c.Folds)
	}
	if c.Factors < 1 {
		return fmt.Errorf("recommend.factors must be positive, got %d", c.Factors)
	}
	if c.InitStdDev < 0 {
		return fmt.Errorf("recommend.init_std_dev must be non-negative, got %f", c.InitStdDev)
	}
	if c.Workers < 0 {
		return fmt.Errorf("recommend.workers must be non-negative, got %d", c.Workers)
	}

	if c.Grid.Size() == 0 {
		return fmt.Errorf("recommend.grid must have at least one value per parameter")
	}
	for _, e := range c.Grid.Epochs {
		if e < 1 {
			return fmt.Errorf("recommend.grid.epochs must be positive, got %d", e)
		}
	}
	for _, lr := range c.Grid.LearningRates {
		if lr <= 0 {
			return fmt.Errorf("recommend.grid.learning_rates must be positive, got %f", lr)
		}
	}
	for _, reg := range c.Grid.Regularizations {
		if reg < 0 {
			return fmt.Errorf("recommend.grid.regularizations must be non-negative, got %f", reg)
		}
	}

	if !c.Fallback.Dedup.Valid() {
		return fmt.Errorf("recommend.fallback.dedup must be one of none, against_direct, all, got %q", c.Fallback.Dedup)
	}
	if !c.PersistMode.Valid() {
		return fmt.Errorf("recommend.persist_mode must be replace or append, got %q", c.PersistMode)
	}

	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Grid = GridConfig{
		Epochs:          append([]int(nil), c.Grid.Epochs...),
		LearningRates:   append([]float64(nil), c.Grid.LearningRates...),
		Regularizations: append([]float64(nil), c.Grid.Regularizations...),
	}
	return &clone
}

// EffectiveSeed returns Seed, or DefaultSeed when Seed is zero.
func (c *Config) EffectiveSeed() int64 {
	if c.Seed == 0 {
		return DefaultSeed
	}
	return c.Seed
}
