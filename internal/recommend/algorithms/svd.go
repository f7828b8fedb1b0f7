// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package algorithms

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"github.com/tomtom215/cadence/internal/recommend"
)

// SVDConfig contains configuration for the SVD estimator.
type SVDConfig struct {
	// Factors is the dimension of the latent factor vectors.
	// Default: 100.
	Factors int

	// InitStdDev is the standard deviation of the normal distribution the
	// factors are drawn from. Biases start at zero.
	// Default: 0.1.
	InitStdDev float64

	// Params are the SGD hyperparameters.
	// Default: 20 epochs, learning rate 0.005, regularization 0.02.
	Params Params

	// Seed for reproducible training.
	// If 0, uses a default seed.
	Seed int64
}

// DefaultSVDConfig returns default SVD configuration.
func DefaultSVDConfig() SVDConfig {
	return SVDConfig{
		Factors:    100,
		InitStdDev: 0.1,
		Params: Params{
			Epochs:         20,
			LearningRate:   0.005,
			Regularization: 0.02,
		},
		Seed: recommend.DefaultSeed,
	}
}

// SVD implements biased matrix factorization trained with stochastic
// gradient descent, as popularized by Funk for the Netflix prize.
//
// The estimate for a pair is
//
//	r_ui = mu + b_u + b_i + p_u . q_i
//
// and each epoch visits every training sample once in a seeded random order,
// applying
//
//	err  = r - r_ui
//	b_u += lr * (err - reg*b_u)
//	b_i += lr * (err - reg*b_i)
//	p_u += lr * (err*q_i - reg*p_u)
//	q_i += lr * (err*p_u - reg*q_i)
type SVD struct {
	BaseAlgorithm
	config SVDConfig
	model  *LatentModel
}

// NewSVD creates a new SVD estimator with the given configuration.
func NewSVD(cfg SVDConfig) *SVD {
	def := DefaultSVDConfig()
	if cfg.Factors <= 0 {
		cfg.Factors = def.Factors
	}
	if cfg.InitStdDev < 0 {
		cfg.InitStdDev = def.InitStdDev
	}
	if cfg.Params.Epochs <= 0 {
		cfg.Params.Epochs = def.Params.Epochs
	}
	if cfg.Params.LearningRate <= 0 {
		cfg.Params.LearningRate = def.Params.LearningRate
	}
	if cfg.Params.Regularization < 0 {
		cfg.Params.Regularization = def.Params.Regularization
	}
	if cfg.Seed == 0 {
		cfg.Seed = def.Seed
	}

	return &SVD{
		BaseAlgorithm: NewBaseAlgorithm("svd"),
		config:        cfg,
	}
}

// Config returns the effective configuration.
func (s *SVD) Config() SVDConfig {
	return s.config
}

// Fit trains on the full data set. It fails with *recommend.TrainingError
// when fewer than two distinct users or items are present. A failed fit
// leaves any previous model in place.
func (s *SVD) Fit(ctx context.Context, data []recommend.NormalizedInteraction) (*LatentModel, error) {
	s.acquireTrainLock()
	defer s.releaseTrainLock()

	users, items := distinctIDs(data)
	if len(users) < 2 || len(items) < 2 {
		return nil, &recommend.TrainingError{
			Reason: "factorization needs at least 2 users and 2 items",
			Users:  len(users),
			Items:  len(items),
		}
	}

	model, err := fitLatent(ctx, data, s.config)
	if err != nil {
		return nil, err
	}

	s.model = model
	s.markTrained(model.TrainedAt)
	return model, nil
}

// Model returns the last fitted model.
func (s *SVD) Model() (*LatentModel, error) {
	s.acquirePredictLock()
	defer s.releasePredictLock()

	if !s.trained || s.model == nil {
		return nil, &recommend.ModelNotTrainedError{Model: s.name}
	}
	return s.model, nil
}

// fitLatent runs SGD over data. It enforces no minimum size so that
// cross-validation folds with a single user or item can still be evaluated.
//
//nolint:gocyclo // SGD loop with index building is inherently branchy
func fitLatent(ctx context.Context, data []recommend.NormalizedInteraction, cfg SVDConfig) (*LatentModel, error) {
	if ContextCancelled(ctx) {
		return nil, ctx.Err()
	}
	if len(data) == 0 {
		return nil, &recommend.TrainingError{Reason: "no training samples"}
	}

	users, items := distinctIDs(data)
	numUsers, numItems, numFactors := len(users), len(items), cfg.Factors

	m := &LatentModel{
		Users:       users,
		Items:       items,
		UserIndex:   indexOf(users),
		ItemIndex:   indexOf(items),
		UserBias:    make([]float64, numUsers),
		ItemBias:    make([]float64, numItems),
		UserFactors: make([][]float64, numUsers),
		ItemFactors: make([][]float64, numItems),
		Factors:     numFactors,
		Params:      cfg.Params,
		Samples:     len(data),
	}

	var sum float64
	for _, d := range data {
		sum += d.Score
	}
	m.GlobalMean = sum / float64(len(data))

	//nolint:gosec // G404: math/rand is acceptable for ML initialization (not security)
	rng := rand.New(rand.NewSource(cfg.Seed))

	for u := 0; u < numUsers; u++ {
		m.UserFactors[u] = make([]float64, numFactors)
		for f := 0; f < numFactors; f++ {
			m.UserFactors[u][f] = rng.NormFloat64() * cfg.InitStdDev
		}
	}
	for i := 0; i < numItems; i++ {
		m.ItemFactors[i] = make([]float64, numFactors)
		for f := 0; f < numFactors; f++ {
			m.ItemFactors[i][f] = rng.NormFloat64() * cfg.InitStdDev
		}
	}

	type sample struct {
		u, i  int
		score float64
	}
	samples := make([]sample, len(data))
	for k, d := range data {
		samples[k] = sample{u: m.UserIndex[d.UserID], i: m.ItemIndex[d.SongID], score: d.Score}
	}

	lr := cfg.Params.LearningRate
	reg := cfg.Params.Regularization

	for epoch := 0; epoch < cfg.Params.Epochs; epoch++ {
		if ContextCancelled(ctx) {
			return nil, ctx.Err()
		}

		rng.Shuffle(len(samples), func(a, b int) {
			samples[a], samples[b] = samples[b], samples[a]
		})

		for _, s := range samples {
			pu, qi := m.UserFactors[s.u], m.ItemFactors[s.i]
			residual := s.score - m.estimate(s.u, s.i)

			m.UserBias[s.u] += lr * (residual - reg*m.UserBias[s.u])
			m.ItemBias[s.i] += lr * (residual - reg*m.ItemBias[s.i])

			for f := 0; f < numFactors; f++ {
				puf, qif := pu[f], qi[f]
				pu[f] += lr * (residual*qif - reg*puf)
				qi[f] += lr * (residual*puf - reg*qif)
			}
		}
	}

	m.TrainedAt = time.Now()
	return m, nil
}

// distinctIDs returns the sorted distinct user and song ids.
func distinctIDs(data []recommend.NormalizedInteraction) (users, items []string) {
	us := make(map[string]struct{})
	is := make(map[string]struct{})
	for _, d := range data {
		us[d.UserID] = struct{}{}
		is[d.SongID] = struct{}{}
	}
	return sortedSet(us), sortedSet(is)
}

func sortedSet(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func indexOf(ids []string) map[string]int {
	index := make(map[string]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}
	return index
}
