// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package algorithms

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/cadence/internal/recommend"
)

// Fold is one train/test partition of a cross-validation split.
type Fold struct {
	Train []recommend.NormalizedInteraction
	Test  []recommend.NormalizedInteraction
}

// KFold shuffles data with the seed and cuts it into k contiguous test
// folds whose sizes differ by at most one. Each fold trains on the rest.
func KFold(data []recommend.NormalizedInteraction, k int, seed int64) ([]Fold, error) {
	if k < 2 {
		return nil, &recommend.TrainingError{
			Reason: fmt.Sprintf("folds must be at least 2, got %d", k),
		}
	}
	if k > len(data) {
		return nil, &recommend.TrainingError{
			Reason: fmt.Sprintf("folds (%d) exceed the number of samples (%d)", k, len(data)),
		}
	}

	order := make([]int, len(data))
	for i := range order {
		order[i] = i
	}
	//nolint:gosec // G404: math/rand is acceptable for fold assignment (not security)
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	folds := make([]Fold, k)
	start := 0
	for f := 0; f < k; f++ {
		size := len(data) / k
		if f < len(data)%k {
			size++
		}
		stop := start + size

		fold := Fold{
			Train: make([]recommend.NormalizedInteraction, 0, len(data)-size),
			Test:  make([]recommend.NormalizedInteraction, 0, size),
		}
		for pos, idx := range order {
			if pos >= start && pos < stop {
				fold.Test = append(fold.Test, data[idx])
			} else {
				fold.Train = append(fold.Train, data[idx])
			}
		}
		folds[f] = fold
		start = stop
	}

	return folds, nil
}

// Accuracy holds error measures on a test set.
type Accuracy struct {
	RMSE float64 `json:"rmse"`
	MAE  float64 `json:"mae"`
}

// Evaluate scores the model against held-out samples.
func Evaluate(m *LatentModel, test []recommend.NormalizedInteraction) Accuracy {
	if len(test) == 0 {
		return Accuracy{}
	}

	var sq, abs float64
	for _, t := range test {
		est, _ := m.Estimate(t.UserID, t.SongID)
		diff := t.Score - est
		sq += diff * diff
		abs += math.Abs(diff)
	}

	n := float64(len(test))
	return Accuracy{
		RMSE: math.Sqrt(sq / n),
		MAE:  abs / n,
	}
}

// GridSearchConfig configures GridSearch.
type GridSearchConfig struct {
	Grid       recommend.GridConfig
	Folds      int
	Factors    int
	InitStdDev float64
	Seed       int64

	// Workers bounds concurrent fits. 0 uses GOMAXPROCS.
	Workers int
}

// GridPoint is the cross-validated accuracy of one parameter combination.
type GridPoint struct {
	Params   Params   `json:"params"`
	Accuracy Accuracy `json:"accuracy"`
}

// GridResult is the outcome of a grid search.
type GridResult struct {
	// Best is the combination with the lowest mean RMSE.
	Best GridPoint `json:"best"`

	// Points lists every combination in grid order.
	Points []GridPoint `json:"points"`
}

// Combinations expands the grid in epochs-major, learning-rate,
// regularization order.
func Combinations(g recommend.GridConfig) []Params {
	out := make([]Params, 0, g.Size())
	for _, epochs := range g.Epochs {
		for _, lr := range g.LearningRates {
			for _, reg := range g.Regularizations {
				out = append(out, Params{Epochs: epochs, LearningRate: lr, Regularization: reg})
			}
		}
	}
	return out
}

// GridSearch cross-validates every grid combination and returns the one with
// the lowest mean RMSE. Ties go to the earliest combination in grid order.
//
// Every (combination, fold) fit runs as its own task on a bounded pool. Each
// fit uses the same seed, so results do not depend on scheduling.
func GridSearch(ctx context.Context, data []recommend.NormalizedInteraction, cfg GridSearchConfig) (*GridResult, error) {
	combos := Combinations(cfg.Grid)
	if len(combos) == 0 {
		return nil, &recommend.TrainingError{Reason: "hyperparameter grid is empty"}
	}

	folds, err := KFold(data, cfg.Folds, cfg.Seed)
	if err != nil {
		return nil, err
	}

	scores := make([][]Accuracy, len(combos))
	for c := range scores {
		scores[c] = make([]Accuracy, len(folds))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount(cfg.Workers))

	for c, params := range combos {
		for f, fold := range folds {
			g.Go(func() error {
				m, err := fitLatent(gctx, fold.Train, SVDConfig{
					Factors:    cfg.Factors,
					InitStdDev: cfg.InitStdDev,
					Params:     params,
					Seed:       cfg.Seed,
				})
				if err != nil {
					return fmt.Errorf("fit %+v fold %d: %w", params, f, err)
				}
				scores[c][f] = Evaluate(m, fold.Test)
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &GridResult{Points: make([]GridPoint, len(combos))}
	found := false
	for c, params := range combos {
		var acc Accuracy
		for _, s := range scores[c] {
			acc.RMSE += s.RMSE
			acc.MAE += s.MAE
		}
		acc.RMSE /= float64(len(folds))
		acc.MAE /= float64(len(folds))

		point := GridPoint{Params: params, Accuracy: acc}
		result.Points[c] = point
		if !finite(acc.RMSE) {
			continue
		}
		if !found || acc.RMSE < result.Best.Accuracy.RMSE {
			result.Best = point
			found = true
		}
	}

	if !found {
		return nil, &recommend.TrainingError{Reason: "every hyperparameter combination diverged"}
	}
	return result, nil
}

// TrainResult is a fitted model plus the search that selected its parameters.
type TrainResult struct {
	Model  *LatentModel
	Search *GridResult
}

// Train runs the grid search and refits the winning parameters on all data.
func Train(ctx context.Context, data []recommend.NormalizedInteraction, cfg *recommend.Config) (*TrainResult, error) {
	users, items := distinctIDs(data)
	if len(users) < 2 || len(items) < 2 {
		return nil, &recommend.TrainingError{
			Reason: "factorization needs at least 2 users and 2 items",
			Users:  len(users),
			Items:  len(items),
		}
	}

	search, err := GridSearch(ctx, data, GridSearchConfig{
		Grid:       cfg.Grid,
		Folds:      cfg.Folds,
		Factors:    cfg.Factors,
		InitStdDev: cfg.InitStdDev,
		Seed:       cfg.EffectiveSeed(),
		Workers:    cfg.Workers,
	})
	if err != nil {
		return nil, fmt.Errorf("grid search: %w", err)
	}

	svd := NewSVD(SVDConfig{
		Factors:    cfg.Factors,
		InitStdDev: cfg.InitStdDev,
		Params:     search.Best.Params,
		Seed:       cfg.EffectiveSeed(),
	})
	model, err := svd.Fit(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("final fit: %w", err)
	}

	return &TrainResult{Model: model, Search: search}, nil
}

// finite reports whether v is neither NaN nor infinite.
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
