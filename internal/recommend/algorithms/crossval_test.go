// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package algorithms

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/tomtom215/cadence/internal/recommend"
)

func TestKFold(t *testing.T) {
	t.Parallel()

	data := testData()

	tests := []struct {
		name      string
		k         int
		wantSizes []int
	}{
		{name: "even split", k: 3, wantSizes: []int{4, 4, 4}},
		{name: "uneven split", k: 5, wantSizes: []int{3, 3, 2, 2, 2}},
		{name: "leave one out", k: 12, wantSizes: []int{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			folds, err := KFold(data, tt.k, 42)
			if err != nil {
				t.Fatalf("KFold() error = %v", err)
			}
			if len(folds) != tt.k {
				t.Fatalf("len(folds) = %d, want %d", len(folds), tt.k)
			}

			tested := make(map[string]int)
			for i, f := range folds {
				if len(f.Test) != tt.wantSizes[i] {
					t.Errorf("fold %d test size = %d, want %d", i, len(f.Test), tt.wantSizes[i])
				}
				if len(f.Train)+len(f.Test) != len(data) {
					t.Errorf("fold %d covers %d samples, want %d", i, len(f.Train)+len(f.Test), len(data))
				}
				for _, d := range f.Test {
					tested[d.UserID+"/"+d.SongID]++
				}
			}

			if len(tested) != len(data) {
				t.Errorf("%d distinct samples tested, want %d", len(tested), len(data))
			}
			for key, n := range tested {
				if n != 1 {
					t.Errorf("sample %s tested %d times, want 1", key, n)
				}
			}
		})
	}
}

func TestKFold_Deterministic(t *testing.T) {
	t.Parallel()

	a, err := KFold(testData(), 3, 7)
	if err != nil {
		t.Fatalf("KFold() error = %v", err)
	}
	b, err := KFold(testData(), 3, 7)
	if err != nil {
		t.Fatalf("KFold() error = %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("KFold() with the same seed produced different folds")
	}
}

func TestKFold_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		k    int
	}{
		{name: "one fold", k: 1},
		{name: "more folds than samples", k: 13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := KFold(testData(), tt.k, 42)
			var te *recommend.TrainingError
			if !errors.As(err, &te) {
				t.Errorf("KFold() error = %v, want *TrainingError", err)
			}
		})
	}
}

func TestCombinations(t *testing.T) {
	t.Parallel()

	got := Combinations(recommend.GridConfig{
		Epochs:          []int{5, 10},
		LearningRates:   []float64{0.002, 0.005},
		Regularizations: []float64{0.4, 0.6},
	})

	if len(got) != 8 {
		t.Fatalf("len(Combinations()) = %d, want 8", len(got))
	}
	if got[0] != (Params{Epochs: 5, LearningRate: 0.002, Regularization: 0.4}) {
		t.Errorf("first combination = %+v", got[0])
	}
	if got[1] != (Params{Epochs: 5, LearningRate: 0.002, Regularization: 0.6}) {
		t.Errorf("second combination = %+v, want regularization to vary fastest", got[1])
	}
	if got[7] != (Params{Epochs: 10, LearningRate: 0.005, Regularization: 0.6}) {
		t.Errorf("last combination = %+v", got[7])
	}
}

func TestEvaluate(t *testing.T) {
	t.Parallel()

	m := &LatentModel{
		GlobalMean:  0.5,
		Users:       []string{"u1"},
		Items:       []string{"s1"},
		UserIndex:   map[string]int{"u1": 0},
		ItemIndex:   map[string]int{"s1": 0},
		UserBias:    []float64{0},
		ItemBias:    []float64{0},
		UserFactors: [][]float64{{0}},
		ItemFactors: [][]float64{{0}},
		Factors:     1,
	}

	acc := Evaluate(m, []recommend.NormalizedInteraction{
		{UserID: "u1", SongID: "s1", Score: 1.0},
		{UserID: "u1", SongID: "s1", Score: 0.0},
	})

	if math.Abs(acc.RMSE-0.5) > 1e-12 {
		t.Errorf("RMSE = %v, want 0.5", acc.RMSE)
	}
	if math.Abs(acc.MAE-0.5) > 1e-12 {
		t.Errorf("MAE = %v, want 0.5", acc.MAE)
	}
	if got := Evaluate(m, nil); got != (Accuracy{}) {
		t.Errorf("Evaluate(nil) = %+v, want zero", got)
	}
}

func searchConfig(workers int) GridSearchConfig {
	return GridSearchConfig{
		Grid: recommend.GridConfig{
			Epochs:          []int{5, 20},
			LearningRates:   []float64{0.005, 0.05},
			Regularizations: []float64{0.02, 0.4},
		},
		Folds:      3,
		Factors:    4,
		InitStdDev: 0.1,
		Seed:       42,
		Workers:    workers,
	}
}

func TestGridSearch(t *testing.T) {
	t.Parallel()

	result, err := GridSearch(context.Background(), testData(), searchConfig(0))
	if err != nil {
		t.Fatalf("GridSearch() error = %v", err)
	}

	if len(result.Points) != 8 {
		t.Fatalf("len(Points) = %d, want 8", len(result.Points))
	}

	best := result.Points[0]
	for _, p := range result.Points {
		if p.Accuracy.RMSE < best.Accuracy.RMSE {
			best = p
		}
		if p.Accuracy.RMSE <= 0 || p.Accuracy.MAE <= 0 {
			t.Errorf("point %+v has non-positive error", p)
		}
	}
	if result.Best != best {
		t.Errorf("Best = %+v, want %+v", result.Best, best)
	}
}

func TestGridSearch_IndependentOfWorkers(t *testing.T) {
	t.Parallel()

	serial, err := GridSearch(context.Background(), testData(), searchConfig(1))
	if err != nil {
		t.Fatalf("GridSearch() error = %v", err)
	}
	parallel, err := GridSearch(context.Background(), testData(), searchConfig(8))
	if err != nil {
		t.Fatalf("GridSearch() error = %v", err)
	}

	if !reflect.DeepEqual(serial, parallel) {
		t.Errorf("GridSearch() depends on worker count: %+v vs %+v", serial.Best, parallel.Best)
	}
}

func TestGridSearch_TieGoesToFirst(t *testing.T) {
	t.Parallel()

	cfg := searchConfig(4)
	// Identical combinations score identically.
	cfg.Grid = recommend.GridConfig{
		Epochs:          []int{10, 10},
		LearningRates:   []float64{0.01},
		Regularizations: []float64{0.1},
	}

	result, err := GridSearch(context.Background(), testData(), cfg)
	if err != nil {
		t.Fatalf("GridSearch() error = %v", err)
	}
	if result.Points[0].Accuracy != result.Points[1].Accuracy {
		t.Fatalf("identical combinations scored differently: %+v", result.Points)
	}
	if result.Best != result.Points[0] {
		t.Errorf("Best = %+v, want first point", result.Best)
	}
}

func TestGridSearch_SkipsDivergedCombination(t *testing.T) {
	t.Parallel()

	cfg := searchConfig(0)
	// The first combination's learning rate blows the factors up.
	cfg.Grid = recommend.GridConfig{
		Epochs:          []int{50},
		LearningRates:   []float64{50, 0.005},
		Regularizations: []float64{0.4},
	}

	result, err := GridSearch(context.Background(), testData(), cfg)
	if err != nil {
		t.Fatalf("GridSearch() error = %v", err)
	}
	if !math.IsNaN(result.Points[0].Accuracy.RMSE) && !math.IsInf(result.Points[0].Accuracy.RMSE, 0) {
		t.Fatalf("Points[0].RMSE = %v, expected divergence", result.Points[0].Accuracy.RMSE)
	}
	if result.Best != result.Points[1] {
		t.Errorf("Best = %+v, want %+v", result.Best, result.Points[1])
	}
	if !finite(result.Best.Accuracy.RMSE) {
		t.Errorf("Best.RMSE = %v, want finite", result.Best.Accuracy.RMSE)
	}
}

func TestGridSearch_AllDiverged(t *testing.T) {
	t.Parallel()

	cfg := searchConfig(0)
	cfg.Grid = recommend.GridConfig{
		Epochs:          []int{50},
		LearningRates:   []float64{50, 80},
		Regularizations: []float64{0.4},
	}

	_, err := GridSearch(context.Background(), testData(), cfg)
	var trainErr *recommend.TrainingError
	if !errors.As(err, &trainErr) {
		t.Fatalf("GridSearch() error = %v, want *TrainingError", err)
	}
}

func TestFinite(t *testing.T) {
	t.Parallel()

	tests := []struct {
		v    float64
		want bool
	}{
		{0.4, true},
		{0, true},
		{math.NaN(), false},
		{math.Inf(1), false},
		{math.Inf(-1), false},
	}
	for _, tt := range tests {
		if got := finite(tt.v); got != tt.want {
			t.Errorf("finite(%v) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestGridSearch_EmptyGrid(t *testing.T) {
	t.Parallel()

	cfg := searchConfig(0)
	cfg.Grid.Epochs = nil

	_, err := GridSearch(context.Background(), testData(), cfg)
	if !errors.Is(err, recommend.ErrTraining) {
		t.Errorf("GridSearch() error = %v, want ErrTraining", err)
	}
}

func TestTrain(t *testing.T) {
	t.Parallel()

	cfg := recommend.DefaultConfig()
	cfg.Factors = 4
	cfg.Grid = searchConfig(0).Grid

	result, err := Train(context.Background(), testData(), cfg)
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	if !result.Model.Valid() {
		t.Fatal("Train() returned an invalid model")
	}
	if result.Model.Params != result.Search.Best.Params {
		t.Errorf("model params = %+v, want winning %+v", result.Model.Params, result.Search.Best.Params)
	}
	if result.Model.Samples != len(testData()) {
		t.Errorf("model Samples = %d, want %d (full data)", result.Model.Samples, len(testData()))
	}
}

func TestTrain_TooFewUsers(t *testing.T) {
	t.Parallel()

	data := []recommend.NormalizedInteraction{
		{UserID: "u1", SongID: "s1", Score: 1},
		{UserID: "u1", SongID: "s2", Score: 0},
		{UserID: "u1", SongID: "s3", Score: 0.5},
	}

	_, err := Train(context.Background(), data, recommend.DefaultConfig())
	var te *recommend.TrainingError
	if !errors.As(err, &te) {
		t.Fatalf("Train() error = %v, want *TrainingError", err)
	}
	if te.Users != 1 || te.Items != 3 {
		t.Errorf("TrainingError users/items = %d/%d, want 1/3", te.Users, te.Items)
	}
}
