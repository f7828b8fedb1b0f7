// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package algorithms

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"testing"

	"github.com/tomtom215/cadence/internal/recommend"
)

func rawInteractions() []recommend.Interaction {
	raw := make([]recommend.Interaction, 0, len(testData()))
	for _, d := range testData() {
		raw = append(raw, recommend.Interaction{UserID: d.UserID, SongID: d.SongID, Count: 1})
	}
	return raw
}

func fittedModel(t *testing.T) *LatentModel {
	t.Helper()
	m, err := NewSVD(smallConfig()).Fit(context.Background(), testData())
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	return m
}

func TestPredict_AntiSet(t *testing.T) {
	t.Parallel()

	model := fittedModel(t)
	interactions := rawInteractions()

	preds, err := Predict(context.Background(), model, interactions, PredictOptions{})
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}

	// 4 users x 5 songs minus 12 observed pairs.
	if len(preds) != 8 {
		t.Fatalf("len(Predict()) = %d, want 8", len(preds))
	}

	seen := recommend.NewSeenSet(interactions)
	pairs := make(map[string]struct{})
	for _, p := range preds {
		if seen.Has(p.UserID, p.SongID) {
			t.Errorf("prediction for observed pair %s/%s", p.UserID, p.SongID)
		}
		key := p.UserID + "/" + p.SongID
		if _, dup := pairs[key]; dup {
			t.Errorf("duplicate prediction for %s", key)
		}
		pairs[key] = struct{}{}

		want, _ := model.Estimate(p.UserID, p.SongID)
		if p.Score != want {
			t.Errorf("score[%s] = %v, want %v", key, p.Score, want)
		}
	}
}

func TestPredict_Ordering(t *testing.T) {
	t.Parallel()

	model := fittedModel(t)

	for _, workers := range []int{1, 2, 3, 16} {
		preds, err := Predict(context.Background(), model, rawInteractions(), PredictOptions{Workers: workers})
		if err != nil {
			t.Fatalf("Predict(workers=%d) error = %v", workers, err)
		}
		sorted := sort.SliceIsSorted(preds, func(i, j int) bool {
			if preds[i].UserID != preds[j].UserID {
				return preds[i].UserID < preds[j].UserID
			}
			return preds[i].SongID < preds[j].SongID
		})
		if !sorted {
			t.Errorf("Predict(workers=%d) output not ordered by user then song", workers)
		}
	}

	one, _ := Predict(context.Background(), model, rawInteractions(), PredictOptions{Workers: 1})
	many, _ := Predict(context.Background(), model, rawInteractions(), PredictOptions{Workers: 4})
	if !reflect.DeepEqual(one, many) {
		t.Error("Predict() output depends on worker count")
	}
}

func TestPredict_Clip(t *testing.T) {
	t.Parallel()

	m := &LatentModel{
		GlobalMean:  0.9,
		Users:       []string{"u1", "u2"},
		Items:       []string{"s1", "s2"},
		UserIndex:   map[string]int{"u1": 0, "u2": 1},
		ItemIndex:   map[string]int{"s1": 0, "s2": 1},
		UserBias:    []float64{0.5, -2},
		ItemBias:    []float64{0, 0},
		UserFactors: [][]float64{{0}, {0}},
		ItemFactors: [][]float64{{0}, {0}},
		Factors:     1,
	}

	raw, err := Predict(context.Background(), m, nil, PredictOptions{})
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if raw[0].Score <= 1 || raw[2].Score >= 0 {
		t.Errorf("unclipped scores = %v, %v, want outside [0,1]", raw[0].Score, raw[2].Score)
	}

	clipped, err := Predict(context.Background(), m, nil, PredictOptions{Clip: true})
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	for _, p := range clipped {
		if p.Score < 0 || p.Score > 1 {
			t.Errorf("clipped score %s/%s = %v, outside [0,1]", p.UserID, p.SongID, p.Score)
		}
	}
}

func TestPredict_NotTrained(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		model *LatentModel
	}{
		{name: "nil model", model: nil},
		{name: "zero-value model", model: &LatentModel{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Predict(context.Background(), tt.model, nil, PredictOptions{})
			if !errors.Is(err, recommend.ErrModelNotTrained) {
				t.Errorf("Predict() error = %v, want ErrModelNotTrained", err)
			}
		})
	}
}

func TestPredict_Cancelled(t *testing.T) {
	t.Parallel()

	model := fittedModel(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Predict(ctx, model, rawInteractions(), PredictOptions{Workers: 2})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Predict() error = %v, want context.Canceled", err)
	}
}
