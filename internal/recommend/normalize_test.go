// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package recommend

import (
	"errors"
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		interactions []Interaction
		want         map[string]float64
	}{
		{
			name: "global min-max across users",
			interactions: []Interaction{
				{UserID: "A", SongID: "S1", Count: 5},
				{UserID: "A", SongID: "S2", Count: 1},
				{UserID: "A", SongID: "S3", Count: 10},
			},
			want: map[string]float64{"A/S1": 4.0 / 9.0, "A/S2": 0, "A/S3": 1},
		},
		{
			name: "scaling is not per user",
			interactions: []Interaction{
				{UserID: "A", SongID: "S1", Count: 2},
				{UserID: "B", SongID: "S1", Count: 4},
				{UserID: "B", SongID: "S2", Count: 6},
			},
			want: map[string]float64{"A/S1": 0, "B/S1": 0.5, "B/S2": 1},
		},
		{
			name: "all equal counts score zero",
			interactions: []Interaction{
				{UserID: "A", SongID: "S1", Count: 7},
				{UserID: "B", SongID: "S2", Count: 7},
			},
			want: map[string]float64{"A/S1": 0, "B/S2": 0},
		},
		{
			name: "single interaction scores zero",
			interactions: []Interaction{
				{UserID: "A", SongID: "S1", Count: 3},
			},
			want: map[string]float64{"A/S1": 0},
		},
		{
			name: "duplicate pairs are summed",
			interactions: []Interaction{
				{UserID: "A", SongID: "S1", Count: 1},
				{UserID: "A", SongID: "S1", Count: 3},
				{UserID: "A", SongID: "S2", Count: 0},
			},
			want: map[string]float64{"A/S1": 1, "A/S2": 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Normalize(tt.interactions)
			if err != nil {
				t.Fatalf("Normalize() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("len(Normalize()) = %d, want %d", len(got), len(tt.want))
			}
			for _, n := range got {
				key := n.UserID + "/" + n.SongID
				want, ok := tt.want[key]
				if !ok {
					t.Errorf("unexpected pair %s", key)
					continue
				}
				if math.Abs(n.Score-want) > 1e-9 {
					t.Errorf("score[%s] = %v, want %v", key, n.Score, want)
				}
				if n.Score < 0 || n.Score > 1 {
					t.Errorf("score[%s] = %v, outside [0,1]", key, n.Score)
				}
			}
		})
	}
}

func TestNormalize_Monotonic(t *testing.T) {
	t.Parallel()

	var interactions []Interaction
	for i := 0; i < 50; i++ {
		interactions = append(interactions, Interaction{
			UserID: "U",
			SongID: string(rune('a'+i%26)) + string(rune('A'+i/26)),
			Count:  (i * 7) % 23,
		})
	}

	got, err := Normalize(interactions)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	for i := range got {
		for j := range got {
			if interactions[i].Count < interactions[j].Count && got[i].Score > got[j].Score {
				t.Fatalf("count %d scored %v above count %d scored %v",
					interactions[i].Count, got[i].Score, interactions[j].Count, got[j].Score)
			}
		}
	}
}

func TestNormalize_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		interactions []Interaction
	}{
		{name: "nil input", interactions: nil},
		{name: "empty input", interactions: []Interaction{}},
		{name: "negative count", interactions: []Interaction{{UserID: "A", SongID: "S1", Count: -1}}},
		{name: "negative count offset by duplicate", interactions: []Interaction{
			{UserID: "A", SongID: "S1", Count: -3},
			{UserID: "A", SongID: "S1", Count: 5},
			{UserID: "B", SongID: "S2", Count: 1},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Normalize(tt.interactions)
			if err == nil {
				t.Fatal("Normalize() error = nil, want DataInsufficiencyError")
			}
			var die *DataInsufficiencyError
			if !errors.As(err, &die) {
				t.Errorf("Normalize() error type = %T, want *DataInsufficiencyError", err)
			}
			if !errors.Is(err, ErrDataInsufficient) {
				t.Error("errors.Is(err, ErrDataInsufficient) = false, want true")
			}
		})
	}
}
