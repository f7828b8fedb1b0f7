// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package algorithms

import (
	"time"
)

// Params is one point of the hyperparameter grid.
type Params struct {
	Epochs         int     `json:"epochs"`
	LearningRate   float64 `json:"learning_rate"`
	Regularization float64 `json:"regularization"`
}

// LatentModel is a fitted biased matrix factorization.
//
// Fields are exported for gob encoding by the checkpoint store. Callers must
// treat a model as read-only once Fit returns it.
type LatentModel struct {
	// GlobalMean is mu, the mean training score.
	GlobalMean float64

	// Users and Items map matrix rows back to ids, sorted ascending.
	Users []string
	Items []string

	// UserIndex and ItemIndex map ids to matrix rows.
	UserIndex map[string]int
	ItemIndex map[string]int

	// UserBias and ItemBias hold b_u and b_i.
	UserBias []float64
	ItemBias []float64

	// UserFactors (users x factors) and ItemFactors (items x factors) hold
	// p_u and q_i.
	UserFactors [][]float64
	ItemFactors [][]float64

	// Factors is the latent dimension.
	Factors int

	// Params are the hyperparameters used for the fit.
	Params Params

	// Samples is the number of training interactions.
	Samples int

	// TrainedAt is when the fit completed.
	TrainedAt time.Time
}

// Valid reports whether the model holds a complete fit. A nil or zero-value
// model is not valid.
func (m *LatentModel) Valid() bool {
	if m == nil || len(m.Users) == 0 || len(m.Items) == 0 {
		return false
	}
	return len(m.UserFactors) == len(m.Users) &&
		len(m.ItemFactors) == len(m.Items) &&
		len(m.UserBias) == len(m.Users) &&
		len(m.ItemBias) == len(m.Items) &&
		len(m.UserIndex) == len(m.Users) &&
		len(m.ItemIndex) == len(m.Items)
}

// NumUsers returns the number of users known to the model.
func (m *LatentModel) NumUsers() int {
	if m == nil {
		return 0
	}
	return len(m.Users)
}

// NumItems returns the number of items known to the model.
func (m *LatentModel) NumItems() int {
	if m == nil {
		return 0
	}
	return len(m.Items)
}

// estimate scores a pair by matrix row.
func (m *LatentModel) estimate(u, i int) float64 {
	pred := m.GlobalMean + m.UserBias[u] + m.ItemBias[i]
	pu, qi := m.UserFactors[u], m.ItemFactors[i]
	for f := range pu {
		pred += pu[f] * qi[f]
	}
	return pred
}

// Estimate scores a pair by id. Unknown users or items contribute no bias
// and no factor term, so a fully unknown pair scores the global mean. The
// second return reports whether both ids were known.
func (m *LatentModel) Estimate(userID, songID string) (float64, bool) {
	u, uok := m.UserIndex[userID]
	i, iok := m.ItemIndex[songID]

	switch {
	case uok && iok:
		return m.estimate(u, i), true
	case uok:
		return m.GlobalMean + m.UserBias[u], false
	case iok:
		return m.GlobalMean + m.ItemBias[i], false
	default:
		return m.GlobalMean, false
	}
}
