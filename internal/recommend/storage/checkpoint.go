// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package storage

import (
	"context"
	"fmt"

	"github.com/tomtom215/cadence/internal/recommend/algorithms"
)

// LatentModelName is the checkpoint name used for SVD models.
const LatentModelName = "svd"

// SaveLatentModel stores model as the next version of LatentModelName.
// Counts, hyperparameters and the training time are filled from the model.
//
//nolint:gocritic // meta passed by value is acceptable for this write operation
func (s *Store) SaveLatentModel(ctx context.Context, model *algorithms.LatentModel, meta ModelMetadata) (*ModelMetadata, error) {
	if !model.Valid() {
		return nil, fmt.Errorf("refusing to checkpoint an untrained model")
	}

	meta.TrainedAt = model.TrainedAt
	meta.InteractionCount = model.Samples
	meta.UserCount = model.NumUsers()
	meta.ItemCount = model.NumItems()
	meta.Epochs = model.Params.Epochs
	meta.LearningRate = model.Params.LearningRate
	meta.Regularization = model.Params.Regularization

	return s.Save(ctx, LatentModelName, s.NextVersion(LatentModelName), model, meta)
}

// LoadLatentModel loads a stored SVD model. Version 0 loads the latest.
func (s *Store) LoadLatentModel(ctx context.Context, version int) (*algorithms.LatentModel, *ModelMetadata, error) {
	var model algorithms.LatentModel
	meta, err := s.Load(ctx, LatentModelName, version, &model)
	if err != nil {
		return nil, nil, err
	}
	return &model, meta, nil
}
