// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

// Package algorithms implements the latent-factor trainer and predictor.
//
// # Components
//
//   - SVD: biased matrix factorization fitted with SGD
//   - KFold and GridSearch: cross-validated hyperparameter selection
//   - Train: grid search followed by a final fit on the full data set
//   - Predict: anti-set scoring over every known (user, song) pair
//
// # Thread Safety
//
// SVD is safe for concurrent use. Fitting acquires an exclusive lock while
// reading the fitted model uses a shared lock. A LatentModel is immutable
// once returned and may be shared across goroutines.
package algorithms
