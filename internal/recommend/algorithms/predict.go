// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package algorithms

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/cadence/internal/recommend"
)

// PredictOptions configures Predict.
type PredictOptions struct {
	// Clip restricts scores to [0, 1].
	Clip bool

	// Workers bounds the number of user partitions scored at once.
	// 0 uses GOMAXPROCS.
	Workers int
}

// Predict scores every (user, item) pair known to the model that is absent
// from interactions. Output is ordered by user then song, ascending.
func Predict(ctx context.Context, model *LatentModel, interactions []recommend.Interaction, opts PredictOptions) ([]recommend.Prediction, error) {
	if !model.Valid() {
		return nil, &recommend.ModelNotTrainedError{Model: "svd"}
	}

	seen := recommend.NewSeenSet(interactions)
	numUsers := model.NumUsers()
	workers := workerCount(opts.Workers)
	if workers > numUsers {
		workers = numUsers
	}

	// Contiguous user ranges keep the concatenated output sorted.
	parts := make([][]recommend.Prediction, workers)
	chunk := (numUsers + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := min(lo+chunk, numUsers)
		if lo >= hi {
			continue
		}
		g.Go(func() error {
			out := make([]recommend.Prediction, 0, (hi-lo)*model.NumItems())
			for u := lo; u < hi; u++ {
				if ContextCancelled(gctx) {
					return gctx.Err()
				}
				userID := model.Users[u]
				for i, songID := range model.Items {
					if seen.Has(userID, songID) {
						continue
					}
					score := model.estimate(u, i)
					if opts.Clip {
						score = clip(score)
					}
					out = append(out, recommend.Prediction{UserID: userID, SongID: songID, Score: score})
				}
			}
			parts[w] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, p := range parts {
		total += len(p)
	}
	predictions := make([]recommend.Prediction, 0, total)
	for _, p := range parts {
		predictions = append(predictions, p...)
	}
	return predictions, nil
}

func clip(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
