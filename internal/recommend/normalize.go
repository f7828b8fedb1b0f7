// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package recommend

import (
	"fmt"
)

// Normalize rescales raw counts with a single global min-max transform.
//
// Duplicate (user, song) records are merged by summing their counts first, in
// order of first appearance. If every count is equal the scores are all 0.0.
func Normalize(interactions []Interaction) ([]NormalizedInteraction, error) {
	if len(interactions) == 0 {
		return nil, &DataInsufficiencyError{Reason: "interaction set is empty"}
	}

	// Raw records are checked before merging so a negative count cannot
	// hide inside a positive sum.
	for _, in := range interactions {
		if in.Count < 0 {
			return nil, &DataInsufficiencyError{
				Reason: fmt.Sprintf("negative count %d for user %q song %q", in.Count, in.UserID, in.SongID),
			}
		}
	}

	merged := mergeDuplicates(interactions)

	minCount, maxCount := merged[0].Count, merged[0].Count
	for _, in := range merged {
		if in.Count < minCount {
			minCount = in.Count
		}
		if in.Count > maxCount {
			maxCount = in.Count
		}
	}

	out := make([]NormalizedInteraction, len(merged))
	span := float64(maxCount - minCount)
	for i, in := range merged {
		var score float64
		if span > 0 {
			score = float64(in.Count-minCount) / span
		}
		out[i] = NormalizedInteraction{
			UserID: in.UserID,
			SongID: in.SongID,
			Score:  score,
		}
	}

	return out, nil
}

// mergeDuplicates sums counts of repeated (user, song) pairs.
func mergeDuplicates(interactions []Interaction) []Interaction {
	type key struct{ user, song string }

	index := make(map[key]int, len(interactions))
	merged := make([]Interaction, 0, len(interactions))
	for _, in := range interactions {
		k := key{in.UserID, in.SongID}
		if i, ok := index[k]; ok {
			merged[i].Count += in.Count
			continue
		}
		index[k] = len(merged)
		merged = append(merged, in)
	}
	return merged
}
