// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package recommend

import (
	"sort"
)

// Rank builds each user's preliminary list from the predictions: score
// descending, ties by ascending song_id, first n entries.
//
// Every user in users gets a list, empty if it has no predictions. Users that
// only appear in predictions are ranked as well.
func Rank(predictions []Prediction, users []string, n int) map[string]*RankedList {
	if n < 0 {
		n = 0
	}

	grouped := make(map[string][]Prediction, len(users))
	for _, p := range predictions {
		grouped[p.UserID] = append(grouped[p.UserID], p)
	}

	lists := make(map[string]*RankedList, len(users))
	for _, u := range users {
		lists[u] = NewRankedList(u, n)
	}

	for userID, preds := range grouped {
		sortPredictions(preds)

		list, ok := lists[userID]
		if !ok {
			list = NewRankedList(userID, n)
			lists[userID] = list
		}

		limit := n
		if len(preds) < limit {
			limit = len(preds)
		}
		for _, p := range preds[:limit] {
			list.Entries = append(list.Entries, RankedEntry{
				SongID: p.SongID,
				Score:  p.Score,
				Source: SourceDirect,
			})
		}
	}

	return lists
}

// sortPredictions orders by score descending, then song_id ascending.
func sortPredictions(preds []Prediction) {
	sort.Slice(preds, func(i, j int) bool {
		if preds[i].Score != preds[j].Score {
			return preds[i].Score > preds[j].Score
		}
		return preds[i].SongID < preds[j].SongID
	})
}
