// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package recommend

import (
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// FallbackOptions configures Fallback.
type FallbackOptions struct {
	// ListLength is N.
	ListLength int

	// Dedup is the duplicate policy for borrowed entries.
	Dedup DedupPolicy

	// RestrictToUnseen skips borrowed songs found in Seen, and songs missing
	// from Catalog when Catalog is non-nil.
	RestrictToUnseen bool

	// Seen is the user-song interaction index. Only read when
	// RestrictToUnseen is set.
	Seen SeenSet

	// Catalog is the set of known song ids. Nil disables the catalog check.
	Catalog map[string]struct{}

	// Workers bounds per-user parallelism. 0 uses GOMAXPROCS.
	Workers int
}

// FallbackStats summarizes a Fallback pass.
type FallbackStats struct {
	// UsersBackfilled counts users that received at least one borrowed entry.
	UsersBackfilled int `json:"users_backfilled"`

	// EntriesAppended counts borrowed entries across all users.
	EntriesAppended int `json:"entries_appended"`

	// ShortLists counts users that still hold fewer than N entries.
	ShortLists int `json:"short_lists"`

	// Gaps lists friend edges whose target has no ranked list.
	Gaps []FriendLookupGap `json:"gaps,omitempty"`
}

type fallbackCandidate struct {
	songID      string
	score       float64
	friendOrder int
}

type fallbackResult struct {
	list     *RankedList
	appended int
	gaps     []FriendLookupGap
}

// Fallback backfills every list shorter than N from the preliminary lists of
// the user's direct friends.
//
// Only the input lists are read, never lists produced by this pass, so a
// user's result does not depend on the order users are processed in. The
// input map is not modified.
func Fallback(lists map[string]*RankedList, edges []FriendEdge, opts FallbackOptions) (map[string]*RankedList, FallbackStats) {
	n := opts.ListLength
	if opts.Dedup == "" {
		opts.Dedup = DedupNone
	}

	friends := adjacency(edges)

	users := make([]string, 0, len(lists))
	for u := range lists {
		users = append(users, u)
	}
	sort.Strings(users)

	results := make([]fallbackResult, len(users))

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	var g errgroup.Group
	g.SetLimit(workers)
	for i, u := range users {
		g.Go(func() error {
			results[i] = backfillUser(u, lists, friends[u], n, &opts)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // workers never return an error

	out := make(map[string]*RankedList, len(users))
	var stats FallbackStats
	for i, u := range users {
		r := results[i]
		out[u] = r.list
		if r.appended > 0 {
			stats.UsersBackfilled++
			stats.EntriesAppended += r.appended
		}
		if r.list.Len() < n {
			stats.ShortLists++
		}
		stats.Gaps = append(stats.Gaps, r.gaps...)
	}

	return out, stats
}

// backfillUser resolves a single user's final list.
func backfillUser(userID string, lists map[string]*RankedList, friendIDs []string, n int, opts *FallbackOptions) fallbackResult {
	own := lists[userID]
	if own == nil {
		own = NewRankedList(userID, n)
	}
	final := own.Clone(n)
	if own.Full(n) {
		return fallbackResult{list: final}
	}

	var (
		candidates []fallbackCandidate
		gaps       []FriendLookupGap
	)
	for order, friendID := range friendIDs {
		friendList, ok := lists[friendID]
		if !ok || friendList == nil {
			gaps = append(gaps, FriendLookupGap{UserID: userID, FriendID: friendID})
			continue
		}
		for _, e := range friendList.Entries {
			if opts.RestrictToUnseen && !eligible(userID, e.SongID, opts) {
				continue
			}
			candidates = append(candidates, fallbackCandidate{
				songID:      e.SongID,
				score:       e.Score,
				friendOrder: order,
			})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.songID != b.songID {
			return a.songID < b.songID
		}
		return a.friendOrder < b.friendOrder
	})

	direct := len(final.Entries)
	appended := 0
	for _, c := range candidates {
		if len(final.Entries) >= n {
			break
		}
		switch opts.Dedup {
		case DedupAgainstDirect:
			if containsSong(final.Entries[:direct], c.songID) {
				continue
			}
		case DedupAll:
			if containsSong(final.Entries, c.songID) {
				continue
			}
		}
		final.Entries = append(final.Entries, RankedEntry{
			SongID: c.songID,
			Score:  c.score,
			Source: SourceFriend,
		})
		appended++
	}

	return fallbackResult{list: final, appended: appended, gaps: gaps}
}

// eligible applies the RestrictToUnseen filter.
func eligible(userID, songID string, opts *FallbackOptions) bool {
	if opts.Seen.Has(userID, songID) {
		return false
	}
	if opts.Catalog != nil {
		if _, ok := opts.Catalog[songID]; !ok {
			return false
		}
	}
	return true
}

// adjacency groups friend ids per user in edge order. Repeated edges and
// self-edges are dropped.
func adjacency(edges []FriendEdge) map[string][]string {
	friends := make(map[string][]string)
	seen := make(map[FriendEdge]struct{}, len(edges))
	for _, e := range edges {
		if e.UserID == e.FriendID {
			continue
		}
		if _, dup := seen[e]; dup {
			continue
		}
		seen[e] = struct{}{}
		friends[e.UserID] = append(friends[e.UserID], e.FriendID)
	}
	return friends
}

func containsSong(entries []RankedEntry, songID string) bool {
	for _, e := range entries {
		if e.SongID == songID {
			return true
		}
	}
	return false
}
