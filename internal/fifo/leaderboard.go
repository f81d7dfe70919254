// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package fifo

import "sort"

// LeaderboardEntry is one ranked row in the analytics leaderboard.
type LeaderboardEntry struct {
	PoliticianAggregate
	Percentile float64
}

// Leaderboard sorts aggregates by AvgReturn descending and assigns each a
// percentile rank, per spec.md §4.6: "rank is 1 - index/(n-1), special-
// cased to 1.0 when n = 1." Callers must apply every filter (period,
// min-trades, party, state) to the input slice before calling this, since
// spec.md §4.6 requires percentile ranks to be "recomputed after each
// filter application... never cached across filter boundaries" -- this
// function has no cache, so calling it fresh per filtered set is correct
// by construction.
func Leaderboard(aggregates []PoliticianAggregate) []LeaderboardEntry {
	sorted := make([]PoliticianAggregate, len(aggregates))
	copy(sorted, aggregates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].AvgReturn > sorted[j].AvgReturn
	})

	entries := make([]LeaderboardEntry, len(sorted))
	n := len(sorted)
	for i, agg := range sorted {
		percentile := 1.0
		if n > 1 {
			percentile = 1 - float64(i)/float64(n-1)
		}
		entries[i] = LeaderboardEntry{PoliticianAggregate: agg, Percentile: percentile}
	}
	return entries
}

// MinTradesFilter returns the subset of aggregates with TradeCount >= min.
func MinTradesFilter(aggregates []PoliticianAggregate, min int) []PoliticianAggregate {
	if min <= 0 {
		return aggregates
	}
	out := make([]PoliticianAggregate, 0, len(aggregates))
	for _, a := range aggregates {
		if a.TradeCount >= min {
			out = append(out, a)
		}
	}
	return out
}
