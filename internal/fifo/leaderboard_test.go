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

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Percentile range: spec.md §8.
func TestLeaderboard_PercentileRange(t *testing.T) {
	aggs := []PoliticianAggregate{
		{PoliticianID: "P1", AvgReturn: 10, TradeCount: 3},
		{PoliticianID: "P2", AvgReturn: 30, TradeCount: 3},
		{PoliticianID: "P3", AvgReturn: 20, TradeCount: 3},
	}

	entries := Leaderboard(aggs)
	require.Len(t, entries, 3)
	require.Equal(t, "P2", entries[0].PoliticianID)
	require.InDelta(t, 1.0, entries[0].Percentile, 1e-9)
	require.Equal(t, "P1", entries[2].PoliticianID)
	require.InDelta(t, 0.0, entries[2].Percentile, 1e-9)
}

func TestLeaderboard_SingleEntry(t *testing.T) {
	entries := Leaderboard([]PoliticianAggregate{{PoliticianID: "P1", AvgReturn: 5}})
	require.Len(t, entries, 1)
	require.Equal(t, 1.0, entries[0].Percentile)
}

func TestAggregate_OnlyOverDefinedValues(t *testing.T) {
	metrics := []LotMetrics{
		{AbsoluteReturn: 10, HoldingPeriodDays: 40, HasAlpha: true, BenchmarkType: "spy", Alpha: 2},
		{AbsoluteReturn: -5, HoldingPeriodDays: 0, HasAlpha: false},
	}
	agg := Aggregate("P1", metrics)
	require.Equal(t, 2, agg.TradeCount)
	require.Equal(t, 1, agg.WinCount)
	require.InDelta(t, 2.5, agg.AvgReturn, 1e-9)
	require.True(t, agg.HasAlphaSPY)
	require.InDelta(t, 2, agg.AvgAlphaSPY, 1e-9)
	require.True(t, agg.HasHoldingDays)
	require.InDelta(t, 40, agg.AvgHoldingDays, 1e-9)
}
