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
package price

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Ticker normalization: spec.md §8 concrete scenario 5.
func TestNormalizeTicker_DotToDash(t *testing.T) {
	require.Equal(t, "BRK-A", NormalizeTicker("BRK.A", 12345, nil))
}

func TestNormalizeTicker_Override(t *testing.T) {
	overrides := func(issuerID int64) (string, bool) {
		if issuerID == 12345 {
			return "GOOGL", true
		}
		return "", false
	}
	require.Equal(t, "GOOGL", NormalizeTicker("anything.else", 12345, overrides))
	require.Equal(t, "BRK-A", NormalizeTicker("BRK.A", 99999, overrides))
}

func TestNearestPriorClose_Backfill(t *testing.T) {
	bars := []bar{
		{date: mustDate("2024-01-01"), close: 10},
		{date: mustDate("2024-01-03"), close: 12}, // Wednesday, last bar before the gap
		{date: mustDate("2024-01-08"), close: 15},
	}

	// target falls on a weekend with no bar; nearest prior close is used.
	value, found := nearestPriorClose(bars, mustDate("2024-01-06"))
	require.True(t, found)
	require.Equal(t, 12.0, value)
}

func TestNearestPriorClose_NoPriorBar(t *testing.T) {
	bars := []bar{{date: mustDate("2024-01-08"), close: 15}}
	_, found := nearestPriorClose(bars, mustDate("2024-01-01"))
	require.False(t, found)
}

func mustDate(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}
