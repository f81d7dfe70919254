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
package resolve

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize_StripsSuffixAndPunctuation(t *testing.T) {
	require.Equal(t, "acme", Normalize("The Acme, Inc."))
	require.Equal(t, "acme widgets", Normalize("ACME Widgets LLC"))
	require.Equal(t, "acme", Normalize("acme corp"))
}

func TestIsGeneric_RejectsPlaceholders(t *testing.T) {
	for _, v := range []string{"retired", "self employed", "none", "n a", "not employed"} {
		require.True(t, IsGeneric(v), v)
	}
	require.False(t, IsGeneric("acme"))
}

func TestJaroWinkler_IdenticalIsOne(t *testing.T) {
	require.Equal(t, 1.0, JaroWinkler("acme", "acme"))
}

func TestJaroWinkler_CloseStringsScoreHigh(t *testing.T) {
	score := JaroWinkler("acme widgets", "acme widget")
	require.Greater(t, score, 0.85)
}

func TestResolver_SeedExactMatch(t *testing.T) {
	seed := map[string]string{Normalize("acme corp"): "ACME"}
	issuers := []IssuerCandidate{{IssuerID: 1, Ticker: "ACME", Name: "Acme Corporation"}}
	r := NewResolver(seed, issuers)

	suggestions := r.Resolve("Acme Corp")
	require.Len(t, suggestions, 1)
	require.Equal(t, TierSeed, suggestions[0].Tier)
	require.Equal(t, 1.0, suggestions[0].Confidence)
}

// spec.md §4.7 tier 4: generic employer values never reach matching.
func TestResolver_GenericValueShortCircuits(t *testing.T) {
	issuers := []IssuerCandidate{{IssuerID: 1, Ticker: "ACME", Name: "Retired Industries"}}
	r := NewResolver(nil, issuers)

	require.Empty(t, r.Resolve("Retired"))
	require.Empty(t, r.Resolve("Self-Employed"))
}

func TestResolver_FuzzyTiersByConfidence(t *testing.T) {
	issuers := []IssuerCandidate{
		{IssuerID: 1, Ticker: "ACME", Name: "Acme Corporation"},
		{IssuerID: 2, Ticker: "UNRL", Name: "Completely Unrelated Holdings"},
	}
	r := NewResolver(nil, issuers)

	suggestions := r.Resolve("Acme Corporatoin") // typo, close match
	require.NotEmpty(t, suggestions)
	require.Equal(t, "ACME", suggestions[0].Ticker)
	require.GreaterOrEqual(t, suggestions[0].Confidence, fuzzyRejectFloor)
}

func TestResolver_BelowRejectFloorIsExcluded(t *testing.T) {
	issuers := []IssuerCandidate{{IssuerID: 1, Ticker: "ACME", Name: "Zebra Dynamics"}}
	r := NewResolver(nil, issuers)

	require.Empty(t, r.Resolve("Quartz Foundries"))
}
