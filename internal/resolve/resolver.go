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
	"fmt"
	"os"
	"sort"

	"github.com/pelletier/go-toml/v2"
)

// Tier names a suggestion's confidence band (spec.md §4.7 tier 3).
type Tier string

const (
	TierSeed          Tier = "seed"           // exact curated-mapping hit, confidence 1.0
	TierFuzzyHigh     Tier = "fuzzy_high"     // confidence in [0.85, 1.0)
	TierFuzzyReview   Tier = "fuzzy_review"   // confidence in [0.70, 0.85)
)

const (
	fuzzyHighFloor   = 0.85
	fuzzyRejectFloor = 0.70
)

// Suggestion is one proposed employer->issuer link. The resolver never
// auto-persists a link; confirmation is a user-mediated CLI workflow
// (spec.md §4.7).
type Suggestion struct {
	IssuerID   int64
	Ticker     string
	IssuerName string
	Confidence float64
	Tier       Tier
}

// SeedMapping is one curated employer->issuer entry (spec.md §4.7 tier 2,
// "~200 entries").
type SeedMapping struct {
	Employer string `toml:"employer"`
	Ticker   string `toml:"ticker"`
}

type seedFile struct {
	Mappings []SeedMapping `toml:"mappings"`
}

// LoadSeed reads the curated employer->ticker mapping file, keyed by the
// normalized employer string.
func LoadSeed(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("resolve: load seed: %w", err)
	}

	var parsed seedFile
	if err := toml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("resolve: parse seed: %w", err)
	}

	seed := make(map[string]string, len(parsed.Mappings))
	for _, m := range parsed.Mappings {
		seed[Normalize(m.Employer)] = m.Ticker
	}
	return seed, nil
}

// IssuerCandidate is one known issuer the fuzzy tier matches against.
type IssuerCandidate struct {
	IssuerID int64
	Ticker   string
	Name     string
}

// Resolver proposes issuer links for a donation's contributor_employer.
type Resolver struct {
	seed      map[string]string // normalized employer -> ticker
	issuers   []IssuerCandidate
	byTicker  map[string]IssuerCandidate
}

// NewResolver builds a Resolver over a curated seed map and the full known
// issuer set (used as the fuzzy-match candidate pool). The seed map is
// looked up by normalized employer string, as LoadSeed keys it; keys are
// not normalized here.
func NewResolver(seed map[string]string, issuers []IssuerCandidate) *Resolver {
	byTicker := make(map[string]IssuerCandidate, len(issuers))
	for _, iss := range issuers {
		byTicker[iss.Ticker] = iss
	}
	return &Resolver{seed: seed, issuers: issuers, byTicker: byTicker}
}

// Resolve proposes zero or more issuer suggestions for employer, applying
// the generic-value short circuit, then the seed exact match, then
// Jaro-Winkler fuzzy scoring against every known issuer name (spec.md
// §4.7). Suggestions are returned sorted by descending confidence.
func (r *Resolver) Resolve(employer string) []Suggestion {
	normalized := Normalize(employer)
	if normalized == "" || IsGeneric(normalized) {
		return nil
	}

	if ticker, ok := r.seed[normalized]; ok {
		if iss, ok := r.byTicker[ticker]; ok {
			return []Suggestion{{
				IssuerID: iss.IssuerID, Ticker: iss.Ticker, IssuerName: iss.Name,
				Confidence: 1.0, Tier: TierSeed,
			}}
		}
	}

	var suggestions []Suggestion
	for _, iss := range r.issuers {
		score := JaroWinkler(normalized, Normalize(iss.Name))
		if score < fuzzyRejectFloor {
			continue
		}

		tier := TierFuzzyReview
		if score >= fuzzyHighFloor {
			tier = TierFuzzyHigh
		}

		suggestions = append(suggestions, Suggestion{
			IssuerID: iss.IssuerID, Ticker: iss.Ticker, IssuerName: iss.Name,
			Confidence: score, Tier: tier,
		})
	}

	sort.Slice(suggestions, func(i, j int) bool {
		return suggestions[i].Confidence > suggestions[j].Confidence
	})
	return suggestions
}
