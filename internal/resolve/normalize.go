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

// Package resolve links donation contributor_employer strings to traded
// issuers: normalize, exact-match a curated seed, fall back to Jaro-Winkler
// fuzzy scoring against known issuer names, per spec.md §4.7.
package resolve

import (
	"strings"

	"github.com/gosimple/slug"
	"github.com/gosimple/unidecode"
)

// legalSuffixes are stripped from the tail of a normalized name. Only a last
// word equal to one of them is dropped, so a word that merely ends in "lp"
// or "co" is kept.
var legalSuffixes = []string{"llp", "llc", "ltd", "inc", "corp", "co", "lp"}

// genericEmployers short-circuit-reject in Resolve before any matching is
// attempted (spec.md §4.7 tier 4).
var genericEmployers = map[string]bool{
	"retired":      true,
	"self employed": true,
	"none":         true,
	"n a":          true,
	"not employed": true,
}

// Normalize lowercases, transliterates, strips a leading "the" and a
// trailing legal suffix, strips punctuation, and collapses whitespace
// (spec.md §4.7 tier 1). Transliteration and punctuation-to-separator
// folding are delegated to slug.Make (the same hyphenation pass the
// teacher's subscription table-naming used), then the hyphens are turned
// back into spaces since this produces a matching key, not a URL segment.
func Normalize(name string) string {
	s := unidecode.Unidecode(name)
	hyphenated := slug.Make(s)
	fields := strings.Split(hyphenated, "-")

	out := fields[:0]
	for _, f := range fields {
		if f != "" {
			out = append(out, f)
		}
	}
	fields = out

	if len(fields) > 0 && fields[0] == "the" {
		fields = fields[1:]
	}
	fields = stripTrailingSuffix(fields)

	return strings.Join(fields, " ")
}

// IsGeneric reports whether a normalized employer value is one of the
// fixed non-informative placeholders that should never be matched against
// an issuer (spec.md §4.7 tier 4).
func IsGeneric(normalized string) bool {
	return genericEmployers[normalized]
}

func stripTrailingSuffix(fields []string) []string {
	if len(fields) == 0 {
		return fields
	}
	last := fields[len(fields)-1]
	for _, suffix := range legalSuffixes {
		if last == suffix {
			return fields[:len(fields)-1]
		}
	}
	return fields
}
