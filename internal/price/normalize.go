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

import "strings"

// OverrideLookup resolves a ticker override keyed by issuer id, backed by
// ingest_meta (spec.md §4.3: "an override table from IngestMeta can
// substitute broken mappings"). Returns ok == false when no override
// exists for issuerID.
type OverrideLookup func(issuerID int64) (ticker string, ok bool)

// NormalizeTicker applies the price service's symbol convention (dot
// separators become dashes, e.g. "BRK.A" -> "BRK-A") and then applies an
// override if one is registered for issuerID, per spec.md §8 concrete
// scenario 5.
func NormalizeTicker(ticker string, issuerID int64, overrides OverrideLookup) string {
	if overrides != nil {
		if override, ok := overrides(issuerID); ok {
			return override
		}
	}
	return strings.ReplaceAll(ticker, ".", "-")
}
