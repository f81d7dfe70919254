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

import "math"

// EstimateShares implements spec.md §4.6's share-estimation rule: the
// source reports a dollar range rather than exact shares, so
// estimated_shares = round(midpoint(low, high) / tradeDatePrice). ok is
// false when tradeDatePrice is not yet known, in which case the caller
// must not estimate.
func EstimateShares(low, high, tradeDatePrice float64) (shares float64, ok bool) {
	if tradeDatePrice <= 0 {
		return 0, false
	}
	midpoint := (low + high) / 2
	return math.Round(midpoint / tradeDatePrice), true
}

// ValidateEstimate reports whether estimatedShares, multiplied back out by
// tradeDatePrice, lands inside [low, high]. A false result means the row
// should be flagged low_confidence_estimate but still used, per spec.md
// §4.6: "if not, the row is marked with a low-confidence flag but still
// used."
func ValidateEstimate(low, high, tradeDatePrice, estimatedShares float64) bool {
	roundTrip := estimatedShares * tradeDatePrice
	return roundTrip >= low && roundTrip <= high
}
