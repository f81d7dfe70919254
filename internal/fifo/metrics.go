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
	"math"
	"time"
)

// dateLayouts are the two ISO-8601 shapes trade/closed-lot dates may carry:
// a bare date ("2024-01-01") from listing ingest or a full UTC timestamp
// from an enrichment write.
var dateLayouts = []string{"2006-01-02", time.RFC3339}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// AbsoluteReturn is (sell - buy) / buy * 100 (spec.md §4.6).
func AbsoluteReturn(buy, sell float64) float64 {
	if buy == 0 {
		return 0
	}
	return (sell - buy) / buy * 100
}

// HoldingPeriodDays is max(0, days_between(buy, sell)). Unparseable dates
// yield 0, matching the "imperfect source data" posture the rest of the
// package takes toward malformed inputs.
func HoldingPeriodDays(buyDate, sellDate string) int {
	buy, ok1 := parseDate(buyDate)
	sell, ok2 := parseDate(sellDate)
	if !ok1 || !ok2 {
		return 0
	}
	days := int(sell.Sub(buy).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// AnnualizedReturn is defined only for days >= 30 (spec.md §4.6); for
// shorter holds the annualization denominator makes the figure
// meaningless, so the function returns ok == false instead.
func AnnualizedReturn(returnPct float64, days int) (annualized float64, ok bool) {
	if days < 30 {
		return 0, false
	}
	base := 1 + returnPct/100
	if base <= 0 {
		return 0, false
	}
	return (math.Pow(base, 365.0/float64(days)) - 1) * 100, true
}

// BenchmarkType resolves the consistent benchmark type across both
// endpoints of a closed lot: "sector" if both carry a sector benchmark,
// "spy" if both carry an spy benchmark, else "" (spec.md §4.6).
func BenchmarkType(buyType, sellType string) string {
	if buyType == "sector" && sellType == "sector" {
		return "sector"
	}
	if buyType == "spy" && sellType == "spy" {
		return "spy"
	}
	return ""
}

// Alpha is trade return minus benchmark return over the same period
// (spec.md §4.6, Glossary).
func Alpha(tradeReturnPct, benchmarkReturnPct float64) float64 {
	return tradeReturnPct - benchmarkReturnPct
}

// LotMetrics bundles the per-closed-lot derived figures consumed by
// per-politician aggregation and by the `analytics`/`donations` output
// row views.
type LotMetrics struct {
	Lot               ClosedLot
	AbsoluteReturn    float64
	HoldingPeriodDays int
	AnnualizedReturn  float64
	HasAnnualized     bool
	BenchmarkType     string
	Alpha             float64
	HasAlpha          bool
}

// Evaluate computes every pure metric for one closed lot. benchmarkReturn
// is the caller-supplied return of the resolved benchmark (sector ETF or
// SPY) over the same holding window; callers that cannot resolve a
// benchmark pass hasBenchmarkReturn == false.
func Evaluate(lot ClosedLot, benchmarkReturn float64, hasBenchmarkReturn bool) LotMetrics {
	m := LotMetrics{Lot: lot}
	m.AbsoluteReturn = AbsoluteReturn(lot.BuyPrice, lot.SellPrice)
	m.HoldingPeriodDays = HoldingPeriodDays(lot.BuyDate, lot.SellDate)
	m.AnnualizedReturn, m.HasAnnualized = AnnualizedReturn(m.AbsoluteReturn, m.HoldingPeriodDays)
	m.BenchmarkType = BenchmarkType(lot.BuyBenchmarkType, lot.SellBenchmarkType)

	if m.BenchmarkType != "" && hasBenchmarkReturn {
		m.Alpha = Alpha(m.AbsoluteReturn, benchmarkReturn)
		m.HasAlpha = true
	}
	return m
}

// PoliticianAggregate is the per-politician rollup the leaderboard ranks
// (spec.md §4.6 "Per-politician aggregation").
type PoliticianAggregate struct {
	PoliticianID   string
	TradeCount     int
	WinCount       int
	WinRate        float64
	AvgReturn      float64
	AvgAlphaSPY    float64
	HasAlphaSPY    bool
	AvgAlphaSector float64
	HasAlphaSector bool
	AvgHoldingDays float64
	HasHoldingDays bool
}

// Aggregate groups metrics by politician and computes the rollup fields.
// Only defined values feed each average, per spec.md §4.6 "(only over
// defined values)".
func Aggregate(politicianID string, metrics []LotMetrics) PoliticianAggregate {
	agg := PoliticianAggregate{PoliticianID: politicianID}
	if len(metrics) == 0 {
		return agg
	}

	var sumReturn, sumAlphaSPY, sumAlphaSector, sumHoldingDays float64
	var nAlphaSPY, nAlphaSector, nHoldingDays int

	for _, m := range metrics {
		agg.TradeCount++
		sumReturn += m.AbsoluteReturn
		if m.AbsoluteReturn > 0 {
			agg.WinCount++
		}
		if m.HasAlpha {
			switch m.BenchmarkType {
			case "spy":
				sumAlphaSPY += m.Alpha
				nAlphaSPY++
			case "sector":
				sumAlphaSector += m.Alpha
				nAlphaSector++
			}
		}
		if m.HoldingPeriodDays > 0 {
			sumHoldingDays += float64(m.HoldingPeriodDays)
			nHoldingDays++
		}
	}

	agg.AvgReturn = sumReturn / float64(agg.TradeCount)
	agg.WinRate = float64(agg.WinCount) / float64(agg.TradeCount)

	if nAlphaSPY > 0 {
		agg.AvgAlphaSPY = sumAlphaSPY / float64(nAlphaSPY)
		agg.HasAlphaSPY = true
	}
	if nAlphaSector > 0 {
		agg.AvgAlphaSector = sumAlphaSector / float64(nAlphaSector)
		agg.HasAlphaSector = true
	}
	if nHoldingDays > 0 {
		agg.AvgHoldingDays = sumHoldingDays / float64(nHoldingDays)
		agg.HasHoldingDays = true
	}

	return agg
}
