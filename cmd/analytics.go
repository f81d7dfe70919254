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
package cmd

import (
	"context"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/capitol-traders/capitoltraders/internal/fifo"
	"github.com/capitol-traders/capitoltraders/internal/output"
	"github.com/capitol-traders/capitoltraders/internal/store"
)

var (
	analyticsParty     string
	analyticsState     string
	analyticsMinTrades int
)

// analyticsCmd ranks politicians by average closed-lot return, recomputing
// percentile ranks after every filter (spec.md §4.6 "Leaderboard
// stability", §6 "analytics: leaderboard").
var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Rank politicians by trading performance",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		s := openStore(ctx)
		defer s.Close()

		entries, err := leaderboard(ctx, s, analyticsParty, analyticsState, analyticsMinTrades)
		if err != nil {
			log.Fatal().Err(err).Msg("analytics: could not build leaderboard")
		}

		printTable(leaderboardTable(entries))
	},
}

// leaderboard replays each eligible politician's trades through a fresh
// FIFO engine, evaluates every closed lot, aggregates per politician, and
// ranks the result. Percentile ranks are computed fresh every call, never
// cached (spec.md §4.6).
func leaderboard(ctx context.Context, s *store.Store, party, state string, minTrades int) ([]fifo.LeaderboardEntry, error) {
	politicians, err := s.ListPoliticians(ctx, party, state)
	if err != nil {
		return nil, err
	}
	allowed := make(map[string]bool, len(politicians))
	for _, p := range politicians {
		allowed[p.PoliticianID] = true
	}

	trades, err := s.AnalyticsTrades(ctx, "")
	if err != nil {
		return nil, err
	}

	byPolitician := make(map[string][]store.AnalyticsTradeRow)
	for _, t := range trades {
		if !allowed[t.PoliticianID] {
			continue
		}
		byPolitician[t.PoliticianID] = append(byPolitician[t.PoliticianID], t)
	}

	aggregates := make([]fifo.PoliticianAggregate, 0, len(byPolitician))
	for politicianID, rows := range byPolitician {
		engine := fifo.NewEngine()
		for _, r := range rows {
			engine.Apply(fifo.Trade{
				PoliticianID:   r.PoliticianID,
				Ticker:         r.Ticker,
				TxType:         fifo.TxType(r.TxType),
				TxDate:         r.TxDate,
				TxID:           r.TxID,
				Shares:         r.EstimatedShares,
				Price:          r.TradeDatePrice,
				BenchmarkType:  r.BenchmarkType,
				BenchmarkPrice: r.BenchmarkPrice,
			})
		}

		var metrics []fifo.LotMetrics
		for _, lot := range engine.ClosedLots() {
			benchType := fifo.BenchmarkType(lot.BuyBenchmarkType, lot.SellBenchmarkType)
			benchmarkReturn, hasBenchmark := 0.0, false
			if benchType != "" && lot.BuyBenchmarkPrice > 0 {
				benchmarkReturn = fifo.AbsoluteReturn(lot.BuyBenchmarkPrice, lot.SellBenchmarkPrice)
				hasBenchmark = true
			}
			metrics = append(metrics, fifo.Evaluate(lot, benchmarkReturn, hasBenchmark))
		}

		aggregates = append(aggregates, fifo.Aggregate(politicianID, metrics))
	}

	aggregates = fifo.MinTradesFilter(aggregates, minTrades)
	return fifo.Leaderboard(aggregates), nil
}

func leaderboardTable(entries []fifo.LeaderboardEntry) output.Table {
	t := output.Table{Headers: []string{
		"politician_id", "trade_count", "win_rate", "avg_return",
		"avg_alpha_spy", "avg_alpha_sector", "avg_holding_days", "percentile",
	}}
	for _, e := range entries {
		t.Rows = append(t.Rows, []string{
			e.PoliticianID,
			strconv.Itoa(e.TradeCount),
			strconv.FormatFloat(e.WinRate, 'f', 2, 64),
			strconv.FormatFloat(e.AvgReturn, 'f', 2, 64),
			optionalFloat(e.AvgAlphaSPY, e.HasAlphaSPY),
			optionalFloat(e.AvgAlphaSector, e.HasAlphaSector),
			optionalFloat(e.AvgHoldingDays, e.HasHoldingDays),
			strconv.FormatFloat(e.Percentile, 'f', 3, 64),
		})
	}
	return t
}

func optionalFloat(v float64, has bool) string {
	if !has {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func init() {
	rootCmd.AddCommand(analyticsCmd)
	analyticsCmd.Flags().StringVar(&analyticsParty, "party", "", "filter by party")
	analyticsCmd.Flags().StringVar(&analyticsState, "state", "", "filter by state")
	analyticsCmd.Flags().IntVar(&analyticsMinTrades, "min-trades", 0, "minimum closed trades required to be ranked")
}
