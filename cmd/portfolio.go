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
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/capitol-traders/capitoltraders/internal/fifo"
	"github.com/capitol-traders/capitoltraders/internal/output"
	"github.com/capitol-traders/capitoltraders/internal/price"
	"github.com/capitol-traders/capitoltraders/internal/store"
)

var (
	portfolioPolitician string
	benchmarkTicker     string
)

// portfolioCmd materializes open positions by replaying every trade through
// the FIFO engine and persisting the resulting share/cost-basis totals
// (spec.md §6 "portfolio: materialize positions").
var portfolioCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Materialize open positions from the trade ledger",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		s := openStore(ctx)
		defer s.Close()

		pc := newPriceClient()

		if err := materializeEstimatesAndBenchmarks(ctx, s, pc, portfolioPolitician); err != nil {
			log.Fatal().Err(err).Msg("portfolio: could not backfill share estimates/benchmarks")
		}

		rows, err := s.TradesForPolitician(ctx, portfolioPolitician)
		if err != nil {
			log.Fatal().Err(err).Msg("portfolio: could not load trades")
		}

		engine := fifo.NewEngine()
		for _, r := range rows {
			engine.Apply(fifo.Trade{
				PoliticianID:   r.PoliticianID,
				Ticker:         r.IssuerTicker,
				TxType:         fifo.TxType(r.TxType),
				TxDate:         r.TxDate,
				TxID:           r.TxID,
				Shares:         r.EstimatedShares,
				Price:          r.TradeDatePrice,
				BenchmarkType:  r.BenchmarkType,
				BenchmarkPrice: r.BenchmarkPrice,
				LowConfidence:  r.LowConfidenceEstimate,
			})
		}

		for _, w := range engine.Warnings() {
			log.Warn().Str("PoliticianID", w.PoliticianID).Str("Ticker", w.Ticker).Int64("TxID", w.TxID).Msg(w.Message)
		}

		now := time.Now().UTC().Format(time.RFC3339)
		for _, pair := range engine.OpenTickers() {
			shares := engine.OpenShares(pair.PoliticianID, pair.Ticker)
			costBasis := engine.OpenCostBasis(pair.PoliticianID, pair.Ticker)
			if err := s.UpsertPosition(ctx, pair.PoliticianID, pair.Ticker, shares, costBasis, now); err != nil {
				log.Error().Err(err).Str("PoliticianID", pair.PoliticianID).Str("Ticker", pair.Ticker).Msg("portfolio: could not persist position")
			}
		}

		var portfolioRows []store.PortfolioRow
		if portfolioPolitician != "" {
			portfolioRows, err = s.PositionsForPolitician(ctx, portfolioPolitician)
		} else {
			portfolioRows, err = s.AllPositions(ctx)
		}
		if err != nil {
			log.Fatal().Err(err).Msg("portfolio: could not load positions")
		}

		printTable(portfolioTable(portfolioRows))
	},
}

func portfolioTable(rows []store.PortfolioRow) output.Table {
	t := output.Table{Headers: []string{"politician_id", "ticker", "shares_held", "cost_basis", "last_updated"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.PoliticianID, r.Ticker,
			strconv.FormatFloat(r.SharesHeld, 'f', -1, 64),
			strconv.FormatFloat(r.CostBasis, 'f', -1, 64),
			r.LastUpdated,
		})
	}
	return t
}

// materializeEstimatesAndBenchmarks backfills estimated_shares for any trade
// that has a trade_date_price but no estimate yet, and the benchmark fields
// for any trade without a benchmark type, so the FIFO pass sees a share
// count and (where available) a benchmark return to compare against. Trades
// with no trade_date_price get no share estimate (spec.md §4.6 "Share
// estimation").
func materializeEstimatesAndBenchmarks(ctx context.Context, s *store.Store, pc *price.Client, politicianID string) error {
	rows, err := s.TradesForPolitician(ctx, politicianID)
	if err != nil {
		return err
	}

	normalizedBenchmark := price.NormalizeTicker(benchmarkTicker, 0, nil)

	for _, r := range rows {
		changed := false

		if r.EstimatedShares == 0 && r.TradeDatePrice > 0 {
			if shares, ok := fifo.EstimateShares(r.SizeRangeLow, r.SizeRangeHigh, r.TradeDatePrice); ok {
				r.EstimatedShares = shares
				r.LowConfidenceEstimate = !fifo.ValidateEstimate(r.SizeRangeLow, r.SizeRangeHigh, r.TradeDatePrice, shares)
				changed = true
			}
		}

		if r.BenchmarkType == "" && normalizedBenchmark != "" {
			if value, found, err := pc.PriceOn(ctx, normalizedBenchmark, r.TxDate); err != nil {
				log.Warn().Err(err).Str("TxDate", r.TxDate).Msg("portfolio: benchmark price lookup failed")
			} else if found {
				r.BenchmarkType = "spy"
				r.BenchmarkPrice = value
				changed = true
			}
		}

		if changed {
			if err := s.UpsertTrade(ctx, r); err != nil {
				return err
			}
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(portfolioCmd)
	portfolioCmd.Flags().StringVar(&portfolioPolitician, "politician", "", "limit to a single politician id")
	portfolioCmd.Flags().StringVar(&benchmarkTicker, "benchmark", "SPY", "ticker used as the benchmark return series")
}
