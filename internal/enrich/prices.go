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
package enrich

import (
	"context"
	"time"

	"github.com/capitol-traders/capitoltraders/internal/price"
	"github.com/capitol-traders/capitoltraders/internal/store"
)

// PriceStore is the persistence surface pass 4 needs.
type PriceStore interface {
	UnenrichedPrices(ctx context.Context, limit int) ([]store.TradeRow, error)
	UpsertTrade(ctx context.Context, row store.TradeRow) error
	SetMeta(ctx context.Context, key, value string) error
	TickerOverrides(ctx context.Context) (map[int64]string, error)
}

// PricePass fills trade_date_price and current_price for trades never
// price-enriched. Repeated (ticker, date) lookups across the batch collapse
// to one upstream call each through the price client's own memoization,
// satisfying the dedup requirement without per-pass bookkeeping (spec.md
// §4.5 pass 4).
type PricePass struct {
	Store  PriceStore
	Price  *price.Client
	Opts   Options
	Today  string // YYYY-MM-DD; injected so the pass is deterministic to test
}

type priceResult struct {
	row            store.TradeRow
	tradeDatePrice float64
	currentPrice   float64
}

// Run selects the unenriched backlog (bounded by limit) and enriches it.
func (p *PricePass) Run(ctx context.Context, limit int) (PassSummary, error) {
	rows, err := p.Store.UnenrichedPrices(ctx, limit)
	if err != nil {
		return PassSummary{}, err
	}
	if len(rows) == 0 {
		return PassSummary{}, nil
	}

	today := p.Today
	if today == "" {
		today = time.Now().UTC().Format("2006-01-02")
	}

	overrides, err := p.Store.TickerOverrides(ctx)
	if err != nil {
		return PassSummary{}, err
	}
	lookup := price.OverrideLookup(func(issuerID int64) (string, bool) {
		ticker, ok := overrides[issuerID]
		return ticker, ok
	})

	runner := &Runner[store.TradeRow, priceResult]{
		Options:     p.Opts,
		IsPermanent: func(error) bool { return false }, // price lookups never permanently fail a row; unknown tickers are Ok(None)
		Fetch: func(ctx context.Context, row store.TradeRow) (priceResult, error) {
			ticker := price.NormalizeTicker(row.IssuerTicker, row.IssuerID, lookup)
			tradeDatePrice, _, err := p.Price.PriceOn(ctx, ticker, row.TxDate)
			if err != nil {
				return priceResult{}, err
			}
			currentPrice, _, err := p.Price.LatestPrice(ctx, ticker)
			if err != nil {
				return priceResult{}, err
			}
			return priceResult{row: row, tradeDatePrice: tradeDatePrice, currentPrice: currentPrice}, nil
		},
		CommitBatch: func(ctx context.Context, batch []priceResult) error {
			for _, r := range batch {
				row := r.row
				row.TradeDatePrice = r.tradeDatePrice
				row.CurrentPrice = r.currentPrice
				row.PriceEnrichedAt = time.Now().UTC().Format(time.RFC3339)
				if err := p.Store.UpsertTrade(ctx, row); err != nil {
					return err
				}
			}
			return p.Store.SetMeta(ctx, store.CheckpointLastPriceEnrichDate, today)
		},
	}

	return runner.Run(ctx, rows), nil
}
