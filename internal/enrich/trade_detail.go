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

	"github.com/capitol-traders/capitoltraders/internal/scrape"
	"github.com/capitol-traders/capitoltraders/internal/store"
)

// TradeDetailStore is the persistence surface pass 1 needs.
type TradeDetailStore interface {
	UnenrichedTradeDetails(ctx context.Context, limit int) ([]store.TradeRow, error)
	UpsertTrade(ctx context.Context, row store.TradeRow) error
	ReplaceTradeCommittees(ctx context.Context, txID int64, committeeCodes []string) error
	ReplaceTradeLabels(ctx context.Context, txID int64, labels []string) error
	MarkUnenrichable(ctx context.Context, txID int64, reason string) error
	SetMeta(ctx context.Context, key, value string) error
}

// TradeDetailPass fetches trade_detail(tx_id) for every trade never
// enriched, populating asset_type, size bounds, price, filing URL,
// committees, and labels (spec.md §4.5 pass 1).
type TradeDetailPass struct {
	Store  TradeDetailStore
	Scrape *scrape.Client
	Opts   Options
}

type tradeDetailResult struct {
	row    store.TradeRow
	detail scrape.TradeDetail
}

// Run selects the unenriched backlog (bounded by limit) and enriches it.
func (p *TradeDetailPass) Run(ctx context.Context, limit int) (PassSummary, error) {
	rows, err := p.Store.UnenrichedTradeDetails(ctx, limit)
	if err != nil {
		return PassSummary{}, err
	}
	if len(rows) == 0 {
		return PassSummary{}, nil
	}

	runner := &Runner[store.TradeRow, tradeDetailResult]{
		Options: p.Opts,
		Fetch: func(ctx context.Context, row store.TradeRow) (tradeDetailResult, error) {
			detail, err := p.Scrape.TradeDetail(ctx, row.TxID)
			if err != nil {
				return tradeDetailResult{}, err
			}
			return tradeDetailResult{row: row, detail: detail}, nil
		},
		IsPermanent: scrape.IsPermanent,
		CommitBatch: func(ctx context.Context, batch []tradeDetailResult) error {
			var last int64
			for _, r := range batch {
				row := r.row
				row.AssetType = r.detail.AssetType
				row.SizeRangeLow = r.detail.SizeRangeLow
				row.SizeRangeHigh = r.detail.SizeRangeHigh
				row.Price = r.detail.Price
				row.FilingURL = r.detail.FilingURL
				row.EnrichedAt = time.Now().UTC().Format(time.RFC3339)

				if err := p.Store.UpsertTrade(ctx, row); err != nil {
					return err
				}
				if err := p.Store.ReplaceTradeCommittees(ctx, row.TxID, r.detail.CommitteeCodes); err != nil {
					return err
				}
				if err := p.Store.ReplaceTradeLabels(ctx, row.TxID, r.detail.Labels); err != nil {
					return err
				}
				if row.TxID > last {
					last = row.TxID
				}
			}
			if last > 0 {
				return p.Store.SetMeta(ctx, store.CheckpointLastEnrichedTrade, formatInt(last))
			}
			return nil
		},
		MarkUnenrichable: func(ctx context.Context, row store.TradeRow, reason string) error {
			return p.Store.MarkUnenrichable(ctx, row.TxID, reason)
		},
	}

	return runner.Run(ctx, rows), nil
}
