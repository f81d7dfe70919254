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

// IssuerStore is the persistence surface pass 3 needs.
type IssuerStore interface {
	UnenrichedIssuers(ctx context.Context, limit int) ([]store.IssuerRow, error)
	UpsertIssuer(ctx context.Context, row store.IssuerRow) error
	UpsertEod(ctx context.Context, row store.EodRow) error
	SetMeta(ctx context.Context, key, value string) error
}

// IssuerPass fetches issuer_detail(id) for every issuer never enriched,
// populating performance metrics and end-of-day price history (spec.md
// §4.5 pass 3).
type IssuerPass struct {
	Store  IssuerStore
	Scrape *scrape.Client
	Opts   Options
}

type issuerResult struct {
	row    store.IssuerRow
	detail scrape.IssuerDetail
}

// Run selects the unenriched backlog (bounded by limit) and enriches it.
func (p *IssuerPass) Run(ctx context.Context, limit int) (PassSummary, error) {
	rows, err := p.Store.UnenrichedIssuers(ctx, limit)
	if err != nil {
		return PassSummary{}, err
	}
	if len(rows) == 0 {
		return PassSummary{}, nil
	}

	runner := &Runner[store.IssuerRow, issuerResult]{
		Options: p.Opts,
		Fetch: func(ctx context.Context, row store.IssuerRow) (issuerResult, error) {
			detail, err := p.Scrape.IssuerDetail(ctx, row.IssuerID)
			if err != nil {
				return issuerResult{}, err
			}
			return issuerResult{row: row, detail: detail}, nil
		},
		IsPermanent: scrape.IsPermanent,
		CommitBatch: func(ctx context.Context, batch []issuerResult) error {
			var last int64
			for _, r := range batch {
				row := r.row
				row.Sector = r.detail.Sector
				row.GicsSector = r.detail.GicsSector
				row.Country = r.detail.Country
				row.Perf1W = r.detail.Perf1W
				row.Perf1M = r.detail.Perf1M
				row.Perf3M = r.detail.Perf3M
				row.Perf1Y = r.detail.Perf1Y
				row.PerfYTD = r.detail.PerfYTD
				row.EnrichedAt = time.Now().UTC().Format(time.RFC3339)

				if err := p.Store.UpsertIssuer(ctx, row); err != nil {
					return err
				}
				for _, bar := range r.detail.EOD {
					if err := p.Store.UpsertEod(ctx, store.EodRow{
						IssuerID:  row.IssuerID,
						EventDate: bar.Date,
						Open:      bar.Open,
						High:      bar.High,
						Low:       bar.Low,
						Close:     bar.Close,
						Volume:    bar.Volume,
					}); err != nil {
						return err
					}
				}
				if row.IssuerID > last {
					last = row.IssuerID
				}
			}
			if last > 0 {
				return p.Store.SetMeta(ctx, store.CheckpointLastEnrichedIssuer, formatInt(last))
			}
			return nil
		},
	}

	return runner.Run(ctx, rows), nil
}
