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

// PoliticianStore is the persistence surface pass 2 needs.
type PoliticianStore interface {
	UnenrichedPoliticians(ctx context.Context, limit int) ([]store.PoliticianRow, error)
	UpsertPolitician(ctx context.Context, row store.PoliticianRow) error
	ReplacePoliticianCommittees(ctx context.Context, politicianID string, committeeCodes []string) error
	AllCommittees(ctx context.Context) []store.Committee
	SetMeta(ctx context.Context, key, value string) error
}

// PoliticianPass enriches politician detail. When the detail payload
// itself carries committee codes, that's authoritative and the O(48)
// committee-filter sweep is skipped for that politician (spec.md §9, open
// question 2: "skip the sweep and prefer the detail payload's own
// committee list when present").
type PoliticianPass struct {
	Store  PoliticianStore
	Scrape *scrape.Client
	Opts   Options
}

type politicianResult struct {
	row        store.PoliticianRow
	detail     scrape.PoliticianDetail
	committees []string
}

// Run selects the unenriched backlog (bounded by limit) and enriches it.
func (p *PoliticianPass) Run(ctx context.Context, limit int) (PassSummary, error) {
	rows, err := p.Store.UnenrichedPoliticians(ctx, limit)
	if err != nil {
		return PassSummary{}, err
	}
	if len(rows) == 0 {
		return PassSummary{}, nil
	}

	committees := p.Store.AllCommittees(ctx)

	runner := &Runner[store.PoliticianRow, politicianResult]{
		Options: p.Opts,
		Fetch: func(ctx context.Context, row store.PoliticianRow) (politicianResult, error) {
			detail, err := p.Scrape.PoliticianDetail(ctx, row.PoliticianID)
			if err != nil {
				return politicianResult{}, err
			}

			if detail.HasCommitteeData {
				return politicianResult{row: row, detail: detail, committees: detail.CommitteeCodes}, nil
			}

			codes, err := p.sweepCommittees(ctx, row.PoliticianID, committees)
			if err != nil {
				return politicianResult{}, err
			}
			return politicianResult{row: row, detail: detail, committees: codes}, nil
		},
		IsPermanent: scrape.IsPermanent,
		CommitBatch: func(ctx context.Context, batch []politicianResult) error {
			var last string
			for _, r := range batch {
				row := r.row
				row.FirstName = r.detail.FirstName
				row.LastName = r.detail.LastName
				row.Party = r.detail.Party
				row.State = r.detail.State
				row.Chamber = r.detail.Chamber
				row.FecCandidateID = r.detail.FecCandidateID
				row.EnrichedAt = time.Now().UTC().Format(time.RFC3339)

				if err := p.Store.UpsertPolitician(ctx, row); err != nil {
					return err
				}
				if err := p.Store.ReplacePoliticianCommittees(ctx, row.PoliticianID, r.committees); err != nil {
					return err
				}
				last = row.PoliticianID
			}
			if last != "" {
				return p.Store.SetMeta(ctx, store.CheckpointLastEnrichedPolitician, last)
			}
			return nil
		},
	}

	return runner.Run(ctx, rows), nil
}

// sweepCommittees performs the O(48) committee-filter sweep: list
// politicians_page(committee=X) for every known committee code and record
// which ones return this politician (spec.md §4.5 pass 2).
func (p *PoliticianPass) sweepCommittees(ctx context.Context, politicianID string, committees []store.Committee) ([]string, error) {
	var matched []string
	for _, c := range committees {
		listings, err := p.Scrape.PoliticiansPage(ctx, c.Code, 1)
		if err != nil {
			return nil, err
		}
		for _, l := range listings {
			if l.PoliticianID == politicianID {
				matched = append(matched, c.Code)
				break
			}
		}
	}
	return matched, nil
}
