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
	"sync"

	"github.com/rs/zerolog"

	"github.com/capitol-traders/capitoltraders/internal/donation"
	"github.com/capitol-traders/capitoltraders/internal/store"
)

// DonationStore is the persistence surface pass 5 needs.
type DonationStore interface {
	DonationCursor(ctx context.Context, politicianID, committeeID string) (store.DonationCursorRow, error)
	InsertDonation(ctx context.Context, row store.DonationRow) (bool, error)
	AdvanceDonationCursor(ctx context.Context, politicianID, committeeID, lastIndex, lastReceiptDate string, newRows int64) error
}

// DonationPass resolves each politician's committees and keyset-paginates
// Schedule A contributions for each, one politician per goroutine up to
// Opts.Permits, bounded further by the donation client's own concurrency
// semaphore (spec.md §4.5 pass 5). Unlike the other four passes its unit
// of work is a whole paginated sync rather than one row, so it drives its
// own breaker/semaphore instead of the generic Runner.
type DonationPass struct {
	Store    DonationStore
	Resolver *donation.Resolver
	Client   *donation.Client
	Opts     Options
}

// PoliticianRef is the minimal shape the pass needs per politician: its id
// and a name hint to search the donation service's candidate index with on
// a cache miss.
type PoliticianRef struct {
	PoliticianID  string
	CandidateHint string
}

// Run syncs donations for every politician in refs. When Opts.DryRun is set,
// it reports how many politicians would be synced without resolving a single
// committee or fetching a page (spec.md §4.5 "Dry-run").
func (p *DonationPass) Run(ctx context.Context, refs []PoliticianRef) PassSummary {
	if p.Opts.DryRun {
		return PassSummary{Attempted: len(refs), DryRun: true}
	}

	permits := p.Opts.Permits
	if permits <= 0 {
		permits = DefaultPermits
	}
	breaker := newCircuitBreaker(p.Opts.BreakerThreshold)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sem := make(chan struct{}, permits)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var outcome PassSummary
	log := zerolog.Ctx(ctx)

	for _, ref := range refs {
		ref := ref
		if runCtx.Err() != nil {
			break
		}
		select {
		case sem <- struct{}{}:
		case <-runCtx.Done():
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			synced, err := p.syncPolitician(runCtx, ref)

			mu.Lock()
			defer mu.Unlock()
			outcome.Attempted++
			if err != nil {
				outcome.Failed++
				log.Warn().Err(err).Str("PoliticianID", ref.PoliticianID).Msg("enrich: donation sync failed")
				if breaker.recordFailure() {
					outcome.CircuitTripped = true
					log.Error().Msg("enrich: donation circuit breaker tripped, stopping pass")
					cancel()
				}
				return
			}
			breaker.recordSuccess()
			outcome.Succeeded++
			_ = synced
		}()
	}

	wg.Wait()
	return outcome
}

// syncPolitician resolves committees for one politician and drains every
// committee's Schedule A pages to exhaustion, advancing the persisted
// cursor after each page so a later failure resumes rather than re-fetches
// (spec.md §4.4, §8 "Checkpoint monotonicity").
func (p *DonationPass) syncPolitician(ctx context.Context, ref PoliticianRef) (int64, error) {
	committeeIDs, err := p.Resolver.Resolve(ctx, ref.PoliticianID, ref.CandidateHint)
	if err != nil {
		return 0, err
	}

	var total int64
	for _, committeeID := range committeeIDs {
		if ctx.Err() != nil {
			return total, ctx.Err()
		}

		cursorRow, err := p.Store.DonationCursor(ctx, ref.PoliticianID, committeeID)
		if err != nil {
			return total, err
		}
		cursor := donation.Cursor{LastIndex: cursorRow.LastIndex, LastReceiptDate: cursorRow.LastReceiptDate}

		for {
			page, err := p.Client.ScheduleAPage(ctx, committeeID, cursor)
			if err != nil {
				return total, err
			}

			var newRows int64
			for _, d := range page.Donations {
				inserted, err := p.Store.InsertDonation(ctx, store.DonationRow{
					SubID:               d.SubID,
					PoliticianID:        ref.PoliticianID,
					CommitteeID:         committeeID,
					ContributorName:     d.ContributorName,
					ContributorEmployer: d.ContributorEmployer,
					Amount:              d.Amount,
					ReceiptDate:         d.ReceiptDate,
					Cycle:               d.Cycle,
					State:               d.State,
					Zip:                 d.Zip,
				})
				if err != nil {
					return total, err
				}
				if inserted {
					newRows++
				}
			}
			total += newRows

			if err := p.Store.AdvanceDonationCursor(ctx, ref.PoliticianID, committeeID, page.Next.LastIndex, page.Next.LastReceiptDate, newRows); err != nil {
				return total, err
			}

			if !page.HasMore {
				break
			}
			cursor = page.Next
		}
	}

	return total, nil
}
