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

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/capitol-traders/capitoltraders/internal/donation"
	"github.com/capitol-traders/capitoltraders/internal/enrich"
	"github.com/capitol-traders/capitoltraders/internal/store"
)

var syncDonationsDryRun bool

// syncDonationsCmd runs the donation enrichment pass, scoped to the
// politician ids given as arguments or to every known politician when none
// are given (spec.md §6 "sync-donations: donation pass, per-politician
// scoped").
var syncDonationsCmd = &cobra.Command{
	Use:   "sync-donations [politician-id...]",
	Short: "Sync campaign donation records for one or more politicians",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		s := openStore(ctx)
		defer s.Close()

		dc := newDonationClient()
		resolver := donation.NewResolver(dc, s)

		refs, err := donationRefs(ctx, s, args)
		if err != nil {
			log.Fatal().Err(err).Msg("sync-donations: could not load politicians")
		}
		if len(refs) == 0 {
			log.Warn().Msg("sync-donations: no politicians to sync")
			return
		}

		pass := &enrich.DonationPass{Store: s, Resolver: resolver, Client: dc, Opts: enrich.Options{DryRun: syncDonationsDryRun}}
		summary := pass.Run(ctx, refs)

		event := log.Info()
		if summary.CircuitTripped {
			event = log.Warn()
		}
		event.Int("Attempted", summary.Attempted).
			Int("Succeeded", summary.Succeeded).
			Int("Failed", summary.Failed).
			Bool("CircuitTripped", summary.CircuitTripped).
			Bool("DryRun", summary.DryRun).
			Msg("sync-donations: pass finished")
	},
}

// donationRefs resolves the politician ids named on the command line (or
// every known politician, if none were named) into enrich.PoliticianRef
// values, using full name as the candidate-search hint.
func donationRefs(ctx context.Context, s *store.Store, politicianIDs []string) ([]enrich.PoliticianRef, error) {
	if len(politicianIDs) == 0 {
		rows, err := s.ListPoliticians(ctx, "", "")
		if err != nil {
			return nil, err
		}
		refs := make([]enrich.PoliticianRef, len(rows))
		for i, r := range rows {
			refs[i] = enrich.PoliticianRef{PoliticianID: r.PoliticianID, CandidateHint: r.FirstName + " " + r.LastName}
		}
		return refs, nil
	}

	refs := make([]enrich.PoliticianRef, 0, len(politicianIDs))
	for _, id := range politicianIDs {
		row, found, err := s.GetPolitician(ctx, id)
		if err != nil {
			return nil, err
		}
		if !found {
			log.Warn().Str("PoliticianID", id).Msg("sync-donations: unknown politician id, skipping")
			continue
		}
		refs = append(refs, enrich.PoliticianRef{PoliticianID: row.PoliticianID, CandidateHint: row.FirstName + " " + row.LastName})
	}
	return refs, nil
}

func init() {
	rootCmd.AddCommand(syncDonationsCmd)
	syncDonationsCmd.Flags().BoolVar(&syncDonationsDryRun, "dry-run", false, "report how many politicians would be synced without fetching or writing anything")
}
