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

	"github.com/capitol-traders/capitoltraders/internal/output"
	"github.com/capitol-traders/capitoltraders/internal/resolve"
	"github.com/capitol-traders/capitoltraders/internal/store"
)

var (
	donationsSeedFile string
	donationsResolve  bool
)

// donationsCmd queries and optionally resolves donation records for a
// politician (spec.md §6 "donations: query/aggregate").
var donationsCmd = &cobra.Command{
	Use:   "donations <politician-id>",
	Short: "List campaign donations for a politician",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		s := openStore(ctx)
		defer s.Close()

		rows, err := s.DonationsForPolitician(ctx, args[0])
		if err != nil {
			log.Fatal().Err(err).Msg("donations: could not load donations")
		}

		var resolver *resolve.Resolver
		if donationsResolve {
			resolver, err = buildEmployerResolver(ctx, s, donationsSeedFile)
			if err != nil {
				log.Fatal().Err(err).Msg("donations: could not build employer resolver")
			}
		}

		printTable(donationsTable(rows, resolver))
	},
}

func buildEmployerResolver(ctx context.Context, s *store.Store, seedPath string) (*resolve.Resolver, error) {
	seed := map[string]string{}
	if seedPath != "" {
		loaded, err := resolve.LoadSeed(seedPath)
		if err != nil {
			return nil, err
		}
		seed = loaded
	}

	issuerRows, err := s.AllIssuers(ctx)
	if err != nil {
		return nil, err
	}
	candidates := make([]resolve.IssuerCandidate, len(issuerRows))
	for i, r := range issuerRows {
		candidates[i] = resolve.IssuerCandidate{IssuerID: r.IssuerID, Ticker: r.Ticker, Name: r.Name}
	}

	return resolve.NewResolver(seed, candidates), nil
}

func donationsTable(rows []store.DonationRow, resolver *resolve.Resolver) output.Table {
	headers := []string{"sub_id", "committee_id", "contributor_name", "contributor_employer", "amount", "receipt_date"}
	if resolver != nil {
		headers = append(headers, "suggested_issuer", "confidence")
	}

	t := output.Table{Headers: headers}
	for _, r := range rows {
		row := []string{
			r.SubID, r.CommitteeID, r.ContributorName, r.ContributorEmployer,
			strconv.FormatFloat(r.Amount, 'f', 2, 64), r.ReceiptDate,
		}
		if resolver != nil {
			suggestions := resolver.Resolve(r.ContributorEmployer)
			if len(suggestions) > 0 {
				row = append(row, suggestions[0].Ticker, strconv.FormatFloat(suggestions[0].Confidence, 'f', 2, 64))
			} else {
				row = append(row, "", "")
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func init() {
	rootCmd.AddCommand(donationsCmd)
	donationsCmd.Flags().BoolVar(&donationsResolve, "resolve", false, "suggest an issuer for each donation's contributor employer")
	donationsCmd.Flags().StringVar(&donationsSeedFile, "seed", "", "path to the curated employer->issuer seed mapping TOML file")
}
