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
	"github.com/spf13/viper"

	"github.com/capitol-traders/capitoltraders/internal/enrich"
	"github.com/capitol-traders/capitoltraders/internal/scrape"
	"github.com/capitol-traders/capitoltraders/internal/store"
)

var (
	syncLimit  int
	syncDryRun bool
)

// syncCmd ingests every trade/politician/issuer listing page, then runs
// the trade-detail, politician, issuer, and price enrichment passes
// (spec.md §6 "sync: ingest listings and run enrichment passes").
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Ingest trade, politician, and issuer listings and run enrichment",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		s := openStore(ctx)
		defer s.Close()

		sc := newScrapeClient()

		log.Info().Msg("sync: ingesting listings")
		// Politicians and issuers must land before trades: trades.politician_id
		// and trades.issuer_id are foreign keys, and the connection enforces
		// them (spec.md §3 "every Trade belongs to a Politician and Issuer
		// that already exist").
		if err := syncPoliticianListings(ctx, s, sc); err != nil {
			log.Fatal().Err(err).Msg("sync: politician listing ingest failed")
		}
		if err := syncIssuerListings(ctx, s, sc); err != nil {
			log.Fatal().Err(err).Msg("sync: issuer listing ingest failed")
		}
		if err := syncTradeListings(ctx, s, sc); err != nil {
			log.Fatal().Err(err).Msg("sync: trade listing ingest failed")
		}

		opts := enrich.Options{DryRun: syncDryRun}

		log.Info().Msg("sync: enriching trade detail")
		tradeSummary, err := (&enrich.TradeDetailPass{Store: s, Scrape: sc, Opts: opts}).Run(ctx, syncLimit)
		logPassSummary("trade-detail", tradeSummary, err)

		log.Info().Msg("sync: enriching politicians")
		politicianSummary, err := (&enrich.PoliticianPass{Store: s, Scrape: sc, Opts: opts}).Run(ctx, syncLimit)
		logPassSummary("politicians", politicianSummary, err)

		log.Info().Msg("sync: enriching issuers")
		issuerSummary, err := (&enrich.IssuerPass{Store: s, Scrape: sc, Opts: opts}).Run(ctx, syncLimit)
		logPassSummary("issuers", issuerSummary, err)

		log.Info().Msg("sync: enriching prices")
		priceSummary, err := (&enrich.PricePass{Store: s, Price: newPriceClient(), Opts: opts}).Run(ctx, syncLimit)
		logPassSummary("prices", priceSummary, err)
	},
}

func logPassSummary(pass string, summary enrich.PassSummary, err error) {
	if err != nil {
		log.Error().Err(err).Str("Pass", pass).Msg("sync: pass failed to run")
		return
	}
	event := log.Info()
	if summary.CircuitTripped {
		event = log.Warn()
	}
	event.Str("Pass", pass).
		Int("Attempted", summary.Attempted).
		Int("Succeeded", summary.Succeeded).
		Int("Unenrichable", summary.Unenrichable).
		Int("Failed", summary.Failed).
		Bool("CircuitTripped", summary.CircuitTripped).
		Int("BreakerFailures", summary.BreakerFailures).
		Bool("Aborted", summary.Aborted).
		Bool("DryRun", summary.DryRun).
		Msg("sync: pass finished")
}

// syncTradeListings pages through the trades listing until an empty page,
// upserting every row. Rows that already exist carry their enriched_at
// value forward so a re-sync never un-enriches a trade that has already
// been enriched (spec.md §3, §8 "Upsert preservation").
//
// Every trade references a politician and an issuer that must already
// exist (spec.md §3), so the caller ingests politician and issuer listings
// first. As a safety net against a trade naming an id its own listing page
// never surfaced, this also upserts a bare placeholder parent row (enriched
// later by the politician/issuer passes) before the trade itself, so the
// foreign key the schema enforces (internal/store/migrate.go,
// internal/store/db.go's `foreign_keys(1)` pragma) is always satisfied.
func syncTradeListings(ctx context.Context, s *store.Store, sc *scrape.Client) error {
	for page := 1; ; page++ {
		listings, err := sc.TradesPage(ctx, scrape.TradesFilter{}, page)
		if err != nil {
			return err
		}
		if len(listings) == 0 {
			return nil
		}
		for _, l := range listings {
			if _, found, err := s.GetPolitician(ctx, l.PoliticianID); err != nil {
				return err
			} else if !found {
				if err := s.UpsertPolitician(ctx, store.PoliticianRow{PoliticianID: l.PoliticianID}); err != nil {
					return err
				}
			}
			if _, found, err := s.GetIssuer(ctx, l.IssuerID); err != nil {
				return err
			} else if !found {
				if err := s.UpsertIssuer(ctx, store.IssuerRow{IssuerID: l.IssuerID, Ticker: l.IssuerTicker}); err != nil {
					return err
				}
			}

			row := store.TradeRow{
				TxID:          l.TxID,
				PoliticianID:  l.PoliticianID,
				IssuerID:      l.IssuerID,
				IssuerTicker:  l.IssuerTicker,
				TxType:        l.TxType,
				TxDate:        l.TxDate,
				PubDate:       l.PubDate,
				SizeRangeLow:  l.SizeRangeLow,
				SizeRangeHigh: l.SizeRangeHigh,
			}
			if existing, found, err := s.GetTrade(ctx, l.TxID); err != nil {
				return err
			} else if found {
				row.EnrichedAt = existing.EnrichedAt
			}
			if err := s.UpsertTrade(ctx, row); err != nil {
				return err
			}
		}
		log.Info().Int("Page", page).Int("Rows", len(listings)).Msg("sync: ingested trades page")
	}
}

func syncPoliticianListings(ctx context.Context, s *store.Store, sc *scrape.Client) error {
	for page := 1; ; page++ {
		listings, err := sc.PoliticiansPage(ctx, "", page)
		if err != nil {
			return err
		}
		if len(listings) == 0 {
			return nil
		}
		for _, l := range listings {
			row := store.PoliticianRow{
				PoliticianID: l.PoliticianID,
				FirstName:    l.FirstName,
				LastName:     l.LastName,
				Party:        l.Party,
				State:        l.State,
				Chamber:      l.Chamber,
			}
			if existing, found, err := s.GetPolitician(ctx, l.PoliticianID); err != nil {
				return err
			} else if found {
				row.EnrichedAt = existing.EnrichedAt
			}
			if err := s.UpsertPolitician(ctx, row); err != nil {
				return err
			}
		}
		log.Info().Int("Page", page).Int("Rows", len(listings)).Msg("sync: ingested politicians page")
	}
}

func syncIssuerListings(ctx context.Context, s *store.Store, sc *scrape.Client) error {
	for page := 1; ; page++ {
		listings, err := sc.IssuersPage(ctx, page)
		if err != nil {
			return err
		}
		if len(listings) == 0 {
			return nil
		}
		for _, l := range listings {
			row := store.IssuerRow{
				IssuerID: l.IssuerID,
				Ticker:   l.Ticker,
				Name:     l.Name,
			}
			if existing, found, err := s.GetIssuer(ctx, l.IssuerID); err != nil {
				return err
			} else if found {
				row.EnrichedAt = existing.EnrichedAt
			}
			if err := s.UpsertIssuer(ctx, row); err != nil {
				return err
			}
		}
		log.Info().Int("Page", page).Int("Rows", len(listings)).Msg("sync: ingested issuers page")
	}
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().IntVar(&syncLimit, "limit", 500, "maximum rows to enrich per pass")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "report how many rows each pass would enrich without fetching or writing anything")
	_ = viper.BindPFlag("sync.limit", syncCmd.Flags().Lookup("limit"))
}
