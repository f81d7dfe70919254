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

	"github.com/capitol-traders/capitoltraders/internal/enrich"
)

var (
	enrichPricesLimit  int
	enrichPricesDryRun bool
)

// enrichPricesCmd runs the price enrichment pass alone, for callers who
// want a fast price refresh without a full sync (spec.md §6).
var enrichPricesCmd = &cobra.Command{
	Use:   "enrich-prices",
	Short: "Run the price enrichment pass only",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		s := openStore(ctx)
		defer s.Close()

		pass := &enrich.PricePass{Store: s, Price: newPriceClient(), Opts: enrich.Options{DryRun: enrichPricesDryRun}}
		summary, err := pass.Run(ctx, enrichPricesLimit)
		logPassSummary("prices", summary, err)
		if err != nil || summary.CircuitTripped {
			log.Fatal().Msg("enrich-prices: pass did not complete cleanly")
		}
	},
}

func init() {
	rootCmd.AddCommand(enrichPricesCmd)
	enrichPricesCmd.Flags().IntVar(&enrichPricesLimit, "limit", 500, "maximum rows to enrich")
	enrichPricesCmd.Flags().BoolVar(&enrichPricesDryRun, "dry-run", false, "report how many rows would be enriched without fetching or writing anything")
}
