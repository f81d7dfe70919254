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
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/capitol-traders/capitoltraders/internal/donation"
	"github.com/capitol-traders/capitoltraders/internal/output"
	"github.com/capitol-traders/capitoltraders/internal/price"
	"github.com/capitol-traders/capitoltraders/internal/scrape"
	"github.com/capitol-traders/capitoltraders/internal/store"
)

// openStore opens (and migrates) the database named by the --db flag, the
// way cmd/run.go's library.NewFromDB call gives every command a ready-to-use
// handle.
func openStore(ctx context.Context) *store.Store {
	s, err := store.Open(ctx, viper.GetString("db.path"))
	if err != nil {
		log.Fatal().Err(err).Str("Path", viper.GetString("db.path")).Msg("could not open database")
	}
	if err := s.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("could not migrate database")
	}
	return s
}

func newScrapeClient() *scrape.Client {
	return scrape.New(scrape.Config{BaseURL: viper.GetString("source.url")})
}

func newPriceClient() *price.Client {
	return price.New(price.Config{BaseURL: viper.GetString("price.url")})
}

// requireOpenFECKey reads OPENFEC_API_KEY from the environment (seeded, if
// present, by the .env file initConfig already loaded) and fails with a
// clear, non-cryptic error rather than sending an unauthenticated request
// (spec.md §6).
func requireOpenFECKey() string {
	key := os.Getenv("OPENFEC_API_KEY")
	if key == "" {
		log.Fatal().Msg("OPENFEC_API_KEY is not set; export it or add it to a .env file before running donation commands")
	}
	return key
}

func newDonationClient() *donation.Client {
	return donation.New(donation.Config{
		BaseURL: viper.GetString("donation.url"),
		ApiKey:  requireOpenFECKey(),
	})
}

// outputFormat resolves the --format/-f persistent flag to an
// output.Format, defaulting to table.
func outputFormat() output.Format {
	f := output.Format(viper.GetString("output.format"))
	if f == "" {
		return output.FormatTable
	}
	return f
}

// printTable renders t in the configured output format and writes it to
// stdout, or fails loudly on an unsupported format name.
func printTable(t output.Table) {
	rendered, err := output.Render(t, outputFormat())
	if err != nil {
		log.Fatal().Err(err).Str("Format", string(outputFormat())).Msg("could not render output")
	}
	os.Stdout.WriteString(rendered)
	if len(rendered) == 0 || rendered[len(rendered)-1] != '\n' {
		os.Stdout.WriteString("\n")
	}
}
