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
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "capitoltraders",
	Short: "capitoltraders ingests and enriches congressional stock-trade disclosures",
	Long: `capitoltraders ingests U.S. congressional stock-trade disclosures and
enriches them with share-price history, committee membership, and campaign
donation data, persisting everything to a local database.

The resulting database answers questions like "which politicians trade a
given issuer" and "how does a politician's trading performance compare to a
benchmark" via the sync, portfolio, analytics, and donations commands.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called once by main.main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.capitoltraders.toml)")

	rootCmd.PersistentFlags().String("db", "capitoltraders.db", "path to the sqlite database file")
	if err := viper.BindPFlag("db.path", rootCmd.PersistentFlags().Lookup("db")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for db failed")
	}

	rootCmd.PersistentFlags().StringP("format", "f", "table", "output format: table, json, csv, markdown, xml")
	if err := viper.BindPFlag("output.format", rootCmd.PersistentFlags().Lookup("format")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for format failed")
	}

	rootCmd.PersistentFlags().String("source-url", "https://example-disclosures.invalid", "base URL of the trade-disclosure source site")
	if err := viper.BindPFlag("source.url", rootCmd.PersistentFlags().Lookup("source-url")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for source-url failed")
	}

	rootCmd.PersistentFlags().String("price-url", "https://example-prices.invalid", "base URL of the price service")
	if err := viper.BindPFlag("price.url", rootCmd.PersistentFlags().Lookup("price-url")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for price-url failed")
	}

	rootCmd.PersistentFlags().String("donation-url", "https://api.open.fec.gov", "base URL of the donation service")
	if err := viper.BindPFlag("donation.url", rootCmd.PersistentFlags().Lookup("donation-url")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for donation-url failed")
	}
}

// initConfig loads an optional .env file, then reads config file and ENV
// variables. OPENFEC_API_KEY in particular is expected to arrive this way
// (spec.md §6: "optionally seeded from a .env file").
func initConfig() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, continuing without it")
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("toml")
		viper.SetConfigName(".capitoltraders")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		log.Info().Str("ConfigFN", viper.ConfigFileUsed()).Msg("using config file")
	}
}
