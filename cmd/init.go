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
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/capitol-traders/capitoltraders/internal/store"
)

// initConfigFile is the shape written to $HOME/.capitoltraders.toml.
type initConfigFile struct {
	DB struct {
		Path string `toml:"path"`
	} `toml:"db"`
	Source struct {
		URL string `toml:"url"`
	} `toml:"source"`
	Price struct {
		URL string `toml:"url"`
	} `toml:"price"`
	Donation struct {
		URL string `toml:"url"`
	} `toml:"donation"`
}

// initCmd applies the schema migration to the configured database and
// writes a config file capturing the resolved endpoints, so later commands
// don't need every flag repeated (spec.md §6: database path is part of the
// CLI contract every other command accepts).
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the database schema and save a config file",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		dbPath := viper.GetString("db.path")
		log.Info().Str("Path", dbPath).Msg("creating database schema")

		s, err := store.Open(ctx, dbPath)
		if err != nil {
			log.Fatal().Err(err).Msg("could not open database")
		}
		defer s.Close()

		if err := s.Migrate(ctx); err != nil {
			log.Fatal().Err(err).Msg("could not migrate database")
		}
		log.Info().Msg("database schema is up to date")

		var cfg initConfigFile
		cfg.DB.Path = dbPath
		cfg.Source.URL = viper.GetString("source.url")
		cfg.Price.URL = viper.GetString("price.url")
		cfg.Donation.URL = viper.GetString("donation.url")

		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatal().Err(err).Msg("could not determine user home directory")
		}

		configFN := filepath.Join(home, ".capitoltraders.toml")
		data, err := toml.Marshal(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("could not marshal configuration data")
		}

		if err := os.WriteFile(configFN, data, 0644); err != nil {
			log.Fatal().Err(err).Str("FileName", configFN).Msg("could not save configuration to file")
		}
		log.Info().Str("ConfigFile", configFN).Msg("saved config file")
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
