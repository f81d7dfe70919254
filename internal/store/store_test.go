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
package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "capitoltraders.db")
	s, err := Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seedPoliticianAndIssuer(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.UpsertPolitician(ctx, PoliticianRow{PoliticianID: "P001"}))
	require.NoError(t, s.UpsertIssuer(ctx, IssuerRow{IssuerID: 1, Ticker: "ACME"}))
}

// Sentinel upsert preservation: spec.md §8 "Upsert preservation" and the
// concrete scenario in §8 ("Sentinel upsert").
func TestUpsertTrade_SentinelPreservation(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seedPoliticianAndIssuer(t, s)

	require.NoError(t, s.UpsertTrade(ctx, TradeRow{
		TxID: 100, PoliticianID: "P001", IssuerID: 1,
		FilingURL:  "https://x/y",
		EnrichedAt: "2024-01-01T00:00:00Z",
	}))

	// A later listing re-sync arrives with enrichable fields at default.
	require.NoError(t, s.UpsertTrade(ctx, TradeRow{
		TxID: 100, PoliticianID: "P001", IssuerID: 1,
		FilingURL: "",
	}))

	row, ok, err := s.GetTrade(ctx, 100)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "https://x/y", row.FilingURL)
	require.Equal(t, "2024-01-01T00:00:00Z", row.EnrichedAt)
}

// Migration idempotence: spec.md §8.
func TestMigrate_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capitoltraders.db")
	ctx := context.Background()

	s1, err := Open(ctx, path)
	require.NoError(t, err)
	v1, ok, err := s1.GetMeta(ctx, schemaVersionKey)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, s1.Close())

	s2, err := Open(ctx, path)
	require.NoError(t, err)
	defer s2.Close()
	v2, ok, err := s2.GetMeta(ctx, schemaVersionKey)
	require.NoError(t, err)
	require.True(t, ok)

	require.Equal(t, v1, v2)

	// Re-applying migrations over an already-migrated database must not error.
	require.NoError(t, s2.Migrate(ctx))
}

func TestUpsertPolitician_SentinelPreservation(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertPolitician(ctx, PoliticianRow{
		PoliticianID: "P002", FirstName: "Jane", LastName: "Doe", Party: "D", State: "CA",
		Chamber: "house", EnrichedAt: "2024-02-01T00:00:00Z",
	}))
	require.NoError(t, s.UpsertPolitician(ctx, PoliticianRow{PoliticianID: "P002"}))

	row, ok, err := s.GetPolitician(ctx, "P002")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Jane", row.FirstName)
	require.Equal(t, "D", row.Party)
}

func TestInsertDonation_Dedup(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seedPoliticianAndIssuer(t, s)

	donation := DonationRow{SubID: "SUB1", PoliticianID: "P001", Amount: 100}
	inserted, err := s.InsertDonation(ctx, donation)
	require.NoError(t, err)
	require.True(t, inserted)

	inserted, err = s.InsertDonation(ctx, donation)
	require.NoError(t, err)
	require.False(t, inserted)

	rows, err := s.DonationsForPolitician(ctx, "P001")
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestUpsertPosition_FloorsAtZero(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seedPoliticianAndIssuer(t, s)

	require.NoError(t, s.UpsertPosition(ctx, "P001", "ACME", -5, 0, "2024-01-01T00:00:00Z"))

	rows, err := s.PositionsForPolitician(ctx, "P001")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, float64(0), rows[0].SharesHeld)
}

func TestAnalyticsTrades_DeterministicOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seedPoliticianAndIssuer(t, s)

	require.NoError(t, s.UpsertTrade(ctx, TradeRow{TxID: 3, PoliticianID: "P001", IssuerID: 1, TxDate: "2024-01-02"}))
	require.NoError(t, s.UpsertTrade(ctx, TradeRow{TxID: 1, PoliticianID: "P001", IssuerID: 1, TxDate: "2024-01-01"}))
	require.NoError(t, s.UpsertTrade(ctx, TradeRow{TxID: 2, PoliticianID: "P001", IssuerID: 1, TxDate: "2024-01-01"}))

	rows, err := s.AnalyticsTrades(ctx, "P001")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, []int64{1, 2, 3}, []int64{rows[0].TxID, rows[1].TxID, rows[2].TxID})
}
