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

	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/rs/zerolog/log"
)

// PortfolioRow is the typed read view over the positions table's columns
// (spec.md §4.1 read contract).
type PortfolioRow struct {
	PoliticianID string  `db:"politician_id"`
	Ticker       string  `db:"ticker"`
	SharesHeld   float64 `db:"shares_held"`
	CostBasis    float64 `db:"cost_basis"`
	LastUpdated  string  `db:"last_updated"`
}

// UpsertPosition materializes a derived position. shares_held is floored at
// zero: a computation that would drive it negative is logged and clamped,
// per the "Position non-negativity" invariant in spec.md §3 and §8.
func (s *Store) UpsertPosition(ctx context.Context, politicianID, ticker string, sharesHeld, costBasis float64, lastUpdated string) error {
	if sharesHeld < 0 {
		log.Warn().
			Str("PoliticianID", politicianID).
			Str("Ticker", ticker).
			Float64("SharesHeld", sharesHeld).
			Msg("computed negative position, flooring at zero")
		sharesHeld = 0
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO positions(
			politician_id, ticker, shares_held, cost_basis, last_updated
		) VALUES(?, ?, ?, ?, ?)
		ON CONFLICT(politician_id, ticker) DO UPDATE SET
			shares_held = excluded.shares_held,
			cost_basis = excluded.cost_basis,
			last_updated = excluded.last_updated`,
		politicianID, ticker, sharesHeld, costBasis, lastUpdated)
	return classifyErr("upsert-position", err)
}

// PositionsForPolitician returns every materialized position for a
// politician, ordered by ticker.
func (s *Store) PositionsForPolitician(ctx context.Context, politicianID string) ([]PortfolioRow, error) {
	var rows []PortfolioRow
	err := sqlscan.Select(ctx, s.db, &rows,
		`SELECT politician_id, ticker, shares_held, cost_basis, last_updated
		 FROM positions WHERE politician_id = ? ORDER BY ticker ASC`, politicianID)
	if err != nil {
		return nil, classifyErr("positions-for-politician", err)
	}
	return rows, nil
}

// AllPositions returns every materialized position, held > 0 only, used by
// the `portfolio` CLI operation's default (non-per-politician) view.
func (s *Store) AllPositions(ctx context.Context) ([]PortfolioRow, error) {
	var rows []PortfolioRow
	err := sqlscan.Select(ctx, s.db, &rows,
		`SELECT politician_id, ticker, shares_held, cost_basis, last_updated
		 FROM positions WHERE shares_held > 0 ORDER BY politician_id ASC, ticker ASC`)
	if err != nil {
		return nil, classifyErr("all-positions", err)
	}
	return rows, nil
}
