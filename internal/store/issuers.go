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
)

// IssuerRow is the typed read view over the issuers table.
type IssuerRow struct {
	IssuerID   int64   `db:"issuer_id"`
	Ticker     string  `db:"ticker"`
	Name       string  `db:"name"`
	Sector     string  `db:"sector"`
	GicsSector string  `db:"gics_sector"`
	Country    string  `db:"country"`
	Perf1W     float64 `db:"perf_1w"`
	Perf1M     float64 `db:"perf_1m"`
	Perf3M     float64 `db:"perf_3m"`
	Perf1Y     float64 `db:"perf_1y"`
	PerfYTD    float64 `db:"perf_ytd"`
	EnrichedAt string  `db:"enriched_at"`
}

// EodRow is one end-of-day bar for an issuer.
type EodRow struct {
	IssuerID  int64   `db:"issuer_id"`
	EventDate string  `db:"event_date"`
	Open      float64 `db:"open"`
	High      float64 `db:"high"`
	Low       float64 `db:"low"`
	Close     float64 `db:"close"`
	Volume    float64 `db:"volume"`
}

var issuerUpsertCols = []sentinelColumn{
	alwaysColumn("issuer_id"),
	textSentinel("ticker"),
	textSentinel("name"),
	textSentinel("sector"),
	textSentinel("gics_sector"),
	textSentinel("country"),
	numSentinel("perf_1w"),
	numSentinel("perf_1m"),
	numSentinel("perf_3m"),
	numSentinel("perf_1y"),
	numSentinel("perf_ytd"),
	textSentinel("enriched_at"),
}

// UpsertIssuer inserts or sentinel-merges an issuer row (spec.md §3, §8).
func (s *Store) UpsertIssuer(ctx context.Context, row IssuerRow) error {
	query := buildUpsert("issuers", "issuer_id", issuerUpsertCols)
	_, err := s.db.ExecContext(ctx, query,
		row.IssuerID, row.Ticker, row.Name, row.Sector, row.GicsSector, row.Country,
		row.Perf1W, row.Perf1M, row.Perf3M, row.Perf1Y, row.PerfYTD, row.EnrichedAt)
	return classifyErr("upsert-issuer", err)
}

// GetIssuer fetches a single issuer by id.
func (s *Store) GetIssuer(ctx context.Context, issuerID int64) (IssuerRow, bool, error) {
	var row IssuerRow
	err := sqlscan.Get(ctx, s.db, &row,
		`SELECT issuer_id, ticker, name, sector, gics_sector, country, perf_1w, perf_1m, perf_3m, perf_1y, perf_ytd, enriched_at
		 FROM issuers WHERE issuer_id = ?`, issuerID)
	if err != nil {
		if sqlscan.NotFound(err) {
			return IssuerRow{}, false, nil
		}
		return IssuerRow{}, false, classifyErr("get-issuer", err)
	}
	return row, true, nil
}

// GetIssuerByTicker fetches a single issuer by its normalized ticker,
// used by the FIFO/analytics paths and by the employer-to-issuer resolver.
func (s *Store) GetIssuerByTicker(ctx context.Context, ticker string) (IssuerRow, bool, error) {
	var row IssuerRow
	err := sqlscan.Get(ctx, s.db, &row,
		`SELECT issuer_id, ticker, name, sector, gics_sector, country, perf_1w, perf_1m, perf_3m, perf_1y, perf_ytd, enriched_at
		 FROM issuers WHERE ticker = ?`, ticker)
	if err != nil {
		if sqlscan.NotFound(err) {
			return IssuerRow{}, false, nil
		}
		return IssuerRow{}, false, classifyErr("get-issuer-by-ticker", err)
	}
	return row, true, nil
}

// AllIssuers returns every known issuer, used to seed the employer-to-
// issuer resolver's fuzzy-match candidate set.
func (s *Store) AllIssuers(ctx context.Context) ([]IssuerRow, error) {
	var rows []IssuerRow
	err := sqlscan.Select(ctx, s.db,
		&rows, `SELECT issuer_id, ticker, name, sector, gics_sector, country, perf_1w, perf_1m, perf_3m, perf_1y, perf_ytd, enriched_at
		 FROM issuers ORDER BY issuer_id ASC`)
	if err != nil {
		return nil, classifyErr("list-issuers", err)
	}
	return rows, nil
}

// UnenrichedIssuers returns up to limit issuers with enriched_at = ''.
func (s *Store) UnenrichedIssuers(ctx context.Context, limit int) ([]IssuerRow, error) {
	var rows []IssuerRow
	err := sqlscan.Select(ctx, s.db, &rows,
		`SELECT issuer_id, ticker, name, sector, gics_sector, country, perf_1w, perf_1m, perf_3m, perf_1y, perf_ytd, enriched_at
		 FROM issuers WHERE enriched_at = '' ORDER BY issuer_id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, classifyErr("select-unenriched-issuers", err)
	}
	return rows, nil
}

// UpsertEod writes one end-of-day bar, always overwriting (EOD bars have
// no sentinel/listing-default origin -- every write comes from the issuer
// enrichment pass, so the teacher's unconditional EXCLUDED.col overwrite
// from data/eod.go applies unchanged here).
func (s *Store) UpsertEod(ctx context.Context, row EodRow) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO issuer_eod(
			issuer_id, event_date, open, high, low, close, volume
		) VALUES(?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(issuer_id, event_date) DO UPDATE SET
			open = excluded.open,
			high = excluded.high,
			low = excluded.low,
			close = excluded.close,
			volume = excluded.volume`,
		row.IssuerID, row.EventDate, row.Open, row.High, row.Low, row.Close, row.Volume)
	return classifyErr("upsert-eod", err)
}

// EodHistory returns the end-of-day bars for an issuer in ascending date
// order, used for performance-snapshot recomputation and benchmark lookup.
func (s *Store) EodHistory(ctx context.Context, issuerID int64) ([]EodRow, error) {
	var rows []EodRow
	err := sqlscan.Select(ctx, s.db, &rows,
		`SELECT issuer_id, event_date, open, high, low, close, volume
		 FROM issuer_eod WHERE issuer_id = ? ORDER BY event_date ASC`, issuerID)
	if err != nil {
		return nil, classifyErr("eod-history", err)
	}
	return rows, nil
}
