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

// TradeRow is the typed read/write view over the trades table.
type TradeRow struct {
	TxID                  int64   `db:"tx_id"`
	PoliticianID          string  `db:"politician_id"`
	IssuerID              int64   `db:"issuer_id"`
	IssuerTicker          string  `db:"issuer_ticker"`
	TxType                string  `db:"tx_type"`
	TxDate                string  `db:"tx_date"`
	PubDate               string  `db:"pub_date"`
	AssetType             string  `db:"asset_type"`
	SizeRangeLow          float64 `db:"size_range_low"`
	SizeRangeHigh         float64 `db:"size_range_high"`
	Price                 float64 `db:"price"`
	FilingURL             string  `db:"filing_url"`
	TradeDatePrice        float64 `db:"trade_date_price"`
	CurrentPrice          float64 `db:"current_price"`
	EstimatedShares       float64 `db:"estimated_shares"`
	BenchmarkPrice        float64 `db:"benchmark_price"`
	BenchmarkType         string  `db:"benchmark_type"`
	LowConfidenceEstimate bool    `db:"low_confidence_estimate"`
	PriceEnrichedAt       string  `db:"price_enriched_at"`
	EnrichedAt            string  `db:"enriched_at"`
	UnenrichableReason    string  `db:"unenrichable_reason"`
}

// AnalyticsTradeRow is the slimmer projection the FIFO engine consumes: just
// enough to drive lot matching and benchmark alpha, per spec.md §4.1's
// "typed row views containing only the columns required by the caller."
type AnalyticsTradeRow struct {
	TxID           int64   `db:"tx_id"`
	PoliticianID   string  `db:"politician_id"`
	Ticker         string  `db:"issuer_ticker"`
	TxType         string  `db:"tx_type"`
	TxDate         string  `db:"tx_date"`
	EstimatedShares float64 `db:"estimated_shares"`
	TradeDatePrice  float64 `db:"trade_date_price"`
	CurrentPrice    float64 `db:"current_price"`
	BenchmarkPrice  float64 `db:"benchmark_price"`
	BenchmarkType   string  `db:"benchmark_type"`
}

var tradeUpsertCols = []sentinelColumn{
	alwaysColumn("tx_id"),
	alwaysColumn("politician_id"),
	alwaysColumn("issuer_id"),
	textSentinel("issuer_ticker"),
	textSentinel("tx_type"),
	textSentinel("tx_date"),
	textSentinel("pub_date"),
	textSentinel("asset_type"),
	numSentinel("size_range_low"),
	numSentinel("size_range_high"),
	numSentinel("price"),
	textSentinel("filing_url"),
	numSentinel("trade_date_price"),
	numSentinel("current_price"),
	numSentinel("estimated_shares"),
	numSentinel("benchmark_price"),
	textSentinel("benchmark_type"),
	numSentinel("low_confidence_estimate"),
	textSentinel("price_enriched_at"),
	textSentinel("enriched_at"),
	textSentinel("unenrichable_reason"),
}

// UpsertTrade inserts or sentinel-merges a trade row. Listing ingest calls
// this with only the core fields populated (politician_id, issuer_id,
// tx_type, tx_date, pub_date, size range); enrichment later fills in
// asset_type, price, filing_url, and the price-enrichment columns. The
// sentinel guard on every enrichable column is the concrete mechanism the
// concrete scenario in spec.md §8 ("Sentinel upsert") exercises.
func (s *Store) UpsertTrade(ctx context.Context, row TradeRow) error {
	query := buildUpsert("trades", "tx_id", tradeUpsertCols)
	_, err := s.db.ExecContext(ctx, query,
		row.TxID, row.PoliticianID, row.IssuerID, row.IssuerTicker, row.TxType,
		row.TxDate, row.PubDate, row.AssetType, row.SizeRangeLow, row.SizeRangeHigh,
		row.Price, row.FilingURL, row.TradeDatePrice, row.CurrentPrice,
		row.EstimatedShares, row.BenchmarkPrice, row.BenchmarkType,
		boolToInt(row.LowConfidenceEstimate), row.PriceEnrichedAt, row.EnrichedAt,
		row.UnenrichableReason)
	return classifyErr("upsert-trade", err)
}

// GetTrade fetches a single trade by tx_id.
func (s *Store) GetTrade(ctx context.Context, txID int64) (TradeRow, bool, error) {
	var row TradeRow
	err := sqlscan.Get(ctx, s.db, &row, tradeSelectColumns+` FROM trades WHERE tx_id = ?`, txID)
	if err != nil {
		if sqlscan.NotFound(err) {
			return TradeRow{}, false, nil
		}
		return TradeRow{}, false, classifyErr("get-trade", err)
	}
	return row, true, nil
}

const tradeSelectColumns = `SELECT tx_id, politician_id, issuer_id, issuer_ticker, tx_type, tx_date, pub_date,
	asset_type, size_range_low, size_range_high, price, filing_url, trade_date_price, current_price,
	estimated_shares, benchmark_price, benchmark_type, low_confidence_estimate, price_enriched_at,
	enriched_at, unenrichable_reason`

// UnenrichedTradeDetails returns up to limit trades never enriched by the
// trade-detail pass, ordered by tx_id for deterministic resume.
func (s *Store) UnenrichedTradeDetails(ctx context.Context, limit int) ([]TradeRow, error) {
	var rows []TradeRow
	err := sqlscan.Select(ctx, s.db, &rows,
		tradeSelectColumns+` FROM trades WHERE enriched_at = '' AND unenrichable_reason = ''
		 ORDER BY tx_id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, classifyErr("select-unenriched-trade-details", err)
	}
	return rows, nil
}

// UnenrichedPrices returns up to limit trades whose price enrichment has
// never run, deduplicated by the caller on (ticker, tx_date) per spec.md
// §4.5 pass 4.
func (s *Store) UnenrichedPrices(ctx context.Context, limit int) ([]TradeRow, error) {
	var rows []TradeRow
	err := sqlscan.Select(ctx, s.db, &rows,
		tradeSelectColumns+` FROM trades WHERE price_enriched_at = '' AND unenrichable_reason = ''
		 ORDER BY tx_id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, classifyErr("select-unenriched-prices", err)
	}
	return rows, nil
}

// MarkUnenrichable records a permanent per-row failure (404, decode error)
// so the row is never retried by subsequent passes (spec.md §4.5 "Failure
// semantics" -- per-row permanent errors).
func (s *Store) MarkUnenrichable(ctx context.Context, txID int64, reason string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE trades SET unenrichable_reason = ? WHERE tx_id = ?`, reason, txID)
	return classifyErr("mark-unenrichable", err)
}

// AnalyticsTrades returns every trade for a politician (or every politician
// if politicianID == "") in the deterministic FIFO order spec.md §4.1 and
// §4.6 require: `ORDER BY tx_date ASC, tx_id ASC`.
func (s *Store) AnalyticsTrades(ctx context.Context, politicianID string) ([]AnalyticsTradeRow, error) {
	query := `SELECT tx_id, politician_id, issuer_ticker, tx_type, tx_date, estimated_shares,
		trade_date_price, current_price, benchmark_price, benchmark_type FROM trades`
	args := []any{}
	if politicianID != "" {
		query += " WHERE politician_id = ?"
		args = append(args, politicianID)
	}
	query += " ORDER BY tx_date ASC, tx_id ASC"

	var rows []AnalyticsTradeRow
	if err := sqlscan.Select(ctx, s.db, &rows, query, args...); err != nil {
		return nil, classifyErr("analytics-trades", err)
	}
	return rows, nil
}

// TradesForPolitician returns every trade, priced or not, for a politician (or
// every politician if politicianID == ""), in FIFO order, as full rows --
// the input the portfolio command feeds the FIFO engine and the
// share-estimation/benchmark materialization step before it.
func (s *Store) TradesForPolitician(ctx context.Context, politicianID string) ([]TradeRow, error) {
	query := tradeSelectColumns + ` FROM trades`
	args := []any{}
	if politicianID != "" {
		query += " WHERE politician_id = ?"
		args = append(args, politicianID)
	}
	query += " ORDER BY tx_date ASC, tx_id ASC"

	var rows []TradeRow
	if err := sqlscan.Select(ctx, s.db, &rows, query, args...); err != nil {
		return nil, classifyErr("trades-for-politician", err)
	}
	return rows, nil
}

// ReplaceTradeCommittees atomically replaces the committee join rows for a
// trade, extracted from a TradeDetail payload when present (spec.md §9
// first open question: "extract them if present and leave the join tables
// empty if not").
func (s *Store) ReplaceTradeCommittees(ctx context.Context, txID int64, committeeCodes []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classifyErr("replace-trade-committees:begin", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM trade_committees WHERE tx_id = ?`, txID); err != nil {
		return classifyErr("replace-trade-committees:delete", err)
	}
	for _, code := range committeeCodes {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO trade_committees(tx_id, committee_code) VALUES(?, ?) ON CONFLICT(tx_id, committee_code) DO NOTHING`,
			txID, code); err != nil {
			return classifyErr("replace-trade-committees:insert", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return classifyErr("replace-trade-committees:commit", err)
	}
	return nil
}

// ReplaceTradeLabels is the label-join equivalent of ReplaceTradeCommittees.
func (s *Store) ReplaceTradeLabels(ctx context.Context, txID int64, labels []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classifyErr("replace-trade-labels:begin", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM trade_labels WHERE tx_id = ?`, txID); err != nil {
		return classifyErr("replace-trade-labels:delete", err)
	}
	for _, label := range labels {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO trade_labels(tx_id, label) VALUES(?, ?) ON CONFLICT(tx_id, label) DO NOTHING`,
			txID, label); err != nil {
			return classifyErr("replace-trade-labels:insert", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return classifyErr("replace-trade-labels:commit", err)
	}
	return nil
}
