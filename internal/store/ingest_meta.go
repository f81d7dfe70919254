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
	"database/sql"
	"strconv"
	"strings"

	"github.com/georgysavva/scany/v2/sqlscan"
)

// Checkpoint keys used by the enrichment orchestrator (spec.md §4.5).
const (
	CheckpointLastEnrichedTrade      = "last_enriched_trade_id"
	CheckpointLastEnrichedPolitician = "last_enriched_politician_id"
	CheckpointLastEnrichedIssuer     = "last_enriched_issuer_id"
	CheckpointLastPriceEnrichDate    = "last_price_enrich_date"
)

// GetMeta reads a single IngestMeta value. ok is false when the key is
// absent (a fresh database, or a checkpoint that has never advanced).
func (s *Store) GetMeta(ctx context.Context, key string) (value string, ok bool, err error) {
	row := s.db.QueryRowContext(ctx, `SELECT value FROM ingest_meta WHERE key = ?`, key)
	if err := row.Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, classifyErr("get-meta", err)
	}
	return value, true, nil
}

// SetMeta writes (or replaces) a single IngestMeta value. Callers that need
// the write inside a larger transaction should use SetMetaTx.
func (s *Store) SetMeta(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO ingest_meta(key, value) VALUES(?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return classifyErr("set-meta", err)
}

// SetMetaTx is SetMeta scoped to an existing transaction, so a checkpoint
// advance can commit atomically with the batch of rows it describes
// (spec.md §4.5 "Checkpointing"). It has no callers in this module.
func SetMetaTx(ctx context.Context, tx *sql.Tx, key, value string) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO ingest_meta(key, value) VALUES(?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return classifyErr("set-meta-tx", err)
}

// donationCursorKey namespaces a per-(politician, committee) checkpoint so
// distinct committee cursors for the same politician never collide.
func donationCursorKey(politicianID, committeeID string) string {
	return "donation_cursor:" + politicianID + ":" + committeeID
}

// tickerOverridePrefix namespaces the per-issuer ticker substitutions the
// price client consults so a broken upstream symbol mapping can be
// corrected without a schema change (spec.md §4.3, §8 scenario 5).
const tickerOverridePrefix = "ticker_override:"

func tickerOverrideKey(issuerID int64) string {
	return tickerOverridePrefix + strconv.FormatInt(issuerID, 10)
}

// SetTickerOverride records that issuerID's price lookups should always use
// ticker, regardless of the symbol stored on its trades/issuer rows.
func (s *Store) SetTickerOverride(ctx context.Context, issuerID int64, ticker string) error {
	return s.SetMeta(ctx, tickerOverrideKey(issuerID), ticker)
}

// TickerOverrides loads every registered override as issuer_id -> ticker, so
// a pass can build an in-memory lookup once per run instead of querying
// ingest_meta per row.
func (s *Store) TickerOverrides(ctx context.Context) (map[int64]string, error) {
	var rows []struct {
		Key   string `db:"key"`
		Value string `db:"value"`
	}
	if err := sqlscan.Select(ctx, s.db, &rows,
		`SELECT key, value FROM ingest_meta WHERE key LIKE ?`, tickerOverridePrefix+"%"); err != nil {
		return nil, classifyErr("ticker-overrides", err)
	}

	overrides := make(map[int64]string, len(rows))
	for _, r := range rows {
		idStr := strings.TrimPrefix(r.Key, tickerOverridePrefix)
		issuerID, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			continue
		}
		overrides[issuerID] = r.Value
	}
	return overrides, nil
}
