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
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// migrationStep is one forward-only, additive schema change. Steps must be
// idempotent: re-applying an already-applied step must be a no-op, per
// spec.md §4.1 and the migration-idempotence property in spec.md §8.
type migrationStep struct {
	version int
	name    string
	apply   func(ctx context.Context, tx *sql.Tx) error
}

// schemaVersionKey is the ingest_meta row that tracks the applied schema
// version. Absence of the row (on a brand-new file) means version 0.
const schemaVersionKey = "schema_version"

var migrationSteps = []migrationStep{
	{version: 1, name: "baseline", apply: migrateBaseline},
	{version: 2, name: "unenrichable reason column", apply: migrateUnenrichableReason},
}

// Migrate reads the current schema_version and applies every pending step
// in order, each inside its own transaction, writing the new version before
// commit. It refuses to run against a database whose stored version is
// higher than the newest step this binary knows about (a downgrade), per
// spec.md §3's "schema_version ... never decreases; the migrator refuses
// downgrade" invariant.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.ensureIngestMetaTable(ctx); err != nil {
		return err
	}

	current, err := s.schemaVersionLocked(ctx)
	if err != nil {
		return err
	}

	maxKnown := 0
	for _, step := range migrationSteps {
		if step.version > maxKnown {
			maxKnown = step.version
		}
	}

	if current > maxKnown {
		return &DbError{
			Kind: ErrKindSchemaMismatch,
			Op:   "migrate",
			Err:  fmt.Errorf("database schema_version %d is newer than this binary understands (max %d)", current, maxKnown),
		}
	}

	for _, step := range migrationSteps {
		if step.version <= current {
			continue
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return classifyErr("migrate:begin", err)
		}

		if err := step.apply(ctx, tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration step %d (%s): %w", step.version, step.name, err)
		}

		if _, err := tx.ExecContext(ctx, `INSERT INTO ingest_meta(key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value`, schemaVersionKey, fmt.Sprintf("%d", step.version)); err != nil {
			tx.Rollback()
			return classifyErr("migrate:record-version", err)
		}

		if err := tx.Commit(); err != nil {
			return classifyErr("migrate:commit", err)
		}

		log.Info().Int("Version", step.version).Str("Name", step.name).Msg("applied schema migration")
	}

	return nil
}

func (s *Store) ensureIngestMetaTable(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS ingest_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`)
	return classifyErr("ensure-ingest-meta", err)
}

func (s *Store) schemaVersionLocked(ctx context.Context) (int, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM ingest_meta WHERE key = ?`, schemaVersionKey).Scan(&value)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, classifyErr("read-schema-version", err)
	}

	var version int
	if _, err := fmt.Sscanf(value, "%d", &version); err != nil {
		return 0, fmt.Errorf("parse schema_version %q: %w", value, err)
	}
	return version, nil
}

// addColumnIfMissing attempts to ALTER TABLE ... ADD COLUMN and tolerates a
// "duplicate column name" failure as a no-op, the same idempotence strategy
// the corpus's embedded-SQLite layer uses when re-applying a schema file
// (aristath-sentinel's (*DB).Migrate treats "duplicate column"/"already
// exists" driver errors as already-applied rather than fatal).
func addColumnIfMissing(ctx context.Context, tx *sql.Tx, table, columnDDL string) error {
	_, err := tx.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", table, columnDDL))
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "duplicate column name") || strings.Contains(msg, "already exists") {
		return nil
	}
	return err
}

func migrateBaseline(ctx context.Context, tx *sql.Tx) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS committees (
			code TEXT PRIMARY KEY,
			display_name TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS politicians (
			politician_id TEXT PRIMARY KEY,
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			party TEXT NOT NULL DEFAULT '',
			state TEXT NOT NULL DEFAULT '',
			chamber TEXT NOT NULL DEFAULT '',
			fec_candidate_id TEXT NOT NULL DEFAULT '',
			enriched_at TEXT NOT NULL DEFAULT ''
		)`,

		`CREATE TABLE IF NOT EXISTS politician_committees (
			politician_id TEXT NOT NULL REFERENCES politicians(politician_id),
			committee_code TEXT NOT NULL REFERENCES committees(code),
			PRIMARY KEY (politician_id, committee_code)
		)`,

		`CREATE TABLE IF NOT EXISTS issuers (
			issuer_id INTEGER PRIMARY KEY,
			ticker TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL DEFAULT '',
			sector TEXT NOT NULL DEFAULT '',
			gics_sector TEXT NOT NULL DEFAULT '',
			country TEXT NOT NULL DEFAULT '',
			perf_1w REAL NOT NULL DEFAULT 0,
			perf_1m REAL NOT NULL DEFAULT 0,
			perf_3m REAL NOT NULL DEFAULT 0,
			perf_1y REAL NOT NULL DEFAULT 0,
			perf_ytd REAL NOT NULL DEFAULT 0,
			enriched_at TEXT NOT NULL DEFAULT ''
		)`,

		`CREATE UNIQUE INDEX IF NOT EXISTS issuers_ticker_idx ON issuers(ticker)`,

		`CREATE TABLE IF NOT EXISTS issuer_eod (
			issuer_id INTEGER NOT NULL REFERENCES issuers(issuer_id),
			event_date TEXT NOT NULL,
			open REAL NOT NULL DEFAULT 0,
			high REAL NOT NULL DEFAULT 0,
			low REAL NOT NULL DEFAULT 0,
			close REAL NOT NULL DEFAULT 0,
			volume REAL NOT NULL DEFAULT 0,
			PRIMARY KEY (issuer_id, event_date)
		)`,

		`CREATE TABLE IF NOT EXISTS trades (
			tx_id INTEGER PRIMARY KEY,
			politician_id TEXT NOT NULL REFERENCES politicians(politician_id),
			issuer_id INTEGER NOT NULL REFERENCES issuers(issuer_id),
			issuer_ticker TEXT NOT NULL DEFAULT '',
			tx_type TEXT NOT NULL DEFAULT '',
			tx_date TEXT NOT NULL DEFAULT '',
			pub_date TEXT NOT NULL DEFAULT '',
			asset_type TEXT NOT NULL DEFAULT '',
			size_range_low REAL NOT NULL DEFAULT 0,
			size_range_high REAL NOT NULL DEFAULT 0,
			price REAL NOT NULL DEFAULT 0,
			filing_url TEXT NOT NULL DEFAULT '',
			trade_date_price REAL NOT NULL DEFAULT 0,
			current_price REAL NOT NULL DEFAULT 0,
			estimated_shares REAL NOT NULL DEFAULT 0,
			benchmark_price REAL NOT NULL DEFAULT 0,
			benchmark_type TEXT NOT NULL DEFAULT '',
			low_confidence_estimate INTEGER NOT NULL DEFAULT 0,
			price_enriched_at TEXT NOT NULL DEFAULT '',
			enriched_at TEXT NOT NULL DEFAULT ''
		)`,

		`CREATE INDEX IF NOT EXISTS trades_politician_idx ON trades(politician_id)`,
		`CREATE INDEX IF NOT EXISTS trades_issuer_idx ON trades(issuer_id)`,
		`CREATE INDEX IF NOT EXISTS trades_date_txid_idx ON trades(tx_date, tx_id)`,
		`CREATE INDEX IF NOT EXISTS trades_unenriched_idx ON trades(enriched_at)`,

		`CREATE TABLE IF NOT EXISTS trade_committees (
			tx_id INTEGER NOT NULL REFERENCES trades(tx_id),
			committee_code TEXT NOT NULL,
			PRIMARY KEY (tx_id, committee_code)
		)`,

		`CREATE TABLE IF NOT EXISTS trade_labels (
			tx_id INTEGER NOT NULL REFERENCES trades(tx_id),
			label TEXT NOT NULL,
			PRIMARY KEY (tx_id, label)
		)`,

		`CREATE TABLE IF NOT EXISTS fec_mappings (
			politician_id TEXT PRIMARY KEY REFERENCES politicians(politician_id),
			candidate_id TEXT NOT NULL DEFAULT '',
			committee_ids TEXT NOT NULL DEFAULT '[]',
			mapped_at TEXT NOT NULL DEFAULT ''
		)`,

		`CREATE TABLE IF NOT EXISTS donations (
			sub_id TEXT PRIMARY KEY,
			politician_id TEXT NOT NULL REFERENCES politicians(politician_id),
			committee_id TEXT NOT NULL DEFAULT '',
			contributor_name TEXT NOT NULL DEFAULT '',
			contributor_employer TEXT NOT NULL DEFAULT '',
			amount REAL NOT NULL DEFAULT 0,
			receipt_date TEXT NOT NULL DEFAULT '',
			cycle INTEGER NOT NULL DEFAULT 0,
			state TEXT NOT NULL DEFAULT '',
			zip TEXT NOT NULL DEFAULT ''
		)`,

		`CREATE INDEX IF NOT EXISTS donations_politician_idx ON donations(politician_id)`,
		`CREATE INDEX IF NOT EXISTS donations_committee_idx ON donations(committee_id)`,
		`CREATE INDEX IF NOT EXISTS donations_receipt_date_idx ON donations(receipt_date)`,
		`CREATE INDEX IF NOT EXISTS donations_employer_idx ON donations(contributor_employer)`,

		`CREATE TABLE IF NOT EXISTS donation_cursors (
			politician_id TEXT NOT NULL,
			committee_id TEXT NOT NULL,
			last_index TEXT NOT NULL DEFAULT '',
			last_receipt_date TEXT NOT NULL DEFAULT '',
			total_synced INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (politician_id, committee_id)
		)`,

		`CREATE TABLE IF NOT EXISTS positions (
			politician_id TEXT NOT NULL,
			ticker TEXT NOT NULL,
			shares_held REAL NOT NULL DEFAULT 0,
			cost_basis REAL NOT NULL DEFAULT 0,
			last_updated TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (politician_id, ticker)
		)`,
	}

	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	for _, c := range allCommittees {
		if _, err := tx.ExecContext(ctx, `INSERT INTO committees(code, display_name) VALUES (?, ?)
			ON CONFLICT(code) DO NOTHING`, c.Code, c.DisplayName); err != nil {
			return err
		}
	}

	return nil
}

// migrateUnenrichableReason is an example of a later, additive-only step:
// it adds a column recording why a trade row was permanently skipped
// (spec.md §4.5 "per-row permanent errors ... marked 'unenrichable' with
// reason in a side column"). Guarded by addColumnIfMissing so re-running it
// against an already-migrated database is a no-op, satisfying the
// migration-idempotence property (spec.md §8).
func migrateUnenrichableReason(ctx context.Context, tx *sql.Tx) error {
	return addColumnIfMissing(ctx, tx, "trades", "unenrichable_reason TEXT NOT NULL DEFAULT ''")
}
