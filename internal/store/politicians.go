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

// PoliticianRow is the typed read view over the politicians table
// (spec.md §4.1 "Read contract": callers never see raw columns).
type PoliticianRow struct {
	PoliticianID   string `db:"politician_id"`
	FirstName      string `db:"first_name"`
	LastName       string `db:"last_name"`
	Party          string `db:"party"`
	State          string `db:"state"`
	Chamber        string `db:"chamber"`
	FecCandidateID string `db:"fec_candidate_id"`
	EnrichedAt     string `db:"enriched_at"`
}

var politicianUpsertCols = []sentinelColumn{
	alwaysColumn("politician_id"),
	textSentinel("first_name"),
	textSentinel("last_name"),
	textSentinel("party"),
	textSentinel("state"),
	textSentinel("chamber"),
	textSentinel("fec_candidate_id"),
	textSentinel("enriched_at"),
}

// UpsertPolitician inserts or sentinel-merges a politician row. Listing
// ingest calls this with most fields at their zero value and enriched_at
// == ""; enrichment calls it with real values and a non-empty enriched_at.
// Per the upsert contract, a later listing re-sync never clobbers fields
// enrichment already populated (spec.md §3, §8 "Upsert preservation").
func (s *Store) UpsertPolitician(ctx context.Context, row PoliticianRow) error {
	query := buildUpsert("politicians", "politician_id", politicianUpsertCols)
	_, err := s.db.ExecContext(ctx, query,
		row.PoliticianID, row.FirstName, row.LastName, row.Party,
		row.State, row.Chamber, row.FecCandidateID, row.EnrichedAt)
	return classifyErr("upsert-politician", err)
}

// GetPolitician fetches a single politician by id.
func (s *Store) GetPolitician(ctx context.Context, politicianID string) (PoliticianRow, bool, error) {
	var row PoliticianRow
	err := sqlscan.Get(ctx, s.db, &row,
		`SELECT politician_id, first_name, last_name, party, state, chamber, fec_candidate_id, enriched_at
		 FROM politicians WHERE politician_id = ?`, politicianID)
	if err != nil {
		if sqlscan.NotFound(err) {
			return PoliticianRow{}, false, nil
		}
		return PoliticianRow{}, false, classifyErr("get-politician", err)
	}
	return row, true, nil
}

// UnenrichedPoliticians returns up to limit politicians with enriched_at =
// '' (never enriched), ordered by politician_id for deterministic resume
// behavior across runs.
func (s *Store) UnenrichedPoliticians(ctx context.Context, limit int) ([]PoliticianRow, error) {
	var rows []PoliticianRow
	err := sqlscan.Select(ctx, s.db, &rows,
		`SELECT politician_id, first_name, last_name, party, state, chamber, fec_candidate_id, enriched_at
		 FROM politicians WHERE enriched_at = '' ORDER BY politician_id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, classifyErr("select-unenriched-politicians", err)
	}
	return rows, nil
}

// ListPoliticians returns every politician, optionally filtered by party
// and/or state (used by the FIFO engine's leaderboard filters).
func (s *Store) ListPoliticians(ctx context.Context, party, state string) ([]PoliticianRow, error) {
	query := `SELECT politician_id, first_name, last_name, party, state, chamber, fec_candidate_id, enriched_at
		FROM politicians WHERE 1 = 1`
	args := []any{}
	if party != "" {
		query += " AND party = ?"
		args = append(args, party)
	}
	if state != "" {
		query += " AND state = ?"
		args = append(args, state)
	}
	query += " ORDER BY politician_id ASC"

	var rows []PoliticianRow
	if err := sqlscan.Select(ctx, s.db, &rows, query, args...); err != nil {
		return nil, classifyErr("list-politicians", err)
	}
	return rows, nil
}

// ReplacePoliticianCommittees atomically replaces the full committee set
// for a politician: spec.md §3 says the committee set is "replaced
// atomically on enrichment" because the politician pass does a full
// refresh each run (§4.5 pass 2), not an incremental add.
func (s *Store) ReplacePoliticianCommittees(ctx context.Context, politicianID string, committeeCodes []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classifyErr("replace-committees:begin", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM politician_committees WHERE politician_id = ?`, politicianID); err != nil {
		return classifyErr("replace-committees:delete", err)
	}

	for _, code := range committeeCodes {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO politician_committees(politician_id, committee_code) VALUES(?, ?)
			 ON CONFLICT(politician_id, committee_code) DO NOTHING`, politicianID, code); err != nil {
			return classifyErr("replace-committees:insert", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return classifyErr("replace-committees:commit", err)
	}
	return nil
}

// PoliticianCommittees returns the committee codes currently associated
// with a politician.
func (s *Store) PoliticianCommittees(ctx context.Context, politicianID string) ([]string, error) {
	var codes []string
	err := sqlscan.Select(ctx, s.db, &codes,
		`SELECT committee_code FROM politician_committees WHERE politician_id = ? ORDER BY committee_code ASC`, politicianID)
	if err != nil {
		return nil, classifyErr("select-politician-committees", err)
	}
	return codes, nil
}

// AllCommittees returns the fixed 48-entry committee domain set.
func (s *Store) AllCommittees(ctx context.Context) []Committee {
	return allCommittees
}
