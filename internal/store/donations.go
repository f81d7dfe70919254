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

// DonationRow is the typed read view over the donations table.
type DonationRow struct {
	SubID               string  `db:"sub_id"`
	PoliticianID         string  `db:"politician_id"`
	CommitteeID          string  `db:"committee_id"`
	ContributorName      string  `db:"contributor_name"`
	ContributorEmployer string  `db:"contributor_employer"`
	Amount              float64 `db:"amount"`
	ReceiptDate         string  `db:"receipt_date"`
	Cycle               int64   `db:"cycle"`
	State               string  `db:"state"`
	Zip                 string  `db:"zip"`
}

// DonationCursorRow is the keyset-pagination checkpoint for one
// (politician, committee) pair (spec.md §4.4, §4.5 pass 5).
type DonationCursorRow struct {
	PoliticianID    string `db:"politician_id"`
	CommitteeID     string `db:"committee_id"`
	LastIndex       string `db:"last_index"`
	LastReceiptDate string `db:"last_receipt_date"`
	TotalSynced     int64  `db:"total_synced"`
}

// FECMappingRow is the long-lived politician->candidate/committee cache
// (spec.md §3, §4.4 tier 2).
type FECMappingRow struct {
	PoliticianID string `db:"politician_id"`
	CandidateID  string `db:"candidate_id"`
	CommitteeIDs string `db:"committee_ids"` // JSON-encoded []string
	MappedAt     string `db:"mapped_at"`
}

// InsertDonation appends a donation, conflict-ignoring on sub_id so a
// re-run of the donation pass over an unchanged upstream page produces no
// new rows (spec.md §3 "duplicates dropped", §8 "Donation dedup").
// Returns true if a new row was actually inserted.
func (s *Store) InsertDonation(ctx context.Context, row DonationRow) (inserted bool, err error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO donations(
			sub_id, politician_id, committee_id, contributor_name, contributor_employer,
			amount, receipt_date, cycle, state, zip
		) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(sub_id) DO NOTHING`,
		row.SubID, row.PoliticianID, row.CommitteeID, row.ContributorName, row.ContributorEmployer,
		row.Amount, row.ReceiptDate, row.Cycle, row.State, row.Zip)
	if err != nil {
		return false, classifyErr("insert-donation", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, classifyErr("insert-donation:rows-affected", err)
	}
	return n > 0, nil
}

// DonationsForPolitician returns every donation row for a politician,
// ordered by receipt date for presentation/aggregation.
func (s *Store) DonationsForPolitician(ctx context.Context, politicianID string) ([]DonationRow, error) {
	var rows []DonationRow
	err := sqlscan.Select(ctx, s.db, &rows,
		`SELECT sub_id, politician_id, committee_id, contributor_name, contributor_employer,
			amount, receipt_date, cycle, state, zip
		 FROM donations WHERE politician_id = ? ORDER BY receipt_date ASC`, politicianID)
	if err != nil {
		return nil, classifyErr("donations-for-politician", err)
	}
	return rows, nil
}

// DonationCursor fetches the persisted keyset cursor for a
// (politician, committee) pair, or a zero-value cursor if none exists yet.
func (s *Store) DonationCursor(ctx context.Context, politicianID, committeeID string) (DonationCursorRow, error) {
	var row DonationCursorRow
	err := sqlscan.Get(ctx, s.db, &row,
		`SELECT politician_id, committee_id, last_index, last_receipt_date, total_synced
		 FROM donation_cursors WHERE politician_id = ? AND committee_id = ?`, politicianID, committeeID)
	if err != nil {
		if sqlscan.NotFound(err) {
			return DonationCursorRow{PoliticianID: politicianID, CommitteeID: committeeID}, nil
		}
		return DonationCursorRow{}, classifyErr("donation-cursor", err)
	}
	return row, nil
}

// AdvanceDonationCursor persists the cursor after a successful page fetch,
// incrementing total_synced by newRows. The donation pass calls it after
// each page's inserts. It runs as its own statement, not in a transaction
// with those inserts: if it fails, the inserted rows stay and the cursor
// does not move, so the page is fetched again and its rows are dropped as
// sub_id duplicates (spec.md §4.5 pass 5).
func (s *Store) AdvanceDonationCursor(ctx context.Context, politicianID, committeeID, lastIndex, lastReceiptDate string, newRows int64) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO donation_cursors(
			politician_id, committee_id, last_index, last_receipt_date, total_synced
		) VALUES(?, ?, ?, ?, ?)
		ON CONFLICT(politician_id, committee_id) DO UPDATE SET
			last_index = excluded.last_index,
			last_receipt_date = excluded.last_receipt_date,
			total_synced = donation_cursors.total_synced + excluded.total_synced`,
		politicianID, committeeID, lastIndex, lastReceiptDate, newRows)
	return classifyErr("advance-donation-cursor", err)
}

var fecMappingUpsertCols = []sentinelColumn{
	alwaysColumn("politician_id"),
	textSentinel("candidate_id"),
	sentinelColumn{name: "committee_ids", literal: "'[]'"},
	alwaysColumn("mapped_at"),
}

// UpsertFECMapping inserts or sentinel-merges the long-lived
// politician->candidate/committee cache (tier 2 of the three-tier
// resolution in spec.md §4.4).
func (s *Store) UpsertFECMapping(ctx context.Context, row FECMappingRow) error {
	query := buildUpsert("fec_mappings", "politician_id", fecMappingUpsertCols)
	_, err := s.db.ExecContext(ctx, query, row.PoliticianID, row.CandidateID, row.CommitteeIDs, row.MappedAt)
	return classifyErr("upsert-fec-mapping", err)
}

// GetFECMapping fetches the persisted FEC mapping for a politician, if any.
func (s *Store) GetFECMapping(ctx context.Context, politicianID string) (FECMappingRow, bool, error) {
	var row FECMappingRow
	err := sqlscan.Get(ctx, s.db, &row,
		`SELECT politician_id, candidate_id, committee_ids, mapped_at FROM fec_mappings WHERE politician_id = ?`, politicianID)
	if err != nil {
		if sqlscan.NotFound(err) {
			return FECMappingRow{}, false, nil
		}
		return FECMappingRow{}, false, classifyErr("get-fec-mapping", err)
	}
	return row, true, nil
}
