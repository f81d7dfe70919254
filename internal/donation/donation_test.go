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
package donation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/capitol-traders/capitoltraders/internal/store"
)

// Keyset resume: spec.md §8 concrete scenario 6.
func TestScheduleAPage_KeysetCursor(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lastIndex := r.URL.Query().Get("last_index")
		w.Header().Set("Content-Type", "application/json")
		if lastIndex == "" {
			w.Write([]byte(`{"results":[{"sub_id":"1"}],"pagination":{"last_indexes":{"last_index":"42","last_contribution_receipt_date":"2024-06-01"}}}`))
			return
		}
		require.Equal(t, "42", lastIndex)
		w.Write([]byte(`{"results":[{"sub_id":"2"}],"pagination":{"last_indexes":{"last_index":"43","last_contribution_receipt_date":"2024-06-02"}}}`))
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL, ApiKey: "testkey"})

	page1, err := client.ScheduleAPage(context.Background(), "C00000001", Cursor{})
	require.NoError(t, err)
	require.Equal(t, "42", page1.Next.LastIndex)
	require.Equal(t, "2024-06-01", page1.Next.LastReceiptDate)

	page2, err := client.ScheduleAPage(context.Background(), "C00000001", page1.Next)
	require.NoError(t, err)
	require.Equal(t, "43", page2.Next.LastIndex)
}

func TestScheduleAPage_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(429)
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL, ApiKey: "testkey"})
	_, err := client.ScheduleAPage(context.Background(), "C1", Cursor{})
	require.Error(t, err)
	var rle *RateLimitExceeded
	require.ErrorAs(t, err, &rle)
}

type fakeMappingStore struct {
	rows map[string]store.FECMappingRow
}

func (f *fakeMappingStore) GetFECMapping(ctx context.Context, politicianID string) (store.FECMappingRow, bool, error) {
	row, ok := f.rows[politicianID]
	return row, ok, nil
}

func (f *fakeMappingStore) UpsertFECMapping(ctx context.Context, row store.FECMappingRow) error {
	if f.rows == nil {
		f.rows = map[string]store.FECMappingRow{}
	}
	f.rows[row.PoliticianID] = row
	return nil
}

func TestResolver_Tier2PersistedHit(t *testing.T) {
	mapping := &fakeMappingStore{rows: map[string]store.FECMappingRow{
		"P1": {PoliticianID: "P1", CommitteeIDs: `["C001","C002"]`},
	}}
	resolver := NewResolver(New(Config{BaseURL: "http://unused.invalid", ApiKey: "x"}), mapping)

	ids, err := resolver.Resolve(context.Background(), "P1", "unused")
	require.NoError(t, err)
	require.Equal(t, []string{"C001", "C002"}, ids)
}

func TestResolver_Tier3UpstreamFetchAndPersist(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/candidates/search":
			w.Write([]byte(`[{"candidate_id":"CAND1","name":"Jane Doe"}]`))
		case r.URL.Path == "/candidates/CAND1/committees":
			w.Write([]byte(`[{"committee_id":"C001","name":"Jane Doe for Congress"}]`))
		}
	}))
	defer server.Close()

	mapping := &fakeMappingStore{}
	resolver := NewResolver(New(Config{BaseURL: server.URL, ApiKey: "x"}), mapping)

	ids, err := resolver.Resolve(context.Background(), "P2", "Jane Doe")
	require.NoError(t, err)
	require.Equal(t, []string{"C001"}, ids)
	require.Contains(t, mapping.rows, "P2")
}
