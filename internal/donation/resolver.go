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
	"time"

	"github.com/alphadose/haxmap"
	json "github.com/goccy/go-json"

	"github.com/capitol-traders/capitoltraders/internal/store"
)

// MappingStore is the persistence surface the resolver needs: tier 2 of
// the three-tier cache (spec.md §4.4). Implemented by *store.Store.
type MappingStore interface {
	GetFECMapping(ctx context.Context, politicianID string) (store.FECMappingRow, bool, error)
	UpsertFECMapping(ctx context.Context, row store.FECMappingRow) error
}

// Resolver implements the three-tier politician->committee resolution:
// (1) process-local concurrent map, (2) persisted fec_mappings, (3)
// upstream candidate search + committee lookup (spec.md §4.4).
type Resolver struct {
	client  *Client
	mapping MappingStore
	cache   *haxmap.Map[string, []string]
}

// NewResolver builds a Resolver over client and mapping.
func NewResolver(client *Client, mapping MappingStore) *Resolver {
	return &Resolver{client: client, mapping: mapping, cache: haxmap.New[string, []string]()}
}

// Resolve returns the committee ids associated with politicianID,
// searching upstream by candidateNameHint only on a tier-1/tier-2 miss.
func (r *Resolver) Resolve(ctx context.Context, politicianID, candidateNameHint string) ([]string, error) {
	if ids, ok := r.cache.Get(politicianID); ok {
		return ids, nil
	}

	if row, ok, err := r.mapping.GetFECMapping(ctx, politicianID); err != nil {
		return nil, err
	} else if ok && row.CommitteeIDs != "" {
		var ids []string
		if err := json.Unmarshal([]byte(row.CommitteeIDs), &ids); err == nil {
			r.cache.Set(politicianID, ids)
			return ids, nil
		}
	}

	candidates, err := r.client.SearchCandidates(ctx, candidateNameHint)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	candidateID := candidates[0].CandidateID

	committees, err := r.client.CommitteesForCandidate(ctx, candidateID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(committees))
	for i, c := range committees {
		ids[i] = c.CommitteeID
	}

	encoded, err := json.Marshal(ids)
	if err != nil {
		return nil, err
	}
	if err := r.mapping.UpsertFECMapping(ctx, store.FECMappingRow{
		PoliticianID: politicianID,
		CandidateID:  candidateID,
		CommitteeIDs: string(encoded),
		MappedAt:     time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		return nil, err
	}

	r.cache.Set(politicianID, ids)
	return ids, nil
}
