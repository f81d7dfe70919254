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
package enrich

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// Circuit trip: spec.md §8 concrete scenario 4 -- 5 consecutive transient
// failures stop the pass without exhausting the row list.
func TestRunner_CircuitTripsOnConsecutiveFailures(t *testing.T) {
	rows := make([]int, 20)
	for i := range rows {
		rows[i] = i
	}

	var mu sync.Mutex
	var committed []int

	runner := &Runner[int, int]{
		Options:     Options{Permits: 1, BreakerThreshold: 5},
		IsPermanent: func(error) bool { return false },
		Fetch: func(ctx context.Context, row int) (int, error) {
			return 0, errors.New("transient upstream failure")
		},
		CommitBatch: func(ctx context.Context, batch []int) error {
			mu.Lock()
			defer mu.Unlock()
			committed = append(committed, batch...)
			return nil
		},
	}

	summary := runner.Run(context.Background(), rows)
	require.True(t, summary.CircuitTripped)
	require.Less(t, summary.Attempted, len(rows))
	require.Empty(t, committed)
}

// Every row succeeds and reaches CommitBatch across several batch flushes,
// each of which records a checkpoint (the largest value in its batch).
func TestRunner_CommitsEveryRowAcrossBatchFlushes(t *testing.T) {
	var mu sync.Mutex
	var checkpoints []int64

	rows := []int64{3, 1, 2, 6, 4, 5}

	runner := &Runner[int64, int64]{
		Options:     Options{Permits: 2, BatchSize: 2},
		IsPermanent: func(error) bool { return false },
		Fetch: func(ctx context.Context, row int64) (int64, error) {
			return row, nil
		},
		CommitBatch: func(ctx context.Context, batch []int64) error {
			var max int64
			for _, v := range batch {
				if v > max {
					max = v
				}
			}
			mu.Lock()
			checkpoints = append(checkpoints, max)
			mu.Unlock()
			return nil
		},
	}

	summary := runner.Run(context.Background(), rows)
	require.Equal(t, len(rows), summary.Succeeded)
	require.NotEmpty(t, checkpoints)
}

// Permanently-failed rows are counted as Unenrichable and routed through
// MarkUnenrichable, never through CommitBatch.
func TestRunner_PermanentFailureRoutesToMarkUnenrichable(t *testing.T) {
	var mu sync.Mutex
	var marked []int

	runner := &Runner[int, int]{
		Options:     Options{Permits: 2},
		IsPermanent: func(error) bool { return true },
		Fetch: func(ctx context.Context, row int) (int, error) {
			if row == 2 {
				return 0, errors.New("404 not found")
			}
			return row, nil
		},
		CommitBatch: func(ctx context.Context, batch []int) error { return nil },
		MarkUnenrichable: func(ctx context.Context, row int, reason string) error {
			mu.Lock()
			defer mu.Unlock()
			marked = append(marked, row)
			return nil
		},
	}

	summary := runner.Run(context.Background(), []int{1, 2, 3})
	require.Equal(t, 1, summary.Unenrichable)
	require.Equal(t, 2, summary.Succeeded)
	require.Equal(t, []int{2}, marked)
}

// Donation dedup across a rerun: InsertDonation conflict-ignores on sub_id,
// so syncing the same page of a committee's Schedule A twice yields zero
// new rows the second time (spec.md §8 "Donation dedup").
func TestFakeDonationStore_InsertIsIdempotentAcrossRerun(t *testing.T) {
	fake := &fakeDonationStore{inserted: map[string]bool{}}
	page := []string{"SUB1", "SUB2"}

	var firstNew, secondNew int64
	for _, subID := range page {
		if ok, _ := fake.insert(subID); ok {
			firstNew++
		}
	}
	for _, subID := range page {
		if ok, _ := fake.insert(subID); ok {
			secondNew++
		}
	}

	require.Equal(t, int64(2), firstNew)
	require.Equal(t, int64(0), secondNew)
}

// fakeDonationStore mimics the sub_id conflict-ignore semantics of
// Store.InsertDonation for a unit test that does not need a real database.
type fakeDonationStore struct {
	inserted map[string]bool
}

func (f *fakeDonationStore) insert(subID string) (bool, error) {
	if f.inserted[subID] {
		return false, nil
	}
	f.inserted[subID] = true
	return true, nil
}
