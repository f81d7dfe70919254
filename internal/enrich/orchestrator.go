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
	"sync"

	"github.com/rs/zerolog"
)

// DefaultBatchSize is the number of successful results a writer
// accumulates before flushing a commit (spec.md §4.5).
const DefaultBatchSize = 50

// DefaultPermits is the default fan-out width of a pass when the caller
// does not request a narrower one (spec.md §4.5).
const DefaultPermits = 3

// Options configures a Runner pass.
type Options struct {
	// Permits bounds how many fetch calls run concurrently. Default
	// DefaultPermits.
	Permits int
	// BatchSize is how many successful results accumulate before a
	// commitBatch flush. Default DefaultBatchSize.
	BatchSize int
	// BreakerThreshold is the number of consecutive fetch failures that
	// trips the circuit breaker. Default 5.
	BreakerThreshold int
	// DryRun, when true, runs the row-selection query and reports how many
	// rows would be enriched without dispatching a single fetch or write
	// (spec.md §4.5 "Dry-run").
	DryRun bool
}

// PassSummary summarizes one pass's run for the CLI's human-readable report
// (spec.md §4.5, §7).
type PassSummary struct {
	Attempted       int
	Succeeded       int
	Unenrichable    int
	Failed          int
	CircuitTripped  bool
	BreakerFailures int
	Aborted         bool
	DryRun          bool
}

// result pairs a fetch outcome with the originating row so the writer can
// tell success, permanent failure, and transient failure apart.
type result[T, R any] struct {
	row       T
	value     R
	err       error
	permanent bool
}

// Runner drives one enrichment pass: a semaphore-bounded producer calls
// fetch for every row, forwarding outcomes to a single writer goroutine
// that batches successes into commitBatch and routes permanent failures
// to markUnenrichable. It generalizes the one-writer-per-subscription
// shape used for fan-in across the five enrichment passes (spec.md §4.5).
type Runner[T, R any] struct {
	Fetch func(ctx context.Context, row T) (R, error)

	// IsPermanent classifies a fetch error as permanent (the row can
	// never succeed and should be marked unenrichable) versus transient
	// (counts toward the circuit breaker, row is simply skipped this
	// run). Required.
	IsPermanent func(err error) bool

	// PermanentReason renders the persisted unenrichable_reason text for
	// a permanent failure.
	PermanentReason func(err error) string

	// CommitBatch persists a batch of successful results, typically in a
	// single transaction alongside a checkpoint advance. Required.
	CommitBatch func(ctx context.Context, batch []R) error

	// MarkUnenrichable persists a permanent per-row failure. Optional;
	// if nil, permanently-failed rows are simply dropped from the run.
	MarkUnenrichable func(ctx context.Context, row T, reason string) error

	Options
}

// Run executes the pass over rows and returns once every row has been
// attempted, the context is canceled, or the circuit breaker trips. When
// DryRun is set, it reports the selection count and returns immediately
// without dispatching a single fetch or write (spec.md §4.5 "Dry-run").
func (r *Runner[T, R]) Run(ctx context.Context, rows []T) PassSummary {
	if r.DryRun {
		return PassSummary{Attempted: len(rows), DryRun: true}
	}

	permits := r.Permits
	if permits <= 0 {
		permits = DefaultPermits
	}
	batchSize := r.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	breaker := newCircuitBreaker(r.BreakerThreshold)
	results := make(chan result[T, R], permits*2)
	sem := make(chan struct{}, permits)

	var producers sync.WaitGroup
	for _, row := range rows {
		row := row
		if runCtx.Err() != nil {
			break
		}

		producers.Add(1)
		go func() {
			defer producers.Done()
			select {
			case sem <- struct{}{}:
			case <-runCtx.Done():
				return
			}
			defer func() { <-sem }()

			value, err := r.Fetch(runCtx, row)
			select {
			case results <- result[T, R]{row: row, value: value, err: err, permanent: err != nil && r.IsPermanent != nil && r.IsPermanent(err)}:
			case <-runCtx.Done():
			}
		}()
	}

	go func() {
		producers.Wait()
		close(results)
	}()

	var outcome PassSummary
	batch := make([]R, 0, batchSize)

	log := zerolog.Ctx(ctx)

	// flush commits the pending batch, retrying once on failure before
	// giving up. A batch that fails twice is dropped without advancing the
	// checkpoint CommitBatch writes alongside it, so the next run re-selects
	// those rows rather than silently losing them (spec.md §7).
	flush := func() bool {
		if len(batch) == 0 {
			return true
		}
		err := r.CommitBatch(ctx, batch)
		if err != nil {
			log.Error().Err(err).Msg("enrich: commit batch failed, retrying once")
			err = r.CommitBatch(ctx, batch)
		}
		batch = batch[:0]
		if err != nil {
			log.Error().Err(err).Msg("enrich: commit batch failed twice, aborting pass")
			return false
		}
		return true
	}

	for res := range results {
		outcome.Attempted++

		if res.err == nil {
			breaker.recordSuccess()
			outcome.Succeeded++
			batch = append(batch, res.value)
			if len(batch) >= batchSize {
				if !flush() {
					outcome.Aborted = true
					cancel()
					break
				}
			}
			continue
		}

		if res.permanent {
			outcome.Unenrichable++
			breaker.recordSuccess()
			if r.MarkUnenrichable != nil {
				reason := res.err.Error()
				if r.PermanentReason != nil {
					reason = r.PermanentReason(res.err)
				}
				if err := r.MarkUnenrichable(ctx, res.row, reason); err != nil {
					log.Error().Err(err).Msg("enrich: mark unenrichable failed")
				}
			}
			continue
		}

		outcome.Failed++
		log.Warn().Err(res.err).Msg("enrich: transient fetch failure")
		if breaker.recordFailure() {
			outcome.CircuitTripped = true
			outcome.BreakerFailures = breaker.failureCount()
			log.Error().Int("consecutive_failures", breaker.failureCount()).Msg("enrich: circuit breaker tripped, stopping pass")
			cancel()
		}
	}

	if !outcome.Aborted && !flush() {
		outcome.Aborted = true
	}
	return outcome
}
