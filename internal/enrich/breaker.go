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

// Package enrich is the central concurrent driver: it selects unenriched
// rows, dispatches capability-bounded tasks, funnels results through a
// single writer, and coordinates circuit-breaker and checkpoint state
// (spec.md §4.5).
package enrich

import "sync"

// circuitBreaker is a consecutive-failure counter, not a half-open state
// machine: once it trips, the pass stops and the user re-runs to retry
// (spec.md §4.5 "Circuit breaker", §9 "a kill switch, not a half-open
// state machine").
type circuitBreaker struct {
	mu          sync.Mutex
	threshold   int
	consecutive int
	tripped     bool
}

func newCircuitBreaker(threshold int) *circuitBreaker {
	if threshold <= 0 {
		threshold = 5
	}
	return &circuitBreaker{threshold: threshold}
}

// recordFailure increments the consecutive-failure count and reports
// whether the breaker just tripped.
func (b *circuitBreaker) recordFailure() (justTripped bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.tripped {
		return false
	}
	b.consecutive++
	if b.consecutive >= b.threshold {
		b.tripped = true
		return true
	}
	return false
}

func (b *circuitBreaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.consecutive = 0
}

func (b *circuitBreaker) isTripped() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tripped
}

func (b *circuitBreaker) failureCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.consecutive
}
