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

// Package donation is a keyset-paginated REST client for the federal
// campaign-finance API, with a three-tier politician->committee cache, per
// spec.md §4.4.
package donation

import "fmt"

// RateLimitExceeded signals an upstream 429 (spec.md §4.4). The
// enrichment orchestrator converts this into a circuit-breaker failure.
type RateLimitExceeded struct {
	Op string
}

func (e *RateLimitExceeded) Error() string {
	return fmt.Sprintf("donation: %s: rate limit exceeded", e.Op)
}

// InvalidApiKey signals an upstream 403.
type InvalidApiKey struct {
	Op string
}

func (e *InvalidApiKey) Error() string {
	return fmt.Sprintf("donation: %s: invalid api key", e.Op)
}

// NotFound signals an upstream 404 for the given request path.
type NotFound struct {
	Op   string
	Path string
}

func (e *NotFound) Error() string {
	return fmt.Sprintf("donation: %s: not found: %s", e.Op, e.Path)
}
