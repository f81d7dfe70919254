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

// Package store implements the persistent store and schema migrator for
// Capitol Traders: an embedded SQLite database holding trades, politicians,
// issuers, committees, donations, and derived analytics.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// Store wraps the embedded database connection pool used by both the
// enrichment orchestrator's single writer and the read-only analytics/CLI
// display paths.
type Store struct {
	db   *sql.DB
	path string
}

// Open connects to (and creates, if necessary) the SQLite database at path,
// applies WAL/foreign-key PRAGMAs, and runs the schema migrator.
func Open(ctx context.Context, path string) (*Store, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}

	connStr := absPath + "?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=foreign_keys(1)" +
		"&_pragma=busy_timeout(5000)"

	conn, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite allows only one writer at a time; a single open connection
	// keeps the driver's internal locking aligned with the single-writer
	// contract the enrichment orchestrator relies on (spec.md §4.1, §5).
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{db: conn, path: absPath}

	if err := s.Migrate(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return s, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the absolute filesystem path of the database.
func (s *Store) Path() string {
	return s.path
}

// DB exposes the underlying *sql.DB for packages (scany/sqlscan, ad-hoc
// queries) that need direct access. Writers outside internal/store should
// prefer the typed methods on Store.
func (s *Store) DB() *sql.DB {
	return s.db
}
