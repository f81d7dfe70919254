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
	"fmt"
	"strconv"
	"strings"
)

// sentinelColumn describes one enrichable column in a sentinel-protected
// upsert: the incoming value is only accepted when it is not the column's
// default (sentinel) value, otherwise the existing stored value survives.
// This is the generalization of the teacher's always-overwrite
// `col = EXCLUDED.col` upsert (data/eod.go, data/asset.go) that spec.md
// §4.1 and §9 require: "applying a subsequent listing upsert ... leaves
// the stored field retained."
type sentinelColumn struct {
	name    string
	literal string // the SQL literal form of the sentinel/default, e.g. "''" or "0"
}

func textSentinel(name string) sentinelColumn  { return sentinelColumn{name: name, literal: "''"} }
func numSentinel(name string) sentinelColumn   { return sentinelColumn{name: name, literal: "0"} }
func alwaysColumn(name string) sentinelColumn  { return sentinelColumn{name: name, literal: ""} }

// buildUpsert renders `INSERT INTO table(cols...) VALUES(?...)
// ON CONFLICT(conflictCol) DO UPDATE SET ...` where every sentinelColumn
// with a non-empty literal gets a `CASE WHEN excluded.col IS NOT <literal>
// THEN excluded.col ELSE table.col END` clause, and every alwaysColumn
// (key columns, or columns that are genuinely always-overwrite, such as a
// freshly computed timestamp) gets a plain `col = excluded.col`.
func buildUpsert(table, conflictCol string, cols []sentinelColumn) string {
	names := make([]string, len(cols))
	placeholders := make([]string, len(cols))
	sets := make([]string, 0, len(cols))

	for i, c := range cols {
		names[i] = c.name
		placeholders[i] = "?"
		if c.name == conflictCol {
			continue
		}
		if c.literal == "" {
			sets = append(sets, fmt.Sprintf("%s = excluded.%s", c.name, c.name))
			continue
		}
		sets = append(sets, fmt.Sprintf(
			"%[1]s = CASE WHEN excluded.%[1]s IS NOT %[2]s THEN excluded.%[1]s ELSE %[3]s.%[1]s END",
			c.name, c.literal, table))
	}

	return fmt.Sprintf(
		"INSERT INTO %s(%s) VALUES(%s) ON CONFLICT(%s) DO UPDATE SET %s",
		table, strings.Join(names, ", "), strings.Join(placeholders, ", "),
		conflictCol, strings.Join(sets, ", "))
}

// placeholderList returns "?, ?, ..." of length n, for INSERT-only
// statements that do not need the sentinel-preservation machinery. The
// existing INSERT statements (donations, trade_committees) write their
// placeholders out literally instead.
func placeholderList(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "?"
	}
	return strings.Join(parts, ", ")
}

// boolLiteral renders a Go bool as the integer SQLite stores booleans as.
func boolLiteral(b bool) string {
	return strconv.Itoa(boolToInt(b))
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
