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

// Package output renders a Table into the five formats the CLI exposes:
// table, JSON, CSV, Markdown, XML (spec.md §6).
package output

// Table is the row-oriented view every formatter consumes. Callers build
// one from a typed store/fifo row slice; the formatters themselves never
// see typed rows, only strings, so adding a sixth format never touches
// command code.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Format names one of the five supported renderings.
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatXML      Format = "xml"
)

// Render dispatches to the formatter named by f.
func Render(t Table, f Format) (string, error) {
	switch f {
	case FormatJSON:
		return RenderJSON(t)
	case FormatCSV:
		return RenderCSV(t)
	case FormatMarkdown:
		return RenderMarkdown(t)
	case FormatXML:
		return RenderXML(t)
	case FormatTable, "":
		return RenderTable(t)
	default:
		return "", &UnknownFormatError{Format: string(f)}
	}
}

// UnknownFormatError is returned by Render for an unrecognized format name.
type UnknownFormatError struct {
	Format string
}

func (e *UnknownFormatError) Error() string {
	return "output: unknown format: " + e.Format
}
