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
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/capitol-traders/capitoltraders/internal/store"
)

func sampleTable() Table {
	return Table{
		Headers: []string{"ticker", "shares"},
		Rows: [][]string{
			{"ACME", "100"},
			{"=cmd|'/c calc'!A1", "50"},
		},
	}
}

// CSV safety: spec.md §6, §8 -- any cell beginning with =, +, -, or @ must
// be prefixed so spreadsheet software never evaluates it as a formula.
func TestRenderCSV_SanitizesFormulaPrefixes(t *testing.T) {
	out, err := RenderCSV(sampleTable())
	require.NoError(t, err)
	require.Contains(t, out, "'=cmd")
	require.NotContains(t, out, "\n=cmd")
}

func TestRenderJSON_RoundTripsHeaders(t *testing.T) {
	out, err := RenderJSON(Table{Headers: []string{"a", "b"}, Rows: [][]string{{"1", "2"}}})
	require.NoError(t, err)
	require.Contains(t, out, `"a": "1"`)
	require.Contains(t, out, `"b": "2"`)
}

func TestRenderMarkdown_HasHeaderSeparatorRow(t *testing.T) {
	out, err := RenderMarkdown(Table{Headers: []string{"a", "b"}, Rows: [][]string{{"1", "2"}}})
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	require.Contains(t, lines[1], "---")
}

func TestRenderXML_IncludesEveryCell(t *testing.T) {
	out, err := RenderXML(Table{Headers: []string{"ticker"}, Rows: [][]string{{"ACME"}}})
	require.NoError(t, err)
	require.Contains(t, out, "ACME")
	require.Contains(t, out, `name="ticker"`)
}

func TestRender_UnknownFormatErrors(t *testing.T) {
	_, err := Render(sampleTable(), Format("yaml"))
	require.Error(t, err)
}

func TestExportPortfolioCSV_SanitizesFormulaPrefixes(t *testing.T) {
	out, err := ExportPortfolioCSV([]store.PortfolioRow{
		{PoliticianID: "P1", Ticker: "=SUM(A1)", SharesHeld: 10, CostBasis: 100.5},
	})
	require.NoError(t, err)
	require.Contains(t, out, "'=SUM")
}
