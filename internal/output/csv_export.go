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
	"strconv"

	"github.com/gocarina/gocsv"

	"github.com/capitol-traders/capitoltraders/internal/store"
)

// portfolioCSVRow is gocsv's struct-tagged marshal unit. Unlike the
// dynamic-header Table path, a portfolio export has a fixed, known shape,
// so gocsv (the teacher's CSV library, `provider/tiingo.go`) is the natural
// fit here rather than the generic Table renderer.
type portfolioCSVRow struct {
	PoliticianID string `csv:"politician_id"`
	Ticker       string `csv:"ticker"`
	SharesHeld   string `csv:"shares_held"`
	CostBasis    string `csv:"cost_basis"`
	LastUpdated  string `csv:"last_updated"`
}

// ExportPortfolioCSV renders portfolio rows via gocsv, sanitizing every
// cell the way RenderCSV does (spec.md §6, §8 "CSV safety").
func ExportPortfolioCSV(rows []store.PortfolioRow) (string, error) {
	out := make([]portfolioCSVRow, len(rows))
	for i, r := range rows {
		out[i] = portfolioCSVRow{
			PoliticianID: sanitizeCSVCell(r.PoliticianID),
			Ticker:       sanitizeCSVCell(r.Ticker),
			SharesHeld:   strconv.FormatFloat(r.SharesHeld, 'f', -1, 64),
			CostBasis:    strconv.FormatFloat(r.CostBasis, 'f', -1, 64),
			LastUpdated:  sanitizeCSVCell(r.LastUpdated),
		}
	}
	return gocsv.MarshalString(&out)
}
