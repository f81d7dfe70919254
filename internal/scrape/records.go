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
package scrape

// TradeListing is one row from a trades listing page -- the fields
// available before trade-detail enrichment runs (spec.md §3, §4.5 pass 1).
type TradeListing struct {
	TxID          int64   `json:"txId"`
	PoliticianID  string  `json:"politicianId"`
	IssuerID      int64   `json:"issuerId"`
	IssuerTicker  string  `json:"issuerTicker"`
	TxType        string  `json:"txType"`
	TxDate        string  `json:"txDate"`
	PubDate       string  `json:"pubDate"`
	SizeRangeLow  float64 `json:"sizeRangeLow"`
	SizeRangeHigh float64 `json:"sizeRangeHigh"`
}

// TradeDetail is the richer record trade_detail(tx_id) returns (spec.md
// §4.5 pass 1: "populates asset_type, size bounds, price, filing URL,
// committees, labels").
type TradeDetail struct {
	TxID            int64    `json:"txId"`
	AssetType       string   `json:"assetType"`
	SizeRangeLow    float64  `json:"sizeRangeLow"`
	SizeRangeHigh   float64  `json:"sizeRangeHigh"`
	Price           float64  `json:"price"`
	FilingURL       string   `json:"filingUrl"`
	CommitteeCodes  []string `json:"committeeCodes"`
	Labels          []string `json:"labels"`
}

// PoliticianListing is one row from a politicians listing page.
type PoliticianListing struct {
	PoliticianID string `json:"politicianId"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Party        string `json:"party"`
	State        string `json:"state"`
	Chamber      string `json:"chamber"`
}

// PoliticianDetail is the richer record politician_detail(id) returns.
type PoliticianDetail struct {
	PoliticianID     string   `json:"politicianId"`
	FirstName        string   `json:"firstName"`
	LastName         string   `json:"lastName"`
	Party            string   `json:"party"`
	State            string   `json:"state"`
	Chamber          string   `json:"chamber"`
	FecCandidateID   string   `json:"fecCandidateId"`
	CommitteeCodes   []string `json:"committeeCodes"`
	HasCommitteeData bool     `json:"-"` // true when CommitteeCodes came from the detail payload itself
}

// IssuerListing is one row from an issuers listing page.
type IssuerListing struct {
	IssuerID int64  `json:"issuerId"`
	Ticker   string `json:"ticker"`
	Name     string `json:"name"`
}

// IssuerDetail is the richer record issuer_detail(id) returns (spec.md
// §4.5 pass 3: "populates performance metrics and EOD price history").
type IssuerDetail struct {
	IssuerID   int64   `json:"issuerId"`
	Ticker     string  `json:"ticker"`
	Name       string  `json:"name"`
	Sector     string  `json:"sector"`
	GicsSector string  `json:"gicsSector"`
	Country    string  `json:"country"`
	Perf1W     float64 `json:"perf1W"`
	Perf1M     float64 `json:"perf1M"`
	Perf3M     float64 `json:"perf3M"`
	Perf1Y     float64 `json:"perf1Y"`
	PerfYTD    float64 `json:"perfYtd"`
	EOD        []struct {
		Date   string  `json:"date"`
		Open   float64 `json:"open"`
		High   float64 `json:"high"`
		Low    float64 `json:"low"`
		Close  float64 `json:"close"`
		Volume float64 `json:"volume"`
	} `json:"eod"`
}

// TradesFilter narrows a trades_page listing call.
type TradesFilter struct {
	PoliticianID string
	IssuerTicker string
	Party        string
	State        string
}
