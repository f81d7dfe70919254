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
package fifo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// FIFO partial fill: spec.md §8 concrete scenario 2.
func TestEngine_PartialFill(t *testing.T) {
	e := NewEngine()
	e.Apply(Trade{PoliticianID: "P1", Ticker: "ACME", TxType: Buy, Shares: 100, Price: 10, TxDate: "2024-01-01", TxID: 1})
	e.Apply(Trade{PoliticianID: "P1", Ticker: "ACME", TxType: Buy, Shares: 100, Price: 20, TxDate: "2024-02-01", TxID: 2})
	e.Apply(Trade{PoliticianID: "P1", Ticker: "ACME", TxType: Sell, Shares: 150, Price: 25, TxDate: "2024-03-01", TxID: 3})

	closed := e.ClosedLots()
	require.Len(t, closed, 2)
	require.Equal(t, 100.0, closed[0].Shares)
	require.Equal(t, 10.0, closed[0].BuyPrice)
	require.Equal(t, 25.0, closed[0].SellPrice)
	require.Equal(t, 50.0, closed[1].Shares)
	require.Equal(t, 20.0, closed[1].BuyPrice)

	require.Equal(t, 50.0, e.OpenShares("P1", "ACME"))
	require.Equal(t, 20.0, e.OpenCostBasis("P1", "ACME"))
	require.Empty(t, e.Warnings())
}

func TestEngine_OversoldStopsWithoutSynthesizing(t *testing.T) {
	e := NewEngine()
	e.Apply(Trade{PoliticianID: "P1", Ticker: "ACME", TxType: Buy, Shares: 50, Price: 10, TxDate: "2024-01-01", TxID: 1})
	e.Apply(Trade{PoliticianID: "P1", Ticker: "ACME", TxType: Sell, Shares: 100, Price: 25, TxDate: "2024-02-01", TxID: 2})

	require.Len(t, e.ClosedLots(), 1)
	require.Equal(t, 50.0, e.ClosedLots()[0].Shares)
	require.Equal(t, 0.0, e.OpenShares("P1", "ACME"))
	require.NotEmpty(t, e.Warnings())
}

func TestEngine_ExchangeAndReceiveSkipped(t *testing.T) {
	e := NewEngine()
	e.Apply(Trade{PoliticianID: "P1", Ticker: "ACME", TxType: Exchange, Shares: 10, TxDate: "2024-01-01", TxID: 1})
	e.Apply(Trade{PoliticianID: "P1", Ticker: "ACME", TxType: Receive, Shares: 10, TxDate: "2024-01-02", TxID: 2})

	require.Empty(t, e.ClosedLots())
	require.Equal(t, 0.0, e.OpenShares("P1", "ACME"))
	require.Len(t, e.Warnings(), 2)
}

func TestEngine_RejectsNonPositiveBuy(t *testing.T) {
	e := NewEngine()
	e.Apply(Trade{PoliticianID: "P1", Ticker: "ACME", TxType: Buy, Shares: 0, Price: 10, TxDate: "2024-01-01", TxID: 1})
	require.Equal(t, 0.0, e.OpenShares("P1", "ACME"))
	require.NotEmpty(t, e.Warnings())
}

// Annualized guard: spec.md §8 concrete scenario 3.
func TestAnnualizedReturn_Guard(t *testing.T) {
	_, ok := AnnualizedReturn(5, 10)
	require.False(t, ok)

	result, ok := AnnualizedReturn(5, 365)
	require.True(t, ok)
	require.InDelta(t, 5.0, result, 0.02)
}

func TestEstimateShares_RoundTrip(t *testing.T) {
	shares, ok := EstimateShares(1000, 15000, 100)
	require.True(t, ok)
	require.Equal(t, 80.0, shares) // midpoint 8000 / 100

	require.True(t, ValidateEstimate(1000, 15000, 100, shares))
	require.False(t, ValidateEstimate(1000, 15000, 1000, shares))
}

func TestEstimateShares_NoPrice(t *testing.T) {
	_, ok := EstimateShares(1000, 15000, 0)
	require.False(t, ok)
}
