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
package price

import (
	"context"
	"fmt"
	"time"

	"github.com/alphadose/haxmap"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// backfillWindow is how far back price_on looks for the nearest prior
// trading day when the requested date falls on a weekend/holiday
// (spec.md §4.3).
const backfillWindow = 10 * 24 * time.Hour

const latestSentinelKey = "__latest__"

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
	} `json:"chart"`
}

type cacheEntry struct {
	price float64
	found bool
}

// Client is the daily-bar price service wrapper. Its cache is a
// process-local concurrent map so N trades of the same ticker on the same
// day cause one upstream call (spec.md §4.3).
type Client struct {
	http    *resty.Client
	baseURL string
	limiter *rate.Limiter
	cache   *haxmap.Map[string, cacheEntry]
}

// Config configures a Client.
type Config struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerMinute int // default 60
}

// New builds a price Client.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}

	return &Client{
		http:    resty.New().SetTimeout(timeout),
		baseURL: cfg.BaseURL,
		limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1),
		cache:   haxmap.New[string, cacheEntry](),
	}
}

func cacheKey(ticker, date string) string {
	return ticker + "|" + date
}

// PriceOn returns the closing price on date, backfilling to the nearest
// prior trading day when date is a weekend/holiday. found == false (with a
// nil error) signals a well-formed request whose upstream response was
// 404/empty -- an unknown or delisted ticker, not a failure (spec.md §4.3:
// "returns Ok(None) ... must not poison a batch").
func (c *Client) PriceOn(ctx context.Context, ticker, date string) (value float64, found bool, err error) {
	key := cacheKey(ticker, date)
	if entry, ok := c.cache.Get(key); ok {
		return entry.price, entry.found, nil
	}

	parsed, perr := time.Parse("2006-01-02", date)
	if perr != nil {
		return 0, false, &Error{Kind: KindUnknown, Ticker: ticker, Op: "PriceOn", Err: fmt.Errorf("parse date %q: %w", date, perr)}
	}

	start := parsed.Add(-backfillWindow)
	bars, err := c.fetchChart(ctx, ticker, start, parsed.Add(24*time.Hour))
	if err != nil {
		return 0, false, err
	}

	value, found = nearestPriorClose(bars, parsed)
	c.cache.Set(key, cacheEntry{price: value, found: found})
	return value, found, nil
}

// LatestPrice returns the most recent available closing price for ticker.
func (c *Client) LatestPrice(ctx context.Context, ticker string) (value float64, found bool, err error) {
	key := cacheKey(ticker, latestSentinelKey)
	if entry, ok := c.cache.Get(key); ok {
		return entry.price, entry.found, nil
	}

	now := time.Now().UTC()
	bars, err := c.fetchChart(ctx, ticker, now.Add(-backfillWindow), now.Add(24*time.Hour))
	if err != nil {
		return 0, false, err
	}

	if len(bars) == 0 {
		c.cache.Set(key, cacheEntry{found: false})
		return 0, false, nil
	}
	last := bars[len(bars)-1]
	c.cache.Set(key, cacheEntry{price: last.close, found: true})
	return last.close, true, nil
}

type bar struct {
	date  time.Time
	close float64
}

func (c *Client) fetchChart(ctx context.Context, ticker string, start, end time.Time) ([]bar, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &Error{Kind: KindRateLimited, Ticker: ticker, Op: "fetchChart", Err: err}
	}

	logger := zerolog.Ctx(ctx)

	var result chartResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("ticker", ticker).
		SetQueryParam("period1", fmt.Sprintf("%d", start.Unix())).
		SetQueryParam("period2", fmt.Sprintf("%d", end.Unix())).
		SetResult(&result).
		Get(c.baseURL + "/chart/{ticker}")
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Ticker: ticker, Op: "fetchChart", Err: err}
	}

	if resp.StatusCode() == 404 {
		return nil, nil
	}
	if resp.StatusCode() == 429 {
		return nil, &Error{Kind: KindRateLimited, Ticker: ticker, Op: "fetchChart", Err: fmt.Errorf("http 429")}
	}
	if resp.StatusCode() >= 400 {
		return nil, &Error{Kind: KindNetwork, Ticker: ticker, Op: "fetchChart", Err: fmt.Errorf("http %d", resp.StatusCode())}
	}

	if len(result.Chart.Result) == 0 {
		return nil, nil
	}

	r := result.Chart.Result[0]
	if len(r.Indicators.Quote) == 0 {
		logger.Warn().Str("Ticker", ticker).Msg("chart response had no quote indicators")
		return nil, nil
	}

	closes := r.Indicators.Quote[0].Close
	bars := make([]bar, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		if i >= len(closes) {
			break
		}
		bars = append(bars, bar{date: time.Unix(ts, 0).UTC(), close: closes[i]})
	}
	return bars, nil
}

// nearestPriorClose scans bars (assumed ascending by date) for the closing
// price on or before target, implementing the weekend/holiday backfill.
func nearestPriorClose(bars []bar, target time.Time) (float64, bool) {
	var best *bar
	for i := range bars {
		b := bars[i]
		if b.date.After(target) {
			continue
		}
		if best == nil || b.date.After(best.date) {
			best = &b
		}
	}
	if best == nil {
		return 0, false
	}
	return best.close, true
}
