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

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// userAgents is the fixed rotation pool spec.md §4.2 calls for ("User-Agent
// is rotated per request from a fixed pool").
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_4) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
}

// Client fetches listing/detail pages and extracts embedded payloads. It
// holds only its HTTP connection pool (spec.md §3 "Ownership": clients own
// only their HTTP connection pools and memoization caches).
type Client struct {
	http       *resty.Client
	baseURL    string
	maxRetries int
	rng        *rand.Rand
}

// Config configures a Client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int // default 3, per spec.md §4.2
}

// New builds a Client against baseURL with the given per-request timeout.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = 3
	}

	return &Client{
		http:       resty.New().SetTimeout(timeout),
		baseURL:    cfg.BaseURL,
		maxRetries: retries,
		rng:        rand.New(rand.NewSource(1)),
	}
}

func (c *Client) randomUserAgent() string {
	return userAgents[c.rng.Intn(len(userAgents))]
}

// fetchHTML performs a GET against path with retry/backoff, returning the
// response body on success. The backoff wrapper never retries permanent
// errors (404, decode failures), only transient/rate-limited ones, per
// spec.md §4.2 "Retry policy".
func (c *Client) fetchHTML(ctx context.Context, op, path string) (string, error) {
	logger := zerolog.Ctx(ctx)

	var body string
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(c.maxRetries)), ctx)

	operation := func() error {
		resp, err := c.http.R().
			SetContext(ctx).
			SetHeader("User-Agent", c.randomUserAgent()).
			Get(c.baseURL + path)
		if err != nil {
			return &Error{Kind: KindTransient, Op: op, Err: err}
		}

		switch {
		case resp.StatusCode() == 429 || resp.StatusCode() == 503:
			retryAfter := parseRetryAfter(resp.Header().Get("Retry-After"))
			logger.Warn().Str("Op", op).Int("StatusCode", resp.StatusCode()).Dur("RetryAfter", retryAfter).Msg("rate limited, backing off")
			return &Error{Kind: KindRateLimited, Op: op, RetryAfter: retryAfter, Err: fmt.Errorf("http %d", resp.StatusCode())}
		case resp.StatusCode() >= 500:
			return &Error{Kind: KindTransient, Op: op, Err: fmt.Errorf("http %d", resp.StatusCode())}
		case resp.StatusCode() >= 400:
			return backoff.Permanent(&Error{Kind: KindHTTP, Op: op, StatusCode: resp.StatusCode(), Err: fmt.Errorf("http %d", resp.StatusCode())})
		}

		body = resp.String()
		return nil
	}

	if err := backoff.Retry(operation, policy); err != nil {
		if se, ok := err.(*Error); ok {
			return "", se
		}
		return "", &Error{Kind: KindTransient, Op: op, Err: err}
	}
	return body, nil
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	if secs, err := strconv.Atoi(header); err == nil {
		return time.Duration(secs) * time.Second
	}
	return 0
}

// TradesPage fetches one page of the trades listing, filtered and paged
// per filters/page.
func (c *Client) TradesPage(ctx context.Context, filters TradesFilter, page int) ([]TradeListing, error) {
	path := fmt.Sprintf("/trades?page=%d", page)
	if filters.PoliticianID != "" {
		path += "&politician=" + filters.PoliticianID
	}
	if filters.IssuerTicker != "" {
		path += "&issuer=" + filters.IssuerTicker
	}
	if filters.Party != "" {
		path += "&party=" + filters.Party
	}
	if filters.State != "" {
		path += "&state=" + filters.State
	}

	html, err := c.fetchHTML(ctx, "TradesPage", path)
	if err != nil {
		return nil, err
	}

	var listings []TradeListing
	if err := extractPayload(html, 0, &listings); err != nil {
		return nil, err
	}
	return listings, nil
}

// TradeDetail fetches the detail payload for a single trade.
func (c *Client) TradeDetail(ctx context.Context, txID int64) (TradeDetail, error) {
	html, err := c.fetchHTML(ctx, "TradeDetail", fmt.Sprintf("/trades/%d", txID))
	if err != nil {
		return TradeDetail{}, err
	}

	var detail TradeDetail
	if err := extractPayload(html, 0, &detail); err != nil {
		return TradeDetail{}, err
	}
	return detail, nil
}

// PoliticiansPage fetches one page of the politicians listing, optionally
// filtered to a single committee (the O(48) committee-filter sweep in
// spec.md §4.5 pass 2).
func (c *Client) PoliticiansPage(ctx context.Context, committee string, page int) ([]PoliticianListing, error) {
	path := fmt.Sprintf("/politicians?page=%d", page)
	if committee != "" {
		path += "&committee=" + committee
	}

	html, err := c.fetchHTML(ctx, "PoliticiansPage", path)
	if err != nil {
		return nil, err
	}

	var listings []PoliticianListing
	if err := extractPayload(html, 0, &listings); err != nil {
		return nil, err
	}
	return listings, nil
}

// PoliticianDetail fetches the detail payload for a single politician. If
// the payload carries a non-empty committee list, HasCommitteeData is set
// so the enrichment orchestrator can skip the committee-filter sweep for
// this politician (spec.md §9, open question 2).
func (c *Client) PoliticianDetail(ctx context.Context, politicianID string) (PoliticianDetail, error) {
	html, err := c.fetchHTML(ctx, "PoliticianDetail", "/politicians/"+politicianID)
	if err != nil {
		return PoliticianDetail{}, err
	}

	var detail PoliticianDetail
	if err := extractPayload(html, 0, &detail); err != nil {
		return PoliticianDetail{}, err
	}
	detail.HasCommitteeData = len(detail.CommitteeCodes) > 0
	return detail, nil
}

// IssuersPage fetches one page of the issuers listing.
func (c *Client) IssuersPage(ctx context.Context, page int) ([]IssuerListing, error) {
	html, err := c.fetchHTML(ctx, "IssuersPage", fmt.Sprintf("/issuers?page=%d", page))
	if err != nil {
		return nil, err
	}

	var listings []IssuerListing
	if err := extractPayload(html, 0, &listings); err != nil {
		return nil, err
	}
	return listings, nil
}

// IssuerDetail fetches the detail payload for a single issuer.
func (c *Client) IssuerDetail(ctx context.Context, issuerID int64) (IssuerDetail, error) {
	html, err := c.fetchHTML(ctx, "IssuerDetail", fmt.Sprintf("/issuers/%d", issuerID))
	if err != nil {
		return IssuerDetail{}, err
	}

	var detail IssuerDetail
	if err := extractPayload(html, 0, &detail); err != nil {
		return IssuerDetail{}, err
	}
	return detail, nil
}

// Smoke fetches a known-stable URL and asserts the payload shape is
// parseable, used by CI to detect upstream format drift before users do
// (spec.md §4.2 "Canary contract").
func (c *Client) Smoke(ctx context.Context) error {
	html, err := c.fetchHTML(ctx, "Smoke", "/issuers?page=1")
	if err != nil {
		return err
	}

	var listings []IssuerListing
	if err := extractPayload(html, 0, &listings); err != nil {
		return err
	}
	if len(listings) == 0 {
		return &Error{Kind: KindDecodeFailed, Op: "Smoke", Err: fmt.Errorf("canary page decoded to zero rows")}
	}
	return nil
}
