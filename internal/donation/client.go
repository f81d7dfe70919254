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
package donation

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultConcurrency reflects a conservative interpretation of the
// documented upstream hourly quota (spec.md §4.4).
const DefaultConcurrency = 3

const defaultPerPage = 100

// CandidateResult is one row from the candidate search endpoint.
type CandidateResult struct {
	CandidateID string `json:"candidate_id"`
	Name        string `json:"name"`
}

// CommitteeResult is one row from the candidate->committee lookup.
type CommitteeResult struct {
	CommitteeID string `json:"committee_id"`
	Name        string `json:"name"`
}

// DonationRecord is one Schedule A contribution row.
type DonationRecord struct {
	SubID               string  `json:"sub_id"`
	ContributorName     string  `json:"contributor_name"`
	ContributorEmployer string  `json:"contributor_employer"`
	Amount              float64 `json:"contribution_receipt_amount"`
	ReceiptDate         string  `json:"contribution_receipt_date"`
	Cycle               int64   `json:"two_year_transaction_period"`
	State               string  `json:"contributor_state"`
	Zip                 string  `json:"contributor_zip"`
}

// Cursor is the keyset-pagination position; the zero value requests the
// first page (spec.md §4.4: "last_index plus last_contribution_receipt_
// date from the previous response, never page numbers").
type Cursor struct {
	LastIndex       string
	LastReceiptDate string
}

// Page is one Schedule-A response. The upstream API's pagination metadata
// varies by endpoint (standard offset-based or keyset); both are modeled
// as optional fields so either shape decodes cleanly (spec.md §4.4).
type Page struct {
	Donations []DonationRecord
	Next      Cursor
	HasMore   bool
}

type scheduleAResponse struct {
	Results    []DonationRecord `json:"results"`
	Pagination struct {
		LastIndexes struct {
			LastIndex               string `json:"last_index"`
			LastContributionReceiptDate string `json:"last_contribution_receipt_date"`
		} `json:"last_indexes"`
		Count *int `json:"count,omitempty"` // standard pagination, when present
		Pages *int `json:"pages,omitempty"`
	} `json:"pagination"`
}

// Client is the donation service wrapper. It owns only its HTTP
// connection pool and a concurrency-limiting semaphore (spec.md §3
// "Ownership").
type Client struct {
	http    *resty.Client
	baseURL string
	apiKey  string
	sem     chan struct{}
}

// Config configures a Client.
type Config struct {
	BaseURL     string
	ApiKey      string
	Timeout     time.Duration
	Concurrency int // default DefaultConcurrency
}

// New builds a donation Client.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	return &Client{
		http:    resty.New().SetTimeout(timeout).SetQueryParam("api_key", cfg.ApiKey),
		baseURL: cfg.BaseURL,
		apiKey:  cfg.ApiKey,
		sem:     make(chan struct{}, concurrency),
	}
}

func (c *Client) acquire(ctx context.Context) error {
	select {
	case c.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) release() { <-c.sem }

func classifyStatus(op, path string, status int) error {
	switch status {
	case 429:
		return &RateLimitExceeded{Op: op}
	case 403:
		return &InvalidApiKey{Op: op}
	case 404:
		return &NotFound{Op: op, Path: path}
	default:
		return fmt.Errorf("donation: %s: unexpected http %d", op, status)
	}
}

// SearchCandidates searches for a candidate by name, used as the tier-3
// fallback in the three-tier committee resolution (spec.md §4.4).
func (c *Client) SearchCandidates(ctx context.Context, name string) ([]CandidateResult, error) {
	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.release()

	var results []CandidateResult
	path := "/candidates/search"
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("q", name).
		SetResult(&results).
		Get(c.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("donation: SearchCandidates: %w", err)
	}
	if resp.StatusCode() >= 300 {
		return nil, classifyStatus("SearchCandidates", path, resp.StatusCode())
	}
	return results, nil
}

// CommitteesForCandidate lists the committees associated with a candidate.
func (c *Client) CommitteesForCandidate(ctx context.Context, candidateID string) ([]CommitteeResult, error) {
	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.release()

	var results []CommitteeResult
	path := fmt.Sprintf("/candidates/%s/committees", candidateID)
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&results).
		Get(c.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("donation: CommitteesForCandidate: %w", err)
	}
	if resp.StatusCode() >= 300 {
		return nil, classifyStatus("CommitteesForCandidate", path, resp.StatusCode())
	}
	return results, nil
}

// ScheduleAPage fetches one keyset-paginated page of Schedule A
// contributions for committeeID, continuing from cursor (the zero Cursor
// requests the first page). Default per_page is 100, sorted by
// -contribution_receipt_date (spec.md §6).
func (c *Client) ScheduleAPage(ctx context.Context, committeeID string, cursor Cursor) (Page, error) {
	if err := c.acquire(ctx); err != nil {
		return Page{}, err
	}
	defer c.release()

	var result scheduleAResponse
	path := "/schedules/schedule_a"
	req := c.http.R().
		SetContext(ctx).
		SetQueryParam("committee_id", committeeID).
		SetQueryParam("per_page", fmt.Sprintf("%d", defaultPerPage)).
		SetQueryParam("sort", "-contribution_receipt_date").
		SetResult(&result)

	if cursor.LastIndex != "" {
		req.SetQueryParam("last_index", cursor.LastIndex)
	}
	if cursor.LastReceiptDate != "" {
		req.SetQueryParam("last_contribution_receipt_date", cursor.LastReceiptDate)
	}

	resp, err := req.Get(c.baseURL + path)
	if err != nil {
		return Page{}, fmt.Errorf("donation: ScheduleAPage: %w", err)
	}
	if resp.StatusCode() >= 300 {
		return Page{}, classifyStatus("ScheduleAPage", path, resp.StatusCode())
	}

	next := Cursor{
		LastIndex:       result.Pagination.LastIndexes.LastIndex,
		LastReceiptDate: result.Pagination.LastIndexes.LastContributionReceiptDate,
	}
	hasMore := len(result.Results) >= defaultPerPage && next.LastIndex != ""

	return Page{Donations: result.Results, Next: next, HasMore: hasMore}, nil
}
