// Package analytics queries the site's web analytics reporting API, falling
// back to a fixed set of page stats when credentials are missing or the
// upstream call fails.
package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// PageStat is one page's view count over the reporting period.
type PageStat struct {
	Path  string `json:"path"`
	Title string `json:"title,omitempty"`
	Views int    `json:"views"`
}

// fallbackPages is served whenever live stats are unavailable. The list is
// fixed so the site renders something sensible without credentials.
var fallbackPages = []PageStat{
	{Path: "/posts/sql-query-engine-part-1", Title: "A SQL query engine from scratch, part 1", Views: 1482},
	{Path: "/posts/sql-query-engine-part-2", Title: "A SQL query engine from scratch, part 2", Views: 973},
	{Path: "/posts/volcano-iterators", Title: "Volcano-style iterators in practice", Views: 651},
	{Path: "/papers/out-of-the-tarpit", Title: "Paper notes: Out of the Tar Pit", Views: 540},
	{Path: "/pages/workshop", Title: "Workshop", Views: 312},
}

// Client talks to a Plausible-compatible stats API.
type Client struct {
	endpoint   string
	propertyID string
	apiKey     string
	period     string
	httpc      *http.Client
	logger     *slog.Logger
}

// New creates a stats client. endpoint is the API base URL; propertyID and
// apiKey may be empty, in which case every call serves the fallback list.
func New(endpoint, propertyID, apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		endpoint:   endpoint,
		propertyID: propertyID,
		apiKey:     apiKey,
		period:     "28d",
		httpc:      &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// TopPages returns the most viewed pages over the reporting period. It never
// fails: missing credentials or any upstream error degrade to the fixed
// fallback list.
func (c *Client) TopPages(ctx context.Context, limit int) []PageStat {
	if limit <= 0 {
		limit = len(fallbackPages)
	}

	if c.propertyID == "" || c.apiKey == "" {
		c.logger.Warn("analytics: credentials missing, serving fallback stats")
		return fallback(limit)
	}

	stats, err := c.fetch(ctx, limit)
	if err != nil {
		c.logger.Error("analytics: fetch failed, serving fallback stats", slog.String("error", err.Error()))
		return fallback(limit)
	}
	return stats
}

type breakdownResponse struct {
	Results []struct {
		Page     string `json:"page"`
		Visitors int    `json:"visitors"`
	} `json:"results"`
}

func (c *Client) fetch(ctx context.Context, limit int) ([]PageStat, error) {
	q := url.Values{}
	q.Set("site_id", c.propertyID)
	q.Set("period", c.period)
	q.Set("property", "event:page")
	q.Set("limit", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.endpoint+"/api/v1/stats/breakdown?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("analytics: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("analytics: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("analytics: unexpected status %d", resp.StatusCode)
	}

	var body breakdownResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&body); err != nil {
		return nil, fmt.Errorf("analytics: decode response: %w", err)
	}

	out := make([]PageStat, len(body.Results))
	for i, r := range body.Results {
		out[i] = PageStat{Path: r.Page, Views: r.Visitors}
	}
	return out, nil
}

func fallback(limit int) []PageStat {
	if limit > len(fallbackPages) {
		limit = len(fallbackPages)
	}
	out := make([]PageStat, limit)
	copy(out, fallbackPages[:limit])
	return out
}
