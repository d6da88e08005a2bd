// Package search wraps the Google Custom Search JSON API for the
// destination-research queries and resolves the first usable result link.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const defaultEndpoint = "https://www.googleapis.com/customsearch/v1"

const httpTimeout = 15 * time.Second

// Result is a single search hit; only the fields the planner uses.
type Result struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

type response struct {
	Items []Result `json:"items"`
}

// Client queries a Custom Search engine identified by EngineID.
type Client struct {
	apiKey     string
	engineID   string
	endpoint   string
	httpClient *http.Client
	log        *zap.Logger
}

func NewClient(apiKey, engineID string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		apiKey:     apiKey,
		engineID:   engineID,
		endpoint:   defaultEndpoint,
		httpClient: &http.Client{Timeout: httpTimeout},
		log:        log,
	}
}

// WithEndpoint overrides the API endpoint; used by tests.
func (c *Client) WithEndpoint(endpoint string) *Client {
	c.endpoint = endpoint
	return c
}

// Search runs the query and returns the result list, possibly empty.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("cx", c.engineID)
	params.Set("q", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("customsearch: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("customsearch: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("customsearch: unexpected status %d", resp.StatusCode)
	}

	var decoded response
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("customsearch: decode response: %w", err)
	}
	c.log.Debug("search completed", zap.String("query", query), zap.Int("results", len(decoded.Items)))
	return decoded.Items, nil
}

// FirstLink returns the link of the top result, or "" when the query
// produced nothing. A top hit pointing at a PDF falls through to the first
// non-PDF result since scraping PDFs yields nothing useful.
func (c *Client) FirstLink(ctx context.Context, query string) (string, error) {
	results, err := c.Search(ctx, query)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", nil
	}
	link := results[0].Link
	if strings.HasSuffix(link, ".pdf") {
		return c.firstNonPDF(results), nil
	}
	return link, nil
}

// FirstNonPDFLink returns the first result whose link is not a PDF, or ""
// when every hit is a PDF or the query produced nothing.
func (c *Client) FirstNonPDFLink(ctx context.Context, query string) (string, error) {
	results, err := c.Search(ctx, query)
	if err != nil {
		return "", err
	}
	return c.firstNonPDF(results), nil
}

func (c *Client) firstNonPDF(results []Result) string {
	for _, r := range results {
		if !strings.HasSuffix(r.Link, ".pdf") {
			return r.Link
		}
	}
	return ""
}
