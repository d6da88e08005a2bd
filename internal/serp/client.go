// README: SerpAPI client shared by the Google Flights and Google Hotels engines.
package serp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const defaultEndpoint = "https://serpapi.com/search.json"

// httpTimeout guards against stalled connections; context cancellation is
// still honoured via NewRequestWithContext.
const httpTimeout = 30 * time.Second

// APIError is a provider-level failure reported by SerpAPI itself.
type APIError struct {
	Engine  string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("serpapi %s error: %s", e.Engine, e.Message)
}

// Client issues SerpAPI searches and decodes the JSON envelope.
type Client struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
	log        *zap.Logger
}

func NewClient(apiKey string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		apiKey:     apiKey,
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

func (c *Client) get(ctx context.Context, engine string, params url.Values, out any) error {
	params.Set("api_key", c.apiKey)
	params.Set("engine", engine)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("serpapi: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("serpapi: do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("serpapi: read response: %w", err)
	}

	var probe struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return fmt.Errorf("serpapi: unmarshal response: %w", err)
	}
	if probe.Error != "" {
		return &APIError{Engine: engine, Message: probe.Error}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("serpapi: unmarshal %s results: %w", engine, err)
	}
	return nil
}
