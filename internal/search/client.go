package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// maxErrorBodyBytes bounds how much of an error response body is read
// when building an error message.
const maxErrorBodyBytes = 4096

// Client talks to the hybrid search endpoint of the search service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a search client for the given base URL
// (e.g. "http://localhost:8000/v2/search").
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// SearchByPropertyValue runs a hybrid query in a single round trip.
//
// The operator is validated locally (ErrInvalidOperator); zero matches on
// either side is not an error and yields an empty result set. The returned
// Count is normalized to len(Results) so the count invariant holds even
// against a sloppy server.
func (c *Client) SearchByPropertyValue(ctx context.Context, q HybridQuery) (*HybridResult, error) {
	if !q.Operator.Valid() {
		return nil, fmt.Errorf("operator %q: %w", q.Operator, ErrInvalidOperator)
	}

	params := url.Values{}
	params.Set("property", q.Property)
	params.Set("operator", string(q.Operator))
	params.Set("value", q.Value)
	if q.TenantID != "" {
		params.Set("tenant_id", q.TenantID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/hybrid?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building hybrid search request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hybrid search: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // Best effort cleanup

	if resp.StatusCode != http.StatusOK {
		return nil, responseError("hybrid search", resp)
	}

	var result HybridResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding hybrid search result: %w", err)
	}

	if result.Results == nil {
		result.Results = []HybridMatch{}
	}
	result.Count = len(result.Results)

	return &result, nil
}

// SPARQLResult is the raw answer to a SPARQL passthrough query.
type SPARQLResult struct {
	Results []map[string]any `json:"results"`
	Count   int              `json:"count"`
}

// ExecuteSPARQL passes a raw SPARQL query through to the schema store.
func (c *Client) ExecuteSPARQL(ctx context.Context, query string) (*SPARQLResult, error) {
	body, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return nil, fmt.Errorf("encoding sparql query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/sparql", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building sparql request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing sparql query: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // Best effort cleanup

	if resp.StatusCode != http.StatusOK {
		return nil, responseError("executing sparql query", resp)
	}

	var result SPARQLResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding sparql result: %w", err)
	}
	return &result, nil
}

// responseError builds an error from a non-success response, including a
// bounded amount of the body for diagnostics.
func responseError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes)) //nolint:errcheck // Body is diagnostic only
	if len(body) > 0 {
		return fmt.Errorf("%s: unexpected status %d: %s", op, resp.StatusCode, body)
	}
	return fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode)
}
