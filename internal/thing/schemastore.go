package thing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// maxErrorBodyBytes bounds how much of an error response body is kept
// when building a StatusError.
const maxErrorBodyBytes = 4096

// SchemaStore is the narrow contract against the authoritative
// structural/graph store for Thing definitions.
type SchemaStore interface {
	// Create stores a new Thing definition. The response may carry an
	// out-of-band routing token (SubscribedTopic).
	Create(ctx context.Context, t Thing) (*CreateResponse, error)

	// Get retrieves a Thing definition by identifier.
	// Returns ErrThingNotFound if the store has no such entity.
	Get(ctx context.Context, id string) (Thing, error)

	// Update replaces an existing Thing definition.
	// Returns ErrThingNotFound if the store has no such entity.
	Update(ctx context.Context, id string, t Thing) (Thing, error)

	// Delete removes a Thing definition.
	// Returns ErrThingNotFound if the store has no such entity; callers
	// rely on this being typed for compensation classification.
	Delete(ctx context.Context, id string) error

	// List retrieves Thing definitions, optionally narrowed.
	List(ctx context.Context, opts ListOptions) ([]Thing, error)

	// Search retrieves Things matching a free-text query.
	Search(ctx context.Context, query string) ([]Thing, error)
}

// TenantSource supplies the current tenant id for request scoping.
// An empty id means no tenant is selected. *tenant.Context satisfies this.
type TenantSource interface {
	CurrentID() string
}

// HTTPSchemaStore implements SchemaStore against the Fuseki-backed schema
// service. Every request carries X-Tenant-ID when a tenant is current.
type HTTPSchemaStore struct {
	baseURL    string
	httpClient *http.Client
	tenants    TenantSource
}

// NewHTTPSchemaStore creates a schema store client for the given base URL
// (e.g. "http://localhost:8000/v2/fuseki").
func NewHTTPSchemaStore(baseURL string, httpClient *http.Client, tenants TenantSource) *HTTPSchemaStore {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPSchemaStore{
		baseURL:    baseURL,
		httpClient: httpClient,
		tenants:    tenants,
	}
}

// Create stores a new Thing definition.
func (s *HTTPSchemaStore) Create(ctx context.Context, t Thing) (*CreateResponse, error) {
	body, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("encoding thing: %w", err)
	}

	req, err := s.newRequest(ctx, http.MethodPost, "/", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("creating thing: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // Best effort cleanup

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, statusError("creating thing", resp)
	}

	var created CreateResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("decoding create response: %w", err)
	}
	if created.ID == "" {
		created.ID = t.ID()
	}
	return &created, nil
}

// Get retrieves a Thing definition by identifier.
func (s *HTTPSchemaStore) Get(ctx context.Context, id string) (Thing, error) {
	req, err := s.newRequest(ctx, http.MethodGet, "/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching thing %s: %w", id, err)
	}
	defer resp.Body.Close() //nolint:errcheck // Best effort cleanup

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("fetching thing %s: %w", id, ErrThingNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError("fetching thing", resp)
	}

	var t Thing
	if err := json.NewDecoder(resp.Body).Decode(&t); err != nil {
		return nil, fmt.Errorf("decoding thing: %w", err)
	}
	return t, nil
}

// Update replaces an existing Thing definition.
func (s *HTTPSchemaStore) Update(ctx context.Context, id string, t Thing) (Thing, error) {
	body, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("encoding thing: %w", err)
	}

	req, err := s.newRequest(ctx, http.MethodPut, "/"+url.PathEscape(id), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("updating thing %s: %w", id, err)
	}
	defer resp.Body.Close() //nolint:errcheck // Best effort cleanup

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("updating thing %s: %w", id, ErrThingNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError("updating thing", resp)
	}

	var updated Thing
	if err := json.NewDecoder(resp.Body).Decode(&updated); err != nil {
		return nil, fmt.Errorf("decoding updated thing: %w", err)
	}
	return updated, nil
}

// Delete removes a Thing definition.
func (s *HTTPSchemaStore) Delete(ctx context.Context, id string) error {
	req, err := s.newRequest(ctx, http.MethodDelete, "/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("deleting thing %s: %w", id, err)
	}
	defer resp.Body.Close() //nolint:errcheck // Best effort cleanup

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("deleting thing %s: %w", id, ErrThingNotFound)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return statusError("deleting thing", resp)
	}
	return nil
}

// List retrieves Thing definitions.
func (s *HTTPSchemaStore) List(ctx context.Context, opts ListOptions) ([]Thing, error) {
	q := url.Values{}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		q.Set("offset", strconv.Itoa(opts.Offset))
	}
	if opts.PropertyName != "" {
		q.Set("property_name", opts.PropertyName)
	}

	path := "/"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}

	req, err := s.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("listing things: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // Best effort cleanup

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("listing things", resp)
	}

	var things []Thing
	if err := json.NewDecoder(resp.Body).Decode(&things); err != nil {
		return nil, fmt.Errorf("decoding thing list: %w", err)
	}
	return things, nil
}

// Search retrieves Things matching a free-text query.
func (s *HTTPSchemaStore) Search(ctx context.Context, query string) ([]Thing, error) {
	q := url.Values{}
	q.Set("q", query)

	req, err := s.newRequest(ctx, http.MethodGet, "/search/?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("searching things: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // Best effort cleanup

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("searching things", resp)
	}

	var things []Thing
	if err := json.NewDecoder(resp.Body).Decode(&things); err != nil {
		return nil, fmt.Errorf("decoding search results: %w", err)
	}
	return things, nil
}

// newRequest builds a tenant-scoped request against the schema service.
func (s *HTTPSchemaStore) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("building schema store request: %w", err)
	}
	if s.tenants != nil {
		if tenantID := s.tenants.CurrentID(); tenantID != "" {
			req.Header.Set("X-Tenant-ID", tenantID)
		}
	}
	return req, nil
}

// statusError builds a StatusError from a non-success response, keeping a
// bounded amount of the body for diagnostics.
func statusError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes)) //nolint:errcheck // Body is diagnostic only
	return &StatusError{
		Op:         op,
		StatusCode: resp.StatusCode,
		Body:       string(bytes.TrimSpace(body)),
	}
}
