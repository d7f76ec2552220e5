package tenant

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

// maxErrorBodyBytes bounds how much of an error response body is read
// when building an error message.
const maxErrorBodyBytes = 4096

// Directory is an HTTP client for the remote tenant directory service.
//
// The directory exposes both an authenticated listing (tenants the session's
// user can access) and a public listing (requested with the X-Skip-Auth
// header, no credential sent).
type Directory struct {
	baseURL    string
	httpClient *http.Client
	session    *Session
}

// NewDirectory creates a directory client for the given base URL
// (e.g. "http://localhost:8000/v2/tenants").
func NewDirectory(baseURL string, httpClient *http.Client, session *Session) *Directory {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Directory{
		baseURL:    baseURL,
		httpClient: httpClient,
		session:    session,
	}
}

// List retrieves tenants from the directory.
//
// When public is true (or the session has no valid credential) the request
// carries X-Skip-Auth and no bearer token, returning only publicly visible
// tenants. activeOnly filters out deactivated tenants server-side.
func (d *Directory) List(ctx context.Context, activeOnly, public bool) ([]Tenant, error) {
	q := url.Values{}
	q.Set("active_only", strconv.FormatBool(activeOnly))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"/?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building tenant list request: %w", err)
	}

	if public || !d.session.Valid() {
		req.Header.Set("X-Skip-Auth", "true")
	} else {
		req.Header.Set("Authorization", "Bearer "+d.session.AccessToken)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("listing tenants: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // Best effort cleanup

	if resp.StatusCode != http.StatusOK {
		return nil, responseError("listing tenants", resp)
	}

	var tenants []Tenant
	if err := json.NewDecoder(resp.Body).Decode(&tenants); err != nil {
		return nil, fmt.Errorf("decoding tenant list: %w", err)
	}
	return tenants, nil
}

// Get retrieves a single tenant by id.
// Returns ErrTenantNotFound if the directory has no such tenant.
func (d *Directory) Get(ctx context.Context, tenantID string) (*Tenant, error) {
	req, err := d.newRequest(ctx, http.MethodGet, "/"+url.PathEscape(tenantID), nil)
	if err != nil {
		return nil, err
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching tenant %s: %w", tenantID, err)
	}
	defer resp.Body.Close() //nolint:errcheck // Best effort cleanup

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrTenantNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, responseError("fetching tenant", resp)
	}

	var t Tenant
	if err := json.NewDecoder(resp.Body).Decode(&t); err != nil {
		return nil, fmt.Errorf("decoding tenant: %w", err)
	}
	return &t, nil
}

// Create registers a new tenant with the directory.
func (d *Directory) Create(ctx context.Context, t *Tenant) (*Tenant, error) {
	body, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("encoding tenant: %w", err)
	}

	req, err := d.newRequest(ctx, http.MethodPost, "/", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("creating tenant: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // Best effort cleanup

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, responseError("creating tenant", resp)
	}

	var created Tenant
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("decoding created tenant: %w", err)
	}
	return &created, nil
}

// Update modifies an existing tenant.
// Returns ErrTenantNotFound if the directory has no such tenant.
func (d *Directory) Update(ctx context.Context, tenantID string, t *Tenant) (*Tenant, error) {
	body, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("encoding tenant: %w", err)
	}

	req, err := d.newRequest(ctx, http.MethodPut, "/"+url.PathEscape(tenantID), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("updating tenant %s: %w", tenantID, err)
	}
	defer resp.Body.Close() //nolint:errcheck // Best effort cleanup

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrTenantNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, responseError("updating tenant", resp)
	}

	var updated Tenant
	if err := json.NewDecoder(resp.Body).Decode(&updated); err != nil {
		return nil, fmt.Errorf("decoding updated tenant: %w", err)
	}
	return &updated, nil
}

// Delete removes a tenant. With hard false the tenant is deactivated
// (soft delete) rather than removed.
// Returns ErrTenantNotFound if the directory has no such tenant.
func (d *Directory) Delete(ctx context.Context, tenantID string, hard bool) error {
	path := "/" + url.PathEscape(tenantID) + "?hard_delete=" + strconv.FormatBool(hard)
	req, err := d.newRequest(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return err
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("deleting tenant %s: %w", tenantID, err)
	}
	defer resp.Body.Close() //nolint:errcheck // Best effort cleanup

	if resp.StatusCode == http.StatusNotFound {
		return ErrTenantNotFound
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return responseError("deleting tenant", resp)
	}
	return nil
}

// Validate checks whether a tenant id is available for registration.
// The directory answers 200 regardless; availability is in the body.
func (d *Directory) Validate(ctx context.Context, tenantID string) (bool, error) {
	req, err := d.newRequest(ctx, http.MethodGet, "/validate/"+url.PathEscape(tenantID), nil)
	if err != nil {
		return false, err
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("validating tenant id %s: %w", tenantID, err)
	}
	defer resp.Body.Close() //nolint:errcheck // Best effort cleanup

	if resp.StatusCode != http.StatusOK {
		return false, responseError("validating tenant id", resp)
	}

	var result struct {
		Available bool `json:"available"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("decoding validation result: %w", err)
	}
	return result.Available, nil
}

// newRequest builds an authenticated request against the directory.
func (d *Directory) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, d.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("building tenant request: %w", err)
	}
	if d.session.Valid() {
		req.Header.Set("Authorization", "Bearer "+d.session.AccessToken)
	}
	return req, nil
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
