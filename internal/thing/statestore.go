package thing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// StateStore is the narrow contract against the live-state store.
// Its errors are opaque to the orchestrator: any failure on create triggers
// compensation, and mirror failures on update/delete become warnings.
type StateStore interface {
	// CreateFromSchema mirrors a schema-store Thing into the state store
	// under the given state identifier. routingToken is the out-of-band
	// topic token returned by the schema store's create, forwarded so the
	// state store can wire its live update feed; may be empty.
	CreateFromSchema(ctx context.Context, stateID string, t Thing, routingToken string) error

	// Delete removes the mirrored entity.
	Delete(ctx context.Context, stateID string) error
}

// HTTPStateStore implements StateStore against the twin service
// (e.g. "http://localhost:8000/v2/things").
type HTTPStateStore struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPStateStore creates a state store client for the given base URL.
func NewHTTPStateStore(baseURL string, httpClient *http.Client) *HTTPStateStore {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPStateStore{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// CreateFromSchema mirrors a schema-store Thing into the state store.
func (s *HTTPStateStore) CreateFromSchema(ctx context.Context, stateID string, t Thing, routingToken string) error {
	body, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encoding thing for state store: %w", err)
	}

	path := "/" + url.PathEscape(stateID)
	if routingToken != "" {
		q := url.Values{}
		q.Set("topic", routingToken)
		path += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building state store request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("writing state for %s: %w", stateID, err)
	}
	defer resp.Body.Close() //nolint:errcheck // Best effort cleanup

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusNoContent {
		return statusError("writing state", resp)
	}
	return nil
}

// Delete removes the mirrored entity.
func (s *HTTPStateStore) Delete(ctx context.Context, stateID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.baseURL+"/"+url.PathEscape(stateID), nil)
	if err != nil {
		return fmt.Errorf("building state store request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("deleting state for %s: %w", stateID, err)
	}
	defer resp.Body.Close() //nolint:errcheck // Best effort cleanup

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusNotFound {
		return statusError("deleting state", resp)
	}
	return nil
}
