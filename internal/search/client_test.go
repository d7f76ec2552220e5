package search

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_SearchByPropertyValue(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("property") != "temperature" {
			t.Errorf("property = %q, want %q", q.Get("property"), "temperature")
		}
		if q.Get("operator") != "gt" {
			t.Errorf("operator = %q, want %q", q.Get("operator"), "gt")
		}
		if q.Get("value") != "25" {
			t.Errorf("value = %q, want %q", q.Get("value"), "25")
		}
		if q.Get("tenant_id") != "acme" {
			t.Errorf("tenant_id = %q, want %q", q.Get("tenant_id"), "acme")
		}

		json.NewEncoder(w).Encode(HybridResult{ //nolint:errcheck // Test response
			Results: []HybridMatch{
				{ThingID: "acme:sensor-7", Value: 28.4},
				{ThingID: "acme:sensor-9", Value: 31.0},
			},
			SchemaMatches: 5,
			ValueMatches:  2,
			Count:         2,
			QueryTimeMS:   42,
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client())

	result, err := c.SearchByPropertyValue(context.Background(), HybridQuery{
		Property: "temperature",
		Operator: OpGreaterThan,
		Value:    "25",
		TenantID: "acme",
	})
	if err != nil {
		t.Fatalf("SearchByPropertyValue() error = %v", err)
	}

	// Count invariant: count == len(results) <= min(schema, value) matches.
	if result.Count != len(result.Results) {
		t.Errorf("Count = %d, len(Results) = %d", result.Count, len(result.Results))
	}
	if result.Count > result.SchemaMatches || result.Count > result.ValueMatches {
		t.Errorf("Count %d exceeds a side's matches (schema %d, value %d)",
			result.Count, result.SchemaMatches, result.ValueMatches)
	}
	if result.Results[0].ThingID != "acme:sensor-7" {
		t.Errorf("Results[0].ThingID = %q", result.Results[0].ThingID)
	}
	if result.QueryTimeMS != 42 {
		t.Errorf("QueryTimeMS = %d, want 42", result.QueryTimeMS)
	}
}

func TestClient_SearchByPropertyValue_InvalidOperator(t *testing.T) {
	c := NewClient("http://unused", nil)

	_, err := c.SearchByPropertyValue(context.Background(), HybridQuery{
		Property: "temperature",
		Operator: "like",
		Value:    "25",
	})
	if !errors.Is(err, ErrInvalidOperator) {
		t.Errorf("error = %v, want ErrInvalidOperator", err)
	}
}

func TestClient_SearchByPropertyValue_EmptyResultIsNotError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(HybridResult{ //nolint:errcheck // Test response
			SchemaMatches: 3,
			ValueMatches:  0,
			QueryTimeMS:   10,
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client())

	result, err := c.SearchByPropertyValue(context.Background(), HybridQuery{
		Property: "temperature",
		Operator: OpEqual,
		Value:    "1000",
	})
	if err != nil {
		t.Fatalf("zero matches should not be an error, got %v", err)
	}
	if result.Count != 0 {
		t.Errorf("Count = %d, want 0", result.Count)
	}
	if result.Results == nil {
		t.Error("Results should be an empty slice, not nil")
	}
}

// A server reporting a count that disagrees with its result list must not
// leak the discrepancy to callers.
func TestClient_SearchByPropertyValue_NormalizesCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(HybridResult{ //nolint:errcheck // Test response
			Results:       []HybridMatch{{ThingID: "sensor-7"}},
			SchemaMatches: 4,
			ValueMatches:  3,
			Count:         99,
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client())

	result, err := c.SearchByPropertyValue(context.Background(), HybridQuery{
		Property: "temperature",
		Operator: OpLessThan,
		Value:    "0",
	})
	if err != nil {
		t.Fatalf("SearchByPropertyValue() error = %v", err)
	}
	if result.Count != 1 {
		t.Errorf("Count = %d, want normalized 1", result.Count)
	}
}

func TestClient_SearchByPropertyValue_OmitsTenantWhenUnset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("tenant_id") {
			t.Error("tenant_id must be omitted when not set")
		}
		json.NewEncoder(w).Encode(HybridResult{}) //nolint:errcheck // Test response
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client())

	if _, err := c.SearchByPropertyValue(context.Background(), HybridQuery{
		Property: "temperature",
		Operator: OpNotEqual,
		Value:    "0",
	}); err != nil {
		t.Fatalf("SearchByPropertyValue() error = %v", err)
	}
}

func TestClient_ExecuteSPARQL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if body["query"] == "" {
			t.Error("expected query in request body")
		}
		json.NewEncoder(w).Encode(SPARQLResult{ //nolint:errcheck // Test response
			Results: []map[string]any{{"thing": "sensor-7"}},
			Count:   1,
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client())

	result, err := c.ExecuteSPARQL(context.Background(), "SELECT ?thing WHERE { ?thing a wot:Thing }")
	if err != nil {
		t.Fatalf("ExecuteSPARQL() error = %v", err)
	}
	if result.Count != 1 {
		t.Errorf("Count = %d, want 1", result.Count)
	}
}

func TestOperator_Valid(t *testing.T) {
	valid := []Operator{OpGreaterThan, OpLessThan, OpEqual, OpGreaterEqual, OpLessEqual, OpNotEqual}
	for _, op := range valid {
		if !op.Valid() {
			t.Errorf("Operator(%q).Valid() = false, want true", op)
		}
	}

	invalid := []Operator{"", "like", "GT", "=="}
	for _, op := range invalid {
		if op.Valid() {
			t.Errorf("Operator(%q).Valid() = true, want false", op)
		}
	}
}
