package thing

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPSchemaStore_Create(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want POST", r.Method)
		}
		if r.Header.Get("X-Tenant-ID") != "acme" {
			t.Errorf("X-Tenant-ID = %q, want %q", r.Header.Get("X-Tenant-ID"), "acme")
		}

		var received Thing
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("decoding request body: %v", err)
		}
		if received.ID() != "sensor-7" {
			t.Errorf("received @id = %q, want %q", received.ID(), "sensor-7")
		}

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(CreateResponse{ //nolint:errcheck // Test response
			ID:              "sensor-7",
			SubscribedTopic: "twinscale/acme/sensor-7",
		})
	}))
	defer srv.Close()

	s := NewHTTPSchemaStore(srv.URL, srv.Client(), staticTenant("acme"))

	resp, err := s.Create(context.Background(), Thing{"@id": "sensor-7"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if resp.SubscribedTopic != "twinscale/acme/sensor-7" {
		t.Errorf("SubscribedTopic = %q, want routing token", resp.SubscribedTopic)
	}
}

func TestHTTPSchemaStore_NoTenantHeaderWithoutSelection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.Header["X-Tenant-Id"]; ok {
			t.Error("X-Tenant-ID must not be sent without a current tenant")
		}
		json.NewEncoder(w).Encode([]Thing{}) //nolint:errcheck // Test response
	}))
	defer srv.Close()

	s := NewHTTPSchemaStore(srv.URL, srv.Client(), staticTenant(""))

	if _, err := s.List(context.Background(), ListOptions{}); err != nil {
		t.Fatalf("List() error = %v", err)
	}
}

func TestHTTPSchemaStore_Delete_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.NotFound(w, nil)
	}))
	defer srv.Close()

	s := NewHTTPSchemaStore(srv.URL, srv.Client(), staticTenant("acme"))

	err := s.Delete(context.Background(), "ghost")
	if !errors.Is(err, ErrThingNotFound) {
		t.Errorf("Delete() error = %v, want ErrThingNotFound", err)
	}
}

func TestHTTPSchemaStore_List_ServerErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewHTTPSchemaStore(srv.URL, srv.Client(), staticTenant("acme"))

	_, err := s.List(context.Background(), ListOptions{})
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("List() error = %v, want *StatusError", err)
	}
	if !statusErr.Transient() {
		t.Error("500 should classify as transient")
	}
}

func TestHTTPSchemaStore_List_Filters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("property_name"); got != "temperature" {
			t.Errorf("property_name = %q, want %q", got, "temperature")
		}
		if got := r.URL.Query().Get("limit"); got != "10" {
			t.Errorf("limit = %q, want %q", got, "10")
		}
		json.NewEncoder(w).Encode([]Thing{{"@id": "sensor-7"}}) //nolint:errcheck // Test response
	}))
	defer srv.Close()

	s := NewHTTPSchemaStore(srv.URL, srv.Client(), staticTenant("acme"))

	things, err := s.List(context.Background(), ListOptions{Limit: 10, PropertyName: "temperature"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(things) != 1 || things[0].ID() != "sensor-7" {
		t.Errorf("List() = %v", things)
	}
}

func TestHTTPStateStore_CreateFromSchema(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %q, want PUT", r.Method)
		}
		if r.URL.Path != "/acme:sensor-7" {
			t.Errorf("path = %q, want %q", r.URL.Path, "/acme:sensor-7")
		}
		if got := r.URL.Query().Get("topic"); got != "twinscale/acme/sensor-7" {
			t.Errorf("topic = %q, want routing token", got)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	s := NewHTTPStateStore(srv.URL, srv.Client())

	err := s.CreateFromSchema(context.Background(), "acme:sensor-7",
		Thing{"@id": "sensor-7"}, "twinscale/acme/sensor-7")
	if err != nil {
		t.Fatalf("CreateFromSchema() error = %v", err)
	}
}

func TestHTTPStateStore_Delete_NotFoundIsClean(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.NotFound(w, nil)
	}))
	defer srv.Close()

	s := NewHTTPStateStore(srv.URL, srv.Client())

	// The state entity vanishing independently is fine on delete.
	if err := s.Delete(context.Background(), "acme:ghost"); err != nil {
		t.Errorf("Delete() error = %v, want nil on 404", err)
	}
}
