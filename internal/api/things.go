package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/twinscale/twinscale-core/internal/naming"
	"github.com/twinscale/twinscale-core/internal/thing"
)

// handleListThings returns the Thing listing from the schema store.
//
// Query parameters:
//   - limit: maximum number of results
//   - offset: pagination offset
//   - property_name: only Things carrying this property
//
// On store failure the last successfully fetched listing is served with a
// degraded flag rather than an error.
func (s *Server) handleListThings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var opts thing.ListOptions
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeBadRequest(w, "limit must be a non-negative integer")
			return
		}
		opts.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeBadRequest(w, "offset must be a non-negative integer")
			return
		}
		opts.Offset = n
	}
	opts.PropertyName = q.Get("property_name")

	things := s.orchestrator.FetchThings(r.Context(), opts)

	resp := map[string]any{
		"things": things,
		"count":  len(things),
	}
	if err := s.orchestrator.LastFetchError(); err != nil && things == nil {
		resp["things"] = []thing.Thing{}
		resp["degraded"] = true
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleCreateThing creates a Thing in both stores.
//
// The schema store write happens first; on live-state failure the schema
// entry is rolled back so no orphan remains.
func (s *Server) handleCreateThing(w http.ResponseWriter, r *http.Request) {
	var t thing.Thing
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	result, err := s.orchestrator.Create(r.Context(), t)
	if err != nil {
		switch {
		case errors.Is(err, thing.ErrMissingIdentifier):
			writeError(w, http.StatusBadRequest, ErrCodeValidation, "thing must carry an @id")
		case errors.Is(err, naming.ErrNoTenantContext):
			writeError(w, http.StatusBadRequest, ErrCodeNoTenant, "no tenant selected")
		default:
			writeSyncError(w, err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, syncResponse(result))
}

// syncResponse flattens an orchestrated mutation outcome for JSON transport.
// A swallowed mirror failure surfaces as a warning string.
func syncResponse(result *thing.SyncResult) map[string]any {
	resp := map[string]any{
		"thing": result.Thing,
	}
	if result.SubscribedTopic != "" {
		resp["subscribed_topic"] = result.SubscribedTopic
	}
	if result.Warning != nil {
		resp["warning"] = result.Warning.Error()
	}
	return resp
}

// handleGetThing returns a single Thing by its namespaced identifier.
func (s *Server) handleGetThing(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	t, err := s.orchestrator.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, thing.ErrThingNotFound) {
			writeNotFound(w, "thing not found")
			return
		}
		writeInternalError(w, "failed to get thing")
		return
	}

	writeJSON(w, http.StatusOK, t)
}

// handleUpdateThing updates a Thing's schema and mirrors the change to the
// live-state store on a best-effort basis.
func (s *Server) handleUpdateThing(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var t thing.Thing
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	result, err := s.orchestrator.Update(r.Context(), id, t)
	if err != nil {
		if errors.Is(err, thing.ErrThingNotFound) {
			writeNotFound(w, "thing not found")
			return
		}
		writeSyncError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, syncResponse(result))
}

// handleDeleteThing removes a Thing from both stores.
func (s *Server) handleDeleteThing(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := s.orchestrator.Delete(r.Context(), id)
	if err != nil {
		if errors.Is(err, thing.ErrThingNotFound) {
			writeNotFound(w, "thing not found")
			return
		}
		writeSyncError(w, err)
		return
	}

	resp := map[string]any{"status": "deleted", "id": id}
	if result != nil && result.Warning != nil {
		resp["warning"] = result.Warning.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}
