package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/twinscale/twinscale-core/internal/search"
)

// handleHybridSearch runs a property/value hybrid query.
//
// Query parameters:
//   - property: property name (required)
//   - operator: one of gt, lt, eq, gte, lte, ne (required)
//   - value: comparison threshold (required)
//   - tenant_id: explicit tenant scope; defaults to the current tenant
//   - all_tenants: when "true", search without a tenant scope
func (s *Server) handleHybridSearch(w http.ResponseWriter, r *http.Request) {
	if s.search == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeInternal, "search service not configured")
		return
	}

	q := r.URL.Query()
	query := search.HybridQuery{
		Property: q.Get("property"),
		Operator: search.Operator(q.Get("operator")),
		Value:    q.Get("value"),
		TenantID: q.Get("tenant_id"),
	}
	if query.Property == "" || query.Value == "" {
		writeBadRequest(w, "property and value are required")
		return
	}
	if query.TenantID == "" && q.Get("all_tenants") != "true" {
		query.TenantID = s.tenants.CurrentID()
	}

	result, err := s.search.SearchByPropertyValue(r.Context(), query)
	if err != nil {
		if errors.Is(err, search.ErrInvalidOperator) {
			writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
			return
		}
		writeInternalError(w, "hybrid search failed")
		return
	}

	s.recordSearch(r, query, result)

	writeJSON(w, http.StatusOK, result)
}

// recordSearch appends an executed hybrid query to the bounded history.
// Failures are logged, never surfaced.
func (s *Server) recordSearch(r *http.Request, query search.HybridQuery, result *search.HybridResult) {
	if s.history == nil {
		return
	}
	entry := &search.HistoryEntry{
		Property:    query.Property,
		Operator:    query.Operator,
		Value:       query.Value,
		TenantID:    query.TenantID,
		ResultCount: result.Count,
		QueryTimeMS: result.QueryTimeMS,
	}
	if err := s.history.Record(r.Context(), entry); err != nil {
		s.logger.Warn("recording search history failed", "error", err)
	}
}

// handleTextSearch runs a free-text search against the schema store.
//
// Query parameters:
//   - q: search text (required)
func (s *Server) handleTextSearch(w http.ResponseWriter, r *http.Request) {
	queryText := r.URL.Query().Get("q")
	if queryText == "" {
		writeBadRequest(w, "q query parameter is required")
		return
	}

	things, err := s.orchestrator.Search(r.Context(), queryText)
	if err != nil {
		writeInternalError(w, "search failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"things": things,
		"count":  len(things),
	})
}

// sparqlRequest is the body for POST /search/sparql.
type sparqlRequest struct {
	Query string `json:"query"`
}

// handleSPARQL passes a raw SPARQL query through to the schema store.
func (s *Server) handleSPARQL(w http.ResponseWriter, r *http.Request) {
	if s.search == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeInternal, "search service not configured")
		return
	}

	var req sparqlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Query == "" {
		writeBadRequest(w, "query is required")
		return
	}

	result, err := s.search.ExecuteSPARQL(r.Context(), req.Query)
	if err != nil {
		writeInternalError(w, "sparql query failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleSearchHistory returns the recorded search history, newest first.
func (s *Server) handleSearchHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeJSON(w, http.StatusOK, map[string]any{"history": []search.HistoryEntry{}, "count": 0})
		return
	}

	entries, err := s.history.Recent(r.Context())
	if err != nil {
		writeInternalError(w, "failed to load search history")
		return
	}
	if entries == nil {
		entries = []search.HistoryEntry{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"history": entries,
		"count":   len(entries),
	})
}

// handleClearSearchHistory removes the entire search history.
func (s *Server) handleClearSearchHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeJSON(w, http.StatusOK, map[string]any{"status": "cleared"})
		return
	}

	if err := s.history.Clear(r.Context()); err != nil {
		writeInternalError(w, "failed to clear search history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "cleared"})
}

// handleListSavedSearches returns all saved searches, newest first.
func (s *Server) handleListSavedSearches(w http.ResponseWriter, r *http.Request) {
	if s.saved == nil {
		writeJSON(w, http.StatusOK, map[string]any{"searches": []search.SavedSearch{}, "count": 0})
		return
	}

	searches, err := s.saved.List(r.Context())
	if err != nil {
		writeInternalError(w, "failed to list saved searches")
		return
	}
	if searches == nil {
		searches = []search.SavedSearch{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"searches": searches,
		"count":    len(searches),
	})
}

// handleSaveSearch stores a named hybrid query for reuse.
func (s *Server) handleSaveSearch(w http.ResponseWriter, r *http.Request) {
	if s.saved == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeInternal, "saved searches not configured")
		return
	}

	var saved search.SavedSearch
	if err := json.NewDecoder(r.Body).Decode(&saved); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if saved.Name == "" || saved.Property == "" {
		writeBadRequest(w, "name and property are required")
		return
	}
	if !saved.Operator.Valid() {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "invalid operator: "+string(saved.Operator))
		return
	}

	if err := s.saved.Save(r.Context(), &saved); err != nil {
		writeInternalError(w, "failed to save search")
		return
	}

	writeJSON(w, http.StatusCreated, saved)
}

// handleDeleteSavedSearch removes a saved search by id.
func (s *Server) handleDeleteSavedSearch(w http.ResponseWriter, r *http.Request) {
	if s.saved == nil {
		writeNotFound(w, "saved search not found")
		return
	}

	id := chi.URLParam(r, "id")
	if err := s.saved.Delete(r.Context(), id); err != nil {
		if errors.Is(err, search.ErrSavedSearchNotFound) {
			writeNotFound(w, "saved search not found")
			return
		}
		writeInternalError(w, "failed to delete saved search")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted", "id": id})
}
