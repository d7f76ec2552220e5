package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/twinscale/twinscale-core/internal/tenant"
)

// handleListTenants returns the tenants available for selection.
//
// Query parameters:
//   - active_only: when "true", only active tenants are listed
//   - public: when "true", force the unauthenticated listing
//   - refresh: when "true", re-fetch from the directory before answering
func (s *Server) handleListTenants(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	activeOnly := q.Get("active_only") == "true"
	usePublic := q.Get("public") == "true"
	refresh := q.Get("refresh") == "true"

	if refresh || len(s.tenants.Available()) == 0 {
		if err := s.tenants.FetchTenants(r.Context(), activeOnly, usePublic); err != nil {
			s.logger.Warn("tenant fetch failed", "error", err)
		}
	}

	tenants := s.tenants.Available()
	writeJSON(w, http.StatusOK, map[string]any{
		"tenants": tenants,
		"count":   len(tenants),
		"state":   string(s.tenants.State()),
	})
}

// handleCurrentTenant returns the currently selected tenant.
func (s *Server) handleCurrentTenant(w http.ResponseWriter, _ *http.Request) {
	current := s.tenants.Current()
	if current == nil {
		writeNotFound(w, "no tenant selected")
		return
	}
	writeJSON(w, http.StatusOK, current)
}

// switchTenantRequest is the body for PUT /tenants/current.
type switchTenantRequest struct {
	TenantID string `json:"tenant_id"`
}

// handleSwitchTenant selects a tenant from the available list and persists
// the selection.
func (s *Server) handleSwitchTenant(w http.ResponseWriter, r *http.Request) {
	var req switchTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.TenantID == "" {
		writeBadRequest(w, "tenant_id is required")
		return
	}

	if err := s.tenants.SwitchTenant(r.Context(), req.TenantID); err != nil {
		if errors.Is(err, tenant.ErrTenantNotFound) {
			writeNotFound(w, "tenant not found: "+req.TenantID)
			return
		}
		writeInternalError(w, "failed to switch tenant")
		return
	}

	writeJSON(w, http.StatusOK, s.tenants.Current())
}

// handleClearTenant clears the current tenant selection.
func (s *Server) handleClearTenant(w http.ResponseWriter, r *http.Request) {
	if err := s.tenants.ClearCurrentTenant(r.Context()); err != nil {
		writeInternalError(w, "failed to clear tenant selection")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "cleared"})
}

// handleCreateTenant registers a new tenant with the directory service.
func (s *Server) handleCreateTenant(w http.ResponseWriter, r *http.Request) {
	if s.directory == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeInternal, "tenant directory not configured")
		return
	}

	var t tenant.Tenant
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if t.TenantID == "" || t.Name == "" {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "tenant_id and name are required")
		return
	}

	created, err := s.directory.Create(r.Context(), &t)
	if err != nil {
		writeError(w, http.StatusBadGateway, ErrCodeDirectory, "failed to create tenant")
		return
	}

	s.refreshTenants(r)

	writeJSON(w, http.StatusCreated, created)
}

// handleUpdateTenant modifies a tenant in the directory service.
func (s *Server) handleUpdateTenant(w http.ResponseWriter, r *http.Request) {
	if s.directory == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeInternal, "tenant directory not configured")
		return
	}

	id := chi.URLParam(r, "id")

	var t tenant.Tenant
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	updated, err := s.directory.Update(r.Context(), id, &t)
	if err != nil {
		if errors.Is(err, tenant.ErrTenantNotFound) {
			writeNotFound(w, "tenant not found: "+id)
			return
		}
		writeError(w, http.StatusBadGateway, ErrCodeDirectory, "failed to update tenant")
		return
	}

	s.refreshTenants(r)

	writeJSON(w, http.StatusOK, updated)
}

// handleDeleteTenant removes a tenant from the directory service.
// Deletion is soft (deactivation) unless ?hard=true is given.
func (s *Server) handleDeleteTenant(w http.ResponseWriter, r *http.Request) {
	if s.directory == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeInternal, "tenant directory not configured")
		return
	}

	id := chi.URLParam(r, "id")
	hard := r.URL.Query().Get("hard") == "true"

	if err := s.directory.Delete(r.Context(), id, hard); err != nil {
		if errors.Is(err, tenant.ErrTenantNotFound) {
			writeNotFound(w, "tenant not found: "+id)
			return
		}
		writeError(w, http.StatusBadGateway, ErrCodeDirectory, "failed to delete tenant")
		return
	}

	s.refreshTenants(r)

	// Refresh only replaces the available list; a removed tenant cannot stay
	// selected, so drop it explicitly.
	if s.tenants.CurrentID() == id {
		if err := s.tenants.ClearCurrentTenant(r.Context()); err != nil {
			s.logger.Warn("clearing selection of deleted tenant failed", "error", err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted", "tenant_id": id})
}

// handleValidateTenant checks whether a tenant id is free for registration.
func (s *Server) handleValidateTenant(w http.ResponseWriter, r *http.Request) {
	if s.directory == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeInternal, "tenant directory not configured")
		return
	}

	id := chi.URLParam(r, "id")
	available, err := s.directory.Validate(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusBadGateway, ErrCodeDirectory, "failed to validate tenant id")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"tenant_id": id,
		"available": available,
	})
}

// refreshTenants re-fetches the available list after a directory mutation so
// selection reflects what the directory now holds. Failures only log; the
// mutation itself already succeeded.
func (s *Server) refreshTenants(r *http.Request) {
	if err := s.tenants.FetchTenants(r.Context(), true, false); err != nil {
		s.logger.Warn("tenant refresh after directory change failed", "error", err)
	}
}
