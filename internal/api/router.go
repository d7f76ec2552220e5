package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", s.handleHealth)

		// System metrics
		r.Get("/metrics", s.handleMetrics)

		// Tenant endpoints
		r.Route("/tenants", func(r chi.Router) {
			r.Get("/", s.handleListTenants)
			r.Post("/", s.handleCreateTenant)
			r.Get("/current", s.handleCurrentTenant)
			r.Put("/current", s.handleSwitchTenant)
			r.Delete("/current", s.handleClearTenant)
			r.Get("/validate/{id}", s.handleValidateTenant)
			r.Put("/{id}", s.handleUpdateTenant)
			r.Delete("/{id}", s.handleDeleteTenant)
		})

		// Thing endpoints
		r.Route("/things", func(r chi.Router) {
			r.Get("/", s.handleListThings)
			r.Post("/", s.handleCreateThing)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetThing)
				r.Patch("/", s.handleUpdateThing)
				r.Delete("/", s.handleDeleteThing)
			})
		})

		// Search endpoints
		r.Route("/search", func(r chi.Router) {
			r.Get("/", s.handleTextSearch)
			r.Get("/hybrid", s.handleHybridSearch)
			r.Post("/sparql", s.handleSPARQL)
			r.Get("/history", s.handleSearchHistory)
			r.Delete("/history", s.handleClearSearchHistory)

			r.Route("/saved", func(r chi.Router) {
				r.Get("/", s.handleListSavedSearches)
				r.Post("/", s.handleSaveSearch)
				r.Delete("/{id}", s.handleDeleteSavedSearch)
			})
		})

		// WebSocket state stream
		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"tenant":  s.tenants.CurrentID(),
	})
}
