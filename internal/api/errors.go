package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/twinscale/twinscale-core/internal/thing"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	// StateError and CompensationError are only set for inconsistent_state
	// responses, where both underlying causes must survive to the caller.
	StateError        string `json:"state_error,omitempty"`
	CompensationError string `json:"compensation_error,omitempty"`
}

// Common error codes.
const (
	ErrCodeBadRequest        = "bad_request"
	ErrCodeNotFound          = "not_found"
	ErrCodeUnauthorized      = "unauthorised"
	ErrCodeConflict          = "conflict"
	ErrCodeInternal          = "internal_error"
	ErrCodeValidation        = "validation_error"
	ErrCodeNoTenant          = "no_tenant_context"
	ErrCodeDirectory         = "tenant_directory_failed"
	ErrCodeSchemaWrite       = "schema_write_failed"
	ErrCodeStateWrite        = "state_write_failed"
	ErrCodeInconsistentState = "inconsistent_state"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeNotFound writes a 404 error response.
func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeSyncError maps dual-store synchronization errors to structured
// responses. Inconsistent-state failures keep both underlying causes so the
// caller can tell a clean rollback from an orphaned schema entry.
func writeSyncError(w http.ResponseWriter, err error) {
	var inconsistent *thing.InconsistentStateError
	if errors.As(err, &inconsistent) {
		writeJSON(w, http.StatusInternalServerError, Error{
			Status:            http.StatusInternalServerError,
			Code:              ErrCodeInconsistentState,
			Message:           "stores are out of sync; manual reconciliation required",
			StateError:        inconsistent.StateErr.Error(),
			CompensationError: inconsistent.CompErr.Error(),
		})
		return
	}

	var stateErr *thing.StateWriteError
	if errors.As(err, &stateErr) {
		writeError(w, http.StatusBadGateway, ErrCodeStateWrite, stateErr.Error())
		return
	}

	var schemaErr *thing.SchemaWriteError
	if errors.As(err, &schemaErr) {
		writeError(w, http.StatusBadGateway, ErrCodeSchemaWrite, schemaErr.Error())
		return
	}

	writeInternalError(w, err.Error())
}
