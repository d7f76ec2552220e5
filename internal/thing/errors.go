package thing

import (
	"errors"
	"fmt"
)

// Domain errors for the thing package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, thing.ErrThingNotFound) {
//	    // handle not found case
//	}
var (
	// ErrMissingIdentifier is returned when a Thing document carries no
	// schema-store identifier ("@id").
	ErrMissingIdentifier = errors.New("thing: missing identifier")

	// ErrThingNotFound is returned when the schema store has no entity for
	// the given identifier. Compensation treats this as benign.
	ErrThingNotFound = errors.New("thing: not found")
)

// SchemaWriteError reports a failed schema-store write. It is terminal:
// nothing else was written, so no compensation is needed.
type SchemaWriteError struct {
	Err error
}

func (e *SchemaWriteError) Error() string {
	return fmt.Sprintf("thing: schema write failed: %v", e.Err)
}

func (e *SchemaWriteError) Unwrap() error {
	return e.Err
}

// StateWriteError reports a failed state-store write after the schema write
// succeeded. It is only returned once compensation has completed, either
// successfully or as a benign not-found; both stores are back in their
// pre-operation condition.
type StateWriteError struct {
	Err error
}

func (e *StateWriteError) Error() string {
	return fmt.Sprintf("thing: state write failed: %v", e.Err)
}

func (e *StateWriteError) Unwrap() error {
	return e.Err
}

// InconsistentStateError reports the one case the system cannot self-heal:
// the state write failed AND the compensating schema delete failed with
// something other than not-found. The schema store holds an entity the
// state store does not; both causes travel with the error for out-of-band
// reconciliation. It must never be downgraded to a generic message.
type InconsistentStateError struct {
	// StateErr is the original state-store write failure.
	StateErr error

	// CompErr is the compensation (schema delete) failure.
	CompErr error
}

func (e *InconsistentStateError) Error() string {
	return fmt.Sprintf("thing: stores inconsistent: state write failed (%v) and compensation failed (%v)", e.StateErr, e.CompErr)
}

// StatusError reports a non-success HTTP status from a store collaborator.
// It preserves the status code so callers can classify transient server
// errors without string inspection.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("thing: %s: unexpected status %d: %s", e.Op, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("thing: %s: unexpected status %d", e.Op, e.StatusCode)
}

// Transient reports whether the failure is in the HTTP server-error class,
// worth a single delayed retry on listing fetches.
func (e *StatusError) Transient() bool {
	return e.StatusCode >= 500
}
