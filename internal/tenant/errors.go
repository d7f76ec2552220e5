package tenant

import "errors"

// Domain errors for the tenant package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, tenant.ErrTenantNotFound) {
//	    // handle not found case
//	}
var (
	// ErrTenantNotFound is returned when a tenant id is not present in the
	// available tenant list or the remote directory.
	ErrTenantNotFound = errors.New("tenant: not found")

	// ErrNoTenantSelected is returned when an operation requires a current
	// tenant and none is selected.
	ErrNoTenantSelected = errors.New("tenant: none selected")
)
