package naming

import "errors"

// ErrNoTenantContext indicates an operation that requires a current tenant
// was attempted without one selected.
var ErrNoTenantContext = errors.New("naming: no tenant context")
