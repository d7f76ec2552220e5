package tenant

import "time"

// Tenant represents an isolation boundary in the directory service.
// Its id namespaces Thing identifiers across both stores.
type Tenant struct {
	TenantID    string     `json:"tenant_id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	ModifiedAt  *time.Time `json:"modified_at,omitempty"`
}

// State describes the lifecycle of the tenant Context.
type State string

// Context lifecycle states.
const (
	StateUninitialized State = "uninitialized"
	StateLoading       State = "loading"
	StateReady         State = "ready"
	StateError         State = "error"
)
