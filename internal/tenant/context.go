package tenant

import (
	"context"
	"fmt"
	"sync"
)

// Logger defines the logging interface used by the Context.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Lister is the slice of the directory the Context depends on.
type Lister interface {
	List(ctx context.Context, activeOnly, public bool) ([]Tenant, error)
}

// Context tracks the available tenants and the current selection.
//
// It is an explicit object passed to collaborators rather than a package
// singleton. The current tenant is persisted through the Store so a restart
// resumes with the same selection before any network call completes.
//
// Concurrency: all public methods are safe for concurrent use. Mutations
// are last-writer-wins; no lock is held across a network call. The loading
// flag is always reset on the way out of FetchTenants and Initialize, even
// on error paths.
type Context struct {
	directory Lister
	store     Store
	session   *Session
	logger    Logger

	mu        sync.RWMutex
	state     State
	available []Tenant
	current   *Tenant
	lastErr   error
}

// NewContext creates an uninitialized tenant context.
func NewContext(directory Lister, store Store, session *Session) *Context {
	return &Context{
		directory: directory,
		store:     store,
		session:   session,
		logger:    noopLogger{},
		state:     StateUninitialized,
	}
}

// SetLogger sets the logger for the context.
func (c *Context) SetLogger(logger Logger) {
	c.logger = logger
}

// Initialize loads the persisted tenant selection, then fetches the
// available tenant list.
//
// Individual failures are recorded and logged but never fail the call:
// the context always ends Ready, possibly partially populated, so the
// session remains usable when collaborator services are down.
func (c *Context) Initialize(ctx context.Context) {
	c.setLoading()

	persisted, err := c.store.Load(ctx)
	if err != nil {
		c.recordError(fmt.Errorf("loading persisted tenant: %w", err))
		c.logger.Warn("failed to load persisted tenant selection", "error", err)
	} else if persisted != nil {
		c.mu.Lock()
		c.current = persisted
		c.mu.Unlock()
		c.logger.Info("restored persisted tenant", "tenant_id", persisted.TenantID)
	}

	if err := c.FetchTenants(ctx, true, false); err != nil {
		// Already recorded by FetchTenants; initialization still completes.
		c.logger.Warn("tenant list fetch failed during initialization", "error", err)
	}

	c.mu.Lock()
	c.state = StateReady
	c.mu.Unlock()
}

// FetchTenants refreshes the available tenant list from the directory.
//
// The public listing is used when usePublic is true or the session has no
// valid credential. On success the list is replaced wholesale and, if no
// tenant is currently selected, the default tenant (id "default", falling
// back to the first element) is selected automatically.
func (c *Context) FetchTenants(ctx context.Context, activeOnly, usePublic bool) error {
	c.setLoading()
	defer c.clearLoading()

	public := usePublic || !c.session.Valid()

	tenants, err := c.directory.List(ctx, activeOnly, public)
	if err != nil {
		c.recordError(fmt.Errorf("fetching tenants: %w", err))
		return fmt.Errorf("fetching tenants: %w", err)
	}

	c.mu.Lock()
	c.available = tenants
	c.lastErr = nil
	needDefault := c.current == nil && len(tenants) > 0
	c.mu.Unlock()

	c.logger.Debug("tenant list refreshed", "count", len(tenants), "public", public)

	if needDefault {
		selected := tenants[0]
		for _, t := range tenants {
			if t.TenantID == "default" {
				selected = t
				break
			}
		}
		if err := c.SwitchTenant(ctx, selected.TenantID); err != nil {
			c.logger.Warn("default tenant selection failed", "tenant_id", selected.TenantID, "error", err)
		}
	}

	return nil
}

// SwitchTenant sets the current tenant and persists the selection.
// Returns ErrTenantNotFound if the id is not in the available list.
// This is the only mutator of the current tenant besides ClearCurrentTenant.
func (c *Context) SwitchTenant(ctx context.Context, tenantID string) error {
	c.mu.Lock()
	var selected *Tenant
	for i := range c.available {
		if c.available[i].TenantID == tenantID {
			t := c.available[i]
			selected = &t
			break
		}
	}
	if selected == nil {
		c.mu.Unlock()
		return fmt.Errorf("switching to %q: %w", tenantID, ErrTenantNotFound)
	}
	c.current = selected
	c.mu.Unlock()

	if err := c.store.Save(ctx, selected); err != nil {
		// Selection stands in memory; persistence failure only affects restarts.
		c.recordError(fmt.Errorf("persisting tenant selection: %w", err))
		c.logger.Error("failed to persist tenant selection", "tenant_id", tenantID, "error", err)
		return nil
	}

	c.logger.Info("switched tenant", "tenant_id", tenantID)
	return nil
}

// ClearCurrentTenant removes the current selection from memory and storage.
func (c *Context) ClearCurrentTenant(ctx context.Context) error {
	c.mu.Lock()
	c.current = nil
	c.mu.Unlock()

	if err := c.store.Clear(ctx); err != nil {
		return fmt.Errorf("clearing tenant selection: %w", err)
	}

	c.logger.Info("cleared current tenant")
	return nil
}

// Current returns the currently selected tenant, or nil if none.
func (c *Context) Current() *Tenant {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return nil
	}
	t := *c.current
	return &t
}

// CurrentID returns the current tenant's id, or "" if none is selected.
func (c *Context) CurrentID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return ""
	}
	return c.current.TenantID
}

// Available returns a copy of the available tenant list.
func (c *Context) Available() []Tenant {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Tenant, len(c.available))
	copy(out, c.available)
	return out
}

// State returns the context lifecycle state.
func (c *Context) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Err returns the most recent recorded error, or nil.
func (c *Context) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

func (c *Context) setLoading() {
	c.mu.Lock()
	c.state = StateLoading
	c.mu.Unlock()
}

// clearLoading transitions out of Loading. An error recorded during the
// operation leaves the context in Error, otherwise Ready; the loading
// state is never left sticking on an error path.
func (c *Context) clearLoading() {
	c.mu.Lock()
	if c.lastErr != nil {
		c.state = StateError
	} else {
		c.state = StateReady
	}
	c.mu.Unlock()
}

func (c *Context) recordError(err error) {
	c.mu.Lock()
	c.lastErr = err
	c.state = StateError
	c.mu.Unlock()
}
