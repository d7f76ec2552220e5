package thing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/twinscale/twinscale-core/internal/naming"
)

// Logger defines the logging interface used by the Orchestrator.
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

// Listing fetch behaviour.
const (
	// defaultFetchTimeout bounds a single listing fetch so a hung schema
	// store degrades to an error instead of blocking the caller.
	defaultFetchTimeout = 15 * time.Second

	// defaultRetryDelay is the pause before the single re-fetch after a
	// transient (server-error class) listing failure.
	defaultRetryDelay = 2 * time.Second
)

// Watcher receives live-feed wiring events from the Orchestrator.
// A successful create starts a watch on the routing token's topic; a delete
// stops it. The Mirror satisfies this.
type Watcher interface {
	Watch(stateID, topic string) error
	Unwatch(stateID string) error
}

// Orchestrator coordinates Thing mutations across the schema store and the
// state store, and maintains an in-memory listing cache refreshed after
// successful writes (read-your-writes for the listing view).
//
// No lock is held across a network call. Once the schema write of a create
// has succeeded, a failure on the state write always gets exactly one
// compensation attempt; there is no cancellation path that abandons a
// schema-store write without it.
type Orchestrator struct {
	schema  SchemaStore
	state   StateStore
	tenants TenantSource
	watcher Watcher
	logger  Logger

	fetchTimeout time.Duration
	retryDelay   time.Duration

	mu       sync.RWMutex
	things   []Thing
	fetchErr error
}

// NewOrchestrator creates an orchestrator over the two stores.
// The tenant source supplies the current tenant for state-id derivation.
func NewOrchestrator(schema SchemaStore, state StateStore, tenants TenantSource) *Orchestrator {
	return &Orchestrator{
		schema:       schema,
		state:        state,
		tenants:      tenants,
		logger:       noopLogger{},
		fetchTimeout: defaultFetchTimeout,
		retryDelay:   defaultRetryDelay,
	}
}

// SetLogger sets the logger for the orchestrator.
func (o *Orchestrator) SetLogger(logger Logger) {
	o.logger = logger
}

// SetWatcher wires a live-feed watcher (the MQTT mirror). Optional.
func (o *Orchestrator) SetWatcher(w Watcher) {
	o.watcher = w
}

// Create makes a new Thing exist in both stores, or in neither.
//
// Sequence: validate identifier, derive the state-store id (aborts cleanly
// before any write on ErrNoTenantContext), write schema, write state with
// the schema store's routing token. A state-write failure triggers a
// compensating schema delete:
//
//   - compensation succeeds → StateWriteError, both stores clean
//   - compensation reports not-found → benign (the schema write may never
//     have persisted), still StateWriteError
//   - compensation fails otherwise → InconsistentStateError with both causes
//
// On success the listing cache is refreshed and the result carries the
// schema response plus the routing token.
func (o *Orchestrator) Create(ctx context.Context, t Thing) (*SyncResult, error) {
	schemaID := t.ID()
	if schemaID == "" {
		return nil, ErrMissingIdentifier
	}

	stateID, err := naming.StateStoreID(schemaID, o.tenants.CurrentID())
	if err != nil {
		// No write has happened; abort clean.
		return nil, err
	}

	created, err := o.schema.Create(ctx, t)
	if err != nil {
		return nil, &SchemaWriteError{Err: err}
	}

	if err := o.state.CreateFromSchema(ctx, stateID, t, created.SubscribedTopic); err != nil {
		return nil, o.compensate(ctx, schemaID, err)
	}

	o.logger.Info("thing created in both stores",
		"schema_id", schemaID, "state_id", stateID, "topic", created.SubscribedTopic)

	if o.watcher != nil && created.SubscribedTopic != "" {
		if err := o.watcher.Watch(stateID, created.SubscribedTopic); err != nil {
			o.logger.Warn("live feed watch failed", "state_id", stateID, "error", err)
		}
	}

	o.refreshListing(ctx)

	return &SyncResult{
		Thing:           created.Thing,
		SubscribedTopic: created.SubscribedTopic,
	}, nil
}

// compensate deletes the just-created schema entity after a state-write
// failure and classifies the combined outcome.
func (o *Orchestrator) compensate(ctx context.Context, schemaID string, stateErr error) error {
	compErr := o.schema.Delete(ctx, schemaID)
	switch {
	case compErr == nil:
		o.logger.Warn("state write failed, schema write compensated",
			"schema_id", schemaID, "error", stateErr)
		return &StateWriteError{Err: stateErr}

	case errors.Is(compErr, ErrThingNotFound):
		// The schema write may not have actually persisted; nothing to undo.
		o.logger.Info("compensation found no schema entity, treating as clean",
			"schema_id", schemaID, "error", stateErr)
		return &StateWriteError{Err: stateErr}

	default:
		o.logger.Error("state write and compensation both failed, stores inconsistent",
			"schema_id", schemaID, "state_error", stateErr, "compensation_error", compErr)
		return &InconsistentStateError{StateErr: stateErr, CompErr: compErr}
	}
}

// Update replaces the Thing in the schema store, then mirrors to the state
// store best-effort. A mirror failure does not roll back the schema update
// and does not fail the operation: it is recorded in the result's Warning.
// Updates favour forward progress over strict consistency, an intentional
// asymmetry from Create.
func (o *Orchestrator) Update(ctx context.Context, id string, t Thing) (*SyncResult, error) {
	updated, err := o.schema.Update(ctx, id, t)
	if err != nil {
		if errors.Is(err, ErrThingNotFound) {
			return nil, err
		}
		return nil, &SchemaWriteError{Err: err}
	}

	result := &SyncResult{Thing: updated}

	if stateID, err := naming.StateStoreID(id, o.tenants.CurrentID()); err != nil {
		result.Warning = err
		o.logger.Warn("state mirror skipped on update", "schema_id", id, "error", err)
	} else if err := o.state.CreateFromSchema(ctx, stateID, t, ""); err != nil {
		result.Warning = err
		o.logger.Warn("state mirror failed on update", "schema_id", id, "state_id", stateID, "error", err)
	}

	o.refreshListing(ctx)
	return result, nil
}

// Delete removes the Thing from the schema store first (authoritative),
// then attempts the mirrored state-store delete. A state failure is
// recorded as a warning, never propagated: the schema store is the source
// of truth for existence.
func (o *Orchestrator) Delete(ctx context.Context, id string) (*SyncResult, error) {
	if err := o.schema.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrThingNotFound) {
			return nil, err
		}
		return nil, &SchemaWriteError{Err: err}
	}

	result := &SyncResult{}

	if stateID, err := naming.StateStoreID(id, o.tenants.CurrentID()); err != nil {
		result.Warning = err
		o.logger.Warn("state mirror skipped on delete", "schema_id", id, "error", err)
	} else {
		if err := o.state.Delete(ctx, stateID); err != nil {
			result.Warning = err
			o.logger.Warn("state delete failed, schema entity already removed",
				"schema_id", id, "state_id", stateID, "error", err)
		}
		if o.watcher != nil {
			if err := o.watcher.Unwatch(stateID); err != nil {
				o.logger.Debug("live feed unwatch failed", "state_id", stateID, "error", err)
			}
		}
	}

	o.refreshListing(ctx)
	return result, nil
}

// FetchThings refreshes and returns the Thing listing from the schema store.
//
// The fetch is bounded by a caller-level timeout. A server-error class
// failure gets a single delayed re-fetch; any final failure degrades to an
// empty list with the error recorded (observable via LastFetchError) rather
// than blocking the caller.
func (o *Orchestrator) FetchThings(ctx context.Context, opts ListOptions) []Thing {
	fetchCtx, cancel := context.WithTimeout(ctx, o.fetchTimeout)
	defer cancel()

	things, err := o.schema.List(fetchCtx, opts)
	if err != nil && isTransient(err) {
		o.logger.Warn("listing fetch failed with server error, retrying once", "error", err)
		select {
		case <-time.After(o.retryDelay):
		case <-ctx.Done():
			o.recordFetch(nil, ctx.Err())
			return nil
		}

		retryCtx, retryCancel := context.WithTimeout(ctx, o.fetchTimeout)
		defer retryCancel()
		things, err = o.schema.List(retryCtx, opts)
	}

	if err != nil {
		o.logger.Error("listing fetch failed", "error", err)
		o.recordFetch(nil, err)
		return nil
	}

	o.recordFetch(things, nil)
	return o.Things()
}

// Things returns the cached listing as deep copies.
func (o *Orchestrator) Things() []Thing {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]Thing, len(o.things))
	for i, t := range o.things {
		out[i] = t.DeepCopy()
	}
	return out
}

// LastFetchError returns the error recorded by the most recent listing
// fetch, or nil if it succeeded.
func (o *Orchestrator) LastFetchError() error {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.fetchErr
}

// refreshListing best-effort reloads the cache after a successful write.
func (o *Orchestrator) refreshListing(ctx context.Context) {
	o.FetchThings(ctx, ListOptions{})
}

func (o *Orchestrator) recordFetch(things []Thing, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.fetchErr = err
	if err == nil {
		o.things = things
	} else {
		o.things = nil
	}
}

// isTransient reports whether the error is in the HTTP server-error class.
func isTransient(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Transient()
	}
	return false
}

// Get retrieves a single Thing definition from the schema store.
func (o *Orchestrator) Get(ctx context.Context, id string) (Thing, error) {
	t, err := o.schema.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetching thing: %w", err)
	}
	return t, nil
}

// Search retrieves Things matching a free-text query from the schema store.
func (o *Orchestrator) Search(ctx context.Context, query string) ([]Thing, error) {
	return o.schema.Search(ctx, query)
}
