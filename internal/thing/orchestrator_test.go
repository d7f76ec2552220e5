package thing

import (
	"context"
	"errors"
	"testing"
	"time"
)

// staticTenant is a TenantSource returning a fixed id.
type staticTenant string

func (s staticTenant) CurrentID() string { return string(s) }

// mockSchemaStore is a scriptable in-memory SchemaStore.
type mockSchemaStore struct {
	things map[string]Thing

	createErr error
	updateErr error
	deleteErr error
	listErr   error

	// listErrOnce makes only the first List call fail.
	listErrOnce bool
	listCalls   int

	subscribedTopic string
	deleteCalls     []string
}

func newMockSchemaStore() *mockSchemaStore {
	return &mockSchemaStore{things: make(map[string]Thing)}
}

func (m *mockSchemaStore) Create(_ context.Context, t Thing) (*CreateResponse, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.things[t.ID()] = t.DeepCopy()
	return &CreateResponse{ID: t.ID(), SubscribedTopic: m.subscribedTopic, Thing: t}, nil
}

func (m *mockSchemaStore) Get(_ context.Context, id string) (Thing, error) {
	t, ok := m.things[id]
	if !ok {
		return nil, ErrThingNotFound
	}
	return t.DeepCopy(), nil
}

func (m *mockSchemaStore) Update(_ context.Context, id string, t Thing) (Thing, error) {
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	if _, ok := m.things[id]; !ok {
		return nil, ErrThingNotFound
	}
	m.things[id] = t.DeepCopy()
	return t, nil
}

func (m *mockSchemaStore) Delete(_ context.Context, id string) error {
	m.deleteCalls = append(m.deleteCalls, id)
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.things[id]; !ok {
		return ErrThingNotFound
	}
	delete(m.things, id)
	return nil
}

func (m *mockSchemaStore) List(_ context.Context, _ ListOptions) ([]Thing, error) {
	m.listCalls++
	if m.listErr != nil {
		err := m.listErr
		if m.listErrOnce {
			m.listErr = nil
		}
		return nil, err
	}
	out := make([]Thing, 0, len(m.things))
	for _, t := range m.things {
		out = append(out, t.DeepCopy())
	}
	return out, nil
}

func (m *mockSchemaStore) Search(_ context.Context, _ string) ([]Thing, error) {
	return m.List(context.Background(), ListOptions{})
}

// mockStateStore is a scriptable in-memory StateStore.
type mockStateStore struct {
	entities  map[string]Thing
	tokens    map[string]string
	createErr error
	deleteErr error
}

func newMockStateStore() *mockStateStore {
	return &mockStateStore{
		entities: make(map[string]Thing),
		tokens:   make(map[string]string),
	}
}

func (m *mockStateStore) CreateFromSchema(_ context.Context, stateID string, t Thing, routingToken string) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.entities[stateID] = t.DeepCopy()
	m.tokens[stateID] = routingToken
	return nil
}

func (m *mockStateStore) Delete(_ context.Context, stateID string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.entities, stateID)
	return nil
}

func newTestOrchestrator(schema *mockSchemaStore, state *mockStateStore, tenantID string) *Orchestrator {
	o := NewOrchestrator(schema, state, staticTenant(tenantID))
	o.retryDelay = time.Millisecond
	return o
}

func testThing(id string) Thing {
	return Thing{"@id": id, "title": "Test Thing"}
}

func TestOrchestrator_Create(t *testing.T) {
	schema := newMockSchemaStore()
	schema.subscribedTopic = "twinscale/acme/sensor-7"
	state := newMockStateStore()
	o := newTestOrchestrator(schema, state, "acme")

	result, err := o.Create(context.Background(), testThing("sensor-7"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, ok := schema.things["sensor-7"]; !ok {
		t.Error("schema store missing created thing")
	}
	if _, ok := state.entities["acme:sensor-7"]; !ok {
		t.Error("state store missing mirrored entity under acme:sensor-7")
	}
	if got := state.tokens["acme:sensor-7"]; got != "twinscale/acme/sensor-7" {
		t.Errorf("routing token = %q, want %q", got, "twinscale/acme/sensor-7")
	}
	if result.SubscribedTopic != "twinscale/acme/sensor-7" {
		t.Errorf("result.SubscribedTopic = %q", result.SubscribedTopic)
	}
	if result.Warning != nil {
		t.Errorf("result.Warning = %v, want nil", result.Warning)
	}

	// Listing cache refreshed (read-your-writes for the listing view).
	if got := len(o.Things()); got != 1 {
		t.Errorf("cached listing length = %d, want 1", got)
	}
}

func TestOrchestrator_Create_MissingIdentifier(t *testing.T) {
	o := newTestOrchestrator(newMockSchemaStore(), newMockStateStore(), "acme")

	_, err := o.Create(context.Background(), Thing{"title": "no id"})
	if !errors.Is(err, ErrMissingIdentifier) {
		t.Errorf("Create() error = %v, want ErrMissingIdentifier", err)
	}
}

func TestOrchestrator_Create_NoTenantAbortsBeforeWrites(t *testing.T) {
	schema := newMockSchemaStore()
	state := newMockStateStore()
	o := newTestOrchestrator(schema, state, "")

	_, err := o.Create(context.Background(), testThing("sensor-7"))
	if err == nil {
		t.Fatal("Create() expected error without tenant context")
	}

	// The abort happens before any write; neither store may be touched.
	if len(schema.things) != 0 {
		t.Error("schema store written despite missing tenant context")
	}
	if len(state.entities) != 0 {
		t.Error("state store written despite missing tenant context")
	}
}

func TestOrchestrator_Create_SchemaWriteFailed(t *testing.T) {
	schema := newMockSchemaStore()
	schema.createErr = errors.New("graph store down")
	o := newTestOrchestrator(schema, newMockStateStore(), "acme")

	_, err := o.Create(context.Background(), testThing("sensor-7"))

	var schemaErr *SchemaWriteError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("Create() error = %v, want *SchemaWriteError", err)
	}
	if len(schema.deleteCalls) != 0 {
		t.Error("no compensation expected after a schema write failure")
	}
}

// A failed state write with successful compensation leaves the schema store
// with no orphan: a subsequent search finds nothing.
func TestOrchestrator_Create_CompensationRemovesOrphan(t *testing.T) {
	schema := newMockSchemaStore()
	state := newMockStateStore()
	state.createErr = errors.New("twin service down")
	o := newTestOrchestrator(schema, state, "acme")

	_, err := o.Create(context.Background(), testThing("sensor-7"))

	var stateErr *StateWriteError
	if !errors.As(err, &stateErr) {
		t.Fatalf("Create() error = %v, want *StateWriteError", err)
	}

	results, searchErr := o.Search(context.Background(), "sensor-7")
	if searchErr != nil {
		t.Fatalf("Search() error = %v", searchErr)
	}
	if len(results) != 0 {
		t.Errorf("search found %d orphaned entities, want 0", len(results))
	}
}

func TestOrchestrator_Create_CompensationNotFoundIsBenign(t *testing.T) {
	schema := newMockSchemaStore()
	state := newMockStateStore()
	state.createErr = errors.New("twin service down")
	o := newTestOrchestrator(schema, state, "acme")

	// The schema delete will report not-found: simulate a create whose
	// write never actually persisted.
	schema.deleteErr = ErrThingNotFound

	_, err := o.Create(context.Background(), testThing("sensor-7"))

	var stateErr *StateWriteError
	if !errors.As(err, &stateErr) {
		t.Fatalf("Create() error = %v, want *StateWriteError (benign not-found)", err)
	}
}

// Both the state write and the compensation failing with non-not-found
// errors is the one unrecoverable case; it must surface as
// InconsistentStateError carrying both causes, never a generic failure.
func TestOrchestrator_Create_InconsistentState(t *testing.T) {
	schema := newMockSchemaStore()
	state := newMockStateStore()
	stateFailure := errors.New("twin service down")
	compFailure := errors.New("graph store timeout")
	state.createErr = stateFailure
	schema.deleteErr = compFailure
	o := newTestOrchestrator(schema, state, "acme")

	_, err := o.Create(context.Background(), testThing("sensor-7"))

	var inconsistent *InconsistentStateError
	if !errors.As(err, &inconsistent) {
		t.Fatalf("Create() error = %v, want *InconsistentStateError", err)
	}
	if !errors.Is(inconsistent.StateErr, stateFailure) {
		t.Errorf("StateErr = %v, want original state failure", inconsistent.StateErr)
	}
	if !errors.Is(inconsistent.CompErr, compFailure) {
		t.Errorf("CompErr = %v, want compensation failure", inconsistent.CompErr)
	}
}

func TestOrchestrator_Update_StateFailureBecomesWarning(t *testing.T) {
	schema := newMockSchemaStore()
	schema.things["sensor-7"] = testThing("sensor-7")
	state := newMockStateStore()
	mirrorFailure := errors.New("twin service down")
	state.createErr = mirrorFailure
	o := newTestOrchestrator(schema, state, "acme")

	updated := testThing("sensor-7")
	updated["title"] = "Renamed"

	result, err := o.Update(context.Background(), "sensor-7", updated)
	if err != nil {
		t.Fatalf("Update() error = %v, state mirror failures must not fail updates", err)
	}

	if !errors.Is(result.Warning, mirrorFailure) {
		t.Errorf("result.Warning = %v, want the mirror failure", result.Warning)
	}

	// The schema update must stand.
	if got := schema.things["sensor-7"].Title(); got != "Renamed" {
		t.Errorf("schema title = %q, want %q", got, "Renamed")
	}
}

func TestOrchestrator_Update_NotFound(t *testing.T) {
	o := newTestOrchestrator(newMockSchemaStore(), newMockStateStore(), "acme")

	_, err := o.Update(context.Background(), "ghost", testThing("ghost"))
	if !errors.Is(err, ErrThingNotFound) {
		t.Errorf("Update() error = %v, want ErrThingNotFound", err)
	}
}

func TestOrchestrator_Delete(t *testing.T) {
	schema := newMockSchemaStore()
	schema.things["sensor-7"] = testThing("sensor-7")
	state := newMockStateStore()
	state.entities["acme:sensor-7"] = testThing("sensor-7")
	o := newTestOrchestrator(schema, state, "acme")

	result, err := o.Delete(context.Background(), "sensor-7")
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if result.Warning != nil {
		t.Errorf("result.Warning = %v, want nil", result.Warning)
	}

	if _, ok := schema.things["sensor-7"]; ok {
		t.Error("schema entity still present after delete")
	}
	if _, ok := state.entities["acme:sensor-7"]; ok {
		t.Error("state entity still present after delete")
	}
}

func TestOrchestrator_Delete_StateFailureBecomesWarning(t *testing.T) {
	schema := newMockSchemaStore()
	schema.things["sensor-7"] = testThing("sensor-7")
	state := newMockStateStore()
	stateFailure := errors.New("twin service down")
	state.deleteErr = stateFailure
	o := newTestOrchestrator(schema, state, "acme")

	result, err := o.Delete(context.Background(), "sensor-7")
	if err != nil {
		t.Fatalf("Delete() error = %v, state failures must not propagate", err)
	}
	if !errors.Is(result.Warning, stateFailure) {
		t.Errorf("result.Warning = %v, want the state failure", result.Warning)
	}

	// Schema delete is authoritative and must stand.
	if _, ok := schema.things["sensor-7"]; ok {
		t.Error("schema entity still present after delete")
	}
}

func TestOrchestrator_Delete_NotFound(t *testing.T) {
	o := newTestOrchestrator(newMockSchemaStore(), newMockStateStore(), "acme")

	_, err := o.Delete(context.Background(), "ghost")
	if !errors.Is(err, ErrThingNotFound) {
		t.Errorf("Delete() error = %v, want ErrThingNotFound", err)
	}
}

func TestOrchestrator_FetchThings_RetriesOnceOnServerError(t *testing.T) {
	schema := newMockSchemaStore()
	schema.things["sensor-7"] = testThing("sensor-7")
	schema.listErr = &StatusError{Op: "listing things", StatusCode: 500}
	schema.listErrOnce = true
	o := newTestOrchestrator(schema, newMockStateStore(), "acme")

	things := o.FetchThings(context.Background(), ListOptions{})
	if len(things) != 1 {
		t.Fatalf("FetchThings() returned %d things, want 1 after retry", len(things))
	}
	if schema.listCalls != 2 {
		t.Errorf("List called %d times, want 2 (one retry)", schema.listCalls)
	}
	if o.LastFetchError() != nil {
		t.Errorf("LastFetchError() = %v, want nil", o.LastFetchError())
	}
}

func TestOrchestrator_FetchThings_DegradesToEmptyList(t *testing.T) {
	schema := newMockSchemaStore()
	schema.listErr = &StatusError{Op: "listing things", StatusCode: 500}
	o := newTestOrchestrator(schema, newMockStateStore(), "acme")

	things := o.FetchThings(context.Background(), ListOptions{})
	if len(things) != 0 {
		t.Errorf("FetchThings() returned %d things, want 0", len(things))
	}
	if o.LastFetchError() == nil {
		t.Error("LastFetchError() should record the failure")
	}
	if schema.listCalls != 2 {
		t.Errorf("List called %d times, want 2 (one retry, then give up)", schema.listCalls)
	}
}

func TestOrchestrator_FetchThings_NoRetryOnClientError(t *testing.T) {
	schema := newMockSchemaStore()
	schema.listErr = &StatusError{Op: "listing things", StatusCode: 400}
	o := newTestOrchestrator(schema, newMockStateStore(), "acme")

	o.FetchThings(context.Background(), ListOptions{})
	if schema.listCalls != 1 {
		t.Errorf("List called %d times, want 1 (client errors are not retried)", schema.listCalls)
	}
}
