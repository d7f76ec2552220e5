package thing

import (
	"encoding/json"
	"sync"
	"time"
)

// Subscriber is the slice of the MQTT client the Mirror depends on.
// An adapter in main bridges the infrastructure client's error-returning
// handler signature to this one.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler func(topic string, payload []byte)) error
	Unsubscribe(topic string) error
}

// Broadcaster fans live state updates out to connected clients.
// The API layer's WebSocket hub satisfies this.
type Broadcaster interface {
	BroadcastState(stateID string, payload []byte)
}

// HistoryWriter records numeric property samples for value history.
// The InfluxDB client satisfies this; writes are non-blocking.
type HistoryWriter interface {
	WriteThingProperty(stateID, property string, value float64, timestamp time.Time)
}

// Mirror feeds live property updates from the MQTT broker into the
// WebSocket hub and the value-history store.
//
// The schema store's create response names a routing topic per Thing; the
// Orchestrator calls Watch with it on a successful create and Unwatch on
// delete. Both sinks are optional: a nil hub or history writer is skipped,
// matching config-gated deployments without the corresponding subsystem.
type Mirror struct {
	sub     Subscriber
	hub     Broadcaster
	history HistoryWriter
	qos     byte
	logger  Logger

	mu     sync.Mutex
	topics map[string]string // stateID -> subscribed topic
}

// NewMirror creates a mirror over the given subscriber and sinks.
func NewMirror(sub Subscriber, hub Broadcaster, history HistoryWriter, qos byte) *Mirror {
	return &Mirror{
		sub:     sub,
		hub:     hub,
		history: history,
		qos:     qos,
		logger:  noopLogger{},
		topics:  make(map[string]string),
	}
}

// SetLogger sets the logger for the mirror.
func (m *Mirror) SetLogger(logger Logger) {
	m.logger = logger
}

// Watch subscribes to the routing topic for a Thing's live updates.
// Re-watching a stateID replaces its previous subscription.
func (m *Mirror) Watch(stateID, topic string) error {
	m.mu.Lock()
	previous, exists := m.topics[stateID]
	m.topics[stateID] = topic
	m.mu.Unlock()

	if exists && previous != topic {
		if err := m.sub.Unsubscribe(previous); err != nil {
			m.logger.Debug("stale topic unsubscribe failed", "topic", previous, "error", err)
		}
	}

	err := m.sub.Subscribe(topic, m.qos, func(_ string, payload []byte) {
		m.handleUpdate(stateID, payload)
	})
	if err != nil {
		m.mu.Lock()
		delete(m.topics, stateID)
		m.mu.Unlock()
		return err
	}

	m.logger.Info("watching live updates", "state_id", stateID, "topic", topic)
	return nil
}

// Unwatch drops the subscription for a Thing. Unknown ids are a no-op.
func (m *Mirror) Unwatch(stateID string) error {
	m.mu.Lock()
	topic, exists := m.topics[stateID]
	delete(m.topics, stateID)
	m.mu.Unlock()

	if !exists {
		return nil
	}

	if err := m.sub.Unsubscribe(topic); err != nil {
		return err
	}

	m.logger.Info("stopped watching live updates", "state_id", stateID, "topic", topic)
	return nil
}

// WatchCount returns the number of active watches.
func (m *Mirror) WatchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.topics)
}

// handleUpdate forwards one broker message: the raw payload goes to the
// hub, and any top-level numeric members become history samples.
func (m *Mirror) handleUpdate(stateID string, payload []byte) {
	if m.hub != nil {
		m.hub.BroadcastState(stateID, payload)
	}

	if m.history == nil {
		return
	}

	var update map[string]any
	if err := json.Unmarshal(payload, &update); err != nil {
		m.logger.Debug("non-JSON live update, history skipped", "state_id", stateID)
		return
	}

	now := time.Now().UTC()
	for property, raw := range update {
		if value, ok := raw.(float64); ok {
			m.history.WriteThingProperty(stateID, property, value, now)
		}
	}
}
