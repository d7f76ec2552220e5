package mqtt

import "fmt"

// Topic prefixes for the TwinScale MQTT namespace.
//
// Thing topics use the flat scheme: twinscale/things/{state_id}/{suffix}
// where state_id is the tenant-prefixed live-state identifier. The schema
// store hands out the concrete state topic as a routing token on create;
// these builders exist for everything published from this side.
const (
	// TopicPrefixThings is the base for per-Thing topics.
	TopicPrefixThings = "twinscale/things"

	// TopicPrefixTenants is the base for tenant lifecycle topics.
	TopicPrefixTenants = "twinscale/tenants"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "twinscale/system"
)

// Topics provides builders for TwinScale MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	stateTopic := topics.ThingState("acme:sensor-7")
//	// Returns: "twinscale/things/acme:sensor-7/state"
type Topics struct{}

// ThingState returns the live-state update topic for a Thing.
//
// Example: twinscale/things/acme:sensor-7/state
func (Topics) ThingState(stateID string) string {
	return fmt.Sprintf("%s/%s/state", TopicPrefixThings, stateID)
}

// ThingProperty returns the topic for a single property of a Thing.
//
// Example: twinscale/things/acme:sensor-7/properties/temperature
func (Topics) ThingProperty(stateID, property string) string {
	return fmt.Sprintf("%s/%s/properties/%s", TopicPrefixThings, stateID, property)
}

// ThingEvent returns the topic for lifecycle events of a Thing
// (created, updated, deleted).
//
// Example: twinscale/things/acme:sensor-7/event
func (Topics) ThingEvent(stateID string) string {
	return fmt.Sprintf("%s/%s/event", TopicPrefixThings, stateID)
}

// TenantEvent returns the topic for tenant lifecycle events.
//
// Example: twinscale/tenants/acme/event
func (Topics) TenantEvent(tenantID string) string {
	return fmt.Sprintf("%s/%s/event", TopicPrefixTenants, tenantID)
}

// SystemStatus returns the system status topic.
//
// Example: twinscale/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// SystemShutdown returns the shutdown signal topic.
//
// Example: twinscale/system/shutdown
func (Topics) SystemShutdown() string {
	return fmt.Sprintf("%s/shutdown", TopicPrefixSystem)
}

// AllThingStates returns a pattern matching all Thing state updates.
//
// Pattern: twinscale/things/+/state
func (Topics) AllThingStates() string {
	return fmt.Sprintf("%s/+/state", TopicPrefixThings)
}

// AllThingEvents returns a pattern matching all Thing lifecycle events.
//
// Pattern: twinscale/things/+/event
func (Topics) AllThingEvents() string {
	return fmt.Sprintf("%s/+/event", TopicPrefixThings)
}

// AllTenantEvents returns a pattern matching all tenant lifecycle events.
//
// Pattern: twinscale/tenants/+/event
func (Topics) AllTenantEvents() string {
	return fmt.Sprintf("%s/+/event", TopicPrefixTenants)
}

// AllTopics returns a pattern matching all TwinScale topics.
// Use with caution - this receives ALL traffic.
//
// Pattern: twinscale/#
func (Topics) AllTopics() string {
	return "twinscale/#"
}
