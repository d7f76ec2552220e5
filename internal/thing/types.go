package thing

// Thing is a Thing Description document as the schema store understands it.
//
// Documents are JSON-LD-shaped and open-ended (properties, relationships,
// commands vary per ontology), so they are carried as generic JSON rather
// than a closed struct. The "@id" member is the schema-store identifier and
// the only member this package interprets.
type Thing map[string]any

// ID returns the schema-store identifier ("@id"), or "" if absent.
func (t Thing) ID() string {
	id, _ := t["@id"].(string)
	return id
}

// Title returns the human-readable title, or "" if absent.
func (t Thing) Title() string {
	title, _ := t["title"].(string)
	return title
}

// DeepCopy creates an independent copy of the Thing.
// Nested maps and slices are cloned so modifications to the copy do not
// affect the original. This is essential for cache isolation.
func (t Thing) DeepCopy() Thing {
	if t == nil {
		return nil
	}
	return deepCopyMap(t)
}

func deepCopyMap(m map[string]any) map[string]any {
	cpy := make(map[string]any, len(m))
	for k, v := range m {
		cpy[k] = deepCopyValue(v)
	}
	return cpy
}

func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return deepCopyMap(val)
	case []any:
		cpy := make([]any, len(val))
		for i, item := range val {
			cpy[i] = deepCopyValue(item)
		}
		return cpy
	default:
		return v
	}
}

// CreateResponse is the schema store's answer to a successful create.
type CreateResponse struct {
	// ID is the identifier the schema store assigned or confirmed.
	ID string `json:"id"`

	// SubscribedTopic is an out-of-band routing token: the MQTT topic
	// carrying live property updates for the created twin. May be empty
	// when the deployment has no live feed.
	SubscribedTopic string `json:"subscribed_topic,omitempty"`

	// Thing is the stored document as the schema store echoes it back.
	Thing Thing `json:"thing,omitempty"`
}

// ListOptions narrows a schema-store listing.
type ListOptions struct {
	// Limit bounds the page size; zero means server default.
	Limit int

	// Offset skips that many entries.
	Offset int

	// PropertyName filters to Things structurally declaring the property.
	PropertyName string
}

// SyncResult is the outcome of an orchestrated mutation.
//
// Warning carries a secondary-write failure that was deliberately not
// propagated (state mirror on update/delete), so callers and tests can
// observe the degraded-consistency outcome instead of losing it to a log
// line.
type SyncResult struct {
	// Thing is the schema store's response document.
	Thing Thing

	// SubscribedTopic is the routing token returned on create.
	SubscribedTopic string

	// Warning records a swallowed state-store mirror failure, nil when both
	// stores were written cleanly.
	Warning error
}
