package search

import "time"

// Operator is a comparison applied to a property's live value.
type Operator string

// Supported comparison operators.
const (
	OpGreaterThan  Operator = "gt"
	OpLessThan     Operator = "lt"
	OpEqual        Operator = "eq"
	OpGreaterEqual Operator = "gte"
	OpLessEqual    Operator = "lte"
	OpNotEqual     Operator = "ne"
)

// Valid reports whether the operator is in the supported set.
func (o Operator) Valid() bool {
	switch o {
	case OpGreaterThan, OpLessThan, OpEqual, OpGreaterEqual, OpLessEqual, OpNotEqual:
		return true
	}
	return false
}

// HybridQuery asks for Things whose property satisfies operator value.
type HybridQuery struct {
	// Property is the property name (e.g. "temperature").
	Property string `json:"property"`

	// Operator is the comparison to apply.
	Operator Operator `json:"operator"`

	// Value is the comparison threshold, serialized as a string on the wire.
	Value string `json:"value"`

	// TenantID scopes both the schema and value lookups when non-empty;
	// empty searches across all tenants visible to the caller.
	TenantID string `json:"tenant_id,omitempty"`
}

// HybridMatch is one entry of a hybrid result. Entries carry at least the
// Thing identifier; the merge endpoint may add more.
type HybridMatch struct {
	ThingID string         `json:"thingId"`
	Title   string         `json:"title,omitempty"`
	Value   any            `json:"value,omitempty"`
	Extra   map[string]any `json:"-"`
}

// HybridResult is the merge endpoint's answer.
//
// SchemaMatches counts Things structurally declaring the property,
// ValueMatches counts Things whose live value satisfies the comparison,
// and Results is their intersection. Count always equals len(Results) and
// never exceeds either side's match count. Result order is only
// display-stable, not guaranteed.
type HybridResult struct {
	Results       []HybridMatch `json:"results"`
	SchemaMatches int           `json:"schema_matches"`
	ValueMatches  int           `json:"value_matches"`
	Count         int           `json:"count"`
	QueryTimeMS   int64         `json:"query_time_ms"`
}

// HistoryEntry records one executed search.
type HistoryEntry struct {
	ID          string    `json:"id"`
	Property    string    `json:"property"`
	Operator    Operator  `json:"operator"`
	Value       string    `json:"value"`
	TenantID    string    `json:"tenant_id,omitempty"`
	ResultCount int       `json:"result_count"`
	QueryTimeMS int64     `json:"query_time_ms"`
	ExecutedAt  time.Time `json:"executed_at"`
}

// SavedSearch is a named, reusable hybrid query.
type SavedSearch struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Property  string    `json:"property"`
	Operator  Operator  `json:"operator"`
	Value     string    `json:"value"`
	TenantID  string    `json:"tenant_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
