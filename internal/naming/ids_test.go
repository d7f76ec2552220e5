package naming

import (
	"errors"
	"testing"
)

func TestFormatThingID(t *testing.T) {
	tests := []struct {
		name      string
		localName string
		tenantID  string
		want      string
	}{
		{
			name:      "no tenant passes through",
			localName: "device1",
			tenantID:  "",
			want:      "device1",
		},
		{
			name:      "default tenant passes through",
			localName: "device1",
			tenantID:  "default",
			want:      "device1",
		},
		{
			name:      "default tenant leaves existing namespace alone",
			localName: "acme:device1",
			tenantID:  "default",
			want:      "acme:device1",
		},
		{
			name:      "plain name gets tenant prefix",
			localName: "device1",
			tenantID:  "acme",
			want:      "acme:device1",
		},
		{
			name:      "existing namespace is replaced",
			localName: "other:device1",
			tenantID:  "acme",
			want:      "acme:device1",
		},
		{
			name:      "own namespace does not stack",
			localName: "acme:device1",
			tenantID:  "acme",
			want:      "acme:device1",
		},
		{
			name:      "only first segment is stripped",
			localName: "other:sub:device1",
			tenantID:  "acme",
			want:      "acme:sub:device1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatThingID(tt.localName, tt.tenantID)
			if got != tt.want {
				t.Errorf("FormatThingID(%q, %q) = %q, want %q", tt.localName, tt.tenantID, got, tt.want)
			}
		})
	}
}

func TestParseThingID(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		tenantID string
		want     string
	}{
		{
			name:     "no tenant passes through",
			id:       "acme:device1",
			tenantID: "",
			want:     "acme:device1",
		},
		{
			name:     "no separator passes through",
			id:       "device1",
			tenantID: "acme",
			want:     "device1",
		},
		{
			name:     "matching namespace is stripped",
			id:       "acme:device1",
			tenantID: "acme",
			want:     "device1",
		},
		{
			name:     "mismatched namespace passes through",
			id:       "beta:device1",
			tenantID: "acme",
			want:     "beta:device1",
		},
		{
			name:     "multi-segment remainder is preserved",
			id:       "acme:sub:device1",
			tenantID: "acme",
			want:     "sub:device1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseThingID(tt.id, tt.tenantID)
			if got != tt.want {
				t.Errorf("ParseThingID(%q, %q) = %q, want %q", tt.id, tt.tenantID, got, tt.want)
			}
		})
	}
}

// Format and parse must round-trip for plain local names under any tenant.
func TestFormatParseRoundTrip(t *testing.T) {
	names := []string{"device1", "sensor-7", "pump_a"}
	tenants := []string{"", "default", "acme"}

	for _, tenantID := range tenants {
		for _, name := range names {
			formatted := FormatThingID(name, tenantID)
			if got := ParseThingID(formatted, tenantID); got != name {
				t.Errorf("round trip (%q, %q): got %q", name, tenantID, got)
			}
		}
	}
}

func TestStateStoreID(t *testing.T) {
	tests := []struct {
		name     string
		schemaID string
		tenantID string
		want     string
	}{
		{
			name:     "plain name",
			schemaID: "sensor-7",
			tenantID: "acme",
			want:     "acme:sensor-7",
		},
		{
			name:     "own namespace",
			schemaID: "acme:sensor-7",
			tenantID: "acme",
			want:     "acme:sensor-7",
		},
		{
			name:     "foreign namespace uses current tenant",
			schemaID: "acme:sensor-7",
			tenantID: "beta",
			want:     "beta:sensor-7",
		},
		{
			name:     "last segment wins for multi-segment ids",
			schemaID: "acme:sub:sensor-7",
			tenantID: "acme",
			want:     "acme:sensor-7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := StateStoreID(tt.schemaID, tt.tenantID)
			if err != nil {
				t.Fatalf("StateStoreID(%q, %q) error = %v", tt.schemaID, tt.tenantID, err)
			}
			if got != tt.want {
				t.Errorf("StateStoreID(%q, %q) = %q, want %q", tt.schemaID, tt.tenantID, got, tt.want)
			}
		})
	}
}

func TestStateStoreID_NoTenant(t *testing.T) {
	_, err := StateStoreID("acme:sensor-7", "")
	if !errors.Is(err, ErrNoTenantContext) {
		t.Errorf("expected ErrNoTenantContext, got %v", err)
	}
}

func TestFormatPolicyID(t *testing.T) {
	if got := FormatPolicyID("read-only", "acme"); got != "acme:read-only" {
		t.Errorf("FormatPolicyID = %q, want %q", got, "acme:read-only")
	}

	if got := FormatPolicyID("read-only", "default"); got != "read-only" {
		t.Errorf("FormatPolicyID default tenant = %q, want %q", got, "read-only")
	}
}
