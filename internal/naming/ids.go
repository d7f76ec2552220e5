package naming

import (
	"fmt"
	"strings"
)

// DefaultTenant is the tenant whose identifiers carry no namespace prefix.
const DefaultTenant = "default"

// Separator divides a namespace from a local name in a Thing identifier.
const Separator = ":"

// FormatThingID namespaces a local name with the given tenant.
//
// An empty tenantID (no tenant selected) or the default tenant returns
// localName unchanged. If localName already carries a namespace, everything
// up to and including the first separator is discarded before the tenant
// prefix is applied, so re-formatting an already-namespaced identifier never
// stacks prefixes.
func FormatThingID(localName, tenantID string) string {
	if tenantID == "" || tenantID == DefaultTenant {
		return localName
	}

	if idx := strings.Index(localName, Separator); idx >= 0 {
		localName = localName[idx+1:]
	}

	return tenantID + Separator + localName
}

// ParseThingID strips the tenant namespace from an identifier.
//
// An empty tenantID or an identifier without a separator returns id
// unchanged. If the identifier's namespace matches tenantID, the local name
// is returned; a mismatched namespace returns id unchanged rather than
// erroring, since it signals the identifier belongs to a different tenant
// and must not be silently rewritten.
func ParseThingID(id, tenantID string) string {
	if tenantID == "" {
		return id
	}

	namespace, localName, found := strings.Cut(id, Separator)
	if !found {
		return id
	}

	if namespace != tenantID {
		return id
	}

	return localName
}

// StateStoreID derives the state-store identifier for a schema-store
// identifier. The state store always addresses entities under the CURRENT
// tenant: the entity name is the last separator-delimited segment of
// schemaID, regardless of any namespace the schema identifier carries.
//
// Returns ErrNoTenantContext when no tenant is selected; this is the only
// failure mode.
func StateStoreID(schemaID, tenantID string) (string, error) {
	if tenantID == "" {
		return "", fmt.Errorf("deriving state store id for %q: %w", schemaID, ErrNoTenantContext)
	}

	entityName := schemaID
	if idx := strings.LastIndex(schemaID, Separator); idx >= 0 {
		entityName = schemaID[idx+1:]
	}

	return tenantID + Separator + entityName, nil
}

// FormatPolicyID namespaces an access-policy name with the given tenant,
// following the same rule as FormatThingID.
func FormatPolicyID(policyName, tenantID string) string {
	return FormatThingID(policyName, tenantID)
}
