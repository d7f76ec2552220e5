// Package naming implements tenant-scoped identifier handling for Things.
//
// Things are mirrored across two stores whose identifier conventions differ:
// the schema store namespaces identifiers as "{tenant}:{localName}", while the
// state store always addresses an entity as "{currentTenant}:{entityName}".
//
// All functions are pure. The default tenant ("default") is a no-op namespace:
// identifiers pass through unchanged, which keeps single-tenant deployments
// free of namespace prefixes.
//
// FormatThingID strips an existing namespace by discarding everything up to
// and including the FIRST ":" separator, while StateStoreID takes the LAST
// ":"-delimited segment as the entity name. For multi-segment identifiers the
// two disagree; external consumers depend on each behaviour independently, so
// they are kept separate rather than unified.
package naming
