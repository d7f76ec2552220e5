// Package tenant manages the tenant context for TwinScale Core.
//
// A tenant is the isolation boundary whose id namespaces Thing identifiers.
// This package provides:
//   - The Tenant type and directory client (remote tenant service)
//   - Durable persistence of the currently selected tenant (SQLite)
//   - The Context object tracking available tenants and the current selection
//
// The Context favours availability over fast failure: Initialize records
// individual errors but always completes, so a partially populated session
// is still usable. The current tenant survives restarts via the Store.
package tenant
