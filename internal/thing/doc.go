// Package thing implements dual-store synchronization for Thing entities.
//
// A Thing lives in two places at once: the schema store (authoritative
// structural definition, graph-backed) and the state store (live current
// values). The Orchestrator makes a single logical mutation appear atomic
// across both:
//
//   - Create writes schema first, then state; a state failure triggers
//     compensation (schema delete). Only creation pays for full
//     compensation, since a half-created entity is worse than none.
//   - Update and Delete treat the schema store as the source of truth and
//     mirror to the state store best-effort; a mirror failure is recorded
//     as a warning on the result, never propagated.
//
// The one unrecoverable case is a failed state write whose compensation
// also fails for a reason other than "not found": the operation returns an
// InconsistentStateError carrying both causes for out-of-band
// reconciliation.
package thing
