// Package search implements hybrid property-value search over Things.
//
// A hybrid query answers "find Things whose property P satisfies
// operator value" by merging two asymmetric sources server-side: the
// schema store knows which Things structurally declare the property,
// the state store knows current values. The result is the intersection,
// with match counts from both sides exposed for diagnostics.
//
// The package also keeps a local search library in SQLite: a bounded
// execution history and named saved searches.
package search
