// Package primitives provides the foundational data structures for the
// identity and state lifecycle core.
//
// Everything here is a plain value or a single-owner container; the
// components in internal/core build on these types and never reach into
// their unexported fields.
//
// Core invariants:
// - Scalars and SharedState are immutable once constructed
// - Equal field multisets derive equal CanonicalKeys, in any input order
// - A Handle never resolves after its slot is freed (generation check)
// - Arena is single-owner; callers synchronize concurrent use
//
//go:generate go test ./... -race
package primitives
