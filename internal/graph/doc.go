// Package graph implements the artifact provenance graph engine.
//
// The engine models research artifacts as nodes in a directed graph and
// derivation relationships as edges. It enforces three guarantees:
//
// Acyclicity:
// No edge is admitted that would let an artifact (transitively) derive from
// itself. The check is a bounded breadth-first path search run in the same
// transaction as the insert.
//
// Staleness detection:
// A derived artifact is outdated when an upstream source changed after the
// derivation edge was recorded, or when an edge carries an explicit
// needsRefresh flag. Both rules are evaluated independently.
//
// Tamper evidence:
// Every mutation appends a hash-chained audit entry in the same transaction
// as the row change. Recomputing the chain detects any retroactive edit.
//
// The engine is stateless between calls: all state lives in the row store,
// every exported operation completes or fails as a unit, and any number of
// callers may invoke operations concurrently. Callers pass an acting-user
// identifier; authentication happens elsewhere.
package graph
