// Package model defines the domain types for the artifact provenance graph.
//
// The graph is made of:
//   - Artifacts: versionable research outputs (datasets, analyses, figures, ...)
//   - ArtifactEdges: directed derivation links between artifacts
//   - AuditEntries: hash-chained records of every mutation
//
// # Critical Patterns
//
// Soft deletion:
// Artifacts and edges are never removed. A row with deleted_at set is
// invisible to every read, traversal, and link operation, but stays in
// storage for the audit trail.
//
// Logical ordering:
// The audit chain is ordered by audit_log.seq (a database sequence),
// NEVER by wall-clock timestamps. "The latest entry" always means max(seq).
//
// Content hashing:
// Audit entry hashes are computed via functions in hash.go using RFC 8785
// canonical JSON and SHA-256 with domain separation. Each entry's hash
// incorporates its predecessor's hash, so retroactive edits are detectable.
package model
