// Package store provides SQLite-backed durable storage for the provenance
// graph: artifact rows, directed derivation edges, and the hash-chained
// audit log.
//
// # Critical Patterns
//
// Soft-delete filtering:
//   - Every read and traversal query excludes rows with deleted_at set
//   - Deleted rows stay in storage for the audit trail
//
// Mutation atomicity:
//   - Every mutating method writes the row change and its audit entry in
//     one transaction; neither is ever observable without the other
//
// Audit chain ordering:
//   - audit_log.seq (AUTOINCREMENT) is the chain order, never timestamps
//   - "last entry" always means max(seq)
//   - The read-last-hash-then-append sequence runs inside the mutation
//     transaction; the single-connection pool serializes appends in-process
//     and UNIQUE(prev_hash) backstops them across processes
//
// Cycle rejection:
//   - Edge inserts run a bounded reverse breadth-first path search in the
//     same transaction as the insert, so no interleaving can admit a cycle
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
//
// Audit hashes are computed via functions in internal/model/hash.go using
// RFC 8785 canonical JSON and SHA-256 with domain separation.
package store
