package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Domain prefix for audit entry hashes. Version suffix enables future
// algorithm migration.
const DomainAuditEntry = "lineage/audit-entry/v1"

// genesisMarker stands in for the previous hash when the log is empty.
const genesisMarker = "lineage/genesis/v1"

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data + 0x00 + prev)
// The null byte separators prevent boundary ambiguity between segments.
func hashWithDomain(domain string, data []byte, prev string) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	h.Write([]byte{0x00})
	h.Write([]byte(prev))
	return hex.EncodeToString(h.Sum(nil))
}

// EntryHash computes the chained hash for an audit entry.
//
// The hash covers a canonical serialization of the entry's content
// {action, actor_id, artifact_id, created_at, details} concatenated with the
// previous entry's hash (or a fixed genesis marker when prev is empty).
// Seq, PrevHash and CurrHash are deliberately excluded: Seq is assigned by
// the store after hashing, and the chain fields are what the hash produces.
func EntryHash(e AuditEntry, prev string) (string, error) {
	content := map[string]any{
		"action":     e.Action,
		"actor_id":   e.ActorID,
		"created_at": e.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if e.ArtifactID != "" {
		content["artifact_id"] = e.ArtifactID
	}
	if len(e.Details) > 0 {
		content["details"] = e.Details
	}

	canonical, err := MarshalCanonical(content)
	if err != nil {
		return "", fmt.Errorf("EntryHash: failed to marshal: %w", err)
	}

	if prev == "" {
		prev = genesisMarker
	}
	return hashWithDomain(DomainAuditEntry, canonical, prev), nil
}

// MustEntryHash is like EntryHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustEntryHash(e AuditEntry, prev string) string {
	h, err := EntryHash(e, prev)
	if err != nil {
		panic(err)
	}
	return h
}
