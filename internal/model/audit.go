package model

import (
	"strings"
	"time"
)

// Audit actions written by the graph engine. The action column is free-form;
// these are the names the engine itself uses.
const (
	ActionCreateArtifact = "CREATE_ARTIFACT"
	ActionUpdateArtifact = "UPDATE_ARTIFACT"
	ActionDeleteArtifact = "DELETE_ARTIFACT"
	ActionCreateEdge     = "CREATE_EDGE"
	ActionDeleteEdge     = "DELETE_EDGE"
)

// ActionCategory buckets audit actions for reporting.
type ActionCategory string

const (
	CategoryMetadata ActionCategory = "METADATA"
	CategoryGraph    ActionCategory = "GRAPH"
	CategoryVersion  ActionCategory = "VERSION"
	CategoryPHI      ActionCategory = "PHI"
	CategoryOther    ActionCategory = "OTHER"
)

// ClassifyAction derives the category from an action name by substring
// matching. Rules are checked in order; the first match wins:
// ARTIFACT → METADATA, EDGE → GRAPH, VERSION → VERSION, PHI → PHI.
func ClassifyAction(action string) ActionCategory {
	switch {
	case strings.Contains(action, "ARTIFACT"):
		return CategoryMetadata
	case strings.Contains(action, "EDGE"):
		return CategoryGraph
	case strings.Contains(action, "VERSION"):
		return CategoryVersion
	case strings.Contains(action, "PHI"):
		return CategoryPHI
	default:
		return CategoryOther
	}
}

// AuditEntry is one immutable record in the hash-chained audit log.
//
// Seq is the database-assigned sequence that defines the chain order.
// PrevHash is the CurrHash of the entry at seq-1, or empty for the genesis
// entry. CurrHash covers this entry's content plus PrevHash, so any
// retroactive edit breaks verification from that point on.
type AuditEntry struct {
	Seq        int64          `json:"seq"`
	ID         string         `json:"id"`
	ArtifactID string         `json:"artifact_id,omitempty"`
	Action     string         `json:"action"`
	Category   ActionCategory `json:"action_category"`
	ActorID    string         `json:"actor_id"`
	Details    map[string]any `json:"details,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	PrevHash   string         `json:"prev_hash,omitempty"`
	CurrHash   string         `json:"curr_hash"`
}

// ChainReport is the result of verifying the whole audit chain.
type ChainReport struct {
	Entries   int    `json:"entries"`
	Valid     bool   `json:"valid"`
	BrokenSeq int64  `json:"broken_seq,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// VerifyChain recomputes every entry's hash from its stored content and its
// predecessor's stored hash. Entries must be in ascending seq order, as
// returned by the store. The first entry that fails marks the chain invalid
// from that point; verification stops there.
func VerifyChain(entries []AuditEntry) ChainReport {
	report := ChainReport{Entries: len(entries), Valid: true}
	prev := ""
	for _, e := range entries {
		if e.PrevHash != prev {
			report.Valid = false
			report.BrokenSeq = e.Seq
			report.Reason = "prev_hash does not match predecessor"
			return report
		}
		want, err := EntryHash(e, prev)
		if err != nil {
			report.Valid = false
			report.BrokenSeq = e.Seq
			report.Reason = "entry content cannot be rehashed: " + err.Error()
			return report
		}
		if want != e.CurrHash {
			report.Valid = false
			report.BrokenSeq = e.Seq
			report.Reason = "curr_hash does not match entry content"
			return report
		}
		prev = e.CurrHash
	}
	return report
}
