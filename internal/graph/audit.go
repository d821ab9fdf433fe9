package graph

import (
	"context"

	"github.com/roach88/lineage/internal/model"
)

// AuditTrail returns the audit entries for one artifact, newest first.
// limit <= 0 means no limit.
func (e *Engine) AuditTrail(ctx context.Context, artifactID string, limit int) ([]model.AuditEntry, error) {
	if artifactID == "" {
		return nil, validationError("audit trail requires an artifact id")
	}
	entries, err := e.store.AuditTrail(ctx, artifactID, limit)
	if err != nil {
		return nil, storageError("audit trail", err)
	}
	return entries, nil
}

// VerifyAuditChain walks the whole audit log in sequence order and
// recomputes every entry's hash from its stored content and its
// predecessor's stored hash. Any entry whose hash does not verify, or any
// break in the predecessor links, marks the chain invalid from that point -
// evidence of tampering.
func (e *Engine) VerifyAuditChain(ctx context.Context) (*model.ChainReport, error) {
	entries, err := e.store.AuditEntries(ctx)
	if err != nil {
		return nil, storageError("verify audit chain", err)
	}
	report := model.VerifyChain(entries)

	if !report.Valid {
		e.log.WarnContext(ctx, "audit chain verification failed",
			"entries", report.Entries, "broken_seq", report.BrokenSeq, "reason", report.Reason)
	}
	return &report, nil
}
