package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/lineage/internal/model"
)

// appendAudit writes one entry to the hash chain using the given Querier,
// which is a *sql.Tx for every mutation in this package. The sequence is:
//
//  1. Read the curr_hash of the latest entry (by max seq; empty if none)
//  2. Derive the action category from the action name
//  3. Hash the entry content chained to the previous hash
//  4. Insert the row
//
// Running inside the mutation's transaction means the mutation and its audit
// entry commit or roll back together, and the read-then-append pair cannot
// interleave with a concurrent append.
//
// On success the entry's Seq, Category, PrevHash and CurrHash are filled in.
func appendAudit(ctx context.Context, q Querier, e *model.AuditEntry) error {
	var prev string
	err := q.QueryRowContext(ctx, `
		SELECT curr_hash FROM audit_log
		ORDER BY seq DESC
		LIMIT 1
	`).Scan(&prev)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("append audit: read last hash: %w", err)
	}

	e.Category = model.ClassifyAction(e.Action)
	e.PrevHash = prev

	hash, err := model.EntryHash(*e, prev)
	if err != nil {
		return fmt.Errorf("append audit: %w", err)
	}
	e.CurrHash = hash

	detailsJSON, err := marshalDetails(e.Details)
	if err != nil {
		return fmt.Errorf("append audit: %w", err)
	}

	var artifactID any
	if e.ArtifactID != "" {
		artifactID = e.ArtifactID
	}

	result, err := q.ExecContext(ctx, `
		INSERT INTO audit_log
		(id, artifact_id, action, action_category, actor_id, details, created_at, prev_hash, curr_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.ID,
		artifactID,
		e.Action,
		string(e.Category),
		e.ActorID,
		detailsJSON,
		formatTime(e.CreatedAt),
		e.PrevHash,
		e.CurrHash,
	)
	if err != nil {
		return fmt.Errorf("append audit: insert: %w", err)
	}

	seq, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("append audit: last insert id: %w", err)
	}
	e.Seq = seq

	return nil
}

// AppendAudit appends a standalone entry in its own transaction.
// Mutating store methods write their audit entries inline; this is for
// callers auditing actions that change no graph row.
func (s *Store) AppendAudit(ctx context.Context, e *model.AuditEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("append audit: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := appendAudit(ctx, tx, e); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("append audit: commit: %w", err)
	}
	return nil
}

// AuditEntries returns the full audit log in chain order (seq ASC).
// Returns an empty slice (not nil) if the log is empty.
func (s *Store) AuditEntries(ctx context.Context) ([]model.AuditEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, id, artifact_id, action, action_category, actor_id, details, created_at, prev_hash, curr_hash
		FROM audit_log
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	return scanAuditEntries(rows)
}

// AuditTrail returns the entries for one artifact, newest first.
// limit <= 0 means no limit.
func (s *Store) AuditTrail(ctx context.Context, artifactID string, limit int) ([]model.AuditEntry, error) {
	query := `
		SELECT seq, id, artifact_id, action, action_category, actor_id, details, created_at, prev_hash, curr_hash
		FROM audit_log
		WHERE artifact_id = ?
		ORDER BY seq DESC
	`
	args := []any{artifactID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit trail: %w", err)
	}
	defer rows.Close()

	return scanAuditEntries(rows)
}

func scanAuditEntries(rows *sql.Rows) ([]model.AuditEntry, error) {
	var entries []model.AuditEntry
	for rows.Next() {
		var e model.AuditEntry
		var artifactID sql.NullString
		var category, detailsJSON, createdAt string

		if err := rows.Scan(
			&e.Seq, &e.ID, &artifactID, &e.Action, &category,
			&e.ActorID, &detailsJSON, &createdAt, &e.PrevHash, &e.CurrHash,
		); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}

		e.ArtifactID = artifactID.String
		e.Category = model.ActionCategory(category)

		details, err := unmarshalDetails(detailsJSON)
		if err != nil {
			return nil, err
		}
		e.Details = details

		created, err := parseTime(createdAt)
		if err != nil {
			return nil, err
		}
		e.CreatedAt = created

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}

	if entries == nil {
		entries = []model.AuditEntry{}
	}

	return entries, nil
}
