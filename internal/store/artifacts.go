package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/lineage/internal/model"
)

const artifactColumns = `id, type, name, description, status, owner_id, org_id, metadata, created_at, updated_at, deleted_at`

// CreateArtifact inserts an artifact row and its audit entry in one
// transaction.
func (s *Store) CreateArtifact(ctx context.Context, a model.Artifact, entry *model.AuditEntry) error {
	metadataJSON, err := marshalMetadata(a.Metadata)
	if err != nil {
		return fmt.Errorf("create artifact: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("create artifact: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT INTO artifacts
		(id, type, name, description, status, owner_id, org_id, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		a.ID,
		string(a.Type),
		a.Name,
		a.Description,
		string(a.Status),
		a.OwnerID,
		a.OrgID,
		metadataJSON,
		formatTime(a.CreatedAt),
		formatTime(a.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create artifact: insert: %w", err)
	}

	if err := appendAudit(ctx, tx, entry); err != nil {
		return fmt.Errorf("create artifact: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("create artifact: commit: %w", err)
	}
	return nil
}

// GetArtifact retrieves a single non-deleted artifact by ID.
// Returns sql.ErrNoRows if the artifact is missing or soft-deleted.
func (s *Store) GetArtifact(ctx context.Context, id string) (model.Artifact, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+artifactColumns+`
		FROM artifacts
		WHERE id = ? AND deleted_at IS NULL
	`, id)

	return scanArtifactRow(row)
}

// ArtifactsByID retrieves the non-deleted artifacts among the given IDs.
// Missing or deleted IDs are silently absent from the result. Results are
// ordered by id for determinism. Returns an empty slice (not nil) when
// nothing matches.
func (s *Store) ArtifactsByID(ctx context.Context, ids []string) ([]model.Artifact, error) {
	if len(ids) == 0 {
		return []model.Artifact{}, nil
	}

	placeholders, args := inPlaceholders(ids)
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+artifactColumns+`
		FROM artifacts
		WHERE id IN (`+placeholders+`) AND deleted_at IS NULL
		ORDER BY id COLLATE BINARY ASC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("query artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []model.Artifact
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate artifacts: %w", err)
	}

	if artifacts == nil {
		artifacts = []model.Artifact{}
	}

	return artifacts, nil
}

// ArtifactPatch names the columns an update overwrites. Nil fields leave
// the column untouched; a nil Metadata map leaves metadata untouched.
type ArtifactPatch struct {
	Name        *string
	Description *string
	Status      *model.ArtifactStatus
	Metadata    model.Metadata
}

// UpdateArtifact overwrites only the patched columns of a non-deleted
// artifact, re-reads the row, and appends the audit entry, all inside one
// transaction. Writing only the supplied columns lets concurrent partial
// updates of different fields compose instead of clobbering each other.
// Returns sql.ErrNoRows if the artifact is missing or soft-deleted.
func (s *Store) UpdateArtifact(ctx context.Context, id string, patch ArtifactPatch, updatedAt time.Time, entry *model.AuditEntry) (model.Artifact, error) {
	sets := []string{"updated_at = ?"}
	args := []any{formatTime(updatedAt)}
	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*patch.Status))
	}
	if patch.Metadata != nil {
		metadataJSON, err := marshalMetadata(patch.Metadata)
		if err != nil {
			return model.Artifact{}, fmt.Errorf("update artifact: %w", err)
		}
		sets = append(sets, "metadata = ?")
		args = append(args, metadataJSON)
	}
	args = append(args, id)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Artifact{}, fmt.Errorf("update artifact: begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE artifacts
		SET `+strings.Join(sets, ", ")+`
		WHERE id = ? AND deleted_at IS NULL
	`, args...)
	if err != nil {
		return model.Artifact{}, fmt.Errorf("update artifact: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return model.Artifact{}, fmt.Errorf("update artifact: rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return model.Artifact{}, sql.ErrNoRows
	}

	row := tx.QueryRowContext(ctx, `
		SELECT `+artifactColumns+`
		FROM artifacts
		WHERE id = ?
	`, id)
	a, err := scanArtifactRow(row)
	if err != nil {
		return model.Artifact{}, fmt.Errorf("update artifact: reread: %w", err)
	}

	if err := appendAudit(ctx, tx, entry); err != nil {
		return model.Artifact{}, fmt.Errorf("update artifact: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return model.Artifact{}, fmt.Errorf("update artifact: commit: %w", err)
	}
	return a, nil
}

// SoftDeleteArtifact marks an artifact deleted and appends the audit entry
// in the same transaction. Edges referencing the artifact are NOT cascaded;
// they stay in storage and drop out of traversals because every traversal
// query joins against non-deleted artifacts.
// Returns sql.ErrNoRows if the artifact is missing or already deleted.
func (s *Store) SoftDeleteArtifact(ctx context.Context, id string, at time.Time, entry *model.AuditEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("soft delete artifact: begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE artifacts
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`, formatTime(at), id)
	if err != nil {
		return fmt.Errorf("soft delete artifact: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("soft delete artifact: rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}

	if err := appendAudit(ctx, tx, entry); err != nil {
		return fmt.Errorf("soft delete artifact: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("soft delete artifact: commit: %w", err)
	}
	return nil
}

// scanArtifact scans a row into an Artifact struct.
func scanArtifact(rows *sql.Rows) (model.Artifact, error) {
	var a model.Artifact
	var typ, status, metadataJSON, createdAt, updatedAt string
	var deletedAt sql.NullString

	if err := rows.Scan(
		&a.ID, &typ, &a.Name, &a.Description, &status,
		&a.OwnerID, &a.OrgID, &metadataJSON, &createdAt, &updatedAt, &deletedAt,
	); err != nil {
		return model.Artifact{}, fmt.Errorf("scan artifact: %w", err)
	}

	return finishArtifact(a, typ, status, metadataJSON, createdAt, updatedAt, deletedAt)
}

// scanArtifactRow scans a single row into an Artifact struct.
func scanArtifactRow(row *sql.Row) (model.Artifact, error) {
	var a model.Artifact
	var typ, status, metadataJSON, createdAt, updatedAt string
	var deletedAt sql.NullString

	if err := row.Scan(
		&a.ID, &typ, &a.Name, &a.Description, &status,
		&a.OwnerID, &a.OrgID, &metadataJSON, &createdAt, &updatedAt, &deletedAt,
	); err != nil {
		return model.Artifact{}, err
	}

	return finishArtifact(a, typ, status, metadataJSON, createdAt, updatedAt, deletedAt)
}

func finishArtifact(a model.Artifact, typ, status, metadataJSON, createdAt, updatedAt string, deletedAt sql.NullString) (model.Artifact, error) {
	a.Type = model.ArtifactType(typ)
	a.Status = model.ArtifactStatus(status)

	metadata, err := unmarshalMetadata(metadataJSON)
	if err != nil {
		return model.Artifact{}, err
	}
	a.Metadata = metadata

	created, err := parseTime(createdAt)
	if err != nil {
		return model.Artifact{}, err
	}
	a.CreatedAt = created

	updated, err := parseTime(updatedAt)
	if err != nil {
		return model.Artifact{}, err
	}
	a.UpdatedAt = updated

	deleted, err := parseNullTime(deletedAt)
	if err != nil {
		return model.Artifact{}, err
	}
	a.DeletedAt = deleted

	return a, nil
}
