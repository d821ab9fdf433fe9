package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/lineage/internal/model"
)

// Sentinel errors for guarded edge creation. The graph engine maps these to
// its typed error codes; the store only reports what happened.
var (
	// ErrCycle means inserting the edge would close a directed cycle.
	ErrCycle = errors.New("edge would create a cycle")

	// ErrSourceMissing means the source artifact is absent or soft-deleted.
	ErrSourceMissing = errors.New("source artifact not found")

	// ErrTargetMissing means the target artifact is absent or soft-deleted.
	ErrTargetMissing = errors.New("target artifact not found")
)

const edgeColumns = `id, source_artifact_id, target_artifact_id, relation_type,
	transformation_type, transformation_config, source_version, target_version,
	metadata, created_at, deleted_at`

// CreateEdgeGuarded inserts a derivation edge after enforcing the acyclicity
// invariant, all in one transaction:
//
//  1. Bounded path search from target to source over the live edge set; a
//     path means the new edge would close a cycle (ErrCycle, nothing written)
//  2. Both endpoints must resolve to non-deleted artifacts
//     (ErrSourceMissing / ErrTargetMissing)
//  3. Insert the edge row
//  4. Append the audit entry
//
// The check and insert share the transaction, so two concurrent links cannot
// both pass the check against a stale view and jointly introduce a cycle.
//
// maxDepth caps the path search. A path longer than maxDepth hops goes
// undetected; that approximation is deliberate and documented on the engine.
func (s *Store) CreateEdgeGuarded(ctx context.Context, edge model.ArtifactEdge, maxDepth int, entry *model.AuditEntry) error {
	configJSON, err := marshalMetadata(edge.TransformationConfig)
	if err != nil {
		return fmt.Errorf("create edge: %w", err)
	}
	metadataJSON, err := marshalMetadata(edge.Metadata)
	if err != nil {
		return fmt.Errorf("create edge: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("create edge: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	found, err := pathExists(ctx, tx, edge.TargetID, edge.SourceID, maxDepth)
	if err != nil {
		return fmt.Errorf("create edge: cycle check: %w", err)
	}
	if found {
		return ErrCycle
	}

	if err := requireLiveArtifact(ctx, tx, edge.SourceID, ErrSourceMissing); err != nil {
		return err
	}
	if err := requireLiveArtifact(ctx, tx, edge.TargetID, ErrTargetMissing); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO artifact_edges
		(id, source_artifact_id, target_artifact_id, relation_type,
		 transformation_type, transformation_config, source_version, target_version,
		 metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		edge.ID,
		edge.SourceID,
		edge.TargetID,
		string(edge.Relation),
		edge.TransformationType,
		configJSON,
		edge.SourceVersion,
		edge.TargetVersion,
		metadataJSON,
		formatTime(edge.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("create edge: insert: %w", err)
	}

	if err := appendAudit(ctx, tx, entry); err != nil {
		return fmt.Errorf("create edge: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("create edge: commit: %w", err)
	}
	return nil
}

// requireLiveArtifact fails with the given sentinel when the artifact is
// absent or soft-deleted.
func requireLiveArtifact(ctx context.Context, q Querier, id string, missing error) error {
	var count int
	err := q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM artifacts WHERE id = ? AND deleted_at IS NULL
	`, id).Scan(&count)
	if err != nil {
		return fmt.Errorf("check artifact %s: %w", id, err)
	}
	if count == 0 {
		return missing
	}
	return nil
}

// pathExists runs a bounded breadth-first search over the live edge set,
// following edges in their stored direction (source → target), and reports
// whether a directed path from `from` to `to` exists within maxDepth hops.
// The frontier is expanded one level per query, batching adjacency with an
// IN clause. from == to counts as a path (a self-loop is a cycle).
func pathExists(ctx context.Context, q Querier, from, to string, maxDepth int) (bool, error) {
	if from == to {
		return true, nil
	}

	visited := map[string]bool{from: true}
	frontier := []string{from}

	for depth := 0; depth < maxDepth && len(frontier) > 0; depth++ {
		placeholders, args := inPlaceholders(frontier)
		rows, err := q.QueryContext(ctx, `
			SELECT DISTINCT e.target_artifact_id
			FROM artifact_edges e
			JOIN artifacts t ON t.id = e.target_artifact_id AND t.deleted_at IS NULL
			WHERE e.source_artifact_id IN (`+placeholders+`)
			  AND e.deleted_at IS NULL
		`, args...)
		if err != nil {
			return false, fmt.Errorf("expand frontier: %w", err)
		}

		var next []string
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return false, fmt.Errorf("scan frontier: %w", err)
			}
			if id == to {
				rows.Close()
				return true, nil
			}
			if !visited[id] {
				visited[id] = true
				next = append(next, id)
			}
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return false, fmt.Errorf("iterate frontier: %w", err)
		}
		rows.Close()

		frontier = next
	}

	return false, nil
}

// GetEdge retrieves a single edge by ID, including soft-deleted edges.
// Callers check DeletedAt; the idempotent delete path needs to see rows
// that are already deleted. Returns sql.ErrNoRows if the edge never existed.
func (s *Store) GetEdge(ctx context.Context, id string) (model.ArtifactEdge, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+edgeColumns+`
		FROM artifact_edges
		WHERE id = ?
	`, id)

	return scanEdgeRow(row)
}

// SoftDeleteEdge marks an edge deleted. Returns changed=false without
// writing anything (including the audit entry) when the edge was already
// deleted; the audit entry is appended only when a row actually changed.
// Returns sql.ErrNoRows if the edge never existed.
func (s *Store) SoftDeleteEdge(ctx context.Context, id string, at time.Time, entry *model.AuditEntry) (changed bool, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("soft delete edge: begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE artifact_edges
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`, formatTime(at), id)
	if err != nil {
		return false, fmt.Errorf("soft delete edge: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("soft delete edge: rows affected: %w", err)
	}

	if rowsAffected == 0 {
		// Distinguish "already deleted" (idempotent no-op) from "never existed".
		var count int
		err = tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM artifact_edges WHERE id = ?
		`, id).Scan(&count)
		if err != nil {
			return false, fmt.Errorf("soft delete edge: check existence: %w", err)
		}
		if count == 0 {
			return false, sql.ErrNoRows
		}
		return false, tx.Commit()
	}

	if err := appendAudit(ctx, tx, entry); err != nil {
		return false, fmt.Errorf("soft delete edge: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("soft delete edge: commit: %w", err)
	}
	return true, nil
}

// UpstreamEdges returns the live edges whose target is in targetIDs, joined
// against non-deleted artifacts on both endpoints. Results ordered by id for
// determinism. Returns an empty slice (not nil) when nothing matches.
func (s *Store) UpstreamEdges(ctx context.Context, targetIDs []string) ([]model.ArtifactEdge, error) {
	return s.adjacentEdges(ctx, "target_artifact_id", targetIDs)
}

// DownstreamEdges is the mirror image: live edges whose source is in
// sourceIDs.
func (s *Store) DownstreamEdges(ctx context.Context, sourceIDs []string) ([]model.ArtifactEdge, error) {
	return s.adjacentEdges(ctx, "source_artifact_id", sourceIDs)
}

func (s *Store) adjacentEdges(ctx context.Context, column string, ids []string) ([]model.ArtifactEdge, error) {
	if len(ids) == 0 {
		return []model.ArtifactEdge{}, nil
	}

	placeholders, args := inPlaceholders(ids)
	// column is one of two package-internal constants, never caller input.
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.id, e.source_artifact_id, e.target_artifact_id, e.relation_type,
		       e.transformation_type, e.transformation_config, e.source_version, e.target_version,
		       e.metadata, e.created_at, e.deleted_at
		FROM artifact_edges e
		JOIN artifacts src ON src.id = e.source_artifact_id AND src.deleted_at IS NULL
		JOIN artifacts tgt ON tgt.id = e.target_artifact_id AND tgt.deleted_at IS NULL
		WHERE e.`+column+` IN (`+placeholders+`)
		  AND e.deleted_at IS NULL
		ORDER BY e.id COLLATE BINARY ASC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("query adjacent edges: %w", err)
	}
	defer rows.Close()

	var edges []model.ArtifactEdge
	for rows.Next() {
		e, err := scanEdge(rows)
		if err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate adjacent edges: %w", err)
	}

	if edges == nil {
		edges = []model.ArtifactEdge{}
	}

	return edges, nil
}

// scanEdge scans a row into an ArtifactEdge struct.
func scanEdge(rows *sql.Rows) (model.ArtifactEdge, error) {
	var e model.ArtifactEdge
	var relation, configJSON, metadataJSON, createdAt string
	var deletedAt sql.NullString

	if err := rows.Scan(
		&e.ID, &e.SourceID, &e.TargetID, &relation,
		&e.TransformationType, &configJSON, &e.SourceVersion, &e.TargetVersion,
		&metadataJSON, &createdAt, &deletedAt,
	); err != nil {
		return model.ArtifactEdge{}, fmt.Errorf("scan edge: %w", err)
	}

	return finishEdge(e, relation, configJSON, metadataJSON, createdAt, deletedAt)
}

// scanEdgeRow scans a single row into an ArtifactEdge struct.
func scanEdgeRow(row *sql.Row) (model.ArtifactEdge, error) {
	var e model.ArtifactEdge
	var relation, configJSON, metadataJSON, createdAt string
	var deletedAt sql.NullString

	if err := row.Scan(
		&e.ID, &e.SourceID, &e.TargetID, &relation,
		&e.TransformationType, &configJSON, &e.SourceVersion, &e.TargetVersion,
		&metadataJSON, &createdAt, &deletedAt,
	); err != nil {
		return model.ArtifactEdge{}, err
	}

	return finishEdge(e, relation, configJSON, metadataJSON, createdAt, deletedAt)
}

func finishEdge(e model.ArtifactEdge, relation, configJSON, metadataJSON, createdAt string, deletedAt sql.NullString) (model.ArtifactEdge, error) {
	e.Relation = model.RelationType(relation)

	config, err := unmarshalMetadata(configJSON)
	if err != nil {
		return model.ArtifactEdge{}, err
	}
	e.TransformationConfig = config

	metadata, err := unmarshalMetadata(metadataJSON)
	if err != nil {
		return model.ArtifactEdge{}, err
	}
	e.Metadata = metadata

	created, err := parseTime(createdAt)
	if err != nil {
		return model.ArtifactEdge{}, err
	}
	e.CreatedAt = created

	deleted, err := parseNullTime(deletedAt)
	if err != nil {
		return model.ArtifactEdge{}, err
	}
	e.DeletedAt = deleted

	return e, nil
}
