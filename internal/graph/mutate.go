package graph

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/lineage/internal/model"
	"github.com/roach88/lineage/internal/store"
)

// CreateArtifactInput carries the fields for a new artifact.
type CreateArtifactInput struct {
	Type        model.ArtifactType
	Name        string
	Description string
	OwnerID     string
	OrgID       string
	Metadata    model.Metadata
}

// UpdateArtifactInput carries a partial update. Nil pointer fields are left
// unchanged; a nil Metadata map is left unchanged.
type UpdateArtifactInput struct {
	Name        *string
	Description *string
	Status      *model.ArtifactStatus
	Metadata    model.Metadata
}

// LinkInput carries the fields for a new derivation edge.
type LinkInput struct {
	SourceID             string
	TargetID             string
	Relation             model.RelationType
	TransformationType   string
	TransformationConfig model.Metadata
	SourceVersion        string
	TargetVersion        string
	Metadata             model.Metadata
}

// CreateArtifact persists a new artifact with status draft and writes a
// CREATE_ARTIFACT audit entry in the same transaction.
func (e *Engine) CreateArtifact(ctx context.Context, input CreateArtifactInput, actor string) (*model.Artifact, error) {
	if !input.Type.Valid() {
		return nil, validationError(fmt.Sprintf("unknown artifact type %q", input.Type))
	}
	if input.Name == "" {
		return nil, validationError("artifact name must not be empty")
	}
	if input.OwnerID == "" {
		return nil, validationError("artifact owner must not be empty")
	}

	now := e.clock.Now()
	artifact := model.Artifact{
		ID:          e.ids.Generate(),
		Type:        input.Type,
		Name:        input.Name,
		Description: input.Description,
		Status:      model.StatusDraft,
		OwnerID:     input.OwnerID,
		OrgID:       input.OrgID,
		Metadata:    input.Metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	entry := e.newEntry(model.ActionCreateArtifact, artifact.ID, actor, map[string]any{
		"type": string(artifact.Type),
		"name": artifact.Name,
	})

	if err := e.store.CreateArtifact(ctx, artifact, entry); err != nil {
		return nil, storageError("create artifact", err)
	}

	e.log.DebugContext(ctx, "artifact created",
		"artifact_id", artifact.ID, "type", artifact.Type, "actor", actor)
	return &artifact, nil
}

// GetArtifact returns a single non-deleted artifact.
func (e *Engine) GetArtifact(ctx context.Context, id string) (*model.Artifact, error) {
	artifact, err := e.store.GetArtifact(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFoundError("artifact not found", id, "")
		}
		return nil, storageError("get artifact", err)
	}
	return &artifact, nil
}

// UpdateArtifact applies a partial update to a non-deleted artifact. Only
// supplied fields change; updated_at is always refreshed. The applied delta
// is recorded in an UPDATE_ARTIFACT audit entry written in the same
// transaction. The store writes only the supplied columns, so concurrent
// updates of different fields never revert each other. Advancing updated_at
// is what later makes downstream artifacts report source_updated staleness.
func (e *Engine) UpdateArtifact(ctx context.Context, id string, input UpdateArtifactInput, actor string) (*model.Artifact, error) {
	if input.Status != nil && !input.Status.Valid() {
		return nil, validationError(fmt.Sprintf("unknown artifact status %q", *input.Status))
	}
	if input.Name != nil && *input.Name == "" {
		return nil, validationError("artifact name must not be empty")
	}

	delta := map[string]any{}
	if input.Name != nil {
		delta["name"] = *input.Name
	}
	if input.Description != nil {
		delta["description"] = *input.Description
	}
	if input.Status != nil {
		delta["status"] = string(*input.Status)
	}
	if input.Metadata != nil {
		delta["metadata"] = map[string]any(input.Metadata)
	}

	patch := store.ArtifactPatch{
		Name:        input.Name,
		Description: input.Description,
		Status:      input.Status,
		Metadata:    input.Metadata,
	}
	entry := e.newEntry(model.ActionUpdateArtifact, id, actor, delta)

	artifact, err := e.store.UpdateArtifact(ctx, id, patch, e.clock.Now(), entry)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFoundError("artifact not found", id, "")
		}
		return nil, storageError("update artifact", err)
	}

	e.log.DebugContext(ctx, "artifact updated",
		"artifact_id", artifact.ID, "fields", len(delta), "actor", actor)
	return &artifact, nil
}

// LinkArtifacts creates a directed derivation edge after enforcing the
// acyclicity invariant:
//
//  1. Bounded path search from target to source; an existing path means the
//     new edge would close a cycle - fail with CYCLE_DETECTED, write nothing
//  2. Both endpoints must resolve to non-deleted artifacts (NOT_FOUND,
//     naming which side is missing)
//  3. Insert the edge and its CREATE_EDGE audit entry, keyed to the target
//
// The check, the insert, and the audit entry share one transaction: the
// operation is never observably partial.
func (e *Engine) LinkArtifacts(ctx context.Context, input LinkInput, actor string) (*model.ArtifactEdge, error) {
	if input.SourceID == "" || input.TargetID == "" {
		return nil, validationError("link requires both source and target artifact ids")
	}
	if !input.Relation.Valid() {
		return nil, validationError(fmt.Sprintf("unknown relation type %q", input.Relation))
	}

	edge := model.ArtifactEdge{
		ID:                   e.ids.Generate(),
		SourceID:             input.SourceID,
		TargetID:             input.TargetID,
		Relation:             input.Relation,
		TransformationType:   input.TransformationType,
		TransformationConfig: input.TransformationConfig,
		SourceVersion:        input.SourceVersion,
		TargetVersion:        input.TargetVersion,
		Metadata:             input.Metadata,
		CreatedAt:            e.clock.Now(),
	}

	entry := e.newEntry(model.ActionCreateEdge, edge.TargetID, actor, map[string]any{
		"source_artifact_id": edge.SourceID,
		"relation_type":      string(edge.Relation),
	})

	err := e.store.CreateEdgeGuarded(ctx, edge, e.limits.CycleCheckDepth, entry)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrCycle):
		return nil, cycleError(input.SourceID, input.TargetID)
	case errors.Is(err, store.ErrSourceMissing):
		return nil, notFoundError("source artifact not found", input.SourceID, "")
	case errors.Is(err, store.ErrTargetMissing):
		return nil, notFoundError("target artifact not found", input.TargetID, "")
	default:
		return nil, storageError("link artifacts", err)
	}

	e.log.DebugContext(ctx, "artifacts linked",
		"edge_id", edge.ID, "source", edge.SourceID, "target", edge.TargetID,
		"relation", edge.Relation, "actor", actor)
	return &edge, nil
}

// DeleteEdge soft-deletes an edge. Deleting an already-deleted edge is an
// idempotent no-op; the DELETE_EDGE audit entry (keyed to the edge's target
// artifact) is written only when a row actually changed.
func (e *Engine) DeleteEdge(ctx context.Context, edgeID string, actor string) error {
	edge, err := e.store.GetEdge(ctx, edgeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notFoundError("edge not found", "", edgeID)
		}
		return storageError("delete edge", err)
	}
	if edge.DeletedAt != nil {
		return nil
	}

	entry := e.newEntry(model.ActionDeleteEdge, edge.TargetID, actor, map[string]any{
		"edge_id":            edge.ID,
		"source_artifact_id": edge.SourceID,
		"relation_type":      string(edge.Relation),
	})

	changed, err := e.store.SoftDeleteEdge(ctx, edgeID, e.clock.Now(), entry)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notFoundError("edge not found", "", edgeID)
		}
		return storageError("delete edge", err)
	}

	if changed {
		e.log.DebugContext(ctx, "edge deleted", "edge_id", edgeID, "actor", actor)
	}
	return nil
}

// SoftDeleteArtifact marks an artifact deleted and writes a DELETE_ARTIFACT
// audit entry recording its type and name at time of deletion. Edges are not
// cascaded: they stay in storage and drop out of every traversal because
// traversal joins against non-deleted artifacts.
func (e *Engine) SoftDeleteArtifact(ctx context.Context, id string, actor string) error {
	artifact, err := e.store.GetArtifact(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notFoundError("artifact not found", id, "")
		}
		return storageError("delete artifact", err)
	}

	entry := e.newEntry(model.ActionDeleteArtifact, id, actor, map[string]any{
		"type": string(artifact.Type),
		"name": artifact.Name,
	})

	if err := e.store.SoftDeleteArtifact(ctx, id, e.clock.Now(), entry); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notFoundError("artifact not found", id, "")
		}
		return storageError("delete artifact", err)
	}

	e.log.DebugContext(ctx, "artifact deleted", "artifact_id", id, "actor", actor)
	return nil
}

// newEntry builds an audit entry shell; the store fills in seq, category and
// the chain hashes at append time.
func (e *Engine) newEntry(action, artifactID, actor string, details map[string]any) *model.AuditEntry {
	return &model.AuditEntry{
		ID:         e.ids.Generate(),
		ArtifactID: artifactID,
		Action:     action,
		ActorID:    actor,
		Details:    details,
		CreatedAt:  e.clock.Now(),
	}
}
