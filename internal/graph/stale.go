package graph

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/roach88/lineage/internal/model"
)

// CheckArtifactOutdated reports whether an artifact must be considered stale
// relative to its upstream sources, built on a 1-hop upstream traversal.
//
// For every inbound edge, two independent rules apply:
//
//   - source_updated: the source artifact's updated_at is strictly later
//     than the edge's created_at - the source changed after the derivation
//     was captured
//   - manual_flag: the edge's metadata carries a truthy needsRefresh flag,
//     regardless of timestamps
//
// Both rules can fire for the same edge, producing two separate reasons.
// The artifact is outdated iff at least one reason exists.
func (e *Engine) CheckArtifactOutdated(ctx context.Context, artifactID string) (*model.OutdatedReport, error) {
	if _, err := e.store.GetArtifact(ctx, artifactID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFoundError("artifact not found", artifactID, "")
		}
		return nil, storageError("check outdated", err)
	}

	edges, err := e.store.UpstreamEdges(ctx, []string{artifactID})
	if err != nil {
		return nil, storageError("check outdated", err)
	}

	sourceIDs := make([]string, 0, len(edges))
	for _, edge := range edges {
		sourceIDs = append(sourceIDs, edge.SourceID)
	}
	sources, err := e.store.ArtifactsByID(ctx, sourceIDs)
	if err != nil {
		return nil, storageError("check outdated", err)
	}
	sourceByID := make(map[string]model.Artifact, len(sources))
	for _, src := range sources {
		sourceByID[src.ID] = src
	}

	report := &model.OutdatedReport{ArtifactID: artifactID}
	for _, edge := range edges {
		src, ok := sourceByID[edge.SourceID]
		if ok && src.UpdatedAt.After(edge.CreatedAt) {
			report.Reasons = append(report.Reasons, model.StaleReason{
				Kind:     model.StaleSourceUpdated,
				EdgeID:   edge.ID,
				SourceID: edge.SourceID,
				Detail:   fmt.Sprintf("source %q was updated after this %s link was recorded", src.Name, edge.Relation),
			})
			report.SuggestedActions = append(report.SuggestedActions,
				fmt.Sprintf("Review changes in %q and regenerate this artifact", src.Name))
		}
		if edge.Metadata.NeedsRefresh() {
			name := edge.SourceID
			if ok {
				name = src.Name
			}
			report.Reasons = append(report.Reasons, model.StaleReason{
				Kind:     model.StaleManualFlag,
				EdgeID:   edge.ID,
				SourceID: edge.SourceID,
				Detail:   fmt.Sprintf("link from %q is flagged needsRefresh", name),
			})
			report.SuggestedActions = append(report.SuggestedActions,
				fmt.Sprintf("Refresh this artifact from %q and clear the flag", name))
		}
	}

	report.IsOutdated = len(report.Reasons) > 0
	return report, nil
}

// outdatedNodes applies the two staleness rules across a traversed edge set
// and returns the sorted ids of outdated target nodes. The bulk form trades
// per-edge reasons for the ability to flag many artifacts in one traversal.
func outdatedNodes(nodes []model.Artifact, edges []model.ArtifactEdge) []string {
	nodeByID := make(map[string]model.Artifact, len(nodes))
	for _, n := range nodes {
		nodeByID[n.ID] = n
	}

	flagged := map[string]bool{}
	for _, edge := range edges {
		src, ok := nodeByID[edge.SourceID]
		if ok && src.UpdatedAt.After(edge.CreatedAt) {
			flagged[edge.TargetID] = true
		}
		if edge.Metadata.NeedsRefresh() {
			flagged[edge.TargetID] = true
		}
	}

	ids := make([]string, 0, len(flagged))
	for id := range flagged {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
