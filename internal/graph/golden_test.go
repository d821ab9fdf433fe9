package graph

import (
	"context"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/roach88/lineage/internal/model"
)

// TestArtifactGraphGolden pins the traversal output for a small provenance
// scenario: a dataset feeding an analysis feeding a figure, with the dataset
// updated after the links were recorded. Canonical JSON keeps the snapshot
// byte-stable across runs.
//
// To regenerate: go test ./internal/graph -run ArtifactGraphGolden -update
func TestArtifactGraphGolden(t *testing.T) {
	e, _, clock := newTestEngine(t,
		"raw-data", "e1",
		"analysis", "e2",
		"figure-1", "e3",
		"edge-1", "e4",
		"edge-2", "e5",
		"e6",
	)
	ctx := context.Background()

	mustArtifact(t, e, model.TypeDataset, "Raw Data")
	clock.Advance(time.Hour)
	mustArtifact(t, e, model.TypeAnalysis, "Statistical Analysis")
	clock.Advance(time.Hour)
	mustArtifact(t, e, model.TypeFigure, "Figure 1")
	clock.Advance(time.Hour)
	mustLink(t, e, "raw-data", "analysis")
	mustLink(t, e, "analysis", "figure-1")

	clock.Advance(time.Hour)
	name := "Raw Data v2"
	_, err := e.UpdateArtifact(ctx, "raw-data", UpdateArtifactInput{Name: &name}, "alice")
	require.NoError(t, err)

	g, err := e.ArtifactGraph(ctx, "figure-1", 3, Upstream)
	require.NoError(t, err)

	data, err := model.MarshalCanonical(graphSnapshot(g))
	require.NoError(t, err)

	gold := goldie.New(t)
	gold.Assert(t, "artifact_graph", data)
}

// graphSnapshot projects a graph onto plain maps for canonical marshaling.
func graphSnapshot(g *model.Graph) map[string]any {
	nodes := make([]any, len(g.Nodes))
	for i, n := range g.Nodes {
		nodes[i] = map[string]any{
			"id":         n.ID,
			"name":       n.Name,
			"status":     string(n.Status),
			"type":       string(n.Type),
			"updated_at": n.UpdatedAt.UTC().Format(time.RFC3339Nano),
		}
	}

	edges := make([]any, len(g.Edges))
	for i, edge := range g.Edges {
		edges[i] = map[string]any{
			"id":         edge.ID,
			"source":     edge.SourceID,
			"target":     edge.TargetID,
			"relation":   string(edge.Relation),
			"created_at": edge.CreatedAt.UTC().Format(time.RFC3339Nano),
		}
	}

	return map[string]any{
		"root":     g.RootID,
		"nodes":    nodes,
		"edges":    edges,
		"outdated": g.OutdatedIDs,
	}
}
