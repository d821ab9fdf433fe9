package graph

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/roach88/lineage/internal/model"
)

// Direction selects which way a traversal expands from the root.
type Direction string

const (
	// Upstream walks toward sources: the artifacts the root derives from.
	Upstream Direction = "upstream"

	// Downstream walks toward targets: the artifacts derived from the root.
	Downstream Direction = "downstream"

	// Both expands in both directions.
	Both Direction = "both"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == Upstream || d == Downstream || d == Both
}

// ArtifactGraph computes the bounded neighborhood of rootID.
//
// For each requested direction the engine runs a breadth-first expansion up
// to depth hops, batching adjacency one level per query. Only non-deleted
// edges joined to non-deleted artifacts are traversed. Nodes and edges are
// deduplicated by identity, so an artifact reachable via multiple paths
// appears once. The root itself is included iff it exists and is not
// deleted; a missing root is not an error - the traversal simply yields what
// is reachable (nothing) and omits the root from nodes. Callers needing an
// existence guarantee use GetArtifact.
//
// depth <= 0 selects the configured default; depths above the configured
// maximum are clamped. The bound is a hard cap: provenance beyond it is
// truncated, not an error.
//
// After assembly the bulk staleness rules run over the traversed edge set
// and the outdated node ids are returned alongside the graph.
func (e *Engine) ArtifactGraph(ctx context.Context, rootID string, depth int, direction Direction) (*model.Graph, error) {
	if rootID == "" {
		return nil, validationError("traversal requires a root artifact id")
	}
	if !direction.Valid() {
		return nil, validationError(fmt.Sprintf("unknown direction %q", direction))
	}
	if depth <= 0 {
		depth = e.limits.TraversalDepth
	}
	if depth > e.limits.MaxTraversalDepth {
		depth = e.limits.MaxTraversalDepth
	}

	edgeSet := map[string]model.ArtifactEdge{}
	nodeIDs := map[string]bool{}

	if direction == Upstream || direction == Both {
		if err := e.expand(ctx, rootID, depth, Upstream, edgeSet, nodeIDs); err != nil {
			return nil, err
		}
	}
	if direction == Downstream || direction == Both {
		if err := e.expand(ctx, rootID, depth, Downstream, edgeSet, nodeIDs); err != nil {
			return nil, err
		}
	}

	// The root is a node iff it is live, whether or not it has edges.
	_, err := e.store.GetArtifact(ctx, rootID)
	switch {
	case err == nil:
		nodeIDs[rootID] = true
	case errors.Is(err, sql.ErrNoRows):
		delete(nodeIDs, rootID)
	default:
		return nil, storageError("resolve root artifact", err)
	}

	ids := make([]string, 0, len(nodeIDs))
	for id := range nodeIDs {
		ids = append(ids, id)
	}
	nodes, err := e.store.ArtifactsByID(ctx, ids)
	if err != nil {
		return nil, storageError("load graph nodes", err)
	}

	edges := make([]model.ArtifactEdge, 0, len(edgeSet))
	for _, edge := range edgeSet {
		edges = append(edges, edge)
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].ID < edges[j].ID })

	outdated := outdatedNodes(nodes, edges)

	e.log.DebugContext(ctx, "graph traversed",
		"root", rootID, "direction", direction, "depth", depth,
		"nodes", len(nodes), "edges", len(edges), "outdated", len(outdated))

	return &model.Graph{
		RootID:      rootID,
		Nodes:       nodes,
		Edges:       edges,
		OutdatedIDs: outdated,
	}, nil
}

// expand runs one directional breadth-first expansion, accumulating into the
// shared edge and node sets. The per-level adjacency fetch batches the whole
// frontier into a single IN query.
func (e *Engine) expand(ctx context.Context, rootID string, depth int, direction Direction, edgeSet map[string]model.ArtifactEdge, nodeIDs map[string]bool) error {
	visited := map[string]bool{rootID: true}
	frontier := []string{rootID}

	for level := 0; level < depth && len(frontier) > 0; level++ {
		var (
			edges []model.ArtifactEdge
			err   error
		)
		if direction == Upstream {
			edges, err = e.store.UpstreamEdges(ctx, frontier)
		} else {
			edges, err = e.store.DownstreamEdges(ctx, frontier)
		}
		if err != nil {
			return storageError("expand traversal frontier", err)
		}

		var next []string
		for _, edge := range edges {
			edgeSet[edge.ID] = edge
			nodeIDs[edge.SourceID] = true
			nodeIDs[edge.TargetID] = true

			hop := edge.SourceID
			if direction == Downstream {
				hop = edge.TargetID
			}
			if !visited[hop] {
				visited[hop] = true
				next = append(next, hop)
			}
		}
		frontier = next
	}

	return nil
}
