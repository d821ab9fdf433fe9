package graph

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/lineage/internal/model"
	"github.com/roach88/lineage/internal/store"
	"github.com/roach88/lineage/internal/testutil"
)

var testBase = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// newTestEngine builds an engine over a temp-dir store with a frozen clock
// and predetermined ids ("fixed-N" once the list runs out).
func newTestEngine(t *testing.T, ids ...string) (*Engine, *store.Store, *testutil.Clock) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	s, err := store.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	clock := testutil.NewClock(testBase)
	e := New(s,
		WithClock(clock),
		WithIDGenerator(NewFixedGenerator(ids...)),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	return e, s, clock
}

// mustArtifact creates a draft artifact or fails the test.
func mustArtifact(t *testing.T, e *Engine, typ model.ArtifactType, name string) *model.Artifact {
	t.Helper()
	a, err := e.CreateArtifact(context.Background(), CreateArtifactInput{
		Type:    typ,
		Name:    name,
		OwnerID: "user-1",
	}, "alice")
	require.NoError(t, err)
	return a
}

// mustLink links source to target with derived_from or fails the test.
func mustLink(t *testing.T, e *Engine, sourceID, targetID string) *model.ArtifactEdge {
	t.Helper()
	edge, err := e.LinkArtifacts(context.Background(), LinkInput{
		SourceID: sourceID,
		TargetID: targetID,
		Relation: model.RelationDerivedFrom,
	}, "alice")
	require.NoError(t, err)
	return edge
}

// nodeIDs extracts the sorted node id set of a graph.
func nodeIDs(g *model.Graph) []string {
	ids := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		ids[i] = n.ID
	}
	return ids
}
