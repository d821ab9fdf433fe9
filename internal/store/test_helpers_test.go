package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/lineage/internal/model"
)

var testBase = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// createTestStore creates a file-backed store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestArtifact builds an artifact with minimal required fields.
func createTestArtifact(id, name string) model.Artifact {
	return model.Artifact{
		ID:        id,
		Type:      model.TypeDataset,
		Name:      name,
		Status:    model.StatusDraft,
		OwnerID:   "user-1",
		CreatedAt: testBase,
		UpdatedAt: testBase,
	}
}

// createTestEdge builds an edge from source to target.
func createTestEdge(id, sourceID, targetID string) model.ArtifactEdge {
	return model.ArtifactEdge{
		ID:        id,
		SourceID:  sourceID,
		TargetID:  targetID,
		Relation:  model.RelationDerivedFrom,
		CreatedAt: testBase,
	}
}

var entrySeq int

// createTestEntry builds an audit entry with a unique id and timestamp.
func createTestEntry(action, artifactID string) *model.AuditEntry {
	entrySeq++
	return &model.AuditEntry{
		ID:         fmt.Sprintf("entry-%d", entrySeq),
		ArtifactID: artifactID,
		Action:     action,
		ActorID:    "user-1",
		CreatedAt:  testBase.Add(time.Duration(entrySeq) * time.Second),
	}
}

// mustCreateArtifact inserts an artifact or fails the test.
func mustCreateArtifact(t *testing.T, s *Store, a model.Artifact) {
	t.Helper()
	entry := createTestEntry(model.ActionCreateArtifact, a.ID)
	if err := s.CreateArtifact(context.Background(), a, entry); err != nil {
		t.Fatalf("CreateArtifact(%s) failed: %v", a.ID, err)
	}
}

// mustCreateEdge inserts an edge with a generous cycle-check depth.
func mustCreateEdge(t *testing.T, s *Store, e model.ArtifactEdge) {
	t.Helper()
	entry := createTestEntry(model.ActionCreateEdge, e.TargetID)
	if err := s.CreateEdgeGuarded(context.Background(), e, 20, entry); err != nil {
		t.Fatalf("CreateEdgeGuarded(%s) failed: %v", e.ID, err)
	}
}

// countRows counts rows in a table.
func countRows(t *testing.T, s *Store, table string) int {
	t.Helper()
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s failed: %v", table, err)
	}
	return n
}
