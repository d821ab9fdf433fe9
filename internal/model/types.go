package model

import "time"

// ArtifactType classifies a research output.
type ArtifactType string

const (
	TypeTopic              ArtifactType = "topic"
	TypeLiterature         ArtifactType = "literature"
	TypeDataset            ArtifactType = "dataset"
	TypeAnalysis           ArtifactType = "analysis"
	TypeManuscript         ArtifactType = "manuscript"
	TypeConferencePoster   ArtifactType = "conference_poster"
	TypeConferenceSlides   ArtifactType = "conference_slides"
	TypeConferenceAbstract ArtifactType = "conference_abstract"
	TypeFigure             ArtifactType = "figure"
	TypeTable              ArtifactType = "table"
)

// Valid reports whether t is a known artifact type.
func (t ArtifactType) Valid() bool {
	switch t {
	case TypeTopic, TypeLiterature, TypeDataset, TypeAnalysis, TypeManuscript,
		TypeConferencePoster, TypeConferenceSlides, TypeConferenceAbstract,
		TypeFigure, TypeTable:
		return true
	}
	return false
}

// ArtifactStatus tracks an artifact through its review lifecycle.
type ArtifactStatus string

const (
	StatusDraft    ArtifactStatus = "draft"
	StatusActive   ArtifactStatus = "active"
	StatusReview   ArtifactStatus = "review"
	StatusApproved ArtifactStatus = "approved"
	StatusArchived ArtifactStatus = "archived"
)

// Valid reports whether s is a known artifact status.
func (s ArtifactStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusActive, StatusReview, StatusApproved, StatusArchived:
		return true
	}
	return false
}

// RelationType classifies a derivation edge.
type RelationType string

const (
	RelationDerivedFrom   RelationType = "derived_from"
	RelationReferences    RelationType = "references"
	RelationSupersedes    RelationType = "supersedes"
	RelationUses          RelationType = "uses"
	RelationGeneratedFrom RelationType = "generated_from"
	RelationExportedTo    RelationType = "exported_to"
	RelationAnnotates     RelationType = "annotates"
)

// Valid reports whether r is a known relation type.
func (r RelationType) Valid() bool {
	switch r {
	case RelationDerivedFrom, RelationReferences, RelationSupersedes,
		RelationUses, RelationGeneratedFrom, RelationExportedTo, RelationAnnotates:
		return true
	}
	return false
}

// Artifact is a node in the provenance graph.
type Artifact struct {
	ID          string         `json:"id"`
	Type        ArtifactType   `json:"type"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Status      ArtifactStatus `json:"status"`
	OwnerID     string         `json:"owner_id"`
	OrgID       string         `json:"org_id,omitempty"`
	Metadata    Metadata       `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   *time.Time     `json:"deleted_at,omitempty"`
}

// ArtifactEdge is a directed derivation link from a source artifact to a
// target artifact. The target is the derived side: "Figure1 derived_from
// RawData" is stored as source=RawData, target=Figure1.
type ArtifactEdge struct {
	ID                   string       `json:"id"`
	SourceID             string       `json:"source_artifact_id"`
	TargetID             string       `json:"target_artifact_id"`
	Relation             RelationType `json:"relation_type"`
	TransformationType   string       `json:"transformation_type,omitempty"`
	TransformationConfig Metadata     `json:"transformation_config,omitempty"`
	SourceVersion        string       `json:"source_version,omitempty"`
	TargetVersion        string       `json:"target_version,omitempty"`
	Metadata             Metadata     `json:"metadata,omitempty"`
	CreatedAt            time.Time    `json:"created_at"`
	DeletedAt            *time.Time   `json:"deleted_at,omitempty"`
}

// Graph is the result of a bounded traversal: the deduplicated node and edge
// neighborhood around a root artifact, plus the ids of nodes the staleness
// rules flagged as outdated.
type Graph struct {
	RootID      string         `json:"root_artifact_id"`
	Nodes       []Artifact     `json:"nodes"`
	Edges       []ArtifactEdge `json:"edges"`
	OutdatedIDs []string       `json:"outdated_nodes"`
}

// StaleKind identifies which staleness rule fired.
type StaleKind string

const (
	// StaleSourceUpdated: the source artifact changed after the derivation
	// edge was recorded.
	StaleSourceUpdated StaleKind = "source_updated"

	// StaleManualFlag: the edge was explicitly marked needsRefresh.
	StaleManualFlag StaleKind = "manual_flag"
)

// StaleReason explains one way an artifact is outdated.
type StaleReason struct {
	Kind     StaleKind `json:"kind"`
	EdgeID   string    `json:"edge_id"`
	SourceID string    `json:"source_artifact_id"`
	Detail   string    `json:"detail"`
}

// OutdatedReport is the result of a per-artifact staleness check.
// Both rules are evaluated independently for every inbound edge, so a single
// edge can contribute two reasons.
type OutdatedReport struct {
	ArtifactID       string        `json:"artifact_id"`
	IsOutdated       bool          `json:"is_outdated"`
	Reasons          []StaleReason `json:"reasons"`
	SuggestedActions []string      `json:"suggested_actions"`
}
