package domain

import "strings"

// InsightTypeNone is the sentinel type meaning "chunk was considered and had
// nothing actionable". It is a coverage signal only and is never persisted as
// a real insight.
const InsightTypeNone = "N/A"

// Chunk is a child record: one contiguous text segment of a document version,
// the unit of embedding, annotation, and retrieval.
type Chunk struct {
	ID                 string
	LineageGroupID     string
	ParentDocID        string
	ChunkIndex         int
	SectionHeader      string
	SectionSummary     string
	ChunkText          string
	Embedding          []float32
	Entities           []Entity
	Relationships      []Relationship
	ActionableInsights []ActionableInsight
	InsightTypes       []string
	Version            int
	IsCurrent          bool
}

// ScoredChunk is a chunk retrieved by similarity search together with its
// cosine similarity.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// Entity is a named entity extracted from one chunk. Type is drawn from an
// open set: Organization, Date, Monetary Value, Legal Reference, Stakeholder.
type Entity struct {
	ChunkIndex int    `json:"chunk_index"`
	Name       string `json:"name"`
	Type       string `json:"type"`
}

// Relationship is a detected obligation, dependency, or connection between
// entities within one chunk.
type Relationship struct {
	ChunkIndex int    `json:"chunk_index"`
	Subject    string `json:"subject"`
	Relation   string `json:"relation"`
	Object     string `json:"object"`
}

// ActionableInsight is a risk, deadline, decision, or recommendation found in
// one chunk.
type ActionableInsight struct {
	ChunkIndex  int      `json:"chunk_index"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Entities    []string `json:"entities"`
	DateOrValue string   `json:"date_or_value"`
}

// IsPlaceholder reports whether this insight is the "nothing actionable here"
// coverage sentinel.
func (i ActionableInsight) IsPlaceholder() bool {
	return strings.EqualFold(i.Type, InsightTypeNone)
}
