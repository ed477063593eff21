package domain

// Extraction is the document-level semantic extraction produced upstream:
// global intent and themes plus chunk-indexed entities and relationships.
// Entities and relationships are not pre-partitioned by chunk.
type Extraction struct {
	DocumentIntent string         `json:"document_intent"`
	Topics         []string       `json:"topics"`
	Entities       []Entity       `json:"entities"`
	Relationships  []Relationship `json:"relationships"`
}

// InsightList is the chunk-indexed actionable-insight extraction. Every chunk
// index is expected to be represented, placeholder entries included.
type InsightList struct {
	Insights []ActionableInsight `json:"insights"`
}

// SectionSummary is one AI-produced section summary, scanned in order during
// chunk-to-section association.
type SectionSummary struct {
	SectionHeader string `json:"section_header"`
	SummaryText   string `json:"summary_text"`
}

// Summaries holds the document summaries at all three granularities.
type Summaries struct {
	ExecutiveSummary string           `json:"executive_summary"`
	TechnicalSummary string           `json:"technical_summary"`
	SectionSummaries []SectionSummary `json:"section_summaries"`
}

// Analysis bundles everything the intelligence pipeline produced for one
// document, ready for review and submission to storage.
type Analysis struct {
	Filename     string      `json:"filename"`
	Intelligence Extraction  `json:"intelligence"`
	Insights     InsightList `json:"insights"`
	Summaries    Summaries   `json:"summaries"`
	RawChunks    []string    `json:"raw_chunks"`
	Embeddings   [][]float32 `json:"embeddings"`
}

// RetrievalMode selects the answer-mode instruction for the retrieval engine.
type RetrievalMode string

const (
	// ModeSearch answers the literal user query.
	ModeSearch RetrievalMode = "search"
	// ModeDashboard ignores the literal query and synthesizes a fixed
	// executive briefing.
	ModeDashboard RetrievalMode = "dashboard"
)
