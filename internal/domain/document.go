package domain

// Document is the parent record of one version within a lineage group.
type Document struct {
	ID               string
	LineageGroupID   string
	Filename         string
	Version          int
	IsCurrent        bool
	UploadDate       string // RFC3339
	Owner            string
	DocumentIntent   string
	MajorThemes      []string
	ExecutiveSummary string
	TechnicalSummary string
	AuditTrail       []AuditEntry
}

// AuditEntry is one embedded audit-trail event on a document record.
type AuditEntry struct {
	Action string `json:"action"`
	User   string `json:"user"`
	Time   string `json:"time"` // RFC3339
}

// DocumentListing is the lightweight id/filename/upload-date triple returned
// by current-version listings, newest first.
type DocumentListing struct {
	ID         string `json:"id"`
	Filename   string `json:"filename"`
	UploadDate string `json:"upload_date"`
}

// LineageHistory is the denormalized full view of one document version:
// parent metadata joined with annotations concatenated across its chunks.
type LineageHistory struct {
	Filename           string              `json:"filename"`
	DocumentIntent     string              `json:"document_intent"`
	MajorThemes        []string            `json:"major_themes"`
	Entities           []Entity            `json:"entities"`
	Relationships      []Relationship      `json:"relationships"`
	ExecutiveSummary   string              `json:"executive_summary"`
	TechnicalSummary   string              `json:"technical_summary"`
	ActionableInsights []ActionableInsight `json:"actionable_insights"`
	SectionSummaries   []SectionSummary    `json:"section_summaries"`
}
