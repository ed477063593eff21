package corpus

import "github.com/alphadoc-ai/alphadoc/internal/domain"

// documentRecord is the persisted JSON shape of a parent document.
type documentRecord struct {
	ID               string              `json:"id"`
	LineageGroupID   string              `json:"lineage_group_id"`
	Filename         string              `json:"filename"`
	Version          int                 `json:"version"`
	IsCurrent        bool                `json:"is_current"`
	UploadDate       string              `json:"upload_date"`
	Owner            string              `json:"owner"`
	DocumentIntent   string              `json:"document_intent"`
	MajorThemes      []string            `json:"major_themes"`
	ExecutiveSummary string              `json:"executive_summary"`
	TechnicalSummary string              `json:"technical_summary"`
	AuditLog         []domain.AuditEntry `json:"audit_log"`
}

// chunkRecord is the persisted JSON shape of a chunk.
type chunkRecord struct {
	ID                 string                     `json:"id"`
	LineageGroupID     string                     `json:"lineage_group_id"`
	ParentDocID        string                     `json:"parent_doc_id"`
	ChunkIndex         int                        `json:"chunk_index"`
	SectionHeader      string                     `json:"section_header"`
	SectionSummary     string                     `json:"section_summary"`
	ChunkText          string                     `json:"chunk_text"`
	Embedding          []float32                  `json:"embedding"`
	Entities           []domain.Entity            `json:"entities"`
	Relationships      []domain.Relationship      `json:"relationships"`
	ActionableInsights []domain.ActionableInsight `json:"actionable_insights"`
	InsightTypes       []string                   `json:"insight_types"`
	Version            int                        `json:"version"`
	IsCurrent          bool                       `json:"is_current"`
}

func toDocumentRecord(d *domain.Document) documentRecord {
	return documentRecord{
		ID:               d.ID,
		LineageGroupID:   d.LineageGroupID,
		Filename:         d.Filename,
		Version:          d.Version,
		IsCurrent:        d.IsCurrent,
		UploadDate:       d.UploadDate,
		Owner:            d.Owner,
		DocumentIntent:   d.DocumentIntent,
		MajorThemes:      d.MajorThemes,
		ExecutiveSummary: d.ExecutiveSummary,
		TechnicalSummary: d.TechnicalSummary,
		AuditLog:         d.AuditTrail,
	}
}

func (r documentRecord) toDomain() domain.Document {
	return domain.Document{
		ID:               r.ID,
		LineageGroupID:   r.LineageGroupID,
		Filename:         r.Filename,
		Version:          r.Version,
		IsCurrent:        r.IsCurrent,
		UploadDate:       r.UploadDate,
		Owner:            r.Owner,
		DocumentIntent:   r.DocumentIntent,
		MajorThemes:      r.MajorThemes,
		ExecutiveSummary: r.ExecutiveSummary,
		TechnicalSummary: r.TechnicalSummary,
		AuditTrail:       r.AuditLog,
	}
}

func toChunkRecord(c *domain.Chunk) chunkRecord {
	return chunkRecord{
		ID:                 c.ID,
		LineageGroupID:     c.LineageGroupID,
		ParentDocID:        c.ParentDocID,
		ChunkIndex:         c.ChunkIndex,
		SectionHeader:      c.SectionHeader,
		SectionSummary:     c.SectionSummary,
		ChunkText:          c.ChunkText,
		Embedding:          c.Embedding,
		Entities:           c.Entities,
		Relationships:      c.Relationships,
		ActionableInsights: c.ActionableInsights,
		InsightTypes:       c.InsightTypes,
		Version:            c.Version,
		IsCurrent:          c.IsCurrent,
	}
}

func (r chunkRecord) toDomain() domain.Chunk {
	return domain.Chunk{
		ID:                 r.ID,
		LineageGroupID:     r.LineageGroupID,
		ParentDocID:        r.ParentDocID,
		ChunkIndex:         r.ChunkIndex,
		SectionHeader:      r.SectionHeader,
		SectionSummary:     r.SectionSummary,
		ChunkText:          r.ChunkText,
		Embedding:          r.Embedding,
		Entities:           r.Entities,
		Relationships:      r.Relationships,
		ActionableInsights: r.ActionableInsights,
		InsightTypes:       r.InsightTypes,
		Version:            r.Version,
		IsCurrent:          r.IsCurrent,
	}
}
