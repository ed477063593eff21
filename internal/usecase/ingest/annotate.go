package ingest

import (
	"strings"

	"go.uber.org/zap"

	"github.com/alphadoc-ai/alphadoc/internal/domain"
	"github.com/alphadoc-ai/alphadoc/internal/metrics"
)

// fallback section label for chunks no summary header matches.
const (
	fallbackSection = "General"
	fallbackSummary = "N/A"
)

// assembleChunks joins raw text chunks with the chunk-indexed annotations and
// resolves a section association per chunk. Identifiers, lineage fields, and
// version are filled in later by the commit path. Output order follows input
// chunk order; the position becomes the persisted chunk index.
//
// Annotations whose declared chunk index falls outside [0, N) are a
// data-quality signal from the extractor: they are counted and logged, never
// persisted, since no read path could ever reach them.
func assembleChunks(a *domain.Analysis, log *zap.Logger) []domain.Chunk {
	n := len(a.RawChunks)

	entities := make([][]domain.Entity, n)
	outOfRange := 0
	for _, e := range a.Intelligence.Entities {
		if e.ChunkIndex < 0 || e.ChunkIndex >= n {
			outOfRange++
			continue
		}
		entities[e.ChunkIndex] = append(entities[e.ChunkIndex], e)
	}

	relationships := make([][]domain.Relationship, n)
	for _, r := range a.Intelligence.Relationships {
		if r.ChunkIndex < 0 || r.ChunkIndex >= n {
			outOfRange++
			continue
		}
		relationships[r.ChunkIndex] = append(relationships[r.ChunkIndex], r)
	}

	insights := make([][]domain.ActionableInsight, n)
	for _, ins := range a.Insights.Insights {
		if ins.IsPlaceholder() {
			continue
		}
		if ins.ChunkIndex < 0 || ins.ChunkIndex >= n {
			outOfRange++
			continue
		}
		insights[ins.ChunkIndex] = append(insights[ins.ChunkIndex], ins)
	}

	if outOfRange > 0 {
		metrics.AnnotationOutOfRangeTotal.Add(float64(outOfRange))
		log.Warn("dropped annotations with out-of-range chunk index",
			zap.String("filename", a.Filename),
			zap.Int("dropped", outOfRange),
			zap.Int("chunks", n),
		)
	}

	chunks := make([]domain.Chunk, 0, n)
	for i, text := range a.RawChunks {
		header, summary := matchSection(text, a.Summaries.SectionSummaries)
		chunks = append(chunks, domain.Chunk{
			ChunkIndex:         i,
			SectionHeader:      header,
			SectionSummary:     summary,
			ChunkText:          text,
			Embedding:          a.Embeddings[i],
			Entities:           entities[i],
			Relationships:      relationships[i],
			ActionableInsights: insights[i],
			InsightTypes:       insightTypes(insights[i]),
		})
	}
	return chunks
}

// matchSection scans the section summaries in the given order and returns the
// first section whose header appears as a case-insensitive substring of the
// chunk text. First match wins even when a later header would fit better;
// the rule is deliberately order-sensitive.
func matchSection(chunkText string, sections []domain.SectionSummary) (header, summary string) {
	lower := strings.ToLower(chunkText)
	for _, s := range sections {
		if s.SectionHeader == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(s.SectionHeader)) {
			if s.SummaryText == "" {
				return s.SectionHeader, fallbackSummary
			}
			return s.SectionHeader, s.SummaryText
		}
	}
	return fallbackSection, fallbackSummary
}

// insightTypes flattens the distinct insight types in order of appearance.
func insightTypes(insights []domain.ActionableInsight) []string {
	if len(insights) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(insights))
	types := make([]string, 0, len(insights))
	for _, ins := range insights {
		if _, ok := seen[ins.Type]; ok {
			continue
		}
		seen[ins.Type] = struct{}{}
		types = append(types, ins.Type)
	}
	return types
}
