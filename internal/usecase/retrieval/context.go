package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alphadoc-ai/alphadoc/internal/domain"
)

const unknownFilename = "unknown"

// buildContext renders the retrieved chunks into citation-ready context
// blocks in retrieval-rank order, separated by a blank line. Parent filenames
// are cross-referenced through a per-call cache so each parent document is
// fetched at most once.
func (s *Service) buildContext(ctx context.Context, hits []domain.ScoredChunk) (string, error) {
	filenames := make(map[string]string, len(hits))

	blocks := make([]string, 0, len(hits))
	for _, hit := range hits {
		filename, cached := filenames[hit.Chunk.ParentDocID]
		if !cached {
			doc, err := s.docs.GetDocument(ctx, hit.Chunk.ParentDocID)
			switch {
			case errors.Is(err, domain.ErrNotFound):
				// Parent mid-transition or removed; the chunk is still usable.
				filename = unknownFilename
			case err != nil:
				return "", fmt.Errorf("resolve parent filename: %w", err)
			default:
				filename = doc.Filename
			}
			filenames[hit.Chunk.ParentDocID] = filename
		}
		blocks = append(blocks, renderBlock(filename, hit.Chunk))
	}
	return strings.Join(blocks, "\n\n"), nil
}

func renderBlock(filename string, c domain.Chunk) string {
	var b strings.Builder
	fmt.Fprintf(&b, "SOURCE_FILE: %s\n", filename)
	fmt.Fprintf(&b, "SECTION: %s\n", c.SectionHeader)

	if len(c.InsightTypes) > 0 {
		fmt.Fprintf(&b, "CATEGORIES: %s\n", strings.Join(c.InsightTypes, ", "))
	}

	if len(c.Entities) > 0 {
		parts := make([]string, 0, len(c.Entities))
		for _, e := range c.Entities {
			parts = append(parts, fmt.Sprintf("%s (%s)", e.Name, e.Type))
		}
		fmt.Fprintf(&b, "KEY ENTITIES: %s\n", strings.Join(parts, ", "))
	}

	if len(c.Relationships) > 0 {
		parts := make([]string, 0, len(c.Relationships))
		for _, r := range c.Relationships {
			parts = append(parts, fmt.Sprintf("%s -> %s -> %s", r.Subject, r.Relation, r.Object))
		}
		fmt.Fprintf(&b, "DETECTED OBLIGATIONS: %s\n", strings.Join(parts, "; "))
	}

	fmt.Fprintf(&b, "RAW CONTENT: %s", c.ChunkText)
	return b.String()
}
