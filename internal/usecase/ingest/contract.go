package ingest

import (
	"context"

	"github.com/alphadoc-ai/alphadoc/internal/domain"
)

// Corpus defines the storage contract for the document lifecycle.
type Corpus interface {
	FindCurrentByFilename(ctx context.Context, filename string) (domain.Document, bool, error)
	RetireLineage(ctx context.Context, lineageGroupID string) error
	InsertVersion(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error
	ListCurrent(ctx context.Context) ([]domain.DocumentListing, error)
	GetLineageHistory(ctx context.Context, docID string) (domain.LineageHistory, error)
	SoftDelete(ctx context.Context, docID string) error
}
