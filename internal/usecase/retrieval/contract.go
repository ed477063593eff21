package retrieval

import (
	"context"

	"github.com/alphadoc-ai/alphadoc/internal/domain"
	"github.com/alphadoc-ai/alphadoc/internal/domain/filter"
)

// Searcher runs filtered similarity search over the tenant's chunk collection.
type Searcher interface {
	Chunks(ctx context.Context, vector []float32, filters filter.Expression, k int) ([]domain.ScoredChunk, error)
}

// DocumentReader resolves parent documents for filename cross-referencing.
type DocumentReader interface {
	GetDocument(ctx context.Context, docID string) (domain.Document, error)
}

// Model is the external language-model contract used for filter translation,
// query embedding, and answer generation.
type Model interface {
	GenerateJSON(ctx context.Context, prompt string, out any) error
	Generate(ctx context.Context, prompt string) (string, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
