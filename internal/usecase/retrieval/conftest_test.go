package retrieval

import (
	"context"
	"encoding/json"
	"testing"

	"go.uber.org/zap"

	"github.com/alphadoc-ai/alphadoc/internal/domain"
	"github.com/alphadoc-ai/alphadoc/internal/domain/filter"
)

// mockSearcher implements the Searcher contract for tests.
type mockSearcher struct {
	chunksFn func(ctx context.Context, vector []float32, filters filter.Expression, k int) ([]domain.ScoredChunk, error)

	gotFilters filter.Expression
}

func (m *mockSearcher) Chunks(
	ctx context.Context, vector []float32, filters filter.Expression, k int,
) ([]domain.ScoredChunk, error) {
	m.gotFilters = filters
	if m.chunksFn != nil {
		return m.chunksFn(ctx, vector, filters, k)
	}
	return []domain.ScoredChunk{}, nil
}

// mockDocs implements the DocumentReader contract for tests.
type mockDocs struct {
	getDocumentFn func(ctx context.Context, docID string) (domain.Document, error)
	calls         []string
}

func (m *mockDocs) GetDocument(ctx context.Context, docID string) (domain.Document, error) {
	m.calls = append(m.calls, docID)
	if m.getDocumentFn != nil {
		return m.getDocumentFn(ctx, docID)
	}
	return domain.Document{ID: docID, Filename: docID + ".pdf"}, nil
}

// mockModel implements the Model contract for tests.
type mockModel struct {
	generateJSONFn func(ctx context.Context, prompt string, out any) error
	generateFn     func(ctx context.Context, prompt string) (string, error)
	embedBatchFn   func(ctx context.Context, texts []string) ([][]float32, error)

	generatePrompts []string
	embeddedTexts   []string
}

func (m *mockModel) GenerateJSON(ctx context.Context, prompt string, out any) error {
	if m.generateJSONFn != nil {
		return m.generateJSONFn(ctx, prompt, out)
	}
	return json.Unmarshal([]byte(`{"filters":[]}`), out)
}

func (m *mockModel) Generate(ctx context.Context, prompt string) (string, error) {
	m.generatePrompts = append(m.generatePrompts, prompt)
	if m.generateFn != nil {
		return m.generateFn(ctx, prompt)
	}
	return "answer", nil
}

func (m *mockModel) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.embeddedTexts = append(m.embeddedTexts, texts...)
	if m.embedBatchFn != nil {
		return m.embedBatchFn(ctx, texts)
	}
	vectors := make([][]float32, len(texts))
	for i := range vectors {
		vectors[i] = []float32{0.5, 0.5}
	}
	return vectors, nil
}

func newTestService(t *testing.T) (*Service, *mockSearcher, *mockDocs, *mockModel) {
	t.Helper()
	srch := &mockSearcher{}
	docs := &mockDocs{}
	model := &mockModel{}
	return New(srch, docs, model, zap.NewNop()), srch, docs, model
}

func testHit(t *testing.T, parentID string, index int) domain.ScoredChunk {
	t.Helper()
	return domain.ScoredChunk{
		Score: 0.9,
		Chunk: domain.Chunk{
			ID:            "chunk-" + parentID,
			ParentDocID:   parentID,
			ChunkIndex:    index,
			SectionHeader: "Overview",
			ChunkText:     "segment results",
			IsCurrent:     true,
		},
	}
}

func hasCondition(conds []filter.Condition, field, match string) bool {
	for _, c := range conds {
		if c.Field() == field && c.Match() == match {
			return true
		}
	}
	return false
}
