package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/alphadoc-ai/alphadoc/internal/db"
	"github.com/alphadoc-ai/alphadoc/internal/domain"
)

// mockStore implements the consumer interfaces for tests.
type mockStore struct {
	jsonSetFn      func(ctx context.Context, key, path string, data []byte) error
	jsonSetMultiFn func(ctx context.Context, items []db.JSONSetItem) error
	jsonGetFn      func(ctx context.Context, key string, paths ...string) ([]byte, error)
	searchListFn   func(
		ctx context.Context, index, query string, offset, limit int, fields []string,
	) (*db.SearchResult, error)
	searchKNNFn func(ctx context.Context, query *db.KNNQuery) (*db.SearchResult, error)
}

func (m *mockStore) JSONSet(ctx context.Context, key, path string, data []byte) error {
	if m.jsonSetFn != nil {
		return m.jsonSetFn(ctx, key, path, data)
	}
	return nil
}

func (m *mockStore) JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error {
	if m.jsonSetMultiFn != nil {
		return m.jsonSetMultiFn(ctx, items)
	}
	return nil
}

func (m *mockStore) JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error) {
	if m.jsonGetFn != nil {
		return m.jsonGetFn(ctx, key, paths...)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) SearchList(
	ctx context.Context, index, query string, offset, limit int, fields []string,
) (*db.SearchResult, error) {
	if m.searchListFn != nil {
		return m.searchListFn(ctx, index, query, offset, limit, fields)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) SearchKNN(ctx context.Context, query *db.KNNQuery) (*db.SearchResult, error) {
	if m.searchKNNFn != nil {
		return m.searchKNNFn(ctx, query)
	}
	return &db.SearchResult{}, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, "vector_index"), ms
}

func testDocument(t *testing.T) domain.Document {
	t.Helper()
	return domain.Document{
		ID:               "doc-1",
		LineageGroupID:   "lin-1",
		Filename:         "report.pdf",
		Version:          1,
		IsCurrent:        true,
		UploadDate:       "2026-08-30T10:00:00Z",
		Owner:            "analyst",
		DocumentIntent:   "quarterly review",
		MajorThemes:      []string{"revenue", "churn"},
		ExecutiveSummary: "Revenue grew.",
		TechnicalSummary: "Tables 1-4 cover segment detail.",
		AuditTrail: []domain.AuditEntry{
			{Action: "created", User: "analyst", Time: "2026-08-30T10:00:00Z"},
		},
	}
}

func testChunks(t *testing.T, parentID string, n int) []domain.Chunk {
	t.Helper()
	chunks := make([]domain.Chunk, 0, n)
	for i := 0; i < n; i++ {
		chunks = append(chunks, domain.Chunk{
			ID:             fmt.Sprintf("%s-c%d", parentID, i),
			LineageGroupID: "lin-1",
			ParentDocID:    parentID,
			ChunkIndex:     i,
			SectionHeader:  "Overview",
			SectionSummary: "Intro section.",
			ChunkText:      "chunk body",
			Embedding:      []float32{0.1, 0.2, 0.3},
			Version:        1,
			IsCurrent:      true,
		})
	}
	return chunks
}

func mustMarshalDocEntry(t *testing.T, doc domain.Document) string {
	t.Helper()
	rec := toDocumentRecord(&doc)
	return `[` + string(mustJSON(t, rec)) + `]`
}

func mustMarshalChunkEntry(t *testing.T, c domain.Chunk) string {
	t.Helper()
	rec := toChunkRecord(&c)
	return `[` + string(mustJSON(t, rec)) + `]`
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}
