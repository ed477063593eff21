package ingest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/alphadoc-ai/alphadoc/internal/domain"
)

// mockCorpus implements the Corpus contract for tests.
type mockCorpus struct {
	findCurrentFn   func(ctx context.Context, filename string) (domain.Document, bool, error)
	retireLineageFn func(ctx context.Context, lineageGroupID string) error
	insertVersionFn func(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error
	listCurrentFn   func(ctx context.Context) ([]domain.DocumentListing, error)
	getHistoryFn    func(ctx context.Context, docID string) (domain.LineageHistory, error)
	softDeleteFn    func(ctx context.Context, docID string) error

	retired  []string
	inserted []insertedVersion
}

type insertedVersion struct {
	doc    domain.Document
	chunks []domain.Chunk
}

func (m *mockCorpus) FindCurrentByFilename(ctx context.Context, filename string) (domain.Document, bool, error) {
	if m.findCurrentFn != nil {
		return m.findCurrentFn(ctx, filename)
	}
	return domain.Document{}, false, nil
}

func (m *mockCorpus) RetireLineage(ctx context.Context, lineageGroupID string) error {
	m.retired = append(m.retired, lineageGroupID)
	if m.retireLineageFn != nil {
		return m.retireLineageFn(ctx, lineageGroupID)
	}
	return nil
}

func (m *mockCorpus) InsertVersion(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	m.inserted = append(m.inserted, insertedVersion{doc: *doc, chunks: chunks})
	if m.insertVersionFn != nil {
		return m.insertVersionFn(ctx, doc, chunks)
	}
	return nil
}

func (m *mockCorpus) ListCurrent(ctx context.Context) ([]domain.DocumentListing, error) {
	if m.listCurrentFn != nil {
		return m.listCurrentFn(ctx)
	}
	return []domain.DocumentListing{}, nil
}

func (m *mockCorpus) GetLineageHistory(ctx context.Context, docID string) (domain.LineageHistory, error) {
	if m.getHistoryFn != nil {
		return m.getHistoryFn(ctx, docID)
	}
	return domain.LineageHistory{}, domain.ErrNotFound
}

func (m *mockCorpus) SoftDelete(ctx context.Context, docID string) error {
	if m.softDeleteFn != nil {
		return m.softDeleteFn(ctx, docID)
	}
	return nil
}

func newTestService(t *testing.T) (*Service, *mockCorpus) {
	t.Helper()
	mc := &mockCorpus{}
	svc := New(mc, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC) }
	seq := 0
	svc.newID = func() string {
		seq++
		return fmt.Sprintf("id-%d", seq)
	}
	return svc, mc
}

func adminIdentity() domain.Identity {
	return domain.Identity{WorkspaceID: "ws-1", Username: "alice", Role: domain.RoleAdmin}
}

func analystIdentity() domain.Identity {
	return domain.Identity{WorkspaceID: "ws-1", Username: "bob", Role: "analyst"}
}

func testAnalysis(t *testing.T, filename string, nChunks int) *domain.Analysis {
	t.Helper()
	a := &domain.Analysis{
		Filename: filename,
		Intelligence: domain.Extraction{
			DocumentIntent: "quarterly review",
			Topics:         []string{"revenue"},
		},
		Summaries: domain.Summaries{
			ExecutiveSummary: "Revenue grew.",
			TechnicalSummary: "Detail in tables.",
			SectionSummaries: []domain.SectionSummary{
				{SectionHeader: "Overview", SummaryText: "Intro section."},
			},
		},
	}
	for i := 0; i < nChunks; i++ {
		a.RawChunks = append(a.RawChunks, "Overview of segment results.")
		a.Embeddings = append(a.Embeddings, []float32{0.1, 0.2, 0.3})
	}
	return a
}
