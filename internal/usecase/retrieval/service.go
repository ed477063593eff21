// Package retrieval answers free-text questions against a tenant's current
// document chunks: metadata-filtered similarity search plus answer generation.
package retrieval

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/alphadoc-ai/alphadoc/internal/domain"
	"github.com/alphadoc-ai/alphadoc/internal/metrics"
)

// DefaultTopK is the chunk count retrieved per query when not configured.
const DefaultTopK = 8

// NoResultsAnswer is returned without a model call when retrieval finds no
// matching current chunks.
const NoResultsAnswer = "No matching document content was found for this query."

// dashboardQuery replaces the literal query text in dashboard mode; the
// briefing always covers the same ground regardless of what was asked.
const dashboardQuery = "key decisions, risks, deadlines, stakeholders, obligations, and primary themes"

// Service is the retrieval engine for one tenant.
type Service struct {
	search Searcher
	docs   DocumentReader
	model  Model
	log    *zap.Logger
	topK   int
}

// New creates a retrieval service.
func New(search Searcher, docs DocumentReader, model Model, log *zap.Logger) *Service {
	return &Service{
		search: search,
		docs:   docs,
		model:  model,
		log:    log,
		topK:   DefaultTopK,
	}
}

// WithTopK overrides the retrieved chunk count.
func (s *Service) WithTopK(k int) *Service {
	if k > 0 {
		s.topK = k
	}
	return s
}

// Answer produces a grounded natural-language answer for a query in the given
// mode. Retired document versions never contribute: the currency filter is
// applied on every search regardless of what the translated filter says.
func (s *Service) Answer(ctx context.Context, query string, mode domain.RetrievalMode) (string, error) {
	start := time.Now()
	answer, err := s.answer(ctx, query, mode)

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RetrievalRequestsTotal.WithLabelValues(string(mode), status).Inc()
	metrics.RetrievalDuration.WithLabelValues(string(mode)).Observe(time.Since(start).Seconds())
	return answer, err
}

func (s *Service) answer(ctx context.Context, query string, mode domain.RetrievalMode) (string, error) {
	if mode != domain.ModeSearch && mode != domain.ModeDashboard {
		return "", fmt.Errorf("%w: unknown retrieval mode %q", domain.ErrInvalidInput, mode)
	}

	effective := query
	if mode == domain.ModeDashboard {
		effective = dashboardQuery
	}
	if effective == "" {
		return "", fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}

	filters, err := s.translateFilters(ctx, effective)
	if err != nil {
		return "", err
	}

	vectors, err := s.model.EmbedBatch(ctx, []string{effective})
	if err != nil {
		return "", fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) != 1 {
		return "", domain.NewModelError("malformed_response",
			fmt.Errorf("expected one query embedding, got %d", len(vectors)))
	}

	hits, err := s.search.Chunks(ctx, vectors[0], filters, s.topK)
	if err != nil {
		return "", fmt.Errorf("chunk search: %w", err)
	}
	if len(hits) == 0 {
		s.log.Info("retrieval found no matching chunks",
			zap.String("mode", string(mode)))
		return NoResultsAnswer, nil
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	contextBlock, err := s.buildContext(ctx, hits)
	if err != nil {
		return "", err
	}

	answer, err := s.model.Generate(ctx, answerPrompt(mode, query, contextBlock))
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}

	s.log.Info("retrieval answered",
		zap.String("mode", string(mode)),
		zap.Int("chunks", len(hits)),
	)
	return answer, nil
}

func answerPrompt(mode domain.RetrievalMode, query, contextBlock string) string {
	instruction := searchInstruction(query)
	if mode == domain.ModeDashboard {
		instruction = dashboardInstruction
	}
	return instruction + `

Cite the source filename and section for every claim. Use only the document
context below; say so when the context does not cover the question.

DOCUMENT CONTEXT:
` + contextBlock
}

func searchInstruction(query string) string {
	return "Answer the question using the document context.\n\nQuestion: " + query
}

const dashboardInstruction = `Produce an executive briefing from the document context, covering:
1. Key decisions and risks.
2. Stakeholders and their obligations.
3. Primary themes across the documents.`
