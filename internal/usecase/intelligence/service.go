// Package intelligence runs the LLM analysis pipeline for one document:
// semantic extraction, actionable insights, summaries, and chunk embeddings.
package intelligence

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/alphadoc-ai/alphadoc/internal/domain"
)

// Service orchestrates the per-document model calls.
type Service struct {
	model Model
	log   *zap.Logger
}

// New creates an intelligence service.
func New(model Model, log *zap.Logger) *Service {
	return &Service{model: model, log: log}
}

// Analyze produces the full analysis bundle for a document that has already
// been converted to text chunks upstream. Model failures carry the domain
// model-error classification from the client.
func (s *Service) Analyze(ctx context.Context, filename string, chunks []string) (*domain.Analysis, error) {
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: no text chunks", domain.ErrInvalidInput)
	}

	indexed := indexedText(chunks)

	var extraction domain.Extraction
	if err := s.model.GenerateJSON(ctx, extractionPrompt(indexed), &extraction); err != nil {
		return nil, fmt.Errorf("semantic extraction: %w", err)
	}

	var insights domain.InsightList
	if err := s.model.GenerateJSON(ctx, insightsPrompt(indexed), &insights); err != nil {
		return nil, fmt.Errorf("insight extraction: %w", err)
	}

	var summaries domain.Summaries
	if err := s.model.GenerateJSON(ctx, summariesPrompt(indexed), &summaries); err != nil {
		return nil, fmt.Errorf("summarization: %w", err)
	}

	embeddings, err := s.model.EmbedBatch(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("chunk embedding: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return nil, domain.NewModelError("malformed_response",
			fmt.Errorf("expected %d embeddings, got %d", len(chunks), len(embeddings)))
	}

	s.log.Info("document analyzed",
		zap.String("filename", filename),
		zap.Int("chunks", len(chunks)),
		zap.Int("entities", len(extraction.Entities)),
		zap.Int("insights", len(insights.Insights)),
	)

	return &domain.Analysis{
		Filename:     filename,
		Intelligence: extraction,
		Insights:     insights,
		Summaries:    summaries,
		RawChunks:    chunks,
		Embeddings:   embeddings,
	}, nil
}

// indexedText renders the chunks with their indices so the model can key
// annotations by chunk_index.
func indexedText(chunks []string) string {
	var b strings.Builder
	for i, text := range chunks {
		fmt.Fprintf(&b, "[CHUNK %d]\n%s\n\n", i, text)
	}
	return b.String()
}

func extractionPrompt(indexed string) string {
	return `Analyze the document below. Return a JSON object with keys:
"document_intent" (string), "topics" (array of strings),
"entities" (array of {"chunk_index","name","type"}),
"relationships" (array of {"chunk_index","subject","relation","object"}).
Entity types include Organization, Date, Monetary Value, Legal Reference, Stakeholder.
chunk_index must reference the chunk the item was found in.

` + indexed
}

func insightsPrompt(indexed string) string {
	return `Extract actionable insights (risks, deadlines, decisions, recommendations)
from the document below. Return a JSON object with key "insights": array of
{"chunk_index","type","description","entities","date_or_value"}.
For a chunk with nothing actionable emit one entry with type "N/A".

` + indexed
}

func summariesPrompt(indexed string) string {
	return `Summarize the document below. Return a JSON object with keys:
"executive_summary" (string), "technical_summary" (string),
"section_summaries" (array of {"section_header","summary_text"} covering the
document's sections in reading order).

` + indexed
}
