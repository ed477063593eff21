package corpus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alphadoc-ai/alphadoc/internal/db"
	"github.com/alphadoc-ai/alphadoc/internal/domain"
	"github.com/alphadoc-ai/alphadoc/internal/domain/filter"
)

// searcher is the consumer interface for chunk vector search.
type searcher interface {
	SearchKNN(ctx context.Context, query *db.KNNQuery) (*db.SearchResult, error)
}

// Search is the vector-retrieval half of the corpus gateway.
type Search struct {
	store          searcher
	chunkIndexName string
}

// NewSearch creates a chunk searcher bound to a tenant store.
func NewSearch(s searcher, chunkIndexName string) *Search {
	return &Search{store: s, chunkIndexName: chunkIndexName}
}

// Chunks runs a KNN query against the chunk collection under the given
// pre-filter expression and returns up to k hits with their similarity scores.
func (s *Search) Chunks(ctx context.Context, vector []float32, filters filter.Expression, k int) ([]domain.ScoredChunk, error) {
	result, err := s.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    s.chunkIndexName,
		Filters:      filters,
		Vector:       vector,
		K:            k,
		ReturnFields: []string{"$", "__embedding_score"},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: chunk search: %w", domain.ErrStorageFailure, err)
	}
	if result == nil || result.Total == 0 {
		return []domain.ScoredChunk{}, nil
	}

	hits := make([]domain.ScoredChunk, 0, len(result.Entries))
	for _, entry := range result.Entries {
		var records []chunkRecord
		if err := json.Unmarshal([]byte(entry.Fields["$"]), &records); err != nil {
			return nil, fmt.Errorf("%w: decode chunk %s: %w", domain.ErrStorageFailure, entry.Key, err)
		}
		if len(records) == 0 {
			continue
		}
		hits = append(hits, domain.ScoredChunk{Chunk: records[0].toDomain(), Score: entry.Score})
	}
	return hits, nil
}
