package corpus

import (
	"context"
	"errors"
	"fmt"

	"github.com/alphadoc-ai/alphadoc/internal/db"
)

// Key and index names for the two per-tenant collections.
const (
	docKeyPrefix   = "alphadoc:documents:"
	chunkKeyPrefix = "alphadoc:chunks:"
	docIndexName   = "alphadoc:documents:idx"
)

// IndexSettings control the chunk vector field.
type IndexSettings struct {
	VectorDim       int
	HNSWM           int
	HNSWEFConstruct int
}

// DocumentIndex defines the FT index over parent document records.
func DocumentIndex() *db.IndexDefinition {
	return db.NewIndex(docIndexName).
		Prefix(docKeyPrefix).
		Tag("$.filename").As("filename").
		Tag("$.lineage_group_id").As("lineage_group_id").
		Tag("$.is_current").As("is_current").
		Tag("$.upload_date").As("upload_date").
		Numeric("$.version").As("version").
		MustBuild()
}

// ChunkIndex defines the FT index over chunk records, including the vector
// field and every attribute of the structured-filter catalog.
func ChunkIndex(indexName string, s IndexSettings) *db.IndexDefinition {
	return db.NewIndex(indexName).
		Prefix(chunkKeyPrefix).
		Tag("$.lineage_group_id").As("lineage_group_id").
		Tag("$.parent_doc_id").As("parent_doc_id").
		Tag("$.is_current").As("is_current").
		Tag("$.section_header").As("section_header").
		Tag("$.insight_types[*]").As("insight_types").
		Tag("$.entities[*].name").As("entities_name").
		Tag("$.entities[*].type").As("entities_type").
		Tag("$.relationships[*].relation").As("relationships_relation").
		Numeric("$.chunk_index").As("chunk_index").
		Numeric("$.version").As("version").
		VectorHNSW("$.embedding", s.VectorDim, db.DistanceCosine, s.HNSWM, s.HNSWEFConstruct).As("embedding").
		MustBuild()
}

// EnsureIndexes creates both collection indexes on a tenant store if absent.
func EnsureIndexes(ctx context.Context, store db.Store, indexName string, s IndexSettings) error {
	for _, def := range []*db.IndexDefinition{DocumentIndex(), ChunkIndex(indexName, s)} {
		if err := store.CreateIndex(ctx, def); err != nil {
			if errors.Is(err, db.ErrIndexExists) {
				continue
			}
			return fmt.Errorf("create index %s: %w", def.Name, err)
		}
	}
	return nil
}
