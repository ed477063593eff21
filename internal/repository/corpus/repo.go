// Package corpus is the storage gateway for the two per-tenant collections:
// parent document records and their chunk children.
package corpus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/alphadoc-ai/alphadoc/internal/db"
	"github.com/alphadoc-ai/alphadoc/internal/domain"
)

// maxScan bounds key listing queries against a tenant collection.
const maxScan = 10000

// store is the consumer interface for corpus persistence.
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*db.SearchResult, error)
}

// Repo performs the atomic-per-collection persistence operations against one
// tenant store. The chunk index name varies per workspace; the document index
// name does not.
type Repo struct {
	store          store
	chunkIndexName string
}

// New creates a corpus repository bound to a tenant store.
func New(s store, chunkIndexName string) *Repo {
	return &Repo{store: s, chunkIndexName: chunkIndexName}
}

func (r *Repo) chunkIndex() string {
	return r.chunkIndexName
}

// InsertVersion writes one parent record then all child records. The two
// writes are not transactional across collections: if the parent write
// succeeds and the children write fails, the version claims chunk coverage it
// does not have, and the caller must treat the submission as failed and
// re-submit rather than attempt partial recovery.
func (r *Repo) InsertVersion(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	parentData, err := json.Marshal(toDocumentRecord(doc))
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	if err := r.store.JSONSet(ctx, docKeyPrefix+doc.ID, "$", parentData); err != nil {
		return fmt.Errorf("%w: insert document %s: %w", domain.ErrStorageFailure, doc.ID, err)
	}

	items := make([]db.JSONSetItem, 0, len(chunks))
	for i := range chunks {
		data, err := json.Marshal(toChunkRecord(&chunks[i]))
		if err != nil {
			return fmt.Errorf("marshal chunk %d: %w", chunks[i].ChunkIndex, err)
		}
		items = append(items, db.JSONSetItem{
			Key:  chunkKeyPrefix + chunks[i].ID,
			Path: "$",
			Data: data,
		})
	}

	if err := r.store.JSONSetMulti(ctx, items); err != nil {
		return fmt.Errorf("%w: insert chunks for document %s (re-submission required): %w",
			domain.ErrStorageFailure, doc.ID, err)
	}
	return nil
}

// ListCurrent returns id/filename/upload-date triples for every document with
// is_current = true, newest first.
func (r *Repo) ListCurrent(ctx context.Context) ([]domain.DocumentListing, error) {
	query := db.TagQuery("is_current", "true")
	result, err := r.store.SearchList(ctx, docIndexName, query, 0, maxScan,
		[]string{"$.filename", "$.upload_date"})
	if err != nil {
		return nil, fmt.Errorf("%w: list current documents: %w", domain.ErrStorageFailure, err)
	}
	if result == nil || result.Total == 0 {
		return []domain.DocumentListing{}, nil
	}

	listings := make([]domain.DocumentListing, 0, len(result.Entries))
	for _, entry := range result.Entries {
		listings = append(listings, domain.DocumentListing{
			ID:         strings.TrimPrefix(entry.Key, docKeyPrefix),
			Filename:   entry.Fields["$.filename"],
			UploadDate: entry.Fields["$.upload_date"],
		})
	}

	// RFC3339 timestamps order lexicographically.
	sort.Slice(listings, func(i, j int) bool {
		return listings[i].UploadDate > listings[j].UploadDate
	})
	return listings, nil
}

// GetDocument loads one parent record by id.
func (r *Repo) GetDocument(ctx context.Context, docID string) (domain.Document, error) {
	raw, err := r.store.JSONGet(ctx, docKeyPrefix+docID, "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.Document{}, fmt.Errorf("document %s: %w", docID, domain.ErrNotFound)
		}
		return domain.Document{}, fmt.Errorf("%w: get document %s: %w", domain.ErrStorageFailure, docID, err)
	}

	var records []documentRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return domain.Document{}, fmt.Errorf("%w: decode document %s: %w", domain.ErrStorageFailure, docID, err)
	}
	if len(records) == 0 {
		return domain.Document{}, fmt.Errorf("document %s: %w", docID, domain.ErrNotFound)
	}
	return records[0].toDomain(), nil
}

// FindCurrentByFilename returns the active document carrying a filename, if
// any. At most one exists per lineage group; if independent lineages share
// the filename, the newest upload wins for collision detection.
func (r *Repo) FindCurrentByFilename(ctx context.Context, filename string) (domain.Document, bool, error) {
	query := db.TagQuery("filename", filename) + " " + db.TagQuery("is_current", "true")
	result, err := r.store.SearchList(ctx, docIndexName, query, 0, maxScan, []string{"$"})
	if err != nil {
		return domain.Document{}, false, fmt.Errorf("%w: find current %q: %w", domain.ErrStorageFailure, filename, err)
	}
	if result == nil || result.Total == 0 {
		return domain.Document{}, false, nil
	}

	docs := make([]domain.Document, 0, len(result.Entries))
	for _, entry := range result.Entries {
		rec, err := decodeDocumentEntry(entry.Fields["$"])
		if err != nil {
			return domain.Document{}, false, fmt.Errorf("%w: decode %s: %w", domain.ErrStorageFailure, entry.Key, err)
		}
		docs = append(docs, rec)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].UploadDate > docs[j].UploadDate })
	return docs[0], true, nil
}

// GetLineageHistory reconstructs the denormalized full view of one version:
// the parent metadata joined with annotations concatenated across its chunks
// in chunk-index order, section summaries deduplicated on first occurrence.
func (r *Repo) GetLineageHistory(ctx context.Context, docID string) (domain.LineageHistory, error) {
	parent, err := r.GetDocument(ctx, docID)
	if err != nil {
		return domain.LineageHistory{}, err
	}

	chunks, err := r.chunksByParent(ctx, docID)
	if err != nil {
		return domain.LineageHistory{}, err
	}

	history := domain.LineageHistory{
		Filename:           parent.Filename,
		DocumentIntent:     parent.DocumentIntent,
		MajorThemes:        parent.MajorThemes,
		ExecutiveSummary:   parent.ExecutiveSummary,
		TechnicalSummary:   parent.TechnicalSummary,
		Entities:           []domain.Entity{},
		Relationships:      []domain.Relationship{},
		ActionableInsights: []domain.ActionableInsight{},
		SectionSummaries:   []domain.SectionSummary{},
	}

	seenHeaders := make(map[string]struct{})
	for _, c := range chunks {
		history.Entities = append(history.Entities, c.Entities...)
		history.Relationships = append(history.Relationships, c.Relationships...)
		history.ActionableInsights = append(history.ActionableInsights, c.ActionableInsights...)

		if c.SectionHeader == "" {
			continue
		}
		if _, seen := seenHeaders[c.SectionHeader]; seen {
			continue
		}
		seenHeaders[c.SectionHeader] = struct{}{}
		summary := c.SectionSummary
		if summary == "" {
			summary = "N/A"
		}
		history.SectionSummaries = append(history.SectionSummaries, domain.SectionSummary{
			SectionHeader: c.SectionHeader,
			SummaryText:   summary,
		})
	}

	return history, nil
}

// SoftDelete sets is_current = false on one parent and every chunk whose
// parent id matches, in a single pipelined batch. Rows are kept, other
// lineage members are untouched, and versions are not renumbered. The batch
// is not a cross-collection transaction: an interruption leaves a
// recoverable inconsistency that a re-run repairs (the flip is idempotent).
func (r *Repo) SoftDelete(ctx context.Context, docID string) error {
	if _, err := r.GetDocument(ctx, docID); err != nil {
		return err
	}

	chunkKeys, err := r.chunkKeysByParent(ctx, docID)
	if err != nil {
		return err
	}

	items := make([]db.JSONSetItem, 0, len(chunkKeys)+1)
	items = append(items, db.JSONSetItem{Key: docKeyPrefix + docID, Path: "$.is_current", Data: []byte("false")})
	for _, key := range chunkKeys {
		items = append(items, db.JSONSetItem{Key: key, Path: "$.is_current", Data: []byte("false")})
	}

	if err := r.store.JSONSetMulti(ctx, items); err != nil {
		return fmt.Errorf("%w: soft delete %s: %w", domain.ErrStorageFailure, docID, err)
	}
	return nil
}

// RetireLineage flips is_current to false on every document and every chunk
// in a lineage group. Re-running it is a no-op, so an interrupted
// retire-then-insert sequence can be retried safely up to the insert.
func (r *Repo) RetireLineage(ctx context.Context, lineageGroupID string) error {
	query := db.TagQuery("lineage_group_id", lineageGroupID)

	docKeys, err := r.searchKeys(ctx, docIndexName, query)
	if err != nil {
		return fmt.Errorf("%w: list lineage documents %s: %w", domain.ErrStorageFailure, lineageGroupID, err)
	}
	chunkKeys, err := r.searchKeys(ctx, r.chunkIndex(), query)
	if err != nil {
		return fmt.Errorf("%w: list lineage chunks %s: %w", domain.ErrStorageFailure, lineageGroupID, err)
	}

	if len(docKeys) == 0 && len(chunkKeys) == 0 {
		return nil
	}

	items := make([]db.JSONSetItem, 0, len(docKeys)+len(chunkKeys))
	for _, key := range append(docKeys, chunkKeys...) {
		items = append(items, db.JSONSetItem{Key: key, Path: "$.is_current", Data: []byte("false")})
	}

	if err := r.store.JSONSetMulti(ctx, items); err != nil {
		return fmt.Errorf("%w: retire lineage %s: %w", domain.ErrStorageFailure, lineageGroupID, err)
	}
	return nil
}

func (r *Repo) chunksByParent(ctx context.Context, parentID string) ([]domain.Chunk, error) {
	query := db.TagQuery("parent_doc_id", parentID)
	result, err := r.store.SearchList(ctx, r.chunkIndex(), query, 0, maxScan, []string{"$"})
	if err != nil {
		return nil, fmt.Errorf("%w: list chunks of %s: %w", domain.ErrStorageFailure, parentID, err)
	}
	if result == nil || result.Total == 0 {
		return []domain.Chunk{}, nil
	}

	chunks := make([]domain.Chunk, 0, len(result.Entries))
	for _, entry := range result.Entries {
		var records []chunkRecord
		if err := json.Unmarshal([]byte(entry.Fields["$"]), &records); err != nil {
			return nil, fmt.Errorf("%w: decode chunk %s: %w", domain.ErrStorageFailure, entry.Key, err)
		}
		if len(records) == 0 {
			continue
		}
		chunks = append(chunks, records[0].toDomain())
	}

	sort.Slice(chunks, func(i, j int) bool { return chunks[i].ChunkIndex < chunks[j].ChunkIndex })
	return chunks, nil
}

func (r *Repo) chunkKeysByParent(ctx context.Context, parentID string) ([]string, error) {
	keys, err := r.searchKeys(ctx, r.chunkIndex(), db.TagQuery("parent_doc_id", parentID))
	if err != nil {
		return nil, fmt.Errorf("%w: list chunk keys of %s: %w", domain.ErrStorageFailure, parentID, err)
	}
	return keys, nil
}

func (r *Repo) searchKeys(ctx context.Context, index, query string) ([]string, error) {
	result, err := r.store.SearchList(ctx, index, query, 0, maxScan, []string{"$.id"})
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}
	keys := make([]string, 0, len(result.Entries))
	for _, entry := range result.Entries {
		keys = append(keys, entry.Key)
	}
	return keys, nil
}

func decodeDocumentEntry(raw string) (domain.Document, error) {
	var records []documentRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return domain.Document{}, err
	}
	if len(records) == 0 {
		return domain.Document{}, errors.New("empty document entry")
	}
	return records[0].toDomain(), nil
}
