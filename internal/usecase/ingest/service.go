// Package ingest implements the document lifecycle: lineage decisions,
// chunk annotation, the retire-then-insert commit, listing, and removal.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alphadoc-ai/alphadoc/internal/domain"
	"github.com/alphadoc-ai/alphadoc/internal/metrics"
)

// Options carries the caller's explicit choice for a filename collision.
type Options struct {
	ConfirmUpdate bool
	ForceNew      bool
}

// Service handles document version commits against one tenant corpus.
type Service struct {
	corpus Corpus
	log    *zap.Logger

	now   func() time.Time
	newID func() string
}

// New creates an ingest service.
func New(corpus Corpus, log *zap.Logger) *Service {
	return &Service{
		corpus: corpus,
		log:    log,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Store decides the lineage action for a submission, annotates its chunks,
// and commits the new version. On an accepted update the superseded lineage
// members are retired before the insert; the two stages are not atomic, so a
// failure in between leaves the group with zero active versions until the
// insert is retried.
func (s *Service) Store(
	ctx context.Context, identity domain.Identity, analysis *domain.Analysis, opts Options,
) (domain.Document, error) {
	if len(analysis.Embeddings) != len(analysis.RawChunks) {
		return domain.Document{}, fmt.Errorf(
			"%w: %d chunks but %d embeddings",
			domain.ErrInvalidInput, len(analysis.RawChunks), len(analysis.Embeddings),
		)
	}
	if len(analysis.RawChunks) == 0 {
		return domain.Document{}, fmt.Errorf("%w: no chunks", domain.ErrInvalidInput)
	}

	active, found, err := s.corpus.FindCurrentByFilename(ctx, analysis.Filename)
	if err != nil {
		return domain.Document{}, fmt.Errorf("lineage lookup: %w", err)
	}

	var (
		action         string
		lineageGroupID string
		version        int
		auditTrail     []domain.AuditEntry
	)
	switch {
	case !found:
		action = "new"
		lineageGroupID = s.newID()
		version = 1
	case opts.ForceNew:
		// Two independent lineages may share a filename.
		action = "force_new"
		lineageGroupID = s.newID()
		version = 1
	case !opts.ConfirmUpdate:
		return domain.Document{}, domain.NewConflict(analysis.Filename)
	case !identity.Elevated():
		return domain.Document{}, fmt.Errorf(
			"confirming a version replacement requires an elevated role: %w", domain.ErrForbidden,
		)
	default:
		action = "update"
		lineageGroupID = active.LineageGroupID
		version = active.Version + 1
		auditTrail = append(auditTrail, active.AuditTrail...)

		if err := s.corpus.RetireLineage(ctx, lineageGroupID); err != nil {
			return domain.Document{}, fmt.Errorf("retire lineage: %w", err)
		}
	}

	now := s.now().UTC().Format(time.RFC3339)
	doc := domain.Document{
		ID:               s.newID(),
		LineageGroupID:   lineageGroupID,
		Filename:         analysis.Filename,
		Version:          version,
		IsCurrent:        true,
		UploadDate:       now,
		Owner:            identity.Username,
		DocumentIntent:   analysis.Intelligence.DocumentIntent,
		MajorThemes:      analysis.Intelligence.Topics,
		ExecutiveSummary: analysis.Summaries.ExecutiveSummary,
		TechnicalSummary: analysis.Summaries.TechnicalSummary,
		AuditTrail: append(auditTrail, domain.AuditEntry{
			Action: action,
			User:   identity.Username,
			Time:   now,
		}),
	}

	chunks := assembleChunks(analysis, s.log)
	for i := range chunks {
		chunks[i].ID = s.newID()
		chunks[i].LineageGroupID = lineageGroupID
		chunks[i].ParentDocID = doc.ID
		chunks[i].Version = version
		chunks[i].IsCurrent = true
	}

	if err := s.corpus.InsertVersion(ctx, &doc, chunks); err != nil {
		return domain.Document{}, fmt.Errorf("insert version: %w", err)
	}

	metrics.DocumentsStoredTotal.WithLabelValues(action).Inc()
	metrics.ChunksStoredTotal.Add(float64(len(chunks)))
	s.log.Info("document version committed",
		zap.String("doc_id", doc.ID),
		zap.String("filename", doc.Filename),
		zap.String("action", action),
		zap.Int("version", version),
		zap.Int("chunks", len(chunks)),
	)
	return doc, nil
}

// ListCurrent returns the active documents, newest first.
func (s *Service) ListCurrent(ctx context.Context) ([]domain.DocumentListing, error) {
	return s.corpus.ListCurrent(ctx)
}

// History reconstructs the denormalized full view of one version.
func (s *Service) History(ctx context.Context, docID string) (domain.LineageHistory, error) {
	return s.corpus.GetLineageHistory(ctx, docID)
}

// Delete soft-deletes one document version and its chunks. Elevated role only.
func (s *Service) Delete(ctx context.Context, identity domain.Identity, docID string) error {
	if !identity.Elevated() {
		return fmt.Errorf("removing a version requires an elevated role: %w", domain.ErrForbidden)
	}
	if err := s.corpus.SoftDelete(ctx, docID); err != nil {
		return fmt.Errorf("soft delete: %w", err)
	}
	s.log.Info("document version soft-deleted",
		zap.String("doc_id", docID),
		zap.String("user", identity.Username),
	)
	return nil
}
