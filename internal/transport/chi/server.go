// Package chi is the HTTP transport: thin handlers over the per-workspace
// use cases, identity extraction, and sentinel-error to status mapping.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/alphadoc-ai/alphadoc/internal/domain"
	"github.com/alphadoc-ai/alphadoc/internal/metrics"
	"github.com/alphadoc-ai/alphadoc/internal/repository/corpus"
	"github.com/alphadoc-ai/alphadoc/internal/repository/workspace"
	"github.com/alphadoc-ai/alphadoc/internal/usecase/ingest"
	"github.com/alphadoc-ai/alphadoc/internal/usecase/intelligence"
	"github.com/alphadoc-ai/alphadoc/internal/usecase/retrieval"
)

// ModelClient is the per-workspace language-model client surface.
type ModelClient interface {
	GenerateJSON(ctx context.Context, prompt string, out any) error
	Generate(ctx context.Context, prompt string) (string, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// ModelFactory binds a workspace credential to a model client.
type ModelFactory func(apiKey string) ModelClient

// tenantResolver is the consumer interface for workspace resolution.
type tenantResolver interface {
	Resolve(ctx context.Context, workspaceID string) (workspace.Handle, error)
}

// pinger reports system-store liveness for the health endpoint.
type pinger interface {
	Ping(ctx context.Context) error
}

// workspaceRegistrar persists workspace registrations in the system store.
type workspaceRegistrar interface {
	Save(ctx context.Context, ws domain.Workspace) error
}

// Server wires HTTP requests to per-workspace services.
type Server struct {
	workspaces tenantResolver
	newModel   ModelFactory
	system     pinger
	registrar  workspaceRegistrar
	logger     *zap.Logger
	topK       int
}

// NewServer creates the HTTP API server.
func NewServer(workspaces tenantResolver, newModel ModelFactory, system pinger, logger *zap.Logger) *Server {
	return &Server{
		workspaces: workspaces,
		newModel:   newModel,
		system:     system,
		logger:     logger,
		topK:       retrieval.DefaultTopK,
	}
}

// WithTopK overrides the retrieval chunk count.
func (s *Server) WithTopK(k int) *Server {
	if k > 0 {
		s.topK = k
	}
	return s
}

// WithRegistrar enables the workspace registration endpoint.
func (s *Server) WithRegistrar(r workspaceRegistrar) *Server {
	s.registrar = r
	return s
}

// Router builds the HTTP routing table.
func (s *Server) Router() http.Handler {
	r := chirouter.NewRouter()
	r.Use(metrics.Middleware())

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chirouter.Router) {
		r.Use(IdentityMiddleware())
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/documents", s.handleStore)
		r.Get("/history", s.handleListCurrent)
		r.Get("/history/{docID}", s.handleHistory)
		r.Post("/search", s.handleSearch)
		r.Get("/dashboard/latest", s.handleDashboard)
		r.Delete("/documents/version/{docID}", s.handleDelete)
		if s.registrar != nil {
			r.Post("/workspaces", s.handleRegisterWorkspace)
		}
	})

	return r
}

// --- document lifecycle ---

// handleAnalyze runs the model pipeline over pre-extracted text chunks and
// returns the analysis bundle for review; nothing is persisted.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Filename == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "filename is required")
		return
	}

	identity, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing identity")
		return
	}

	model, err := s.workspaceModel(r.Context(), identity)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	analysis, err := intelligence.New(model, s.logger).Analyze(r.Context(), req.Filename, req.Chunks)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, analysis)
}

// handleStore commits a reviewed analysis as a new document version.
func (s *Server) handleStore(w http.ResponseWriter, r *http.Request) {
	var req storeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Analysis.Filename == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "analysis.filename is required")
		return
	}

	identity, svc, err := s.ingestService(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	doc, err := svc.Store(r.Context(), identity, &req.Analysis, ingest.Options{
		ConfirmUpdate: req.ConfirmUpdate,
		ForceNew:      req.ForceNew,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, storeResponse{
		ID:             doc.ID,
		LineageGroupID: doc.LineageGroupID,
		Filename:       doc.Filename,
		Version:        doc.Version,
		UploadDate:     doc.UploadDate,
	})
}

// handleListCurrent returns the active documents, newest first.
func (s *Server) handleListCurrent(w http.ResponseWriter, r *http.Request) {
	_, svc, err := s.ingestService(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	listings, err := svc.ListCurrent(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listings)
}

// handleHistory returns the denormalized full view of one document version.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	docID := chirouter.URLParam(r, "docID")

	_, svc, err := s.ingestService(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	history, err := svc.History(r.Context(), docID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

// handleDelete soft-deletes one document version.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	docID := chirouter.URLParam(r, "docID")

	identity, svc, err := s.ingestService(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	if err := svc.Delete(r.Context(), identity, docID); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRegisterWorkspace registers a tenant workspace in the system store.
// Admin only.
func (s *Server) handleRegisterWorkspace(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing identity")
		return
	}
	if !identity.Elevated() {
		s.handleDomainError(w, domain.ErrForbidden)
		return
	}

	var req workspaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.WorkspaceID == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "workspace_id is required")
		return
	}
	if len(req.TenantAddrs) == 0 {
		writeError(w, http.StatusBadRequest, codeBadRequest, "tenant_addrs is required")
		return
	}

	ws := domain.Workspace{
		ID:              req.WorkspaceID,
		Name:            req.Name,
		TenantAddrs:     req.TenantAddrs,
		TenantUsername:  req.TenantUsername,
		TenantPassword:  req.TenantPassword,
		TenantDB:        req.TenantDB,
		VectorIndexName: req.VectorIndexName,
		ModelAPIKey:     req.ModelAPIKey,
	}
	if err := s.registrar.Save(r.Context(), ws); err != nil {
		s.handleDomainError(w, err)
		return
	}

	s.logger.Info("workspace registered",
		zap.String("workspace_id", ws.ID),
		zap.String("registered_by", identity.Username),
	)
	writeJSON(w, http.StatusCreated, workspaceResponse{WorkspaceID: ws.ID})
}

// --- retrieval ---

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}
	s.answer(w, r, req.Query, domain.ModeSearch)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.answer(w, r, "", domain.ModeDashboard)
}

func (s *Server) answer(w http.ResponseWriter, r *http.Request, query string, mode domain.RetrievalMode) {
	svc, err := s.retrievalService(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	answer, err := svc.Answer(r.Context(), query, mode)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answerResponse{Answer: answer, Mode: string(mode)})
}

// --- health ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.system.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- per-workspace wiring ---

func (s *Server) ingestService(ctx context.Context) (domain.Identity, *ingest.Service, error) {
	identity, ok := identityFrom(ctx)
	if !ok {
		return domain.Identity{}, nil, domain.ErrUnauthorized
	}
	handle, err := s.workspaces.Resolve(ctx, identity.WorkspaceID)
	if err != nil {
		return domain.Identity{}, nil, err
	}
	repo := corpus.New(handle.Store, handle.IndexName)
	return identity, ingest.New(repo, s.logger), nil
}

func (s *Server) retrievalService(ctx context.Context) (*retrieval.Service, error) {
	identity, ok := identityFrom(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	handle, err := s.workspaces.Resolve(ctx, identity.WorkspaceID)
	if err != nil {
		return nil, err
	}
	if handle.ModelAPIKey == "" {
		return nil, domain.ErrConfigurationMissing
	}
	model := s.newModel(handle.ModelAPIKey)
	search := corpus.NewSearch(handle.Store, handle.IndexName)
	docs := corpus.New(handle.Store, handle.IndexName)
	return retrieval.New(search, docs, model, s.logger).WithTopK(s.topK), nil
}

func (s *Server) workspaceModel(ctx context.Context, identity domain.Identity) (ModelClient, error) {
	handle, err := s.workspaces.Resolve(ctx, identity.WorkspaceID)
	if err != nil {
		return nil, err
	}
	if handle.ModelAPIKey == "" {
		return nil, domain.ErrConfigurationMissing
	}
	return s.newModel(handle.ModelAPIKey), nil
}

// --- error mapping ---

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	var conflict *domain.ConflictError
	if errors.As(err, &conflict) {
		writeJSON(w, http.StatusConflict, errorResponse{
			Code:     codeConflict,
			Message:  conflict.Error(),
			Filename: conflict.Filename,
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, codeForbidden, "insufficient role for this action")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, "document not found")
	case errors.Is(err, domain.ErrConfigurationMissing):
		writeError(w, http.StatusPreconditionRequired, codeConfigurationMissing,
			"workspace storage or model credential not configured")
	case errors.Is(err, domain.ErrUpstreamModel):
		s.logger.Warn("upstream model error", zap.Error(err))
		writeError(w, http.StatusBadGateway, codeUpstreamModel, "upstream model request failed")
	default:
		s.logger.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
