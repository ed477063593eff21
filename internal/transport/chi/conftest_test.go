package chi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/alphadoc-ai/alphadoc/internal/db"
	"github.com/alphadoc-ai/alphadoc/internal/domain"
	"github.com/alphadoc-ai/alphadoc/internal/repository/workspace"
)

// mockStore implements the db.Store facade for tests.
type mockStore struct {
	pingFn         func(ctx context.Context) error
	jsonSetFn      func(ctx context.Context, key, path string, data []byte) error
	jsonSetMultiFn func(ctx context.Context, items []db.JSONSetItem) error
	jsonGetFn      func(ctx context.Context, key string, paths ...string) ([]byte, error)
	searchListFn   func(
		ctx context.Context, index, query string, offset, limit int, fields []string,
	) (*db.SearchResult, error)
	searchKNNFn func(ctx context.Context, query *db.KNNQuery) (*db.SearchResult, error)
}

func (m *mockStore) Ping(ctx context.Context) error {
	if m.pingFn != nil {
		return m.pingFn(ctx)
	}
	return nil
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

func (m *mockStore) Del(ctx context.Context, key string) error { return nil }

func (m *mockStore) Exists(ctx context.Context, key string) (bool, error) {
	return false, nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error { return nil }

func (m *mockStore) DropIndex(ctx context.Context, name string) error { return nil }

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) { return true, nil }

func (m *mockStore) SearchKNN(ctx context.Context, query *db.KNNQuery) (*db.SearchResult, error) {
	if m.searchKNNFn != nil {
		return m.searchKNNFn(ctx, query)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) SearchList(
	ctx context.Context, index, query string, offset, limit int, fields []string,
) (*db.SearchResult, error) {
	if m.searchListFn != nil {
		return m.searchListFn(ctx, index, query, offset, limit, fields)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) SearchCount(ctx context.Context, index, query string) (int, error) {
	return 0, nil
}

func (m *mockStore) Close() {}

func (m *mockStore) WaitForReady(ctx context.Context, timeout time.Duration) error { return nil }

// mockResolver implements the tenantResolver contract for tests.
type mockResolver struct {
	resolveFn func(ctx context.Context, workspaceID string) (workspace.Handle, error)
}

func (m *mockResolver) Resolve(ctx context.Context, workspaceID string) (workspace.Handle, error) {
	if m.resolveFn != nil {
		return m.resolveFn(ctx, workspaceID)
	}
	return workspace.Handle{}, nil
}

// mockModel implements the ModelClient contract for tests.
type mockModel struct {
	generateJSONFn func(ctx context.Context, prompt string, out any) error
	generateFn     func(ctx context.Context, prompt string) (string, error)
	embedBatchFn   func(ctx context.Context, texts []string) ([][]float32, error)
}

func (m *mockModel) GenerateJSON(ctx context.Context, prompt string, out any) error {
	if m.generateJSONFn != nil {
		return m.generateJSONFn(ctx, prompt, out)
	}
	return json.Unmarshal([]byte(`{"filters":[]}`), out)
}

func (m *mockModel) Generate(ctx context.Context, prompt string) (string, error) {
	if m.generateFn != nil {
		return m.generateFn(ctx, prompt)
	}
	return "answer", nil
}

func (m *mockModel) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if m.embedBatchFn != nil {
		return m.embedBatchFn(ctx, texts)
	}
	vectors := make([][]float32, len(texts))
	for i := range vectors {
		vectors[i] = []float32{0.1, 0.2}
	}
	return vectors, nil
}

// mockRegistrar records saved workspace registrations.
type mockRegistrar struct {
	saveFn func(ctx context.Context, ws domain.Workspace) error

	saved []domain.Workspace
}

func (m *mockRegistrar) Save(ctx context.Context, ws domain.Workspace) error {
	m.saved = append(m.saved, ws)
	if m.saveFn != nil {
		return m.saveFn(ctx, ws)
	}
	return nil
}

func newTestServer(t *testing.T, store *mockStore, model *mockModel) *Server {
	t.Helper()
	resolver := &mockResolver{
		resolveFn: func(_ context.Context, _ string) (workspace.Handle, error) {
			return workspace.Handle{Store: store, IndexName: "vector_index", ModelAPIKey: "sk-test"}, nil
		},
	}
	return NewServer(resolver, func(string) ModelClient { return model }, store, zap.NewNop())
}

func doRequest(t *testing.T, handler http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func identityHeaders(role string) map[string]string {
	return map[string]string{
		headerWorkspaceID: "ws-1",
		headerUsername:    "alice",
		headerRole:        role,
	}
}
