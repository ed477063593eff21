package workspace

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/alphadoc-ai/alphadoc/internal/db"
	"github.com/alphadoc-ai/alphadoc/internal/domain"
)

// mockJSONStore implements the registry's store interface.
type mockJSONStore struct {
	jsonSetFn func(ctx context.Context, key, path string, data []byte) error
	jsonGetFn func(ctx context.Context, key string, paths ...string) ([]byte, error)

	setKeys []string
}

func (m *mockJSONStore) JSONSet(ctx context.Context, key, path string, data []byte) error {
	m.setKeys = append(m.setKeys, key)
	if m.jsonSetFn != nil {
		return m.jsonSetFn(ctx, key, path, data)
	}
	return nil
}

func (m *mockJSONStore) JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error) {
	if m.jsonGetFn != nil {
		return m.jsonGetFn(ctx, key, paths...)
	}
	return nil, db.ErrKeyNotFound
}

// mockTenantStore satisfies db.Store for resolver tests. Methods the resolver
// never touches fail loudly if called.
type mockTenantStore struct {
	t      *testing.T
	closed bool
}

func newMockTenantStore(t *testing.T) *mockTenantStore {
	return &mockTenantStore{t: t}
}

func (m *mockTenantStore) Ping(context.Context) error { return nil }

func (m *mockTenantStore) Close() { m.closed = true }

func (m *mockTenantStore) WaitForReady(context.Context, time.Duration) error { return nil }

func (m *mockTenantStore) JSONSet(context.Context, string, string, []byte) error {
	m.t.Fatal("unexpected JSONSet")
	return nil
}

func (m *mockTenantStore) JSONSetMulti(context.Context, []db.JSONSetItem) error {
	m.t.Fatal("unexpected JSONSetMulti")
	return nil
}

func (m *mockTenantStore) JSONGet(context.Context, string, ...string) ([]byte, error) {
	m.t.Fatal("unexpected JSONGet")
	return nil, nil
}

func (m *mockTenantStore) Del(context.Context, string) error {
	m.t.Fatal("unexpected Del")
	return nil
}

func (m *mockTenantStore) Exists(context.Context, string) (bool, error) {
	m.t.Fatal("unexpected Exists")
	return false, nil
}

func (m *mockTenantStore) CreateIndex(context.Context, *db.IndexDefinition) error {
	m.t.Fatal("unexpected CreateIndex")
	return nil
}

func (m *mockTenantStore) DropIndex(context.Context, string) error {
	m.t.Fatal("unexpected DropIndex")
	return nil
}

func (m *mockTenantStore) IndexExists(context.Context, string) (bool, error) {
	m.t.Fatal("unexpected IndexExists")
	return false, nil
}

func (m *mockTenantStore) SearchKNN(context.Context, *db.KNNQuery) (*db.SearchResult, error) {
	m.t.Fatal("unexpected SearchKNN")
	return nil, nil
}

func (m *mockTenantStore) SearchList(context.Context, string, string, int, int, []string) (*db.SearchResult, error) {
	m.t.Fatal("unexpected SearchList")
	return nil, nil
}

func (m *mockTenantStore) SearchCount(context.Context, string, string) (int, error) {
	m.t.Fatal("unexpected SearchCount")
	return 0, nil
}

func testWorkspace(id string) domain.Workspace {
	return domain.Workspace{
		ID:          id,
		Name:        "Test Workspace",
		TenantAddrs: []string{"tenant-db:6379"},
		TenantDB:    2,
		ModelAPIKey: "sk-test",
	}
}

func mustWorkspaceEntry(t *testing.T, ws domain.Workspace) []byte {
	t.Helper()
	data, err := json.Marshal([]domain.Workspace{ws})
	if err != nil {
		t.Fatalf("marshal workspace: %v", err)
	}
	return data
}

func testLogger() *zap.Logger { return zap.NewNop() }
