package workspace

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/alphadoc-ai/alphadoc/internal/db"
	"github.com/alphadoc-ai/alphadoc/internal/domain"
)

// DefaultIndexName is used when a workspace has no explicit vector index name.
const DefaultIndexName = "vector_index"

// registryReader is the consumer interface for workspace lookups.
type registryReader interface {
	Get(ctx context.Context, workspaceID string) (domain.Workspace, error)
}

// DialFunc creates a store client for a tenant target.
type DialFunc func(addrs []string, username, password string, dbNum int) (db.Store, error)

// InitFunc prepares a freshly dialed tenant store (index creation).
type InitFunc func(ctx context.Context, store db.Store, indexName string) error

// Handle is a resolved tenant: its isolated store, vector index name, and
// model credential.
type Handle struct {
	Store       db.Store
	IndexName   string
	ModelAPIKey string
}

// Resolver resolves workspace ids to tenant handles, caching dialed clients.
// Connection reuse is an optimization only; correctness does not depend on
// affinity to a particular cached client.
type Resolver struct {
	registry registryReader
	dial     DialFunc
	init     InitFunc
	logger   *zap.Logger

	mu      sync.Mutex
	clients map[string]db.Store
}

// NewResolver creates a tenant resolver.
func NewResolver(registry registryReader, dial DialFunc, init InitFunc, logger *zap.Logger) *Resolver {
	return &Resolver{
		registry: registry,
		dial:     dial,
		init:     init,
		logger:   logger,
		clients:  make(map[string]db.Store),
	}
}

// Resolve returns the tenant handle for a workspace, dialing and preparing
// the tenant store on first touch.
func (r *Resolver) Resolve(ctx context.Context, workspaceID string) (Handle, error) {
	ws, err := r.registry.Get(ctx, workspaceID)
	if err != nil {
		return Handle{}, err
	}

	indexName := ws.VectorIndexName
	if indexName == "" {
		indexName = DefaultIndexName
	}

	store, err := r.client(ctx, ws, indexName)
	if err != nil {
		return Handle{}, err
	}

	return Handle{
		Store:       store,
		IndexName:   indexName,
		ModelAPIKey: ws.ModelAPIKey,
	}, nil
}

// Close shuts down all cached tenant clients.
func (r *Resolver) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.clients {
		c.Close()
		delete(r.clients, id)
	}
}

func (r *Resolver) client(ctx context.Context, ws domain.Workspace, indexName string) (db.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.clients[ws.ID]; ok {
		return c, nil
	}

	store, err := r.dial(ws.TenantAddrs, ws.TenantUsername, ws.TenantPassword, ws.TenantDB)
	if err != nil {
		return nil, fmt.Errorf("%w: dial tenant store for %s: %w", domain.ErrStorageFailure, ws.ID, err)
	}

	if r.init != nil {
		if err := r.init(ctx, store, indexName); err != nil {
			store.Close()
			return nil, fmt.Errorf("%w: prepare tenant store for %s: %w", domain.ErrStorageFailure, ws.ID, err)
		}
	}

	r.logger.Info("tenant store ready",
		zap.String("workspace_id", ws.ID),
		zap.String("index", indexName),
	)

	r.clients[ws.ID] = store
	return store, nil
}
