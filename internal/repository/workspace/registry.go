// Package workspace resolves workspace identifiers to tenant store handles.
package workspace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alphadoc-ai/alphadoc/internal/db"
	"github.com/alphadoc-ai/alphadoc/internal/domain"
)

const keyPrefix = "alphadoc:workspaces:"

// store is the consumer interface for workspace records.
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
}

// Registry reads and writes workspace registrations in the system store.
type Registry struct {
	store store
}

// NewRegistry creates a workspace registry.
func NewRegistry(s store) *Registry {
	return &Registry{store: s}
}

// Get loads a workspace registration. A missing record or one without a
// storage target is a configuration-missing condition, distinct from all
// other failures.
func (r *Registry) Get(ctx context.Context, workspaceID string) (domain.Workspace, error) {
	raw, err := r.store.JSONGet(ctx, keyPrefix+workspaceID, "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.Workspace{}, fmt.Errorf("workspace %s: %w", workspaceID, domain.ErrConfigurationMissing)
		}
		return domain.Workspace{}, fmt.Errorf("%w: load workspace %s: %w", domain.ErrStorageFailure, workspaceID, err)
	}

	// JSON.GET on path $ wraps the record in an array.
	var records []domain.Workspace
	if err := json.Unmarshal(raw, &records); err != nil {
		return domain.Workspace{}, fmt.Errorf("%w: decode workspace %s: %w", domain.ErrStorageFailure, workspaceID, err)
	}
	if len(records) == 0 {
		return domain.Workspace{}, fmt.Errorf("workspace %s: %w", workspaceID, domain.ErrConfigurationMissing)
	}

	ws := records[0]
	if !ws.StorageConfigured() {
		return domain.Workspace{}, fmt.Errorf("workspace %s has no storage target: %w",
			workspaceID, domain.ErrConfigurationMissing)
	}
	return ws, nil
}

// Save persists a workspace registration.
func (r *Registry) Save(ctx context.Context, ws domain.Workspace) error {
	if ws.ID == "" {
		return errors.New("workspace id is required")
	}
	data, err := json.Marshal(ws)
	if err != nil {
		return fmt.Errorf("marshal workspace: %w", err)
	}
	if err := r.store.JSONSet(ctx, keyPrefix+ws.ID, "$", data); err != nil {
		return fmt.Errorf("%w: save workspace %s: %w", domain.ErrStorageFailure, ws.ID, err)
	}
	return nil
}
