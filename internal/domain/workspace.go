package domain

// Workspace is a tenant registration held in the system store. The tenant
// corpus lives in its own isolated logical database; the credential set is
// managed externally and only carried here.
type Workspace struct {
	ID              string   `json:"workspace_id"`
	Name            string   `json:"name"`
	TenantAddrs     []string `json:"tenant_addrs"`
	TenantUsername  string   `json:"tenant_username,omitempty"`
	TenantPassword  string   `json:"tenant_password,omitempty"`
	TenantDB        int      `json:"tenant_db"`
	VectorIndexName string   `json:"vector_index_name"`
	ModelAPIKey     string   `json:"model_api_key,omitempty"`
}

// StorageConfigured reports whether a tenant store target is registered.
func (w Workspace) StorageConfigured() bool {
	return len(w.TenantAddrs) > 0
}

// ModelConfigured reports whether a model credential is registered.
func (w Workspace) ModelConfigured() bool {
	return w.ModelAPIKey != ""
}
