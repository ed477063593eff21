package chi

import "github.com/alphadoc-ai/alphadoc/internal/domain"

// Error codes returned to API clients.
const (
	codeBadRequest           = "bad_request"
	codeUnauthorized         = "unauthorized"
	codeForbidden            = "forbidden"
	codeNotFound             = "not_found"
	codeConflict             = "filename_conflict"
	codeConfigurationMissing = "configuration_missing"
	codeUpstreamModel        = "upstream_model_error"
	codeInternal             = "internal_error"
)

type errorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Filename string `json:"filename,omitempty"`
}

type analyzeRequest struct {
	Filename string   `json:"filename"`
	Chunks   []string `json:"chunks"`
}

type storeRequest struct {
	Analysis      domain.Analysis `json:"analysis"`
	ConfirmUpdate bool            `json:"confirm_update"`
	ForceNew      bool            `json:"force_new"`
}

type storeResponse struct {
	ID             string `json:"id"`
	LineageGroupID string `json:"lineage_group_id"`
	Filename       string `json:"filename"`
	Version        int    `json:"version"`
	UploadDate     string `json:"upload_date"`
}

type searchRequest struct {
	Query string `json:"query"`
}

type answerResponse struct {
	Answer string `json:"answer"`
	Mode   string `json:"mode"`
}

type workspaceRequest struct {
	WorkspaceID     string   `json:"workspace_id"`
	Name            string   `json:"name"`
	TenantAddrs     []string `json:"tenant_addrs"`
	TenantUsername  string   `json:"tenant_username,omitempty"`
	TenantPassword  string   `json:"tenant_password,omitempty"`
	TenantDB        int      `json:"tenant_db"`
	VectorIndexName string   `json:"vector_index_name,omitempty"`
	ModelAPIKey     string   `json:"model_api_key,omitempty"`
}

type workspaceResponse struct {
	WorkspaceID string `json:"workspace_id"`
}
