package domain

import "strings"

// RoleAdmin is the elevated role allowed to confirm version replacements and
// remove versions.
const RoleAdmin = "admin"

// Identity is the verified caller identity supplied by the authentication
// layer. This core trusts its fields as already checked upstream.
type Identity struct {
	WorkspaceID string
	Username    string
	Role        string
}

// Elevated reports whether the caller may perform authorization-gated actions.
func (id Identity) Elevated() bool {
	return strings.EqualFold(id.Role, RoleAdmin)
}

// Valid reports whether the identity carries the minimum trusted fields.
func (id Identity) Valid() bool {
	return id.WorkspaceID != "" && id.Username != ""
}
