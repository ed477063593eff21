package chi

import (
	"context"
	"net/http"

	"github.com/alphadoc-ai/alphadoc/internal/domain"
)

// Identity headers set by the upstream authentication layer. The values are
// trusted as already verified; this service never sees raw credentials.
const (
	headerWorkspaceID = "X-Workspace-Id"
	headerUsername    = "X-Username"
	headerRole        = "X-Role"
)

type identityKey struct{}

// IdentityMiddleware extracts the caller identity from the trusted headers
// and rejects requests that carry none.
func IdentityMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := domain.Identity{
				WorkspaceID: r.Header.Get(headerWorkspaceID),
				Username:    r.Header.Get(headerUsername),
				Role:        r.Header.Get(headerRole),
			}
			if !id.Valid() {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing identity headers")
				return
			}
			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), id)))
		})
	}
}

func withIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// identityFrom returns the caller identity stored by IdentityMiddleware.
func identityFrom(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(domain.Identity)
	return id, ok
}
