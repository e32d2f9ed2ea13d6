package http

import (
	"net/http"

	"github.com/guachince/guachince/pkg/httpx"
)

// RequireAuth rejects anonymous requests with 401.
func RequireAuth() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if IdentityFromContext(r.Context()) == nil {
				httpx.WriteJSON(w, http.StatusUnauthorized, map[string]string{
					"error": "Authentication required.",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequirePermissions rejects callers lacking ANY of the listed permissions.
// The 403 body names the missing keys so clients can explain the refusal.
func RequirePermissions(permissions ...string) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := IdentityFromContext(r.Context())
			if identity == nil {
				httpx.WriteJSON(w, http.StatusUnauthorized, map[string]string{
					"error": "Authentication required.",
				})
				return
			}

			if missing := identity.MissingPermissions(permissions); len(missing) > 0 {
				httpx.WriteJSON(w, http.StatusForbidden, map[string]any{
					"error":   "Insufficient permissions.",
					"missing": missing,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireRoles rejects callers holding none of the listed roles. The 403
// body echoes the accepted roles.
func RequireRoles(roles ...string) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := IdentityFromContext(r.Context())
			if identity == nil {
				httpx.WriteJSON(w, http.StatusUnauthorized, map[string]string{
					"error": "Authentication required.",
				})
				return
			}

			if !identity.HasAnyRole(roles) {
				httpx.WriteJSON(w, http.StatusForbidden, map[string]any{
					"error":    "Insufficient role access.",
					"required": roles,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
