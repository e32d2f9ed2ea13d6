package http

import (
	"context"
	"net/http"

	"github.com/guachince/guachince/internal/auth/domain"
	"github.com/guachince/guachince/internal/auth/service"
	"github.com/guachince/guachince/pkg/slogx"
)

type ctxKeyIdentity struct{}
type ctxKeySession struct{}

// IdentityFromContext returns the authenticated identity attached by the
// session middleware, or nil for anonymous requests.
func IdentityFromContext(ctx context.Context) *domain.Identity {
	identity, _ := ctx.Value(ctxKeyIdentity{}).(*domain.Identity)
	return identity
}

// SessionFromContext returns the resolved session record, or nil.
func SessionFromContext(ctx context.Context) *domain.Session {
	session, _ := ctx.Value(ctxKeySession{}).(*domain.Session)
	return session
}

// SessionMiddleware resolves the session cookie once per request and attaches
// the identity and session to the context. Anonymous requests pass through
// untouched; a cookie that no longer resolves is cleared so clients stop
// presenting it.
func SessionMiddleware(sessions *service.SessionService, cookies CookieConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := readSessionToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			identity, session, err := sessions.Validate(ctx, token)
			if err != nil {
				slogx.FromContext(ctx).Error("session validation failed", "err", err)
				next.ServeHTTP(w, r)
				return
			}

			if identity == nil {
				cookies.Clear(w)
				next.ServeHTTP(w, r)
				return
			}

			ctx = context.WithValue(ctx, ctxKeyIdentity{}, identity)
			ctx = context.WithValue(ctx, ctxKeySession{}, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
