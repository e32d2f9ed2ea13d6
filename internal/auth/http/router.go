// Package http wires the auth services to their REST surface.
package http

import (
	"log/slog"
	"net/http"

	"github.com/guachince/guachince/internal/auth/domain"
	"github.com/guachince/guachince/internal/auth/service"
	"github.com/guachince/guachince/internal/auth/store"
	"github.com/guachince/guachince/pkg/httpx"
	"github.com/guachince/guachince/pkg/slogx"

	_ "github.com/guachince/guachince/api/docs" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	appName string
	logger  *slog.Logger
	store   store.Store
	cookies CookieConfig

	// EchoResetToken is enabled outside prod so reset tokens are usable
	// without a mailer.
	EchoResetToken bool

	AuthService    *service.AuthService
	SessionService *service.SessionService
	ResetService   *service.PasswordResetService
	MFAService     *service.MFAService
}

func NewRouter(appName string, st store.Store, logger *slog.Logger, cookies CookieConfig) *Router {
	return &Router{
		Mux:     http.NewServeMux(),
		appName: appName,
		logger:  logger,
		store:   st,
		cookies: cookies,
	}
}

// ApplyRoutes registers every endpoint and builds the global middleware
// chain. Call after the service fields are set.
func (r *Router) ApplyRoutes() {
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		SessionMiddleware(r.SessionService, r.cookies),
	}

	r.registerAuth()
	r.registerReset()
	r.registerMFA()
	r.registerAdmin()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
//
//	@title			Guachince Auth API
//	@version		0.1.0
//	@description	Session-based authentication for the Guachince restaurant platform: registration, login with TOTP MFA, password reset, and role/permission guards.
//	@description
//	@description	Sessions are carried by an HTTP-only cookie; there are no bearer tokens.
//
//	@contact.name	Guachince Team
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:8080
//	@BasePath		/
//
//	@schemes		http https
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	handler := &AuthHandler{Auth: r.AuthService, Cookies: r.cookies}

	r.Mux.Handle("POST /api/auth/register", http.HandlerFunc(handler.HandleRegister))
	r.Mux.Handle("POST /api/auth/login", http.HandlerFunc(handler.HandleLogin))
	r.Mux.Handle("POST /api/auth/logout",
		httpx.Chain(http.HandlerFunc(handler.HandleLogout), RequireAuth()))
	r.Mux.Handle("GET /api/auth/me",
		httpx.Chain(http.HandlerFunc(handler.HandleMe), RequireAuth()))
}

func (r *Router) registerReset() {
	handler := &ResetHandler{Reset: r.ResetService, EchoToken: r.EchoResetToken}

	r.Mux.Handle("POST /api/auth/password-reset/request", http.HandlerFunc(handler.HandleRequest))
	r.Mux.Handle("POST /api/auth/password-reset/confirm", http.HandlerFunc(handler.HandleConfirm))
}

func (r *Router) registerMFA() {
	handler := &MFAHandler{MFA: r.MFAService}

	r.Mux.Handle("POST /api/auth/mfa/enroll", http.HandlerFunc(handler.HandleEnroll))
	r.Mux.Handle("POST /api/auth/mfa/confirm", http.HandlerFunc(handler.HandleConfirm))
}

func (r *Router) registerAdmin() {
	handler := &UsersHandler{Store: r.store}

	r.Mux.Handle("GET /api/admin/users",
		httpx.Chain(http.HandlerFunc(handler.HandleList), RequirePermissions(domain.PermStaffRead)))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /health", HealthHandler(r.appName, r.store))
	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}
