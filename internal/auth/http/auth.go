package http

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/guachince/guachince/internal/auth/domain"
	"github.com/guachince/guachince/internal/auth/service"
	"github.com/guachince/guachince/pkg/httpx"
	"github.com/guachince/guachince/pkg/slogx"
)

// AuthHandler serves registration, login, logout, and the current-user probe.
type AuthHandler struct {
	Auth    *service.AuthService
	Cookies CookieConfig
}

// RegisterRequest is the payload for POST /api/auth/register.
type RegisterRequest struct {
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Email     string  `json:"email"`
	Phone     *string `json:"phone,omitempty"`
	Password  string  `json:"password"`
}

// LoginRequest is the payload for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	MFACode  string `json:"mfaCode,omitempty"`
}

// UserResponse wraps the identity payload returned by auth endpoints.
type UserResponse struct {
	User domain.Identity `json:"user"`
}

// PasswordMinLength is enforced wherever a new password is accepted.
const PasswordMinLength = 8

// clientMeta extracts the caller's IP and user agent for session records and
// audit rows. Nil when unavailable.
func clientMeta(r *http.Request) (*string, *string) {
	var ip *string
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		ip = &host
	} else if r.RemoteAddr != "" {
		addr := r.RemoteAddr
		ip = &addr
	}

	var ua *string
	if agent := r.UserAgent(); agent != "" {
		ua = &agent
	}

	return ip, ua
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, map[string]string{
			"error": "Invalid JSON body.",
		})
		return false
	}
	return true
}

// HandleRegister handles POST /api/auth/register
//
//	@Summary		Register a new customer account
//	@Description	Creates a customer account and starts a session for it.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		RegisterRequest	true	"Account details"
//	@Success		201		{object}	UserResponse	"Created user"
//	@Failure		400		{object}	map[string]string
//	@Failure		409		{object}	map[string]string	"Email already registered"
//	@Router			/api/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.FirstName == "" || req.LastName == "" || req.Email == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, map[string]string{
			"error": "First name, last name, and email are required.",
		})
		return
	}
	if len(req.Password) < PasswordMinLength {
		httpx.WriteJSON(w, http.StatusBadRequest, map[string]string{
			"error": "Password must be at least 8 characters.",
		})
		return
	}

	ip, ua := clientMeta(r)
	result, err := h.Auth.Register(ctx, service.Registration{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Password:  req.Password,
		IPAddress: ip,
		UserAgent: ua,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			httpx.WriteJSON(w, http.StatusConflict, map[string]string{
				"error": "A user with this email already exists.",
			})
			return
		}
		log.Error("registration failed", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Internal server error.",
		})
		return
	}

	h.Cookies.Set(w, result.Token)
	httpx.WriteJSON(w, http.StatusCreated, UserResponse{User: result.Identity})
}

// HandleLogin handles POST /api/auth/login
//
//	@Summary		Login with email and password
//	@Description	Authenticates the user, enforcing TOTP MFA where the account or its roles require it.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		LoginRequest	true	"Credentials"
//	@Success		200		{object}	UserResponse	"Authenticated user"
//	@Failure		401		{object}	map[string]string	"Invalid credentials or MFA code required"
//	@Failure		428		{object}	map[string]string	"MFA enrollment required for the role"
//	@Router			/api/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ip, ua := clientMeta(r)
	result, err := h.Auth.Login(ctx, service.Credentials{
		Email:     req.Email,
		Password:  req.Password,
		MFACode:   req.MFACode,
		IPAddress: ip,
		UserAgent: ua,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			httpx.WriteJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "Invalid email or password.",
			})
		case errors.Is(err, service.ErrAccountInactive):
			httpx.WriteJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "Account is inactive. Please contact support.",
			})
		case errors.Is(err, service.ErrMFASetupRequired):
			httpx.WriteJSON(w, http.StatusPreconditionRequired, map[string]any{
				"error":            "MFA setup required for this role.",
				"mfaSetupRequired": true,
			})
		case errors.Is(err, service.ErrMFACodeRequired):
			httpx.WriteJSON(w, http.StatusUnauthorized, map[string]any{
				"error":       "MFA code required.",
				"mfaRequired": true,
			})
		case errors.Is(err, service.ErrInvalidMFACode):
			httpx.WriteJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "Invalid MFA code.",
			})
		default:
			log.Error("login failed", "err", err)
			httpx.WriteJSON(w, http.StatusInternalServerError, map[string]string{
				"error": "Internal server error.",
			})
		}
		return
	}

	h.Cookies.Set(w, result.Token)
	httpx.WriteJSON(w, http.StatusOK, UserResponse{User: result.Identity})
}

// HandleLogout handles POST /api/auth/logout
//
//	@Summary		Logout and revoke the current session
//	@Tags			auth
//	@Produce		json
//	@Success		200	{object}	map[string]bool
//	@Failure		401	{object}	map[string]string
//	@Router			/api/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ip, ua := clientMeta(r)
	err := h.Auth.Logout(ctx, readSessionToken(r), IdentityFromContext(ctx), ip, ua)
	if err != nil {
		slogx.FromContext(ctx).Error("logout failed", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Internal server error.",
		})
		return
	}

	h.Cookies.Clear(w)
	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// HandleMe handles GET /api/auth/me
//
//	@Summary		Get the current authenticated user
//	@Tags			auth
//	@Produce		json
//	@Success		200	{object}	UserResponse
//	@Failure		401	{object}	map[string]string
//	@Router			/api/auth/me [get].
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())
	httpx.WriteJSON(w, http.StatusOK, UserResponse{User: *identity})
}
