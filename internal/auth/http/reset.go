package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/guachince/guachince/internal/auth/service"
	"github.com/guachince/guachince/pkg/httpx"
	"github.com/guachince/guachince/pkg/slogx"
)

// ResetHandler serves the password reset request/confirm pair.
type ResetHandler struct {
	Reset *service.PasswordResetService

	// EchoToken returns the raw reset token in the response. There is no
	// mailer yet, so every environment except prod enables this.
	EchoToken bool
}

// ResetRequestBody is the payload for POST /api/auth/password-reset/request.
type ResetRequestBody struct {
	Email string `json:"email"`
}

// ResetConfirmBody is the payload for POST /api/auth/password-reset/confirm.
type ResetConfirmBody struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// ResetRequestResponse always reports success. Token and expiry are present
// only when token echo is enabled and the account exists.
type ResetRequestResponse struct {
	Success    bool       `json:"success"`
	ResetToken string     `json:"resetToken,omitempty"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
}

// HandleRequest handles POST /api/auth/password-reset/request
//
//	@Summary		Request a password reset token
//	@Description	Always reports success so the endpoint cannot be used to probe for accounts.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ResetRequestBody	true	"Account email"
//	@Success		200		{object}	ResetRequestResponse
//	@Router			/api/auth/password-reset/request [post].
func (h *ResetHandler) HandleRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ResetRequestBody
	if !decodeJSON(w, r, &req) {
		return
	}

	ip, ua := clientMeta(r)
	issue, err := h.Reset.Request(ctx, req.Email, ip, ua)
	if err != nil {
		slogx.FromContext(ctx).Error("password reset request failed", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Internal server error.",
		})
		return
	}

	resp := ResetRequestResponse{Success: true}
	if issue != nil && h.EchoToken {
		resp.ResetToken = issue.Token
		resp.ExpiresAt = &issue.ExpiresAt
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleConfirm handles POST /api/auth/password-reset/confirm
//
//	@Summary		Confirm a password reset token
//	@Description	Sets the new password, consumes the token, and revokes every session the user held.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ResetConfirmBody	true	"Token and new password"
//	@Success		200		{object}	map[string]bool
//	@Failure		400		{object}	map[string]string	"Invalid or expired token"
//	@Router			/api/auth/password-reset/confirm [post].
func (h *ResetHandler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ResetConfirmBody
	if !decodeJSON(w, r, &req) {
		return
	}

	if len(req.Password) < PasswordMinLength {
		httpx.WriteJSON(w, http.StatusBadRequest, map[string]string{
			"error": "Password must be at least 8 characters.",
		})
		return
	}

	ip, ua := clientMeta(r)
	if err := h.Reset.Confirm(ctx, req.Token, req.Password, ip, ua); err != nil {
		if errors.Is(err, service.ErrInvalidOrExpiredToken) {
			httpx.WriteJSON(w, http.StatusBadRequest, map[string]string{
				"error": "Invalid or expired token.",
			})
			return
		}
		slogx.FromContext(ctx).Error("password reset confirm failed", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Internal server error.",
		})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}
