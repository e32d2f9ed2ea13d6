package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/guachince/guachince/internal/auth/service"
	"github.com/guachince/guachince/pkg/httpx"
	"github.com/guachince/guachince/pkg/slogx"
)

// MFAHandler serves the TOTP enrollment pair.
type MFAHandler struct {
	MFA *service.MFAService
}

// MFAEnrollRequest is the payload for POST /api/auth/mfa/enroll.
type MFAEnrollRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// MFAEnrollResponse carries the provisioning material for the authenticator
// app plus the opaque token binding the confirm call.
type MFAEnrollResponse struct {
	EnrollmentToken string    `json:"enrollmentToken"`
	Secret          string    `json:"secret"`
	OTPAuthURL      string    `json:"otpauthUrl"`
	ExpiresAt       time.Time `json:"expiresAt"`
}

// MFAConfirmRequest is the payload for POST /api/auth/mfa/confirm.
type MFAConfirmRequest struct {
	EnrollmentToken string `json:"enrollmentToken"`
	Code            string `json:"code"`
}

// HandleEnroll handles POST /api/auth/mfa/enroll
//
//	@Summary		Start TOTP MFA enrollment
//	@Description	Re-verifies the password, generates a TOTP secret, and returns it with the otpauth URL. The secret stays inactive until confirmed.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		MFAEnrollRequest	true	"Credentials"
//	@Success		200		{object}	MFAEnrollResponse
//	@Failure		401		{object}	map[string]string	"Invalid credentials"
//	@Failure		409		{object}	map[string]string	"MFA already enabled"
//	@Router			/api/auth/mfa/enroll [post].
func (h *MFAHandler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req MFAEnrollRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ip, ua := clientMeta(r)
	enrollment, err := h.MFA.Enroll(ctx, req.Email, req.Password, ip, ua)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			httpx.WriteJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "Invalid credentials.",
			})
		case errors.Is(err, service.ErrMFAAlreadyEnabled):
			httpx.WriteJSON(w, http.StatusConflict, map[string]string{
				"error": "MFA is already enabled.",
			})
		default:
			slogx.FromContext(ctx).Error("mfa enrollment failed", "err", err)
			httpx.WriteJSON(w, http.StatusInternalServerError, map[string]string{
				"error": "Internal server error.",
			})
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, MFAEnrollResponse{
		EnrollmentToken: enrollment.Token,
		Secret:          enrollment.Secret,
		OTPAuthURL:      enrollment.OTPAuthURL,
		ExpiresAt:       enrollment.ExpiresAt,
	})
}

// HandleConfirm handles POST /api/auth/mfa/confirm
//
//	@Summary		Confirm MFA enrollment with a code
//	@Description	A valid current code promotes the pending secret onto the account and enables MFA.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		MFAConfirmRequest	true	"Enrollment token and TOTP code"
//	@Success		200		{object}	map[string]bool
//	@Failure		400		{object}	map[string]string	"Invalid token or code"
//	@Router			/api/auth/mfa/confirm [post].
func (h *MFAHandler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req MFAConfirmRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ip, ua := clientMeta(r)
	if err := h.MFA.Confirm(ctx, req.EnrollmentToken, req.Code, ip, ua); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidOrExpiredToken):
			httpx.WriteJSON(w, http.StatusBadRequest, map[string]string{
				"error": "Invalid or expired enrollment token.",
			})
		case errors.Is(err, service.ErrInvalidMFACode):
			httpx.WriteJSON(w, http.StatusBadRequest, map[string]string{
				"error": "Invalid MFA code.",
			})
		default:
			slogx.FromContext(ctx).Error("mfa confirm failed", "err", err)
			httpx.WriteJSON(w, http.StatusInternalServerError, map[string]string{
				"error": "Internal server error.",
			})
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}
