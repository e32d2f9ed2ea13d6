package http

import (
	"net/http"
	"testing"
	"time"

	"github.com/guachince/guachince/internal/auth/domain"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
)

// TestPrivilegedLoginMFAFlow walks the whole privileged-account journey: a
// fresh Admin/Owner is refused with 428, enrolls and confirms TOTP, is then
// challenged for a code, and finally logs in with one.
func TestPrivilegedLoginMFAFlow(t *testing.T) {
	ts := newTestServer(t)

	registerVia(t, ts, newClient(t), "a@x.com", "Secret123", domain.RoleAdminOwner)

	client := newClient(t)

	code, body := doJSON(t, client, http.MethodPost, ts.URL+"/api/auth/login", map[string]any{
		"email":    "a@x.com",
		"password": "Secret123",
	})
	require.Equal(t, http.StatusPreconditionRequired, code)
	require.Equal(t, true, body["mfaSetupRequired"])

	code, body = doJSON(t, client, http.MethodPost, ts.URL+"/api/auth/mfa/enroll", map[string]any{
		"email":    "a@x.com",
		"password": "Secret123",
	})
	require.Equal(t, http.StatusOK, code)
	token := body["enrollmentToken"].(string)
	secret := body["secret"].(string)
	require.Len(t, token, 43)
	require.NotEmpty(t, secret)
	require.Contains(t, body["otpauthUrl"], "otpauth://totp/")

	otpCode, err := totp.GenerateCode(secret, time.Now().UTC())
	require.NoError(t, err)

	code, body = doJSON(t, client, http.MethodPost, ts.URL+"/api/auth/mfa/confirm", map[string]any{
		"enrollmentToken": token,
		"code":            otpCode,
	})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, true, body["success"])

	code, body = doJSON(t, client, http.MethodPost, ts.URL+"/api/auth/login", map[string]any{
		"email":    "a@x.com",
		"password": "Secret123",
	})
	require.Equal(t, http.StatusUnauthorized, code)
	require.Equal(t, true, body["mfaRequired"])

	code, body = doJSON(t, client, http.MethodPost, ts.URL+"/api/auth/login", map[string]any{
		"email":    "a@x.com",
		"password": "Secret123",
		"mfaCode":  "000000",
	})
	require.Equal(t, http.StatusUnauthorized, code)
	require.Equal(t, "Invalid MFA code.", body["error"])

	otpCode, err = totp.GenerateCode(secret, time.Now().UTC())
	require.NoError(t, err)

	code, body = doJSON(t, client, http.MethodPost, ts.URL+"/api/auth/login", map[string]any{
		"email":    "a@x.com",
		"password": "Secret123",
		"mfaCode":  otpCode,
	})
	require.Equal(t, http.StatusOK, code)

	user := body["user"].(map[string]any)
	require.Equal(t, true, user["mfaEnabled"])
	require.Contains(t, user["roles"], "Admin/Owner")
	require.Contains(t, user["permissions"], domain.PermStaffRead)

	// The minted session works for guarded endpoints.
	code, _ = doJSON(t, client, http.MethodGet, ts.URL+"/api/admin/users", nil)
	require.Equal(t, http.StatusOK, code)
}

func TestMFAEnrollEndpointErrors(t *testing.T) {
	ts := newTestServer(t)

	registerVia(t, ts, newClient(t), "owner@example.com", "Secret123", domain.RoleGeneralManager)

	t.Run("wrong password", func(t *testing.T) {
		code, body := doJSON(t, newClient(t), http.MethodPost, ts.URL+"/api/auth/mfa/enroll", map[string]any{
			"email":    "owner@example.com",
			"password": "wrong",
		})
		require.Equal(t, http.StatusUnauthorized, code)
		require.Equal(t, "Invalid credentials.", body["error"])
	})

	t.Run("bad enrollment token", func(t *testing.T) {
		code, body := doJSON(t, newClient(t), http.MethodPost, ts.URL+"/api/auth/mfa/confirm", map[string]any{
			"enrollmentToken": "not-a-real-token",
			"code":            "123456",
		})
		require.Equal(t, http.StatusBadRequest, code)
		require.Equal(t, "Invalid or expired enrollment token.", body["error"])
	})
}
