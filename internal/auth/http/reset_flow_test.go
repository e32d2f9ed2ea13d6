package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPasswordResetEndpoints(t *testing.T) {
	ts := newTestServer(t)
	client := newClient(t)

	registerVia(t, ts, client, "amelia@example.com", "Secret123")

	code, body := doJSON(t, newClient(t), http.MethodPost, ts.URL+"/api/auth/password-reset/request", map[string]any{
		"email": "amelia@example.com",
	})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, true, body["success"])

	// Token echo is on for the test environment.
	token := body["resetToken"].(string)
	require.Len(t, token, 43)
	require.NotEmpty(t, body["expiresAt"])

	code, body = doJSON(t, newClient(t), http.MethodPost, ts.URL+"/api/auth/password-reset/confirm", map[string]any{
		"token":    token,
		"password": "NewSecret456",
	})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, true, body["success"])

	t.Run("old session revoked", func(t *testing.T) {
		code, _ := doJSON(t, client, http.MethodGet, ts.URL+"/api/auth/me", nil)
		require.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("new password logs in", func(t *testing.T) {
		code, _ := doJSON(t, newClient(t), http.MethodPost, ts.URL+"/api/auth/login", map[string]any{
			"email":    "amelia@example.com",
			"password": "NewSecret456",
		})
		require.Equal(t, http.StatusOK, code)
	})

	t.Run("token is single use", func(t *testing.T) {
		code, body := doJSON(t, newClient(t), http.MethodPost, ts.URL+"/api/auth/password-reset/confirm", map[string]any{
			"token":    token,
			"password": "AnotherPass789",
		})
		require.Equal(t, http.StatusBadRequest, code)
		require.Equal(t, "Invalid or expired token.", body["error"])
	})
}

func TestPasswordResetRequestNeverEnumerates(t *testing.T) {
	ts := newTestServer(t)

	code, body := doJSON(t, newClient(t), http.MethodPost, ts.URL+"/api/auth/password-reset/request", map[string]any{
		"email": "nobody@example.com",
	})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, true, body["success"])
	require.NotContains(t, body, "resetToken")
}
