package http

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegisterEndpoint(t *testing.T) {
	ts := newTestServer(t)
	client := newClient(t)

	user := registerVia(t, ts, client, "amelia@example.com", "Secret123")
	require.Equal(t, "amelia@example.com", user["email"])
	require.Equal(t, []any{"Customer"}, user["roles"])
	require.NotContains(t, user, "passwordHash")
	require.NotContains(t, user, "mfaSecret")

	t.Run("session cookie set", func(t *testing.T) {
		u, err := url.Parse(ts.URL)
		require.NoError(t, err)

		cookies := client.Jar.Cookies(u)
		require.Len(t, cookies, 1)
		require.Equal(t, SessionCookie, cookies[0].Name)
		require.Len(t, cookies[0].Value, 43)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		code, body := doJSON(t, client, http.MethodPost, ts.URL+"/api/auth/register", map[string]any{
			"firstName": "Other",
			"lastName":  "Person",
			"email":     "amelia@example.com",
			"password":  "Different1",
		})
		require.Equal(t, http.StatusConflict, code)
		require.Equal(t, "A user with this email already exists.", body["error"])
	})

	t.Run("short password rejected", func(t *testing.T) {
		code, _ := doJSON(t, client, http.MethodPost, ts.URL+"/api/auth/register", map[string]any{
			"firstName": "Short",
			"lastName":  "Pass",
			"email":     "short@example.com",
			"password":  "abc",
		})
		require.Equal(t, http.StatusBadRequest, code)
	})
}

func TestLoginEndpoint(t *testing.T) {
	ts := newTestServer(t)

	registerVia(t, ts, newClient(t), "amelia@example.com", "Secret123")

	t.Run("wrong password", func(t *testing.T) {
		code, body := doJSON(t, newClient(t), http.MethodPost, ts.URL+"/api/auth/login", map[string]any{
			"email":    "amelia@example.com",
			"password": "wrong",
		})
		require.Equal(t, http.StatusUnauthorized, code)
		require.Equal(t, "Invalid email or password.", body["error"])
	})

	t.Run("unknown email matches wrong password", func(t *testing.T) {
		code, body := doJSON(t, newClient(t), http.MethodPost, ts.URL+"/api/auth/login", map[string]any{
			"email":    "nobody@example.com",
			"password": "Secret123",
		})
		require.Equal(t, http.StatusUnauthorized, code)
		require.Equal(t, "Invalid email or password.", body["error"])
	})

	t.Run("success", func(t *testing.T) {
		client := newClient(t)
		code, body := doJSON(t, client, http.MethodPost, ts.URL+"/api/auth/login", map[string]any{
			"email":    "amelia@example.com",
			"password": "Secret123",
		})
		require.Equal(t, http.StatusOK, code)

		user := body["user"].(map[string]any)
		require.Equal(t, "amelia@example.com", user["email"])

		code, body = doJSON(t, client, http.MethodGet, ts.URL+"/api/auth/me", nil)
		require.Equal(t, http.StatusOK, code)
		require.Equal(t, "amelia@example.com", body["user"].(map[string]any)["email"])
	})
}

func TestMeRequiresAuth(t *testing.T) {
	ts := newTestServer(t)

	code, body := doJSON(t, newClient(t), http.MethodGet, ts.URL+"/api/auth/me", nil)
	require.Equal(t, http.StatusUnauthorized, code)
	require.Equal(t, "Authentication required.", body["error"])
}

func TestLogoutEndpoint(t *testing.T) {
	ts := newTestServer(t)
	client := newClient(t)

	registerVia(t, ts, client, "amelia@example.com", "Secret123")

	code, body := doJSON(t, client, http.MethodPost, ts.URL+"/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, true, body["success"])

	// The cookie is gone and the session no longer resolves.
	code, _ = doJSON(t, client, http.MethodGet, ts.URL+"/api/auth/me", nil)
	require.Equal(t, http.StatusUnauthorized, code)
}

func TestInactiveUserSessionStopsResolving(t *testing.T) {
	ts := newTestServer(t)
	client := newClient(t)

	user := registerVia(t, ts, client, "amelia@example.com", "Secret123")
	require.NoError(t, ts.store.Users().SetActive(context.Background(), user["id"].(string), false))

	code, _ := doJSON(t, client, http.MethodGet, ts.URL+"/api/auth/me", nil)
	require.Equal(t, http.StatusUnauthorized, code)
}
