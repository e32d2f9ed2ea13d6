package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/guachince/guachince/internal/auth/domain"
	"github.com/guachince/guachince/internal/auth/service"
	"github.com/guachince/guachince/internal/auth/store"
	"github.com/guachince/guachince/internal/auth/store/drivers/sqlite"
	"github.com/guachince/guachince/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "guachince-http-test")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper.key"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

type testServer struct {
	*httptest.Server

	store store.Store
}

// newTestServer stands up the full router over an in-memory store, migrated
// and seeded, with reset token echo enabled.
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	require.NoError(t, (&service.SeedService{Store: st}).Ensure(context.Background()))

	audit := &service.AuditService{Store: st}
	sessions := &service.SessionService{Store: st}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := NewRouter("Guachince", st, logger, CookieConfig{TTL: service.DefaultSessionTTL})
	router.EchoResetToken = true
	router.AuthService = &service.AuthService{
		Store:       st,
		Sessions:    sessions,
		Audit:       audit,
		DefaultRole: domain.RoleCustomer,
	}
	router.SessionService = sessions
	router.ResetService = &service.PasswordResetService{Store: st, Sessions: sessions, Audit: audit}
	router.MFAService = &service.MFAService{Store: st, Audit: audit, Issuer: "Guachince"}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testServer{Server: srv, store: st}
}

// newClient returns an http client with a cookie jar so the session cookie
// round-trips like a browser.
func newClient(t *testing.T) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar, Timeout: 10 * time.Second}
}

// doJSON performs a request with an optional JSON body and decodes the JSON
// response into a generic map.
func doJSON(t *testing.T, client *http.Client, method, url string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))

	return resp.StatusCode, decoded
}

// registerVia registers an account over HTTP and assigns any extra roles
// directly through the store.
func registerVia(t *testing.T, ts *testServer, client *http.Client, email, password string, extraRoles ...string) map[string]any {
	t.Helper()
	ctx := context.Background()

	code, body := doJSON(t, client, http.MethodPost, ts.URL+"/api/auth/register", map[string]any{
		"firstName": "Test",
		"lastName":  "User",
		"email":     email,
		"password":  password,
	})
	require.Equal(t, http.StatusCreated, code)

	user, ok := body["user"].(map[string]any)
	require.True(t, ok)

	for _, name := range extraRoles {
		role, err := ts.store.Roles().GetRoleByName(ctx, name)
		require.NoError(t, err)
		require.NoError(t, ts.store.Users().AssignRole(ctx, user["id"].(string), role.ID))
	}

	return user
}
