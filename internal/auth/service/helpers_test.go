package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/guachince/guachince/internal/auth/domain"
	"github.com/guachince/guachince/internal/auth/store"
	"github.com/guachince/guachince/internal/auth/store/drivers/sqlite"
	"github.com/guachince/guachince/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "guachince-service-test")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper.key"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

// newTestStore opens an in-memory sqlite store with migrations and the role
// catalogue applied.
func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())

	seed := &SeedService{Store: st}
	require.NoError(t, seed.Ensure(context.Background()))

	return st
}

func newTestServices(t *testing.T, st store.Store) (*AuthService, *SessionService, *PasswordResetService, *MFAService) {
	t.Helper()

	audit := &AuditService{Store: st}
	sessions := &SessionService{Store: st}
	auth := &AuthService{Store: st, Sessions: sessions, Audit: audit, DefaultRole: domain.RoleCustomer}
	reset := &PasswordResetService{Store: st, Sessions: sessions, Audit: audit}
	mfa := &MFAService{Store: st, Audit: audit, Issuer: "Guachince"}

	return auth, sessions, reset, mfa
}

// registerUser creates an account through the real registration flow and
// returns the login result. Extra roles are assigned on top of the default.
func registerUser(t *testing.T, st store.Store, auth *AuthService, email, password string, extraRoles ...string) LoginResult {
	t.Helper()
	ctx := context.Background()

	result, err := auth.Register(ctx, Registration{
		FirstName: "Test",
		LastName:  "User",
		Email:     email,
		Password:  password,
	})
	require.NoError(t, err)

	for _, name := range extraRoles {
		role, err := st.Roles().GetRoleByName(ctx, name)
		require.NoError(t, err)
		require.NoError(t, st.Users().AssignRole(ctx, result.Identity.ID, role.ID))
	}

	return result
}
