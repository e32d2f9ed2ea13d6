package service

import (
	"context"
	"testing"
	"time"

	"github.com/guachince/guachince/internal/auth/domain"
	"github.com/guachince/guachince/pkg/cryptox"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
)

func TestRegisterThenLogin(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	auth, _, _, _ := newTestServices(t, st)

	reg := registerUser(t, st, auth, "amelia@example.com", "Secret123")
	require.Len(t, reg.Token, 43)
	require.Equal(t, []string{domain.RoleCustomer}, reg.Identity.Roles)
	require.Contains(t, reg.Identity.Permissions, domain.PermMenuRead)

	result, err := auth.Login(ctx, Credentials{Email: "amelia@example.com", Password: "Secret123"})
	require.NoError(t, err)
	require.Equal(t, reg.Identity.ID, result.Identity.ID)
	require.NotEqual(t, reg.Token, result.Token)
	require.True(t, result.ExpiresAt.After(time.Now()))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	auth, _, _, _ := newTestServices(t, st)

	registerUser(t, st, auth, "amelia@example.com", "Secret123")

	_, err := auth.Register(ctx, Registration{
		FirstName: "Other",
		LastName:  "Person",
		Email:     "amelia@example.com",
		Password:  "Different1",
	})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginInvalidCredentials(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	auth, _, _, _ := newTestServices(t, st)

	registerUser(t, st, auth, "amelia@example.com", "Secret123")

	t.Run("unknown email", func(t *testing.T) {
		_, err := auth.Login(ctx, Credentials{Email: "nobody@example.com", Password: "Secret123"})
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := auth.Login(ctx, Credentials{Email: "amelia@example.com", Password: "wrong"})
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestLoginInactiveAccount(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	auth, _, _, _ := newTestServices(t, st)

	reg := registerUser(t, st, auth, "amelia@example.com", "Secret123")
	require.NoError(t, st.Users().SetActive(ctx, reg.Identity.ID, false))

	_, err := auth.Login(ctx, Credentials{Email: "amelia@example.com", Password: "Secret123"})
	require.ErrorIs(t, err, ErrAccountInactive)
}

func TestLoginPrivilegedRoleWithoutMFA(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	auth, _, _, _ := newTestServices(t, st)

	reg := registerUser(t, st, auth, "owner@example.com", "Secret123", domain.RoleAdminOwner)

	_, err := auth.Login(ctx, Credentials{Email: "owner@example.com", Password: "Secret123"})
	require.ErrorIs(t, err, ErrMFASetupRequired)

	// The refusal must not mint a session. The registration session is the
	// only one the user holds.
	count, err := st.Sessions().CountLiveUserSessions(ctx, reg.Identity.ID, time.Now().UTC())
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestLoginWithMFAEnabled(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	auth, _, _, mfa := newTestServices(t, st)

	reg := registerUser(t, st, auth, "owner@example.com", "Secret123", domain.RoleAdminOwner)

	enrollment, err := mfa.Enroll(ctx, "owner@example.com", "Secret123", nil, nil)
	require.NoError(t, err)

	code, err := totp.GenerateCode(enrollment.Secret, time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, mfa.Confirm(ctx, enrollment.Token, code, nil, nil))

	t.Run("missing code", func(t *testing.T) {
		_, err := auth.Login(ctx, Credentials{Email: "owner@example.com", Password: "Secret123"})
		require.ErrorIs(t, err, ErrMFACodeRequired)
	})

	t.Run("invalid code", func(t *testing.T) {
		_, err := auth.Login(ctx, Credentials{Email: "owner@example.com", Password: "Secret123", MFACode: "000000"})
		require.ErrorIs(t, err, ErrInvalidMFACode)
	})

	t.Run("valid code", func(t *testing.T) {
		code, err := totp.GenerateCode(enrollment.Secret, time.Now().UTC())
		require.NoError(t, err)

		result, err := auth.Login(ctx, Credentials{Email: "owner@example.com", Password: "Secret123", MFACode: code})
		require.NoError(t, err)
		require.Equal(t, reg.Identity.ID, result.Identity.ID)
		require.True(t, result.Identity.MFAEnabled)
	})
}

func TestLogoutRevokesSession(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	auth, sessions, _, _ := newTestServices(t, st)

	reg := registerUser(t, st, auth, "amelia@example.com", "Secret123")

	identity, session, err := sessions.Validate(ctx, reg.Token)
	require.NoError(t, err)
	require.NotNil(t, identity)
	require.Equal(t, reg.SessionID, session.ID)

	require.NoError(t, auth.Logout(ctx, reg.Token, identity, nil, nil))

	identity, session, err = sessions.Validate(ctx, reg.Token)
	require.NoError(t, err)
	require.Nil(t, identity)
	require.Nil(t, session)

	// A second logout with the same token is a clean no-op.
	require.NoError(t, auth.Logout(ctx, reg.Token, nil, nil, nil))
}

func TestLoginVerifiesStoredHashFormat(t *testing.T) {
	st := newTestStore(t)
	auth, _, _, _ := newTestServices(t, st)

	reg := registerUser(t, st, auth, "amelia@example.com", "Secret123")

	user, err := st.Users().GetUserByID(context.Background(), reg.Identity.ID)
	require.NoError(t, err)
	require.NotNil(t, user.PasswordHash)
	require.NoError(t, cryptox.VerifyPassword("Secret123", *user.PasswordHash))
	require.ErrorIs(t, cryptox.VerifyPassword("Secret124", *user.PasswordHash), cryptox.ErrPasswordMismatch)
}
