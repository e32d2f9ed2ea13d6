package service

import (
	"context"
	"testing"
	"time"

	"github.com/guachince/guachince/internal/auth/domain"
	"github.com/guachince/guachince/pkg/cryptox"
	"github.com/guachince/guachince/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestSessionValidate(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	auth, sessions, _, _ := newTestServices(t, st)

	reg := registerUser(t, st, auth, "amelia@example.com", "Secret123")

	t.Run("resolves a live token", func(t *testing.T) {
		identity, session, err := sessions.Validate(ctx, reg.Token)
		require.NoError(t, err)
		require.NotNil(t, identity)
		require.Equal(t, reg.Identity.ID, identity.ID)
		require.Equal(t, reg.SessionID, session.ID)
	})

	t.Run("empty token is anonymous", func(t *testing.T) {
		identity, session, err := sessions.Validate(ctx, "")
		require.NoError(t, err)
		require.Nil(t, identity)
		require.Nil(t, session)
	})

	t.Run("unknown token is anonymous", func(t *testing.T) {
		garbage, err := cryptox.GenerateToken()
		require.NoError(t, err)

		identity, session, err := sessions.Validate(ctx, garbage)
		require.NoError(t, err)
		require.Nil(t, identity)
		require.Nil(t, session)
	})

	t.Run("revoked token is anonymous", func(t *testing.T) {
		token, _, err := sessions.Create(ctx, reg.Identity.ID, nil, nil)
		require.NoError(t, err)

		require.NoError(t, sessions.Revoke(ctx, cryptox.FingerprintToken(token)))

		identity, session, err := sessions.Validate(ctx, token)
		require.NoError(t, err)
		require.Nil(t, identity)
		require.Nil(t, session)
	})
}

func TestSessionValidateExpired(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	auth, _, _, _ := newTestServices(t, st)

	reg := registerUser(t, st, auth, "amelia@example.com", "Secret123")

	// Insert a session that is already past its expiry.
	token, err := cryptox.GenerateToken()
	require.NoError(t, err)

	now := time.Now().UTC()
	require.NoError(t, st.Sessions().CreateSession(ctx, domain.Session{
		ID:        idx.New().String(),
		UserID:    reg.Identity.ID,
		TokenHash: cryptox.FingerprintToken(token),
		ExpiresAt: now.Add(-time.Minute),
		CreatedAt: now.Add(-time.Hour),
	}))

	sessions := &SessionService{Store: st}
	identity, session, err := sessions.Validate(ctx, token)
	require.NoError(t, err)
	require.Nil(t, identity)
	require.Nil(t, session)
}

func TestSessionValidateDeactivatedUser(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	auth, sessions, _, _ := newTestServices(t, st)

	reg := registerUser(t, st, auth, "amelia@example.com", "Secret123")
	require.NoError(t, st.Users().SetActive(ctx, reg.Identity.ID, false))

	identity, session, err := sessions.Validate(ctx, reg.Token)
	require.NoError(t, err)
	require.Nil(t, identity)
	require.Nil(t, session)

	// Reactivation makes the surviving session resolve again.
	require.NoError(t, st.Users().SetActive(ctx, reg.Identity.ID, true))

	identity, _, err = sessions.Validate(ctx, reg.Token)
	require.NoError(t, err)
	require.NotNil(t, identity)
}

func TestSessionRevokeAll(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	auth, sessions, _, _ := newTestServices(t, st)

	reg := registerUser(t, st, auth, "amelia@example.com", "Secret123")

	tokenB, _, err := sessions.Create(ctx, reg.Identity.ID, nil, nil)
	require.NoError(t, err)

	count, err := st.Sessions().CountLiveUserSessions(ctx, reg.Identity.ID, time.Now().UTC())
	require.NoError(t, err)
	require.Equal(t, 2, count)

	require.NoError(t, sessions.RevokeAll(ctx, reg.Identity.ID))

	for _, token := range []string{reg.Token, tokenB} {
		identity, _, err := sessions.Validate(ctx, token)
		require.NoError(t, err)
		require.Nil(t, identity)
	}

	count, err = st.Sessions().CountLiveUserSessions(ctx, reg.Identity.ID, time.Now().UTC())
	require.NoError(t, err)
	require.Zero(t, count)
}
