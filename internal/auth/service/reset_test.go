package service

import (
	"context"
	"testing"
	"time"

	"github.com/guachince/guachince/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestPasswordResetFlow(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	auth, sessions, reset, _ := newTestServices(t, st)

	reg := registerUser(t, st, auth, "amelia@example.com", "Secret123")

	issue, err := reset.Request(ctx, "amelia@example.com", nil, nil)
	require.NoError(t, err)
	require.NotNil(t, issue)
	require.Len(t, issue.Token, 43)
	require.True(t, issue.ExpiresAt.After(time.Now()))

	require.NoError(t, reset.Confirm(ctx, issue.Token, "NewSecret456", nil, nil))

	t.Run("old password stops working", func(t *testing.T) {
		_, err := auth.Login(ctx, Credentials{Email: "amelia@example.com", Password: "Secret123"})
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("new password works", func(t *testing.T) {
		_, err := auth.Login(ctx, Credentials{Email: "amelia@example.com", Password: "NewSecret456"})
		require.NoError(t, err)
	})

	t.Run("confirmation revoked the prior session", func(t *testing.T) {
		identity, _, err := sessions.Validate(ctx, reg.Token)
		require.NoError(t, err)
		require.Nil(t, identity)
	})

	t.Run("token is single use", func(t *testing.T) {
		err := reset.Confirm(ctx, issue.Token, "AnotherPass789", nil, nil)
		require.ErrorIs(t, err, ErrInvalidOrExpiredToken)
	})
}

func TestPasswordResetUnknownEmail(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	_, _, reset, _ := newTestServices(t, st)

	issue, err := reset.Request(ctx, "nobody@example.com", nil, nil)
	require.NoError(t, err)
	require.Nil(t, issue)
}

func TestPasswordResetSupersede(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	auth, _, reset, _ := newTestServices(t, st)

	registerUser(t, st, auth, "amelia@example.com", "Secret123")

	first, err := reset.Request(ctx, "amelia@example.com", nil, nil)
	require.NoError(t, err)
	second, err := reset.Request(ctx, "amelia@example.com", nil, nil)
	require.NoError(t, err)

	err = reset.Confirm(ctx, first.Token, "NewSecret456", nil, nil)
	require.ErrorIs(t, err, ErrInvalidOrExpiredToken)

	require.NoError(t, reset.Confirm(ctx, second.Token, "NewSecret456", nil, nil))
}

func TestPasswordResetExpiredToken(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	auth, _, _, _ := newTestServices(t, st)

	registerUser(t, st, auth, "amelia@example.com", "Secret123")

	reset := &PasswordResetService{
		Store:    st,
		Sessions: &SessionService{Store: st},
		Audit:    &AuditService{Store: st},
		TTL:      time.Nanosecond,
	}

	issue, err := reset.Request(ctx, "amelia@example.com", nil, nil)
	require.NoError(t, err)

	time.Sleep(time.Millisecond)

	err = reset.Confirm(ctx, issue.Token, "NewSecret456", nil, nil)
	require.ErrorIs(t, err, ErrInvalidOrExpiredToken)
}

func TestPasswordResetStoresOnlyFingerprint(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	auth, _, reset, _ := newTestServices(t, st)

	registerUser(t, st, auth, "amelia@example.com", "Secret123")

	issue, err := reset.Request(ctx, "amelia@example.com", nil, nil)
	require.NoError(t, err)

	record, err := st.PasswordResetTokens().
		GetUsableResetTokenByHash(ctx, cryptox.FingerprintToken(issue.Token), time.Now().UTC())
	require.NoError(t, err)
	require.NotEqual(t, issue.Token, record.TokenHash)
	require.Equal(t, cryptox.FingerprintToken(issue.Token), record.TokenHash)
}
