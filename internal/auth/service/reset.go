package service

import (
	"context"
	"errors"
	"time"

	"github.com/guachince/guachince/internal/auth/domain"
	"github.com/guachince/guachince/internal/auth/store"
	"github.com/guachince/guachince/pkg/cryptox"
	"github.com/guachince/guachince/pkg/idx"
)

// DefaultResetTTL bounds how long an issued reset token stays redeemable.
const DefaultResetTTL = 30 * time.Minute

// ErrInvalidOrExpiredToken is the shared failure shape for reset and
// enrollment tokens: consumed, expired, superseded, and never-issued tokens
// are indistinguishable to the caller.
var ErrInvalidOrExpiredToken = errors.New("invalid_or_expired_token")

// PasswordResetService issues and redeems single-use reset tokens.
type PasswordResetService struct {
	Store    store.Store
	Sessions *SessionService
	Audit    *AuditService
	TTL      time.Duration
}

// ResetIssue is returned when a token was actually minted. Outside prod the
// transport may echo the raw token since no mailer exists yet.
type ResetIssue struct {
	Token     string
	ExpiresAt time.Time
}

func (s *PasswordResetService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return DefaultResetTTL
}

// Request issues a reset token for the account behind email. An unknown
// email returns (nil, nil) and the transport still reports success, so the
// endpoint never leaks whether an account exists. Issuing supersedes any
// outstanding unused token atomically: at most one token per user can ever
// be redeemed.
func (s *PasswordResetService) Request(ctx context.Context, email string, ipAddress, userAgent *string) (*ResetIssue, error) {
	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	token, err := cryptox.GenerateToken()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	reset := domain.PasswordResetToken{
		ID:        idx.New().String(),
		UserID:    user.ID,
		TokenHash: cryptox.FingerprintToken(token),
		ExpiresAt: now.Add(s.ttl()),
		CreatedAt: now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.PasswordResetTokens().DeleteUnusedResetTokens(ctx, user.ID); err != nil {
			return err
		}
		return tx.PasswordResetTokens().CreateResetToken(ctx, reset)
	})
	if err != nil {
		return nil, err
	}

	s.Audit.Log(ctx, AuditEntry{
		Action:     AuditPasswordResetRequested,
		ActorID:    &user.ID,
		TargetType: "User",
		TargetID:   &user.ID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
	})

	return &ResetIssue{Token: token, ExpiresAt: reset.ExpiresAt}, nil
}

// Confirm redeems a reset token: stores the new password hash, consumes the
// token, and revokes every session the user held — a password change
// invalidates all prior logins. Failure mutates nothing.
func (s *PasswordResetService) Confirm(ctx context.Context, rawToken, newPassword string, ipAddress, userAgent *string) error {
	now := time.Now().UTC()
	reset, err := s.Store.PasswordResetTokens().
		GetUsableResetTokenByHash(ctx, cryptox.FingerprintToken(rawToken), now)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidOrExpiredToken
		}
		return err
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdatePasswordHash(ctx, reset.UserID, hash); err != nil {
			return err
		}
		if err := tx.PasswordResetTokens().MarkResetTokenUsed(ctx, reset.ID, now); err != nil {
			return err
		}
		return tx.Sessions().RevokeAllUserSessions(ctx, reset.UserID, now)
	})
	if err != nil {
		return err
	}

	s.Audit.Log(ctx, AuditEntry{
		Action:     AuditPasswordResetConfirmed,
		ActorID:    &reset.UserID,
		TargetType: "User",
		TargetID:   &reset.UserID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
	})

	return nil
}
