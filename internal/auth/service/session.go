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

// DefaultSessionTTL mirrors the cookie max-age so the client-held token and
// the server-side validity window always agree.
const DefaultSessionTTL = 30 * 24 * time.Hour

// SessionService creates, validates, and revokes login sessions. Only token
// fingerprints reach the store; the raw token is returned to the caller once
// and is unrecoverable afterwards.
type SessionService struct {
	Store store.Store
	TTL   time.Duration
}

func (s *SessionService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return DefaultSessionTTL
}

// Create mints a session for the user and returns the raw bearer token
// alongside the stored record.
func (s *SessionService) Create(ctx context.Context, userID string, ipAddress, userAgent *string) (string, domain.Session, error) {
	token, err := cryptox.GenerateToken()
	if err != nil {
		return "", domain.Session{}, err
	}

	now := time.Now().UTC()
	session := domain.Session{
		ID:        idx.New().String(),
		UserID:    userID,
		TokenHash: cryptox.FingerprintToken(token),
		IPAddress: ipAddress,
		UserAgent: userAgent,
		ExpiresAt: now.Add(s.ttl()),
		CreatedAt: now,
	}

	if err := s.Store.Sessions().CreateSession(ctx, session); err != nil {
		return "", domain.Session{}, err
	}

	return token, session, nil
}

// Validate resolves a presented bearer token to an identity. An anonymous or
// stale caller is a normal case, not a fault: missing, revoked, and expired
// sessions, and sessions whose user has been deactivated, all return
// (nil, nil, nil).
func (s *SessionService) Validate(ctx context.Context, rawToken string) (*domain.Identity, *domain.Session, error) {
	if rawToken == "" {
		return nil, nil, nil
	}

	now := time.Now().UTC()
	session, err := s.Store.Sessions().GetLiveSessionByTokenHash(ctx, cryptox.FingerprintToken(rawToken), now)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	user, err := s.Store.Users().GetUserByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	// Deactivation is enforced lazily: the session row survives but stops
	// resolving the moment the flag flips.
	if !user.IsActive {
		return nil, nil, nil
	}

	identity := domain.NewIdentity(user)
	return &identity, &session, nil
}

// Revoke marks the session with the given token fingerprint as revoked.
// Unknown and already-revoked fingerprints are a no-op.
func (s *SessionService) Revoke(ctx context.Context, tokenHash string) error {
	return s.Store.Sessions().RevokeSessionByTokenHash(ctx, tokenHash, time.Now().UTC())
}

// RevokeAll revokes every live session the user holds.
func (s *SessionService) RevokeAll(ctx context.Context, userID string) error {
	return s.Store.Sessions().RevokeAllUserSessions(ctx, userID, time.Now().UTC())
}
