package service

import (
	"context"
	"errors"
	"time"

	"github.com/guachince/guachince/internal/auth/domain"
	"github.com/guachince/guachince/internal/auth/store"
	"github.com/guachince/guachince/pkg/cryptox"
	"github.com/guachince/guachince/pkg/idx"
	"github.com/guachince/guachince/pkg/slogx"
)

var (
	// ErrInvalidCredentials deliberately covers both unknown emails and wrong
	// passwords so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrAccountInactive    = errors.New("account_inactive")
	ErrMFASetupRequired   = errors.New("mfa_setup_required")
	ErrMFACodeRequired    = errors.New("mfa_code_required")
	ErrInvalidMFACode     = errors.New("invalid_mfa_code")
	ErrEmailTaken         = errors.New("email_taken")
)

// AuthService is the request-time authority for logins and registrations.
type AuthService struct {
	Store    store.Store
	Sessions *SessionService
	Audit    *AuditService

	// DefaultRole is assigned to self-registered accounts.
	DefaultRole string
}

// Credentials carries a login attempt plus the client metadata recorded on
// the resulting session.
type Credentials struct {
	Email     string
	Password  string
	MFACode   string
	IPAddress *string
	UserAgent *string
}

// Registration is the payload for a new customer account.
type Registration struct {
	FirstName string
	LastName  string
	Email     string
	Phone     *string
	Password  string
	IPAddress *string
	UserAgent *string
}

// LoginResult is handed to the transport layer: the identity payload for the
// response body and the raw token plus expiry for the session cookie.
type LoginResult struct {
	Identity  domain.Identity
	Token     string
	ExpiresAt time.Time
	SessionID string
}

// Login runs the full decision sequence: credential check, active check, MFA
// policy, TOTP verification, session mint. The error distinguishes exactly
// what the caller legitimately needs to branch on and nothing more.
func (s *AuthService) Login(ctx context.Context, creds Credentials) (LoginResult, error) {
	user, err := s.Store.Users().GetUserByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.auditLoginFailure(ctx, nil, creds, "user_not_found")
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	// An account without a local credential cannot password-login either.
	if user.PasswordHash == nil {
		s.auditLoginFailure(ctx, &user.ID, creds, "user_not_found")
		return LoginResult{}, ErrInvalidCredentials
	}

	if !user.IsActive {
		return LoginResult{}, ErrAccountInactive
	}

	if cryptox.VerifyPassword(creds.Password, *user.PasswordHash) != nil {
		s.auditLoginFailure(ctx, &user.ID, creds, "invalid_password")
		return LoginResult{}, ErrInvalidCredentials
	}

	identity := domain.NewIdentity(user)

	// MFA is mandatory when the account has it enabled OR any currently
	// assigned role is privileged. Role revocation therefore silently makes
	// MFA optional again; that mirrors the evaluated-at-login policy.
	requiredByRole := domain.RequiresMFAByRole(identity.Roles)

	if requiredByRole && !user.MFAEnabled {
		// Fail distinctly so the client can route into the enroll flow.
		return LoginResult{}, ErrMFASetupRequired
	}

	if user.MFAEnabled || requiredByRole {
		if creds.MFACode == "" {
			return LoginResult{}, ErrMFACodeRequired
		}

		secret := ""
		if user.MFASecret != nil {
			secret = *user.MFASecret
		}
		if !verifyTOTP(creds.MFACode, secret) {
			s.auditLoginFailure(ctx, &user.ID, creds, "mfa_failed")
			return LoginResult{}, ErrInvalidMFACode
		}
	}

	token, session, err := s.Sessions.Create(ctx, user.ID, creds.IPAddress, creds.UserAgent)
	if err != nil {
		return LoginResult{}, err
	}

	s.Audit.Log(ctx, AuditEntry{
		Action:     AuditLogin,
		ActorID:    &user.ID,
		TargetType: "User",
		TargetID:   &user.ID,
		IPAddress:  creds.IPAddress,
		UserAgent:  creds.UserAgent,
	})

	return LoginResult{
		Identity:  identity,
		Token:     token,
		ExpiresAt: session.ExpiresAt,
		SessionID: session.ID,
	}, nil
}

// Register creates a customer account and, like a successful login, mints a
// session for it. Duplicate emails report ErrEmailTaken.
func (s *AuthService) Register(ctx context.Context, reg Registration) (LoginResult, error) {
	role, err := s.Store.Roles().GetRoleByName(ctx, s.DefaultRole)
	if err != nil {
		return LoginResult{}, err
	}

	hash, err := cryptox.HashPassword(reg.Password)
	if err != nil {
		return LoginResult{}, err
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           idx.New().String(),
		Email:        reg.Email,
		FirstName:    reg.FirstName,
		LastName:     reg.LastName,
		Phone:        reg.Phone,
		PasswordHash: &hash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrEmailTaken
			}
			return err
		}
		return tx.Users().AssignRole(ctx, user.ID, role.ID)
	})
	if err != nil {
		return LoginResult{}, err
	}

	user.Roles = []domain.Role{role}

	token, session, err := s.Sessions.Create(ctx, user.ID, reg.IPAddress, reg.UserAgent)
	if err != nil {
		return LoginResult{}, err
	}

	s.Audit.Log(ctx, AuditEntry{
		Action:     AuditRegister,
		ActorID:    &user.ID,
		TargetType: "User",
		TargetID:   &user.ID,
		IPAddress:  reg.IPAddress,
		UserAgent:  reg.UserAgent,
	})

	return LoginResult{
		Identity:  domain.NewIdentity(user),
		Token:     token,
		ExpiresAt: session.ExpiresAt,
		SessionID: session.ID,
	}, nil
}

// Logout revokes the session behind the presented bearer token. Idempotent:
// a stale or unknown token still logs out cleanly.
func (s *AuthService) Logout(ctx context.Context, rawToken string, identity *domain.Identity, ipAddress, userAgent *string) error {
	if rawToken != "" {
		if err := s.Sessions.Revoke(ctx, cryptox.FingerprintToken(rawToken)); err != nil {
			return err
		}
	}

	var actor *string
	if identity != nil {
		actor = &identity.ID
	}
	s.Audit.Log(ctx, AuditEntry{
		Action:     AuditLogout,
		ActorID:    actor,
		TargetType: "User",
		TargetID:   actor,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
	})

	return nil
}

func (s *AuthService) auditLoginFailure(ctx context.Context, userID *string, creds Credentials, reason string) {
	slogx.FromContext(ctx).Info("login failed", "reason", reason)
	s.Audit.Log(ctx, AuditEntry{
		Action:     AuditLoginFailed,
		TargetType: "User",
		TargetID:   userID,
		Metadata:   map[string]string{"reason": reason},
		IPAddress:  creds.IPAddress,
		UserAgent:  creds.UserAgent,
	})
}
