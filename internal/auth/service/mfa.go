package service

import (
	"context"
	"errors"
	"time"

	"github.com/guachince/guachince/internal/auth/domain"
	"github.com/guachince/guachince/internal/auth/store"
	"github.com/guachince/guachince/pkg/cryptox"
	"github.com/guachince/guachince/pkg/idx"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// DefaultEnrollmentTTL bounds the enroll → confirm window.
const DefaultEnrollmentTTL = 15 * time.Minute

var ErrMFAAlreadyEnabled = errors.New("mfa_already_enabled")

// MFAService handles TOTP enrollment. A generated secret stays inert inside
// the enrollment record until the user proves possession of it by confirming
// a current code; only then is it promoted onto the account.
type MFAService struct {
	Store  store.Store
	Audit  *AuditService
	Issuer string
	TTL    time.Duration
}

// Enrollment is returned to the caller for provisioning: the opaque token
// that binds the confirm call, and the secret/URL for the authenticator app.
type Enrollment struct {
	Token      string
	Secret     string
	OTPAuthURL string
	ExpiresAt  time.Time
}

func (s *MFAService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return DefaultEnrollmentTTL
}

// Enroll starts MFA setup. The password is re-verified here even for an
// authenticated caller so a hijacked session cannot silently enable MFA.
func (s *MFAService) Enroll(ctx context.Context, email, password string, ipAddress, userAgent *string) (Enrollment, error) {
	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Enrollment{}, ErrInvalidCredentials
		}
		return Enrollment{}, err
	}

	if user.PasswordHash == nil || cryptox.VerifyPassword(password, *user.PasswordHash) != nil {
		return Enrollment{}, ErrInvalidCredentials
	}

	if user.MFAEnabled {
		return Enrollment{}, ErrMFAAlreadyEnabled
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.Issuer,
		AccountName: user.Email,
		Period:      totpPeriod,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return Enrollment{}, err
	}

	token, err := cryptox.GenerateToken()
	if err != nil {
		return Enrollment{}, err
	}

	now := time.Now().UTC()
	enrollment := domain.MFAEnrollment{
		ID:        idx.New().String(),
		UserID:    user.ID,
		TokenHash: cryptox.FingerprintToken(token),
		Secret:    key.Secret(),
		ExpiresAt: now.Add(s.ttl()),
		CreatedAt: now,
	}

	// Clearing stale enrollments and inserting the new one is atomic so a
	// user can never hold two confirmable secrets.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.MFAEnrollments().DeleteUserEnrollments(ctx, user.ID); err != nil {
			return err
		}
		return tx.MFAEnrollments().CreateEnrollment(ctx, enrollment)
	})
	if err != nil {
		return Enrollment{}, err
	}

	s.Audit.Log(ctx, AuditEntry{
		Action:     AuditMFAEnrollStarted,
		ActorID:    &user.ID,
		TargetType: "User",
		TargetID:   &user.ID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
	})

	return Enrollment{
		Token:      token,
		Secret:     key.Secret(),
		OTPAuthURL: key.URL(),
		ExpiresAt:  enrollment.ExpiresAt,
	}, nil
}

// Confirm finishes enrollment: a valid current code promotes the pending
// secret onto the user, flips MFA on, and destroys the enrollment record.
// A wrong code mutates nothing, leaving the enrollment retryable until it
// expires on its own.
func (s *MFAService) Confirm(ctx context.Context, enrollmentToken, code string, ipAddress, userAgent *string) error {
	now := time.Now().UTC()
	enrollment, err := s.Store.MFAEnrollments().
		GetActiveEnrollmentByTokenHash(ctx, cryptox.FingerprintToken(enrollmentToken), now)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidOrExpiredToken
		}
		return err
	}

	if !verifyTOTP(code, enrollment.Secret) {
		return ErrInvalidMFACode
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().ActivateMFA(ctx, enrollment.UserID, enrollment.Secret); err != nil {
			return err
		}
		return tx.MFAEnrollments().DeleteEnrollment(ctx, enrollment.ID)
	})
	if err != nil {
		return err
	}

	s.Audit.Log(ctx, AuditEntry{
		Action:     AuditMFAEnabled,
		ActorID:    &enrollment.UserID,
		TargetType: "User",
		TargetID:   &enrollment.UserID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
	})

	return nil
}

const totpPeriod = 30

// verifyTOTP checks a six-digit code against the secret with a ±1 step skew
// to tolerate client clock drift. The window is policy; do not narrow it.
func verifyTOTP(code, secret string) bool {
	if secret == "" {
		return false
	}

	ok, err := totp.ValidateCustom(code, secret, time.Now().UTC(), totp.ValidateOpts{
		Period:    totpPeriod,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}
