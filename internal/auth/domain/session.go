package domain

import "time"

// Session is one live login. Only the SHA-256 fingerprint of the bearer
// token is stored; the raw token leaves the server exactly once, inside the
// cookie. A session is valid iff RevokedAt is nil, ExpiresAt is in the
// future, and the owning user is still active.
type Session struct {
	ID        string
	UserID    string
	TokenHash string
	IPAddress *string
	UserAgent *string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}

// PasswordResetToken is a single-use, time-limited credential for replacing
// a forgotten password. At most one unused token exists per user.
type PasswordResetToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// MFAEnrollment binds a pending, unconfirmed TOTP secret to a user for the
// duration of the enroll → confirm window. Confirmation promotes the secret
// onto the user and deletes the record.
type MFAEnrollment struct {
	ID        string
	UserID    string
	TokenHash string
	Secret    string // base32 TOTP secret, not yet active
	ExpiresAt time.Time
	CreatedAt time.Time
}

// AuditLog records a security-relevant event. Writes are best-effort and
// never fail the operation that produced them.
type AuditLog struct {
	ID         string
	Action     string
	ActorID    *string
	TargetType string
	TargetID   *string
	Metadata   *string // JSON blob
	IPAddress  *string
	UserAgent  *string
	CreatedAt  time.Time
}
