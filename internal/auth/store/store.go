package store

import (
	"context"
	"errors"
	"time"

	"github.com/guachince/guachince/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. Sub-repositories keep the surface tidy and let services
// depend on exactly the tables they touch.
type Store interface {
	Users() Users
	Roles() Roles
	Sessions() Sessions
	PasswordResetTokens() PasswordResetTokens
	MFAEnrollments() MFAEnrollments
	AuditLogs() AuditLogs

	ApplyMigrations() error

	// WithTx executes fn within a transaction, committing on nil and rolling
	// back on error. Multi-step writes that must stay atomic (supersede a
	// reset token, promote an enrollment secret) go through here.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transaction-scoped Store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID loads a user with its roles and their permissions.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail loads a user with its roles and their permissions.
	// Email lookups drive login, reset requests, and MFA enrollment.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id provided by the app via ULID).
	// Returns ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// AssignRole links a user to a role.
	AssignRole(ctx context.Context, userID, roleID string) error

	// UpdatePasswordHash replaces the stored credential and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID, newHash string) error

	// ActivateMFA sets the confirmed TOTP secret and flips mfa_enabled.
	ActivateMFA(ctx context.Context, userID, secret string) error

	// SetActive flips the active flag. Existing sessions are not touched;
	// Validate rejects them lazily at read time.
	SetActive(ctx context.Context, userID string, active bool) error

	// ListUsers returns all users with roles loaded, newest first.
	ListUsers(ctx context.Context) ([]domain.User, error)
}

type Roles interface {
	// GetRoleByName fetches a role (permissions loaded) by its unique name.
	GetRoleByName(ctx context.Context, name string) (domain.Role, error)

	// ListRoles returns all roles with permissions loaded.
	ListRoles(ctx context.Context) ([]domain.Role, error)

	// CreateRole inserts a role; ErrAlreadyExists on a duplicate name.
	CreateRole(ctx context.Context, r domain.Role) error

	// CreatePermission inserts a permission; ErrAlreadyExists on a duplicate key.
	CreatePermission(ctx context.Context, p domain.Permission) error

	// GetPermissionByKey fetches a permission by its unique key.
	GetPermissionByKey(ctx context.Context, key string) (domain.Permission, error)

	// GrantPermission links a permission to a role, ignoring duplicates.
	GrantPermission(ctx context.Context, roleID, permissionID string) error
}

type Sessions interface {
	// CreateSession stores a new session row (token already hashed).
	CreateSession(ctx context.Context, s domain.Session) error

	// GetLiveSessionByTokenHash returns the unrevoked, unexpired session for
	// the fingerprint. ErrNotFound covers missing, revoked, and expired alike.
	GetLiveSessionByTokenHash(ctx context.Context, hash string, now time.Time) (domain.Session, error)

	// RevokeSessionByTokenHash stamps revoked_at on the matching live
	// session. Already-revoked or unknown fingerprints are a no-op.
	RevokeSessionByTokenHash(ctx context.Context, hash string, now time.Time) error

	// RevokeAllUserSessions stamps revoked_at on every live session the user
	// holds. Rows are kept for audit, never deleted.
	RevokeAllUserSessions(ctx context.Context, userID string, now time.Time) error

	// CountLiveUserSessions reports how many sessions would still validate.
	CountLiveUserSessions(ctx context.Context, userID string, now time.Time) (int, error)
}

type PasswordResetTokens interface {
	// CreateResetToken stores a new reset token row.
	CreateResetToken(ctx context.Context, t domain.PasswordResetToken) error

	// GetUsableResetTokenByHash returns the unused, unexpired token for the
	// fingerprint; ErrNotFound otherwise.
	GetUsableResetTokenByHash(ctx context.Context, hash string, now time.Time) (domain.PasswordResetToken, error)

	// MarkResetTokenUsed stamps used_at, consuming the token.
	MarkResetTokenUsed(ctx context.Context, id string, now time.Time) error

	// DeleteUnusedResetTokens removes any outstanding unused tokens for a
	// user so only the newest issue is ever redeemable.
	DeleteUnusedResetTokens(ctx context.Context, userID string) error

	// DeleteExpiredResetTokens removes tokens past their expiry. Used tokens
	// are kept; housekeeping only trims rows that can never be redeemed.
	DeleteExpiredResetTokens(ctx context.Context, now time.Time) error
}

type MFAEnrollments interface {
	// CreateEnrollment stores a pending enrollment.
	CreateEnrollment(ctx context.Context, e domain.MFAEnrollment) error

	// GetActiveEnrollmentByTokenHash returns the unexpired enrollment for
	// the fingerprint; ErrNotFound otherwise.
	GetActiveEnrollmentByTokenHash(ctx context.Context, hash string, now time.Time) (domain.MFAEnrollment, error)

	// DeleteEnrollment removes a single enrollment after confirmation.
	DeleteEnrollment(ctx context.Context, id string) error

	// DeleteUserEnrollments clears stale enrollments before issuing a new one.
	DeleteUserEnrollments(ctx context.Context, userID string) error

	// DeleteExpiredEnrollments removes enrollments past their confirm window.
	DeleteExpiredEnrollments(ctx context.Context, now time.Time) error
}

type AuditLogs interface {
	// CreateAuditLog appends an audit row.
	CreateAuditLog(ctx context.Context, a domain.AuditLog) error
}
