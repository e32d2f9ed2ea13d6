package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/guachince/guachince/internal/auth/domain"
)

type sessionsRepo struct {
	q dbtx
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, token_hash, ip_address, user_agent, expires_at, revoked_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, NULL, ?)`,
		s.ID, s.UserID, s.TokenHash,
		mapOptionalString(s.IPAddress), mapOptionalString(s.UserAgent),
		s.ExpiresAt, s.CreatedAt,
	)
	return mapConflict(err)
}

func (r *sessionsRepo) GetLiveSessionByTokenHash(ctx context.Context, hash string, now time.Time) (domain.Session, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT id, user_id, token_hash, ip_address, user_agent, expires_at, revoked_at, created_at
		 FROM sessions
		 WHERE token_hash = ? AND revoked_at IS NULL AND expires_at > ?`,
		hash, now,
	)

	var (
		s         domain.Session
		ipAddress sql.NullString
		userAgent sql.NullString
		revokedAt sql.NullTime
	)
	err := row.Scan(&s.ID, &s.UserID, &s.TokenHash, &ipAddress, &userAgent,
		&s.ExpiresAt, &revokedAt, &s.CreatedAt)
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}

	s.IPAddress = mapNullString(ipAddress)
	s.UserAgent = mapNullString(userAgent)
	s.RevokedAt = mapNullTime(revokedAt)
	return s, nil
}

func (r *sessionsRepo) RevokeSessionByTokenHash(ctx context.Context, hash string, now time.Time) error {
	// Matching zero rows (unknown or already revoked) is deliberately a no-op.
	_, err := r.q.ExecContext(ctx,
		`UPDATE sessions SET revoked_at = ? WHERE token_hash = ? AND revoked_at IS NULL`,
		now, hash,
	)
	return err
}

func (r *sessionsRepo) RevokeAllUserSessions(ctx context.Context, userID string, now time.Time) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE sessions SET revoked_at = ? WHERE user_id = ? AND revoked_at IS NULL`,
		now, userID,
	)
	return err
}

func (r *sessionsRepo) CountLiveUserSessions(ctx context.Context, userID string, now time.Time) (int, error) {
	var count int
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sessions WHERE user_id = ? AND revoked_at IS NULL AND expires_at > ?`,
		userID, now,
	).Scan(&count)
	return count, err
}
