package sqlite

import (
	"context"
	"time"

	"github.com/guachince/guachince/internal/auth/domain"
)

type mfaEnrollmentsRepo struct {
	q dbtx
}

func (r *mfaEnrollmentsRepo) CreateEnrollment(ctx context.Context, e domain.MFAEnrollment) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO mfa_enrollments (id, user_id, token_hash, secret, expires_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.TokenHash, e.Secret, e.ExpiresAt, e.CreatedAt,
	)
	return mapConflict(err)
}

func (r *mfaEnrollmentsRepo) GetActiveEnrollmentByTokenHash(ctx context.Context, hash string, now time.Time) (domain.MFAEnrollment, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT id, user_id, token_hash, secret, expires_at, created_at
		 FROM mfa_enrollments
		 WHERE token_hash = ? AND expires_at > ?`,
		hash, now,
	)

	var e domain.MFAEnrollment
	if err := row.Scan(&e.ID, &e.UserID, &e.TokenHash, &e.Secret, &e.ExpiresAt, &e.CreatedAt); err != nil {
		return domain.MFAEnrollment{}, mapNotFound(err)
	}
	return e, nil
}

func (r *mfaEnrollmentsRepo) DeleteEnrollment(ctx context.Context, id string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM mfa_enrollments WHERE id = ?`, id)
	return err
}

func (r *mfaEnrollmentsRepo) DeleteUserEnrollments(ctx context.Context, userID string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM mfa_enrollments WHERE user_id = ?`, userID)
	return err
}

func (r *mfaEnrollmentsRepo) DeleteExpiredEnrollments(ctx context.Context, now time.Time) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM mfa_enrollments WHERE expires_at <= ?`, now)
	return err
}
