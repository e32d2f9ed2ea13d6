package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/guachince/guachince/internal/auth/domain"
)

type resetTokensRepo struct {
	q dbtx
}

func (r *resetTokensRepo) CreateResetToken(ctx context.Context, t domain.PasswordResetToken) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO password_reset_tokens (id, user_id, token_hash, expires_at, used_at, created_at)
		 VALUES (?, ?, ?, ?, NULL, ?)`,
		t.ID, t.UserID, t.TokenHash, t.ExpiresAt, t.CreatedAt,
	)
	return mapConflict(err)
}

func (r *resetTokensRepo) GetUsableResetTokenByHash(ctx context.Context, hash string, now time.Time) (domain.PasswordResetToken, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT id, user_id, token_hash, expires_at, used_at, created_at
		 FROM password_reset_tokens
		 WHERE token_hash = ? AND used_at IS NULL AND expires_at > ?`,
		hash, now,
	)

	var (
		t      domain.PasswordResetToken
		usedAt sql.NullTime
	)
	if err := row.Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &usedAt, &t.CreatedAt); err != nil {
		return domain.PasswordResetToken{}, mapNotFound(err)
	}

	t.UsedAt = mapNullTime(usedAt)
	return t, nil
}

func (r *resetTokensRepo) MarkResetTokenUsed(ctx context.Context, id string, now time.Time) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE password_reset_tokens SET used_at = ? WHERE id = ? AND used_at IS NULL`,
		now, id,
	)
	return err
}

func (r *resetTokensRepo) DeleteUnusedResetTokens(ctx context.Context, userID string) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM password_reset_tokens WHERE user_id = ? AND used_at IS NULL`,
		userID,
	)
	return err
}

func (r *resetTokensRepo) DeleteExpiredResetTokens(ctx context.Context, now time.Time) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM password_reset_tokens WHERE used_at IS NULL AND expires_at <= ?`,
		now,
	)
	return err
}
