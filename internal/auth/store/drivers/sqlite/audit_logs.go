package sqlite

import (
	"context"

	"github.com/guachince/guachince/internal/auth/domain"
)

type auditLogsRepo struct {
	q dbtx
}

func (r *auditLogsRepo) CreateAuditLog(ctx context.Context, a domain.AuditLog) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO audit_logs (id, action, actor_id, target_type, target_id, metadata, ip_address, user_agent, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Action,
		mapOptionalString(a.ActorID), a.TargetType, mapOptionalString(a.TargetID),
		mapOptionalString(a.Metadata), mapOptionalString(a.IPAddress), mapOptionalString(a.UserAgent),
		a.CreatedAt,
	)
	return err
}
