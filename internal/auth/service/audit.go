package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/guachince/guachince/internal/auth/domain"
	"github.com/guachince/guachince/internal/auth/store"
	"github.com/guachince/guachince/pkg/idx"
	"github.com/guachince/guachince/pkg/slogx"
)

// Audit actions emitted by the auth flows.
const (
	AuditRegister               = "auth.register"
	AuditLogin                  = "auth.login"
	AuditLoginFailed            = "auth.login_failed"
	AuditLogout                 = "auth.logout"
	AuditPasswordResetRequested = "auth.password_reset_requested"
	AuditPasswordResetConfirmed = "auth.password_reset_confirmed"
	AuditMFAEnrollStarted       = "auth.mfa_enroll_started"
	AuditMFAEnabled             = "auth.mfa_enabled"
)

// AuditEntry describes one security-relevant event. Metadata must stay
// non-sensitive: reason codes, never credentials.
type AuditEntry struct {
	Action     string
	ActorID    *string
	TargetType string
	TargetID   *string
	Metadata   map[string]string
	IPAddress  *string
	UserAgent  *string
}

// AuditService appends audit rows on a best-effort basis: a failed write is
// logged and swallowed so it can never fail or roll back the primary
// operation. Flows therefore call Log outside their transactions.
type AuditService struct {
	Store store.Store
}

func (s *AuditService) Log(ctx context.Context, e AuditEntry) {
	var metadata *string
	if len(e.Metadata) > 0 {
		if raw, err := json.Marshal(e.Metadata); err == nil {
			encoded := string(raw)
			metadata = &encoded
		}
	}

	err := s.Store.AuditLogs().CreateAuditLog(ctx, domain.AuditLog{
		ID:         idx.New().String(),
		Action:     e.Action,
		ActorID:    e.ActorID,
		TargetType: e.TargetType,
		TargetID:   e.TargetID,
		Metadata:   metadata,
		IPAddress:  e.IPAddress,
		UserAgent:  e.UserAgent,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		slogx.FromContext(ctx).Warn("failed to write audit log", "action", e.Action, "err", err)
	}
}
