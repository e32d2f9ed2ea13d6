package sqlite

import (
	"context"
	"database/sql"

	"github.com/guachince/guachince/internal/auth/store"
)

type txStore struct {
	tx *sql.Tx
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{tx: tx}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // outer DB stays open; caller commits or rolls back

// Ping is a no-op inside a transaction; the connection already exists.
func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	// Nested transactions are not supported; SAVEPOINTs could emulate them
	// if a flow ever needs it.
	return sql.ErrTxDone
}

func (t *txStore) ApplyMigrations() error { return nil } // migrations run before any tx starts

func (t *txStore) Users() store.Users                             { return &usersRepo{q: t.tx} }
func (t *txStore) Roles() store.Roles                             { return &rolesRepo{q: t.tx} }
func (t *txStore) Sessions() store.Sessions                       { return &sessionsRepo{q: t.tx} }
func (t *txStore) PasswordResetTokens() store.PasswordResetTokens { return &resetTokensRepo{q: t.tx} }
func (t *txStore) MFAEnrollments() store.MFAEnrollments           { return &mfaEnrollmentsRepo{q: t.tx} }
func (t *txStore) AuditLogs() store.AuditLogs                     { return &auditLogsRepo{q: t.tx} }
