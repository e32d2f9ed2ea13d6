package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/guachince/guachince/internal/auth/domain"
)

type usersRepo struct {
	q dbtx
}

const userColumns = `id, email, first_name, last_name, phone, password_hash,
	is_active, mfa_enabled, mfa_secret, created_at, updated_at`

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return r.scanUserWithRoles(ctx, row)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return r.scanUserWithRoles(ctx, row)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO users (id, email, first_name, last_name, phone, password_hash,
			is_active, mfa_enabled, mfa_secret, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.FirstName, u.LastName,
		mapOptionalString(u.Phone), mapOptionalString(u.PasswordHash),
		u.IsActive, u.MFAEnabled, mapOptionalString(u.MFASecret),
		u.CreatedAt, u.UpdatedAt,
	)
	return mapConflict(err)
}

func (r *usersRepo) AssignRole(ctx context.Context, userID, roleID string) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT OR IGNORE INTO user_roles (user_id, role_id) VALUES (?, ?)`,
		userID, roleID,
	)
	return err
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID, newHash string) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		newHash, time.Now().UTC(), userID,
	)
	return err
}

func (r *usersRepo) ActivateMFA(ctx context.Context, userID, secret string) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE users SET mfa_secret = ?, mfa_enabled = 1, updated_at = ? WHERE id = ?`,
		secret, time.Now().UTC(), userID,
	)
	return err
}

func (r *usersRepo) SetActive(ctx context.Context, userID string, active bool) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE users SET is_active = ?, updated_at = ? WHERE id = ?`,
		active, time.Now().UTC(), userID,
	)
	return err
}

func (r *usersRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range users {
		roles, err := loadUserRoles(ctx, r.q, users[i].ID)
		if err != nil {
			return nil, err
		}
		users[i].Roles = roles
	}

	return users, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var (
		u            domain.User
		phone        sql.NullString
		passwordHash sql.NullString
		mfaSecret    sql.NullString
	)

	err := row.Scan(
		&u.ID, &u.Email, &u.FirstName, &u.LastName,
		&phone, &passwordHash,
		&u.IsActive, &u.MFAEnabled, &mfaSecret,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}

	u.Phone = mapNullString(phone)
	u.PasswordHash = mapNullString(passwordHash)
	u.MFASecret = mapNullString(mfaSecret)
	return u, nil
}

func (r *usersRepo) scanUserWithRoles(ctx context.Context, row *sql.Row) (domain.User, error) {
	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	roles, err := loadUserRoles(ctx, r.q, u.ID)
	if err != nil {
		return domain.User{}, err
	}
	u.Roles = roles

	return u, nil
}

// loadUserRoles materialises the user's role graph (roles plus each role's
// permissions) in a single join, folding duplicate role rows as they stream.
func loadUserRoles(ctx context.Context, q dbtx, userID string) ([]domain.Role, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT r.id, r.name, r.description, r.created_at, r.updated_at,
		        p.id, p.key, p.description
		 FROM user_roles ur
		 JOIN roles r ON r.id = ur.role_id
		 LEFT JOIN role_permissions rp ON rp.role_id = r.id
		 LEFT JOIN permissions p ON p.id = rp.permission_id
		 WHERE ur.user_id = ?
		 ORDER BY r.name, p.key`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		roles []domain.Role
		index = make(map[string]int)
	)

	for rows.Next() {
		var (
			role     domain.Role
			permID   sql.NullString
			permKey  sql.NullString
			permDesc sql.NullString
		)
		if err := rows.Scan(
			&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt,
			&permID, &permKey, &permDesc,
		); err != nil {
			return nil, err
		}

		pos, ok := index[role.ID]
		if !ok {
			pos = len(roles)
			index[role.ID] = pos
			roles = append(roles, role)
		}

		if permID.Valid {
			roles[pos].Permissions = append(roles[pos].Permissions, domain.Permission{
				ID:          permID.String,
				Key:         permKey.String,
				Description: permDesc.String,
			})
		}
	}

	return roles, rows.Err()
}
