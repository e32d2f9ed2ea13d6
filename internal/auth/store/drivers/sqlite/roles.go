package sqlite

import (
	"context"

	"github.com/guachince/guachince/internal/auth/domain"
)

type rolesRepo struct {
	q dbtx
}

func (r *rolesRepo) GetRoleByName(ctx context.Context, name string) (domain.Role, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT id, name, description, created_at, updated_at FROM roles WHERE name = ?`, name)

	role, err := scanRole(row)
	if err != nil {
		return domain.Role{}, mapNotFound(err)
	}

	perms, err := loadRolePermissions(ctx, r.q, role.ID)
	if err != nil {
		return domain.Role{}, err
	}
	role.Permissions = perms

	return role, nil
}

func (r *rolesRepo) ListRoles(ctx context.Context) ([]domain.Role, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, name, description, created_at, updated_at FROM roles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []domain.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range roles {
		perms, err := loadRolePermissions(ctx, r.q, roles[i].ID)
		if err != nil {
			return nil, err
		}
		roles[i].Permissions = perms
	}

	return roles, nil
}

func (r *rolesRepo) CreateRole(ctx context.Context, role domain.Role) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO roles (id, name, description, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		role.ID, role.Name, role.Description, role.CreatedAt, role.UpdatedAt,
	)
	return mapConflict(err)
}

func (r *rolesRepo) CreatePermission(ctx context.Context, p domain.Permission) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO permissions (id, key, description) VALUES (?, ?, ?)`,
		p.ID, p.Key, p.Description,
	)
	return mapConflict(err)
}

func (r *rolesRepo) GetPermissionByKey(ctx context.Context, key string) (domain.Permission, error) {
	var p domain.Permission
	err := r.q.QueryRowContext(ctx,
		`SELECT id, key, description FROM permissions WHERE key = ?`, key,
	).Scan(&p.ID, &p.Key, &p.Description)
	if err != nil {
		return domain.Permission{}, mapNotFound(err)
	}
	return p, nil
}

func (r *rolesRepo) GrantPermission(ctx context.Context, roleID, permissionID string) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT OR IGNORE INTO role_permissions (role_id, permission_id) VALUES (?, ?)`,
		roleID, permissionID,
	)
	return err
}

func scanRole(row rowScanner) (domain.Role, error) {
	var role domain.Role
	err := row.Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt)
	return role, err
}

func loadRolePermissions(ctx context.Context, q dbtx, roleID string) ([]domain.Permission, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT p.id, p.key, p.description
		 FROM role_permissions rp
		 JOIN permissions p ON p.id = rp.permission_id
		 WHERE rp.role_id = ?
		 ORDER BY p.key`,
		roleID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perms []domain.Permission
	for rows.Next() {
		var p domain.Permission
		if err := rows.Scan(&p.ID, &p.Key, &p.Description); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}

	return perms, rows.Err()
}
