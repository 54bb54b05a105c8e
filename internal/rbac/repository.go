package rbac

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/modelgate/modelgate/internal/shared"
)

// RepositoryPort defines the store operations the resolver needs: point
// inserts plus the set-membership joins behind permission checks.
type RepositoryPort interface {
	RoleIDsForUser(ctx context.Context, userID string) ([]int64, error)
	PermissionExists(ctx context.Context, roleIDs []int64, resource, action string) (bool, error)
	PermissionIDsForRoles(ctx context.Context, roleIDs []int64) ([]int64, error)
	ListRoles(ctx context.Context) ([]Role, error)
	CreateRole(ctx context.Context, name, description string) (Role, error)
	ListPermissions(ctx context.Context) ([]Permission, error)
	CreatePermission(ctx context.Context, p Permission) (Permission, error)
	AssignRoleToUser(ctx context.Context, userID string, roleID int64) error
	AttachPermissionToRole(ctx context.Context, roleID, permissionID int64) error
	RoleNamesForUser(ctx context.Context, userID string) ([]string, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// RoleIDsForUser returns the role ids assigned to a user.
func (r *Repository) RoleIDsForUser(ctx context.Context, userID string) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT role_id FROM user_roles WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// PermissionExists reports whether any of the roles carries a permission
// matching (resource, action) exactly.
func (r *Repository) PermissionExists(ctx context.Context, roleIDs []int64, resource, action string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1
			FROM permissions p
			JOIN role_permissions rp ON rp.permission_id = p.id
			WHERE rp.role_id = ANY($1) AND p.resource = $2 AND p.action = $3
		)`, roleIDs, resource, action).Scan(&exists)
	return exists, err
}

// PermissionIDsForRoles collects the distinct permission ids reachable
// through the given roles.
func (r *Repository) PermissionIDsForRoles(ctx context.Context, roleIDs []int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT permission_id FROM role_permissions WHERE role_id = ANY($1)`, roleIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListRoles returns all roles ordered by id.
func (r *Repository) ListRoles(ctx context.Context) ([]Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, COALESCE(description, ''), created_at, updated_at FROM roles ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var roles []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// CreateRole inserts a role and returns the stored row.
func (r *Repository) CreateRole(ctx context.Context, name, description string) (Role, error) {
	var role Role
	err := r.pool.QueryRow(ctx, `
		INSERT INTO roles (name, description, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		RETURNING id, name, COALESCE(description, ''), created_at, updated_at`,
		name, description).Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		return Role{}, mapPGError(err)
	}
	return role, nil
}

// ListPermissions returns all permissions ordered by id.
func (r *Repository) ListPermissions(ctx context.Context) ([]Permission, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, COALESCE(description, ''), resource, action, created_at, updated_at FROM permissions ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var perms []Permission
	for rows.Next() {
		var p Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Resource, &p.Action, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

// CreatePermission inserts a permission and returns the stored row.
func (r *Repository) CreatePermission(ctx context.Context, p Permission) (Permission, error) {
	var stored Permission
	err := r.pool.QueryRow(ctx, `
		INSERT INTO permissions (name, description, resource, action, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, name, COALESCE(description, ''), resource, action, created_at, updated_at`,
		p.Name, p.Description, p.Resource, p.Action).
		Scan(&stored.ID, &stored.Name, &stored.Description, &stored.Resource, &stored.Action, &stored.CreatedAt, &stored.UpdatedAt)
	if err != nil {
		return Permission{}, mapPGError(err)
	}
	return stored, nil
}

// AssignRoleToUser links a user to a role.
func (r *Repository) AssignRoleToUser(ctx context.Context, userID string, roleID int64) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_roles (user_id, role_id, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())`, userID, roleID)
	return mapPGError(err)
}

// AttachPermissionToRole links a role to a permission.
func (r *Repository) AttachPermissionToRole(ctx context.Context, roleID, permissionID int64) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO role_permissions (role_id, permission_id, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())`, roleID, permissionID)
	return mapPGError(err)
}

// RoleNamesForUser returns the names of the user's roles.
func (r *Repository) RoleNamesForUser(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT r.name
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id = $1
		ORDER BY r.name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func mapPGError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return shared.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return shared.ErrDuplicate
	}
	return err
}

var _ RepositoryPort = (*Repository)(nil)
