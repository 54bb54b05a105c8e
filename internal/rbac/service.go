package rbac

import (
	"context"
	"errors"
	"strings"
)

// Service orchestrates permission resolution and catalog maintenance.
// No caching: every check re-resolves the current assignment state, so a
// role or permission change takes effect on the very next call.
type Service struct {
	repo RepositoryPort
}

// NewService constructs a Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// HasPermission reports whether any role assigned to the user carries a
// permission matching (resource, action). "No permission" is a false
// return, never an error; errors mean the store could not be reached.
func (s *Service) HasPermission(ctx context.Context, userID, resource, action string) (bool, error) {
	roleIDs, err := s.repo.RoleIDsForUser(ctx, userID)
	if err != nil {
		return false, err
	}
	if len(roleIDs) == 0 {
		return false, nil
	}
	return s.repo.PermissionExists(ctx, roleIDs, resource, action)
}

// PermissionIDsForUser collects the distinct permission ids reachable
// through the user's roles; the same two-hop join as HasPermission but
// gathering ids instead of a boolean.
func (s *Service) PermissionIDsForUser(ctx context.Context, userID string) ([]int64, error) {
	roleIDs, err := s.repo.RoleIDsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(roleIDs) == 0 {
		return nil, nil
	}
	return s.repo.PermissionIDsForRoles(ctx, roleIDs)
}

// ListRoles returns all roles.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return s.repo.ListRoles(ctx)
}

// CreateRole inserts a new role.
func (s *Service) CreateRole(ctx context.Context, name, description string) (Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Role{}, errors.New("rbac: role name required")
	}
	return s.repo.CreateRole(ctx, name, strings.TrimSpace(description))
}

// ListPermissions returns all permissions.
func (s *Service) ListPermissions(ctx context.Context) ([]Permission, error) {
	return s.repo.ListPermissions(ctx)
}

// CreatePermission inserts a new permission.
func (s *Service) CreatePermission(ctx context.Context, p Permission) (Permission, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Resource = strings.TrimSpace(p.Resource)
	p.Action = strings.TrimSpace(p.Action)
	if p.Name == "" || p.Resource == "" || p.Action == "" {
		return Permission{}, errors.New("rbac: name, resource and action required")
	}
	return s.repo.CreatePermission(ctx, p)
}

// AssignRole assigns a role to a user.
func (s *Service) AssignRole(ctx context.Context, userID string, roleID int64) error {
	return s.repo.AssignRoleToUser(ctx, userID, roleID)
}

// AttachPermission links a permission to a role.
func (s *Service) AttachPermission(ctx context.Context, roleID, permissionID int64) error {
	return s.repo.AttachPermissionToRole(ctx, roleID, permissionID)
}

// RoleNamesForUser returns the user's role names for profile display.
func (s *Service) RoleNamesForUser(ctx context.Context, userID string) ([]string, error) {
	return s.repo.RoleNamesForUser(ctx, userID)
}
