package users

import "context"

// RoleSource resolves role names for profile responses.
type RoleSource interface {
	RoleNamesForUser(ctx context.Context, userID string) ([]string, error)
}

// Service handles user management logic.
type Service struct {
	repo  RepositoryPort
	roles RoleSource
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, roles RoleSource) *Service {
	return &Service{repo: repo, roles: roles}
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// GetUser fetches a single user.
func (s *Service) GetUser(ctx context.Context, id string) (User, error) {
	return s.repo.GetUser(ctx, id)
}

// GetProfile returns the user with their role names.
func (s *Service) GetProfile(ctx context.Context, id string) (Profile, error) {
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return Profile{}, err
	}
	roles, err := s.roles.RoleNamesForUser(ctx, id)
	if err != nil {
		return Profile{}, err
	}
	if roles == nil {
		roles = []string{}
	}
	return Profile{User: user, Roles: roles}, nil
}

// UpdateUser applies a partial update.
func (s *Service) UpdateUser(ctx context.Context, id string, upd Update) (User, error) {
	return s.repo.UpdateUser(ctx, id, upd)
}
