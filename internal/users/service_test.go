package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelgate/modelgate/internal/shared"
)

type mockRepository struct {
	users map[string]User
}

func newMockRepository() *mockRepository {
	return &mockRepository{users: make(map[string]User)}
}

func (m *mockRepository) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	for _, u := range m.users {
		users = append(users, u)
	}
	return users, nil
}

func (m *mockRepository) GetUser(ctx context.Context, id string) (User, error) {
	u, ok := m.users[id]
	if !ok {
		return User{}, shared.ErrNotFound
	}
	return u, nil
}

func (m *mockRepository) UpdateUser(ctx context.Context, id string, upd Update) (User, error) {
	u, ok := m.users[id]
	if !ok {
		return User{}, shared.ErrNotFound
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.Image != nil {
		u.Image = *upd.Image
	}
	m.users[id] = u
	return u, nil
}

type staticRoles map[string][]string

func (s staticRoles) RoleNamesForUser(ctx context.Context, userID string) ([]string, error) {
	return s[userID], nil
}

func TestGetProfileIncludesRoleNames(t *testing.T) {
	repo := newMockRepository()
	repo.users["u1"] = User{ID: "u1", Name: "alice", Email: "alice@example.com"}
	svc := NewService(repo, staticRoles{"u1": {"admin", "editor"}})

	profile, err := svc.GetProfile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Name)
	assert.Equal(t, []string{"admin", "editor"}, profile.Roles)
}

func TestGetProfileReturnsEmptyRoleSlice(t *testing.T) {
	repo := newMockRepository()
	repo.users["u1"] = User{ID: "u1", Name: "alice"}
	svc := NewService(repo, staticRoles{})

	profile, err := svc.GetProfile(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, profile.Roles)
	assert.Empty(t, profile.Roles)
}

func TestGetProfileMissingUser(t *testing.T) {
	svc := NewService(newMockRepository(), staticRoles{})

	_, err := svc.GetProfile(context.Background(), "gone")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUpdateUserAppliesPartialPatch(t *testing.T) {
	repo := newMockRepository()
	repo.users["u1"] = User{ID: "u1", Name: "alice", Email: "alice@example.com"}
	svc := NewService(repo, staticRoles{})

	name := "alicia"
	updated, err := svc.UpdateUser(context.Background(), "u1", Update{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "alicia", updated.Name)
	assert.Equal(t, "alice@example.com", updated.Email)
}
