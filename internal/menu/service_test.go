package menu

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	items map[int64]Item
	links map[int64][]int64
	next  int64

	visibleError error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		items: make(map[int64]Item),
		links: make(map[int64][]int64),
		next:  1,
	}
}

func (m *mockRepository) VisibleItems(ctx context.Context, permissionIDs []int64) ([]Item, error) {
	if m.visibleError != nil {
		return nil, m.visibleError
	}
	allowed := make(map[int64]bool, len(permissionIDs))
	for _, id := range permissionIDs {
		allowed[id] = true
	}
	var items []Item
	for itemID, permIDs := range m.links {
		for _, permID := range permIDs {
			if allowed[permID] {
				items = append(items, m.items[itemID])
				break
			}
		}
	}
	return items, nil
}

func (m *mockRepository) CreateItem(ctx context.Context, item Item) (Item, error) {
	item.ID = m.next
	m.next++
	m.items[item.ID] = item
	return item, nil
}

func (m *mockRepository) AttachPermission(ctx context.Context, menuItemID, permissionID int64) error {
	m.links[menuItemID] = append(m.links[menuItemID], permissionID)
	return nil
}

type staticPermissions map[string][]int64

func (s staticPermissions) PermissionIDsForUser(ctx context.Context, userID string) ([]int64, error) {
	return s[userID], nil
}

func addItem(t *testing.T, repo *mockRepository, name string, parentID *int64, order int, permID int64) Item {
	t.Helper()
	item, err := repo.CreateItem(context.Background(), Item{Name: name, Path: "/" + name, ParentID: parentID, Order: order})
	require.NoError(t, err)
	require.NoError(t, repo.AttachPermission(context.Background(), item.ID, permID))
	return item
}

func TestBuildMenuReturnsEmptyForestWithoutPermissions(t *testing.T) {
	svc := NewService(newMockRepository(), staticPermissions{})

	nodes, err := svc.BuildMenu(context.Background(), "nobody")
	require.NoError(t, err)
	require.NotNil(t, nodes)
	assert.Empty(t, nodes)
}

func TestBuildMenuOrdersSiblingsAndNestsChildren(t *testing.T) {
	repo := newMockRepository()
	a := addItem(t, repo, "analytics", nil, 2, 10)
	addItem(t, repo, "usage", &a.ID, 1, 10)
	addItem(t, repo, "console", nil, 1, 10)

	svc := NewService(repo, staticPermissions{"u1": {10}})

	nodes, err := svc.BuildMenu(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, nodes, 2)

	// Roots sorted by ord ascending.
	assert.Equal(t, "console", nodes[0].Name)
	assert.Equal(t, "analytics", nodes[1].Name)
	assert.Empty(t, nodes[0].Children)

	require.Len(t, nodes[1].Children, 1)
	assert.Equal(t, "usage", nodes[1].Children[0].Name)
}

func TestBuildMenuPromotesOrphanedChildren(t *testing.T) {
	repo := newMockRepository()
	parent := addItem(t, repo, "admin", nil, 1, 20)
	addItem(t, repo, "keys", &parent.ID, 1, 10)

	// User holds permission 10 only; the parent is invisible so the child
	// surfaces as a root.
	svc := NewService(repo, staticPermissions{"u1": {10}})

	nodes, err := svc.BuildMenu(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "keys", nodes[0].Name)
	assert.Empty(t, nodes[0].Children)
}

func TestBuildMenuHidesUnlinkedItems(t *testing.T) {
	repo := newMockRepository()
	addItem(t, repo, "visible", nil, 1, 10)
	hidden, err := repo.CreateItem(context.Background(), Item{Name: "hidden", Path: "/hidden", Order: 2})
	require.NoError(t, err)

	svc := NewService(repo, staticPermissions{"u1": {10}})

	nodes, err := svc.BuildMenu(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.NotEqual(t, hidden.ID, nodes[0].ID)
}

func TestBuildMenuBreaksOrderTiesByID(t *testing.T) {
	repo := newMockRepository()
	first := addItem(t, repo, "alpha", nil, 5, 10)
	second := addItem(t, repo, "beta", nil, 5, 10)

	svc := NewService(repo, staticPermissions{"u1": {10}})

	nodes, err := svc.BuildMenu(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, first.ID, nodes[0].ID)
	assert.Equal(t, second.ID, nodes[1].ID)
}

func TestBuildMenuPropagatesPermissionErrors(t *testing.T) {
	repo := newMockRepository()
	repo.visibleError = assert.AnError
	svc := NewService(repo, staticPermissions{"u1": {10}})

	_, err := svc.BuildMenu(context.Background(), "u1")
	require.Error(t, err)
}
