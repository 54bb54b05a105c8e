package menu

import (
	"context"
	"sort"
)

// PermissionSource resolves the permission ids a user can reach through
// their roles. Satisfied by the rbac service.
type PermissionSource interface {
	PermissionIDsForUser(ctx context.Context, userID string) ([]int64, error)
}

// Service builds the permission-filtered navigation tree.
type Service struct {
	repo  RepositoryPort
	perms PermissionSource
}

// NewService constructs a Service.
func NewService(repo RepositoryPort, perms PermissionSource) *Service {
	return &Service{repo: repo, perms: perms}
}

// BuildMenu returns the forest of menu items visible to the user. An
// item is visible only when at least one of its linked permissions is
// held; invisible items are absent entirely, and their visible children
// are promoted to roots.
func (s *Service) BuildMenu(ctx context.Context, userID string) ([]*Node, error) {
	permissionIDs, err := s.perms.PermissionIDsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(permissionIDs) == 0 {
		return []*Node{}, nil
	}

	items, err := s.repo.VisibleItems(ctx, permissionIDs)
	if err != nil {
		return nil, err
	}
	return buildTree(items), nil
}

// CreateItem stores a new menu item.
func (s *Service) CreateItem(ctx context.Context, item Item) (Item, error) {
	return s.repo.CreateItem(ctx, item)
}

// AttachPermission links an item to a permission.
func (s *Service) AttachPermission(ctx context.Context, menuItemID, permissionID int64) error {
	return s.repo.AttachPermission(ctx, menuItemID, permissionID)
}

func buildTree(items []Item) []*Node {
	byID := make(map[int64]*Node, len(items))
	for _, item := range items {
		if _, ok := byID[item.ID]; !ok {
			byID[item.ID] = &Node{Item: item, Children: []*Node{}}
		}
	}

	roots := make([]*Node, 0, len(byID))
	for _, node := range byID {
		if node.ParentID != nil {
			if parent, ok := byID[*node.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	sortNodes(roots)
	for _, node := range byID {
		sortNodes(node.Children)
	}
	return roots
}

// sortNodes orders siblings by ord ascending, ties broken by id so the
// output is deterministic.
func sortNodes(nodes []*Node) {
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Order != nodes[j].Order {
			return nodes[i].Order < nodes[j].Order
		}
		return nodes[i].ID < nodes[j].ID
	})
}
