package menu

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/modelgate/modelgate/internal/shared"
)

// RepositoryPort defines menu persistence operations.
type RepositoryPort interface {
	VisibleItems(ctx context.Context, permissionIDs []int64) ([]Item, error)
	CreateItem(ctx context.Context, item Item) (Item, error)
	AttachPermission(ctx context.Context, menuItemID, permissionID int64) error
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// VisibleItems selects every item linked to at least one of the given
// permission ids. The left join enumerates items with multiple
// qualifying permissions once; DISTINCT dedupes by row.
func (r *Repository) VisibleItems(ctx context.Context, permissionIDs []int64) ([]Item, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT mi.id, mi.name, mi.path, COALESCE(mi.icon, ''), mi.parent_id, mi.ord, mi.created_at, mi.updated_at
		FROM menu_items mi
		LEFT JOIN menu_permissions mp ON mp.menu_item_id = mi.id
		WHERE mp.permission_id = ANY($1)`, permissionIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Item
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.Name, &item.Path, &item.Icon, &item.ParentID, &item.Order, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// CreateItem inserts a menu item and returns the stored row.
func (r *Repository) CreateItem(ctx context.Context, item Item) (Item, error) {
	var stored Item
	err := r.pool.QueryRow(ctx, `
		INSERT INTO menu_items (name, path, icon, parent_id, ord, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, NOW(), NOW())
		RETURNING id, name, path, COALESCE(icon, ''), parent_id, ord, created_at, updated_at`,
		item.Name, item.Path, item.Icon, item.ParentID, item.Order).
		Scan(&stored.ID, &stored.Name, &stored.Path, &stored.Icon, &stored.ParentID, &stored.Order, &stored.CreatedAt, &stored.UpdatedAt)
	if err != nil {
		return Item{}, err
	}
	return stored, nil
}

// AttachPermission links a menu item to a permission.
func (r *Repository) AttachPermission(ctx context.Context, menuItemID, permissionID int64) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO menu_permissions (menu_item_id, permission_id, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())`, menuItemID, permissionID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return shared.ErrDuplicate
		}
	}
	return err
}

var _ RepositoryPort = (*Repository)(nil)
