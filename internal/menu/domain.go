package menu

import "time"

// Item is a navigation entry. ParentID is nil for top-level items; an
// item whose parent is not visible to the user becomes a root itself.
type Item struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Icon      string    `json:"icon,omitempty"`
	ParentID  *int64    `json:"parentId,omitempty"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Node is an Item with its visible children attached.
type Node struct {
	Item
	Children []*Node `json:"children"`
}
