package rbac

import "time"

// Role represents a named bundle of permissions assignable to users.
type Role struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Permission is an atomic capability keyed by (resource, action).
// Resources and actions are opaque strings compared for equality.
type Permission struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Resource    string    `json:"resource"`
	Action      string    `json:"action"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Resources guarded by the admin API.
const (
	ResourceUser           = "user"
	ResourceRole           = "role"
	ResourcePermission     = "permission"
	ResourceUserRole       = "userRole"
	ResourceRolePermission = "rolePermission"
	ResourceMenu           = "menu"
	ResourceMenuPermission = "menuPermission"
)

// Actions recognised by the admin API.
const (
	ActionRead   = "read"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)
