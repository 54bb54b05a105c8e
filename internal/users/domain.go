package users

import "time"

// User is the management view of an account.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Image     string    `json:"image,omitempty"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Profile is a user plus the role names used by the admin UI.
type Profile struct {
	User
	Roles []string `json:"roles"`
}

// Update carries the PATCH-able fields; nil means leave unchanged.
type Update struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Image *string `json:"image"`
}
