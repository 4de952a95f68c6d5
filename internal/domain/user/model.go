package user

import "time"

// User is a system account. PasswordHash never leaves the package through
// JSON.
type User struct {
	ID           int64     `db:"user_id" json:"user_id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	Email        string    `db:"email" json:"email"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`

	Roles []string `json:"roles,omitempty"`
}

// Role is reference data.
type Role struct {
	ID          int64  `db:"role_id" json:"role_id"`
	Name        string `db:"role_name" json:"role_name"`
	Description string `db:"role_description" json:"role_description"`
}

// CreateInput carries user creation fields.
type CreateInput struct {
	Username  string   `json:"username"`
	Password  string   `json:"password"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Email     string   `json:"email"`
	Roles     []string `json:"roles"`
}

// UpdateInput carries profile update fields.
type UpdateInput struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Email     *string `json:"email,omitempty"`
}

// Empty reports whether no field is set.
func (in UpdateInput) Empty() bool {
	return in.FirstName == nil && in.LastName == nil && in.Email == nil
}

// ListFilter narrows user listings.
type ListFilter struct {
	Role string
	// Active filters by activation state when non-nil.
	Active *bool
}

// RoleSnapshot is the audit image for role replacement.
type RoleSnapshot struct {
	Roles []string `json:"roles"`
}
