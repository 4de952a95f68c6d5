package user

import "context"

// Repository persists users and role assignments.
type Repository interface {
	// GetByID returns nil, nil when no user exists. Roles are attached.
	GetByID(ctx context.Context, id int64) (*User, error)
	// GetByUsername returns nil, nil when no user exists. Roles are
	// attached.
	GetByUsername(ctx context.Context, username string) (*User, error)
	UsernameOrEmailTaken(ctx context.Context, username, email string) (bool, error)
	Insert(ctx context.Context, u *User) error
	Update(ctx context.Context, id int64, in UpdateInput) (*User, error)
	Deactivate(ctx context.Context, id int64) (*User, error)
	List(ctx context.Context, f ListFilter, limit, offset int) ([]*User, int, error)

	// ReplaceRoles swaps the user's role set. Unknown role names are
	// skipped.
	ReplaceRoles(ctx context.Context, userID int64, roles []string) error
	Roles(ctx context.Context) ([]*Role, error)
}
