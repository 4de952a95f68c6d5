package user

import (
	"context"

	"github.com/hearcase/hearcase/internal/domain/audit"
	"github.com/hearcase/hearcase/internal/platform/auth"
	"github.com/hearcase/hearcase/internal/platform/db"
	"github.com/hearcase/hearcase/internal/platform/domainerr"
	"github.com/hearcase/hearcase/internal/platform/mutate"
)

type Service struct {
	repo Repository
	tx   db.Transactor
	rec  audit.Recorder
}

func NewService(repo Repository, tx db.Transactor, rec audit.Recorder) *Service {
	return &Service{repo: repo, tx: tx, rec: rec}
}

func (s *Service) Create(ctx context.Context, in CreateInput, actorID int64) (*User, error) {
	if in.Username == "" || in.Password == "" || in.Email == "" {
		return nil, domainerr.PreconditionFailed("username, password and email are required")
	}
	if len(in.Roles) == 0 {
		return nil, domainerr.PreconditionFailed("at least one role is required")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, domainerr.Unexpected("hash password", err)
	}

	return mutate.Run(ctx, s.tx, s.rec, mutate.Mutation[User]{
		Table:   "users",
		Action:  audit.ActionCreate,
		ActorID: actorID,
		Apply: func(ctx context.Context, _ *User) (*User, error) {
			taken, err := s.repo.UsernameOrEmailTaken(ctx, in.Username, in.Email)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, domainerr.Conflict("Username or email already exists")
			}

			u := &User{
				Username:     in.Username,
				PasswordHash: hash,
				FirstName:    in.FirstName,
				LastName:     in.LastName,
				Email:        in.Email,
			}
			if err := s.repo.Insert(ctx, u); err != nil {
				return nil, err
			}
			if err := s.repo.ReplaceRoles(ctx, u.ID, in.Roles); err != nil {
				return nil, err
			}
			u.Roles = in.Roles
			return u, nil
		},
		KeyOf: func(u *User) int64 { return u.ID },
	})
}

func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domainerr.NotFound("User not found")
	}
	return u, nil
}

func (s *Service) List(ctx context.Context, f ListFilter, limit, offset int) ([]*User, int, error) {
	return s.repo.List(ctx, f, limit, offset)
}

func (s *Service) Update(ctx context.Context, id int64, in UpdateInput, actorID int64) (*User, error) {
	if in.Empty() {
		return nil, domainerr.PreconditionFailed("No fields to update")
	}

	return mutate.Run(ctx, s.tx, s.rec, mutate.Mutation[User]{
		Table:   "users",
		Action:  audit.ActionUpdate,
		ActorID: actorID,
		Fetch:   s.fetch(id),
		Apply: func(ctx context.Context, _ *User) (*User, error) {
			return s.repo.Update(ctx, id, in)
		},
		KeyOf: func(u *User) int64 { return u.ID },
	})
}

// ReplaceRoles swaps the user's role set wholesale.
func (s *Service) ReplaceRoles(ctx context.Context, id int64, roles []string, actorID int64) error {
	if len(roles) == 0 {
		return domainerr.PreconditionFailed("at least one role is required")
	}

	_, err := mutate.Run(ctx, s.tx, s.rec, mutate.Mutation[RoleSnapshot]{
		Table:   "user_roles",
		Action:  audit.ActionUpdate,
		ActorID: actorID,
		Fetch: func(ctx context.Context) (*RoleSnapshot, error) {
			u, err := s.repo.GetByID(ctx, id)
			if err != nil {
				return nil, err
			}
			if u == nil {
				return nil, domainerr.NotFound("User not found")
			}
			return &RoleSnapshot{Roles: u.Roles}, nil
		},
		Apply: func(ctx context.Context, _ *RoleSnapshot) (*RoleSnapshot, error) {
			if err := s.repo.ReplaceRoles(ctx, id, roles); err != nil {
				return nil, err
			}
			return &RoleSnapshot{Roles: roles}, nil
		},
		KeyOf: func(*RoleSnapshot) int64 { return id },
	})
	return err
}

// Deactivate disables the account. The user keeps their rows everywhere
// else; there is no hard delete.
func (s *Service) Deactivate(ctx context.Context, id int64, actorID int64) (*User, error) {
	return mutate.Run(ctx, s.tx, s.rec, mutate.Mutation[User]{
		Table:   "users",
		Action:  audit.ActionDeactivate,
		ActorID: actorID,
		Fetch:   s.fetch(id),
		Apply: func(ctx context.Context, _ *User) (*User, error) {
			return s.repo.Deactivate(ctx, id)
		},
		KeyOf: func(u *User) int64 { return u.ID },
	})
}

func (s *Service) Roles(ctx context.Context) ([]*Role, error) {
	return s.repo.Roles(ctx)
}

func (s *Service) fetch(id int64) func(ctx context.Context) (*User, error) {
	return func(ctx context.Context) (*User, error) {
		u, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if u == nil {
			return nil, domainerr.NotFound("User not found")
		}
		return u, nil
	}
}
