package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hearcase/hearcase/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type RepoPG struct {
	pool *pgxpool.Pool
}

func NewRepoPG(pool *pgxpool.Pool) *RepoPG {
	return &RepoPG{pool: pool}
}

func (r *RepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const userCols = `u.user_id, u.username, u.password_hash, u.first_name, u.last_name,
	u.email, u.is_active, u.created_at, u.updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.Email, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return &u, err
}

func (r *RepoPG) attachRoles(ctx context.Context, u *User) error {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT r.role_name FROM user_roles ur
		 JOIN roles r ON ur.role_id = r.role_id
		 WHERE ur.user_id = $1 ORDER BY r.role_name`, u.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return err
		}
		u.Roles = append(u.Roles, role)
	}
	return rows.Err()
}

func (r *RepoPG) GetByID(ctx context.Context, id int64) (*User, error) {
	q := fmt.Sprintf(`SELECT %s FROM users u WHERE u.user_id = $1`, userCols)
	u, err := scanUser(r.conn(ctx).QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := r.attachRoles(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *RepoPG) GetByUsername(ctx context.Context, username string) (*User, error) {
	q := fmt.Sprintf(`SELECT %s FROM users u WHERE u.username = $1`, userCols)
	u, err := scanUser(r.conn(ctx).QueryRow(ctx, q, username))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := r.attachRoles(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *RepoPG) UsernameOrEmailTaken(ctx context.Context, username, email string) (bool, error) {
	var taken bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 OR email = $2)`,
		username, email).Scan(&taken)
	return taken, err
}

func (r *RepoPG) Insert(ctx context.Context, u *User) error {
	err := r.conn(ctx).QueryRow(ctx,
		`INSERT INTO users (username, password_hash, first_name, last_name, email)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING user_id, is_active, created_at, updated_at`,
		u.Username, u.PasswordHash, u.FirstName, u.LastName, u.Email,
	).Scan(&u.ID, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *RepoPG) Update(ctx context.Context, id int64, in UpdateInput) (*User, error) {
	var set []string
	args := []interface{}{id}
	if in.FirstName != nil {
		args = append(args, *in.FirstName)
		set = append(set, fmt.Sprintf("first_name = $%d", len(args)))
	}
	if in.LastName != nil {
		args = append(args, *in.LastName)
		set = append(set, fmt.Sprintf("last_name = $%d", len(args)))
	}
	if in.Email != nil {
		args = append(args, *in.Email)
		set = append(set, fmt.Sprintf("email = $%d", len(args)))
	}

	q := fmt.Sprintf(`UPDATE users SET %s, updated_at = NOW() WHERE user_id = $1
		RETURNING %s`, strings.Join(set, ", "), strings.ReplaceAll(userCols, "u.", ""))
	u, err := scanUser(r.conn(ctx).QueryRow(ctx, q, args...))
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	if err := r.attachRoles(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *RepoPG) Deactivate(ctx context.Context, id int64) (*User, error) {
	q := fmt.Sprintf(`UPDATE users SET is_active = false, updated_at = NOW()
		WHERE user_id = $1 RETURNING %s`, strings.ReplaceAll(userCols, "u.", ""))
	u, err := scanUser(r.conn(ctx).QueryRow(ctx, q, id))
	if err != nil {
		return nil, fmt.Errorf("deactivate user: %w", err)
	}
	return u, nil
}

func (r *RepoPG) List(ctx context.Context, f ListFilter, limit, offset int) ([]*User, int, error) {
	var where []string
	var args []interface{}
	if f.Role != "" {
		args = append(args, f.Role)
		where = append(where, fmt.Sprintf(
			`u.user_id IN (SELECT ur.user_id FROM user_roles ur
				JOIN roles r ON ur.role_id = r.role_id WHERE r.role_name = $%d)`, len(args)))
	}
	if f.Active != nil {
		args = append(args, *f.Active)
		where = append(where, fmt.Sprintf("u.is_active = $%d", len(args)))
	}
	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	countQ := fmt.Sprintf(`SELECT COUNT(*) FROM users u %s`, whereClause)
	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := fmt.Sprintf(`SELECT %s FROM users u %s ORDER BY u.username LIMIT $%d OFFSET $%d`,
		userCols, whereClause, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for _, u := range users {
		if err := r.attachRoles(ctx, u); err != nil {
			return nil, 0, err
		}
	}
	return users, total, nil
}

func (r *RepoPG) ReplaceRoles(ctx context.Context, userID int64, roles []string) error {
	conn := r.conn(ctx)
	if _, err := conn.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear user roles: %w", err)
	}
	for _, role := range roles {
		_, err := conn.Exec(ctx,
			`INSERT INTO user_roles (user_id, role_id)
			 SELECT $1, role_id FROM roles WHERE role_name = $2`,
			userID, role)
		if err != nil {
			return fmt.Errorf("assign role %q: %w", role, err)
		}
	}
	return nil
}

func (r *RepoPG) Roles(ctx context.Context) ([]*Role, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT role_id, role_name, COALESCE(role_description, '') FROM roles ORDER BY role_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []*Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description); err != nil {
			return nil, err
		}
		roles = append(roles, &role)
	}
	return roles, rows.Err()
}
