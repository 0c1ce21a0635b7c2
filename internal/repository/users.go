package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/domain"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT username, password, role, created_at
		FROM users
		ORDER BY created_at ASC, username ASC
	`)
	if err != nil {
		return nil, repoErr("list users", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, repoErr("scan user", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, repoErr("iterate users", err)
	}
	return users, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, `
		SELECT username, password, role, created_at
		FROM users
		WHERE username = $1
	`, username))
	if err != nil {
		return domain.User{}, repoErr("get user", err)
	}
	return user, nil
}

// Save inserts u or merges it into the stored row; empty password or role
// keep the stored value.
func (r *UserRepository) Save(ctx context.Context, u domain.User) (domain.User, error) {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	saved, err := scanUser(r.pool.QueryRow(ctx, `
		INSERT INTO users (username, password, role, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (username) DO UPDATE SET
			password = COALESCE(NULLIF(EXCLUDED.password, ''), users.password),
			role = COALESCE(NULLIF(EXCLUDED.role, ''), users.role)
		RETURNING username, password, role, created_at
	`, u.Username, u.PasswordHash, string(u.Role), u.CreatedAt))
	if err != nil {
		return domain.User{}, repoErr("save user", err)
	}
	return saved, nil
}

func (r *UserRepository) Delete(ctx context.Context, username string) error {
	cmd, err := r.pool.Exec(ctx, "DELETE FROM users WHERE username = $1", username)
	if err != nil {
		return repoErr("delete user", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (domain.User, error) {
	var (
		user domain.User
		role string
	)
	if err := row.Scan(&user.Username, &user.PasswordHash, &role, &user.CreatedAt); err != nil {
		return domain.User{}, err
	}
	user.Role = domain.Role(role)
	return user, nil
}
