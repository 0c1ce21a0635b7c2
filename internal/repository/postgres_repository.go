// Package repository is the ONLINE backend: a remote Postgres database
// (Supabase-compatible) accessed through a pgx pool.
package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/domain"
)

// MaxLogRows bounds a single activity log listing.
const MaxLogRows = 200

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Products() *ProductRepository { return &ProductRepository{pool: r.pool} }
func (r *Repository) Sales() *SalesRepository { return &SalesRepository{pool: r.pool} }
func (r *Repository) Logs() *LogRepository { return &LogRepository{pool: r.pool} }
func (r *Repository) Users() *UserRepository { return &UserRepository{pool: r.pool} }
func (r *Repository) Settings() *SettingsRepository { return &SettingsRepository{pool: r.pool} }

func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

// repoErr maps driver errors onto domain errors.
func repoErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return domain.Persist(op, fmt.Errorf("%w: %s", domain.ErrDuplicate, pgErr.Detail))
	}
	return domain.Persist(op, err)
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > MaxLogRows {
		return MaxLogRows
	}
	return limit
}
