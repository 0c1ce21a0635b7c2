package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/domain"
)

type SettingsRepository struct {
	pool *pgxpool.Pool
}

func (r *SettingsRepository) Categories(ctx context.Context) ([]string, error) {
	return r.list(ctx, "categories", domain.DefaultCategories)
}

func (r *SettingsRepository) SaveCategories(ctx context.Context, items []string) error {
	return r.save(ctx, "categories", items)
}

func (r *SettingsRepository) Channels(ctx context.Context) ([]string, error) {
	return r.list(ctx, "channels", domain.DefaultChannels)
}

func (r *SettingsRepository) SaveChannels(ctx context.Context, items []string) error {
	return r.save(ctx, "channels", items)
}

func (r *SettingsRepository) list(ctx context.Context, key string, defaults []string) ([]string, error) {
	var raw []byte
	err := r.pool.QueryRow(ctx, "SELECT value FROM settings WHERE key = $1", key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return append([]string(nil), defaults...), nil
	}
	if err != nil {
		return nil, repoErr("get "+key, err)
	}
	var items []string
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, repoErr("decode "+key, err)
	}
	return items, nil
}

func (r *SettingsRepository) save(ctx context.Context, key string, items []string) error {
	if items == nil {
		items = []string{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return repoErr("encode "+key, err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO settings (key, value, updated_at)
		VALUES ($1, $2::jsonb, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`, key, string(raw))
	return repoErr("save "+key, err)
}
