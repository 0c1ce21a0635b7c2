package localdb

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/domain"
)

const (
	keyCategories = "categories"
	keyChannels   = "channels"
)

type SettingsStore struct {
	db *gorm.DB
}

func (s *SettingsStore) Categories(ctx context.Context) ([]string, error) {
	return s.list(ctx, keyCategories, domain.DefaultCategories)
}

func (s *SettingsStore) SaveCategories(ctx context.Context, items []string) error {
	return s.save(ctx, keyCategories, items)
}

func (s *SettingsStore) Channels(ctx context.Context) ([]string, error) {
	return s.list(ctx, keyChannels, domain.DefaultChannels)
}

func (s *SettingsStore) SaveChannels(ctx context.Context, items []string) error {
	return s.save(ctx, keyChannels, items)
}

func (s *SettingsStore) list(ctx context.Context, key string, defaults []string) ([]string, error) {
	var rows []settingRow
	if err := s.db.WithContext(ctx).Where("key = ?", key).Limit(1).Find(&rows).Error; err != nil {
		return nil, storeErr("get "+key, err)
	}
	if len(rows) == 0 {
		return append([]string(nil), defaults...), nil
	}
	var items []string
	if err := json.Unmarshal([]byte(rows[0].Value), &items); err != nil {
		return nil, storeErr("decode "+key, err)
	}
	return items, nil
}

func (s *SettingsStore) save(ctx context.Context, key string, items []string) error {
	if items == nil {
		items = []string{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return storeErr("encode "+key, err)
	}
	row := settingRow{Key: key, Value: string(raw)}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&row).Error
	return storeErr("save "+key, err)
}
