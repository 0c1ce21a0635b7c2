package localdb

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/domain"
)

type UserStore struct {
	db *gorm.DB
}

func (s *UserStore) List(ctx context.Context) ([]domain.User, error) {
	var rows []userRow
	if err := s.db.WithContext(ctx).Order("created_at ASC, username ASC").Find(&rows).Error; err != nil {
		return nil, storeErr("list users", err)
	}
	items := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toDomain())
	}
	return items, nil
}

func (s *UserStore) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	var row userRow
	if err := s.db.WithContext(ctx).First(&row, "username = ?", username).Error; err != nil {
		return domain.User{}, storeErr("get user", err)
	}
	return row.toDomain(), nil
}

// Save merges u into the stored user: empty fields keep their stored value.
func (s *UserStore) Save(ctx context.Context, u domain.User) (domain.User, error) {
	var saved domain.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing userRow
		err := tx.First(&existing, "username = ?", u.Username).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if u.CreatedAt.IsZero() {
				u.CreatedAt = time.Now().UTC()
			}
			saved = u
			return tx.Create(toUserRow(u)).Error
		case err != nil:
			return err
		}

		merged := existing.toDomain()
		if u.PasswordHash != "" {
			merged.PasswordHash = u.PasswordHash
		}
		if u.Role != "" {
			merged.Role = u.Role
		}
		saved = merged
		return tx.Save(toUserRow(merged)).Error
	})
	if err != nil {
		return domain.User{}, storeErr("save user", err)
	}
	return saved, nil
}

func (s *UserStore) Delete(ctx context.Context, username string) error {
	result := s.db.WithContext(ctx).Delete(&userRow{}, "username = ?", username)
	if result.Error != nil {
		return storeErr("delete user", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
