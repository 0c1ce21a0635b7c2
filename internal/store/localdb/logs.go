package localdb

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/domain"
)

type LogStore struct {
	db *gorm.DB
}

// List returns the newest entries first. limit <= 0 or above LogCap means
// LogCap.
func (s *LogStore) List(ctx context.Context, limit int) ([]domain.ActivityLogEntry, error) {
	if limit <= 0 || limit > LogCap {
		limit = LogCap
	}
	var rows []logRow
	if err := s.db.WithContext(ctx).Order("timestamp DESC, rowid DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, storeErr("list activity log", err)
	}
	items := make([]domain.ActivityLogEntry, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toDomain())
	}
	return items, nil
}

func (s *LogStore) Add(ctx context.Context, entry domain.ActivityLogEntry) (domain.ActivityLogEntry, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	row := toLogRow(entry)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		return trimLogs(tx)
	})
	if err != nil {
		return domain.ActivityLogEntry{}, storeErr("add activity log", err)
	}
	return entry, nil
}

// Restore replaces the log with the LogCap most recent entries. When ids
// repeat, the later entry in entries wins.
func (s *LogStore) Restore(ctx context.Context, entries []domain.ActivityLogEntry) error {
	sorted := make([]domain.ActivityLogEntry, len(entries))
	for i, entry := range entries {
		if entry.ID == "" {
			entry.ID = uuid.NewString()
		}
		sorted[i] = entry
	}
	sorted = lastByID(sorted, func(e domain.ActivityLogEntry) string { return e.ID })
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp > sorted[j].Timestamp
	})
	if len(sorted) > LogCap {
		sorted = sorted[:LogCap]
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&logRow{}).Error; err != nil {
			return err
		}
		if len(sorted) == 0 {
			return nil
		}
		rows := make([]logRow, 0, len(sorted))
		for i := len(sorted) - 1; i >= 0; i-- {
			rows = append(rows, toLogRow(sorted[i]))
		}
		return tx.CreateInBatches(&rows, 100).Error
	})
	return storeErr("restore activity log", err)
}

func trimLogs(tx *gorm.DB) error {
	return tx.Exec(
		`DELETE FROM activity_logs WHERE id NOT IN (
			SELECT id FROM activity_logs ORDER BY timestamp DESC, rowid DESC LIMIT ?
		)`,
		LogCap,
	).Error
}
