package localdb

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/domain"
)

type SalesStore struct {
	db *gorm.DB
}

func (s *SalesStore) List(ctx context.Context) ([]domain.SalesRecord, error) {
	var rows []salesRow
	if err := s.db.WithContext(ctx).Order("date DESC, rowid DESC").Find(&rows).Error; err != nil {
		return nil, storeErr("list sales", err)
	}
	items := make([]domain.SalesRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toDomain())
	}
	return items, nil
}

func (s *SalesStore) Add(ctx context.Context, record domain.SalesRecord) (domain.SalesRecord, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	row := toSalesRow(record)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.SalesRecord{}, storeErr("add sales record", err)
	}
	return record, nil
}

// Restore replaces every stored record with records. Input is expected
// newest first and is inserted oldest first so insertion order breaks ties.
// When ids repeat, the later record in records wins.
func (s *SalesStore) Restore(ctx context.Context, records []domain.SalesRecord) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&salesRow{}).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		stamped := make([]domain.SalesRecord, len(records))
		for i, record := range records {
			if record.ID == "" {
				record.ID = uuid.NewString()
			}
			stamped[i] = record
		}
		stamped = lastByID(stamped, func(r domain.SalesRecord) string { return r.ID })
		rows := make([]salesRow, 0, len(stamped))
		for i := len(stamped) - 1; i >= 0; i-- {
			rows = append(rows, toSalesRow(stamped[i]))
		}
		return tx.CreateInBatches(&rows, 100).Error
	})
	return storeErr("restore sales", err)
}
