package localdb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/domain"
)

type ProductStore struct {
	db *gorm.DB
}

var upsertByID = clause.OnConflict{
	Columns:   []clause.Column{{Name: "id"}},
	UpdateAll: true,
}

func (s *ProductStore) List(ctx context.Context) ([]domain.Product, error) {
	var rows []productRow
	if err := s.db.WithContext(ctx).Order("created_at DESC, rowid DESC").Find(&rows).Error; err != nil {
		return nil, storeErr("list products", err)
	}
	items := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toDomain())
	}
	return items, nil
}

func (s *ProductStore) Get(ctx context.Context, id string) (domain.Product, error) {
	var row productRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return domain.Product{}, storeErr("get product", err)
	}
	return row.toDomain(), nil
}

// Save inserts or replaces p by id, assigning an id and timestamps as needed.
func (s *ProductStore) Save(ctx context.Context, p domain.Product) (domain.Product, error) {
	stampProduct(&p, time.Now().UTC())
	row := toProductRow(p)
	if err := s.db.WithContext(ctx).Clauses(upsertByID).Create(&row).Error; err != nil {
		return domain.Product{}, storeErr("save product", err)
	}
	return row.toDomain(), nil
}

// SaveBulk upserts every product in one transaction. UpdatedAt values that
// are already set are kept, so restored rows round-trip unchanged.
func (s *ProductStore) SaveBulk(ctx context.Context, products []domain.Product) ([]domain.Product, error) {
	if len(products) == 0 {
		return nil, nil
	}
	now := time.Now().UTC()
	rows := make([]productRow, 0, len(products))
	for _, p := range products {
		keep := p.UpdatedAt
		stampProduct(&p, now)
		if !keep.IsZero() {
			p.UpdatedAt = keep
		}
		rows = append(rows, toProductRow(p))
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(upsertByID).CreateInBatches(&rows, 100).Error
	})
	if err != nil {
		return nil, storeErr("save products", err)
	}

	saved := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		saved = append(saved, row.toDomain())
	}
	return saved, nil
}

func (s *ProductStore) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&productRow{}, "id = ?", id)
	if result.Error != nil {
		return storeErr("delete product", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func stampProduct(p *domain.Product, now time.Time) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
}
