package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/domain"
)

type SalesRepository struct {
	pool *pgxpool.Pool
}

func (r *SalesRepository) List(ctx context.Context) ([]domain.SalesRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, date, seller_sku, style_name, type, qty, remark, remaining_stock
		FROM sales_records
		ORDER BY date DESC, created_at DESC
	`)
	if err != nil {
		return nil, repoErr("list sales", err)
	}
	defer rows.Close()

	records := make([]domain.SalesRecord, 0)
	for rows.Next() {
		record, err := scanSalesRecord(rows)
		if err != nil {
			return nil, repoErr("scan sales record", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, repoErr("iterate sales", err)
	}
	return records, nil
}

func (r *SalesRepository) Add(ctx context.Context, record domain.SalesRecord) (domain.SalesRecord, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO sales_records (id, date, seller_sku, style_name, type, qty, remark, remaining_stock)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		record.ID,
		record.Date,
		record.SellerSKU,
		record.StyleName,
		string(record.Type),
		record.Qty,
		record.Remark,
		record.RemainingStock,
	)
	if err != nil {
		return domain.SalesRecord{}, repoErr("add sales record", err)
	}
	return record, nil
}

// Restore upserts records by id; rows missing from the backup are left alone.
func (r *SalesRepository) Restore(ctx context.Context, records []domain.SalesRecord) error {
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, record := range records {
		if record.ID == "" {
			record.ID = uuid.NewString()
		}
		batch.Queue(`
			INSERT INTO sales_records (id, date, seller_sku, style_name, type, qty, remark, remaining_stock)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO UPDATE SET
				date = EXCLUDED.date,
				seller_sku = EXCLUDED.seller_sku,
				style_name = EXCLUDED.style_name,
				type = EXCLUDED.type,
				qty = EXCLUDED.qty,
				remark = EXCLUDED.remark,
				remaining_stock = EXCLUDED.remaining_stock
		`,
			record.ID,
			record.Date,
			record.SellerSKU,
			record.StyleName,
			string(record.Type),
			record.Qty,
			record.Remark,
			record.RemainingStock,
		)
	}
	return repoErr("restore sales", sendBatch(ctx, r.pool, batch))
}

func scanSalesRecord(row pgx.Row) (domain.SalesRecord, error) {
	var (
		record     domain.SalesRecord
		recordType string
	)
	if err := row.Scan(
		&record.ID,
		&record.Date,
		&record.SellerSKU,
		&record.StyleName,
		&recordType,
		&record.Qty,
		&record.Remark,
		&record.RemainingStock,
	); err != nil {
		return domain.SalesRecord{}, err
	}
	record.Type = domain.MovementType(recordType)
	return record, nil
}

// sendBatch runs batch inside a transaction.
func sendBatch(ctx context.Context, pool *pgxpool.Pool, batch *pgx.Batch) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
