package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/domain"
)

type ProductRepository struct {
	pool *pgxpool.Pool
}

const productColumns = `
	id,
	seller_sku,
	shop_sku,
	style_name,
	category,
	distribution_channel,
	notes,
	status,
	size_s,
	size_m,
	size_l,
	size_xl,
	size_xxl,
	size_xxxl,
	size_onesize,
	total_stock,
	price,
	cost,
	shipping_cost,
	platform_commission,
	discount,
	tax,
	admin_fee,
	commission,
	nett_receive,
	images,
	created_at,
	updated_at
`

const upsertProductSQL = `
	INSERT INTO products (` + productColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
		$17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28)
	ON CONFLICT (id) DO UPDATE SET
		seller_sku = EXCLUDED.seller_sku,
		shop_sku = EXCLUDED.shop_sku,
		style_name = EXCLUDED.style_name,
		category = EXCLUDED.category,
		distribution_channel = EXCLUDED.distribution_channel,
		notes = EXCLUDED.notes,
		status = EXCLUDED.status,
		size_s = EXCLUDED.size_s,
		size_m = EXCLUDED.size_m,
		size_l = EXCLUDED.size_l,
		size_xl = EXCLUDED.size_xl,
		size_xxl = EXCLUDED.size_xxl,
		size_xxxl = EXCLUDED.size_xxxl,
		size_onesize = EXCLUDED.size_onesize,
		total_stock = EXCLUDED.total_stock,
		price = EXCLUDED.price,
		cost = EXCLUDED.cost,
		shipping_cost = EXCLUDED.shipping_cost,
		platform_commission = EXCLUDED.platform_commission,
		discount = EXCLUDED.discount,
		tax = EXCLUDED.tax,
		admin_fee = EXCLUDED.admin_fee,
		commission = EXCLUDED.commission,
		nett_receive = EXCLUDED.nett_receive,
		images = EXCLUDED.images,
		created_at = EXCLUDED.created_at,
		updated_at = EXCLUDED.updated_at
	RETURNING ` + productColumns

func (r *ProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, repoErr("list products", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		p, err := scanProductRow(rows)
		if err != nil {
			return nil, repoErr("scan product", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, repoErr("iterate products", err)
	}
	return products, nil
}

func (r *ProductRepository) Get(ctx context.Context, id string) (domain.Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	product, err := scanProductRow(row)
	if err != nil {
		return domain.Product{}, repoErr("get product", err)
	}
	return product, nil
}

func (r *ProductRepository) Save(ctx context.Context, p domain.Product) (domain.Product, error) {
	stampProduct(&p, time.Now().UTC())
	args, err := productArgs(p)
	if err != nil {
		return domain.Product{}, repoErr("encode product", err)
	}
	saved, err := scanProductRow(r.pool.QueryRow(ctx, upsertProductSQL, args...))
	if err != nil {
		return domain.Product{}, repoErr("save product", err)
	}
	return saved, nil
}

// SaveBulk upserts products in one transaction; preset UpdatedAt values are
// kept.
func (r *ProductRepository) SaveBulk(ctx context.Context, products []domain.Product) ([]domain.Product, error) {
	if len(products) == 0 {
		return nil, nil
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, repoErr("begin product import tx", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	saved := make([]domain.Product, 0, len(products))
	for _, p := range products {
		keep := p.UpdatedAt
		stampProduct(&p, now)
		if !keep.IsZero() {
			p.UpdatedAt = keep
		}
		args, err := productArgs(p)
		if err != nil {
			return nil, repoErr("encode product", err)
		}
		row, err := scanProductRow(tx.QueryRow(ctx, upsertProductSQL, args...))
		if err != nil {
			return nil, repoErr("save product "+p.SellerSKU, err)
		}
		saved = append(saved, row)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, repoErr("commit product import tx", err)
	}
	return saved, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return repoErr("delete product", err)
	}
	if cmd.RowsAffected() == 0 {
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

func productArgs(p domain.Product) ([]any, error) {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	rawImages, err := json.Marshal(images)
	if err != nil {
		return nil, err
	}
	return []any{
		p.ID,
		p.SellerSKU,
		p.ShopSKU,
		p.StyleName,
		p.Category,
		p.DistributionChannel,
		p.Notes,
		string(p.Status),
		p.S,
		p.M,
		p.L,
		p.XL,
		p.XXL,
		p.XXXL,
		p.OneSize,
		p.TotalStock,
		p.Price,
		p.Cost,
		p.ShippingCost,
		p.PlatformCommission,
		p.Discount,
		p.Tax,
		p.AdminFee,
		p.Commission,
		p.NettReceive,
		string(rawImages),
		p.CreatedAt,
		p.UpdatedAt,
	}, nil
}

func scanProductRow(row pgx.Row) (domain.Product, error) {
	var (
		product   domain.Product
		status    string
		rawImages []byte
	)
	if err := row.Scan(
		&product.ID,
		&product.SellerSKU,
		&product.ShopSKU,
		&product.StyleName,
		&product.Category,
		&product.DistributionChannel,
		&product.Notes,
		&status,
		&product.S,
		&product.M,
		&product.L,
		&product.XL,
		&product.XXL,
		&product.XXXL,
		&product.OneSize,
		&product.TotalStock,
		&product.Price,
		&product.Cost,
		&product.ShippingCost,
		&product.PlatformCommission,
		&product.Discount,
		&product.Tax,
		&product.AdminFee,
		&product.Commission,
		&product.NettReceive,
		&rawImages,
		&product.CreatedAt,
		&product.UpdatedAt,
	); err != nil {
		return domain.Product{}, err
	}
	product.Status = domain.Status(status)
	if len(rawImages) > 0 {
		if err := json.Unmarshal(rawImages, &product.Images); err != nil {
			return domain.Product{}, err
		}
	}
	return product, nil
}
