package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/domain"
)

const (
	remarkSale   = "Penjualan manual"
	remarkReturn = "Retur manual"
)

// Movement is a manual sale or return of one product.
type Movement struct {
	ProductID string `json:"product_id" validate:"required"`
	Qty       int    `json:"qty" validate:"gte=1"`
	Remark    string `json:"remark" validate:"max=500"`
}

type MovementResult struct {
	Product domain.Product     `json:"product"`
	Record  domain.SalesRecord `json:"record"`
}

// AdjustStock applies a quick +1 or -1 to the product total, clamped at
// zero. Buckets are left alone. Only a changed total is written and logged.
func (s *Service) AdjustStock(ctx context.Context, actor Actor, id string, delta int) (domain.Product, error) {
	if err := authorize(actor.role().CanMoveStock()); err != nil {
		return domain.Product{}, err
	}
	if delta != 1 && delta != -1 {
		return domain.Product{}, domain.NewValidationError("delta", "must be 1 or -1")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	product, err := s.gw.Products().Get(ctx, id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("get product: %w", err)
	}
	oldTotal := product.TotalStock
	newTotal := max(0, oldTotal+delta)
	if newTotal == oldTotal {
		return product, nil
	}

	product.TotalStock = newTotal
	saved, err := s.gw.Products().Save(ctx, product)
	if err != nil {
		return domain.Product{}, fmt.Errorf("save product: %w", err)
	}
	s.audit(ctx, actor, domain.ActionUpdateStock, saved.Label(), domain.IntValue(oldTotal), domain.IntValue(newTotal), domain.SourceInventory)
	return saved, nil
}

func (s *Service) RecordSale(ctx context.Context, actor Actor, m Movement) (MovementResult, error) {
	return s.move(ctx, actor, domain.MovementSale, m)
}

func (s *Service) RecordReturn(ctx context.Context, actor Actor, m Movement) (MovementResult, error) {
	return s.move(ctx, actor, domain.MovementReturn, m)
}

// move writes the new total, then the sales record. If the record cannot be
// stored the product is put back to its prior state. Sales and returns are
// always logged.
func (s *Service) move(ctx context.Context, actor Actor, kind domain.MovementType, m Movement) (MovementResult, error) {
	if err := authorize(actor.role().CanMoveStock()); err != nil {
		return MovementResult{}, err
	}
	m.ProductID = strings.TrimSpace(m.ProductID)
	m.Remark = strings.TrimSpace(m.Remark)
	if err := validateStruct(m); err != nil {
		return MovementResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	product, err := s.gw.Products().Get(ctx, m.ProductID)
	if err != nil {
		return MovementResult{}, fmt.Errorf("get product: %w", err)
	}

	before := product
	oldTotal := product.TotalStock
	delta := m.Qty
	action, remark := domain.ActionReturn, remarkReturn
	if kind == domain.MovementSale {
		if m.Qty > oldTotal {
			return MovementResult{}, &domain.ValidationError{
				Field:   "qty",
				Message: fmt.Sprintf("stock insufficient: %d available", oldTotal),
				Err:     domain.ErrInsufficientStock,
			}
		}
		delta = -m.Qty
		action, remark = domain.ActionSale, remarkSale
	}
	if m.Remark != "" {
		remark = m.Remark
	}
	newTotal := max(0, oldTotal+delta)

	product.TotalStock = newTotal
	saved, err := s.gw.Products().Save(ctx, product)
	if err != nil {
		return MovementResult{}, fmt.Errorf("save product: %w", err)
	}

	record, err := s.gw.Sales().Add(ctx, domain.SalesRecord{
		Date:           s.now().Format(domain.SalesDateLayout),
		SellerSKU:      saved.SellerSKU,
		StyleName:      saved.StyleName,
		Type:           kind,
		Qty:            m.Qty,
		Remark:         remark,
		RemainingStock: newTotal,
	})
	if err != nil {
		err = fmt.Errorf("add sales record: %w", err)
		if _, restoreErr := s.gw.Products().Save(ctx, before); restoreErr != nil {
			log.Error().Err(restoreErr).Str("product_id", before.ID).Msg("restore product after failed sales record")
			return MovementResult{}, errors.Join(err, fmt.Errorf("restore product: %w", restoreErr))
		}
		return MovementResult{}, err
	}

	s.audit(ctx, actor, action, saved.Label(), domain.IntValue(oldTotal), domain.IntValue(newTotal), domain.SourceSales)
	return MovementResult{Product: saved, Record: record}, nil
}
