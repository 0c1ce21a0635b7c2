package service

import (
	"context"
	"fmt"

	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/domain"
	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/margin"
)

type Dashboard struct {
	TotalProducts     int            `json:"total_products"`
	TotalStock        int            `json:"total_stock"`
	LowStock          int            `json:"low_stock"`
	OutOfStock        int            `json:"out_of_stock"`
	UpdatePrice       int            `json:"update_price"`
	InventoryValue    float64        `json:"inventory_value"`
	PotentialProfit   float64        `json:"potential_profit"`
	Profitable        int            `json:"profitable"`
	Unprofitable      int            `json:"unprofitable"`
	LowStockThreshold int            `json:"low_stock_threshold"`
	CostBreakdown     []margin.Slice `json:"cost_breakdown"`
}

// Dashboard summarises the catalog. The cost breakdown weighs every
// product's per-unit components by its stock on hand.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	products, err := s.gw.Products().List(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("list products: %w", err)
	}
	return summarize(products, s.lowStockThreshold), nil
}

func summarize(products []domain.Product, threshold int) Dashboard {
	d := Dashboard{TotalProducts: len(products), LowStockThreshold: threshold}
	var weighted margin.Input
	for _, p := range products {
		stock := p.TotalStock
		d.TotalStock += stock
		switch {
		case stock == 0:
			d.OutOfStock++
		case stock < threshold:
			d.LowStock++
		}
		if p.Status == domain.StatusUpdatePrice {
			d.UpdatePrice++
		}
		if p.NettReceive > 0 {
			d.Profitable++
		} else {
			d.Unprofitable++
		}
		d.InventoryValue += p.Price * float64(stock)
		d.PotentialProfit += p.NettReceive * float64(stock)

		units := float64(stock)
		weighted.Price += p.Price * units
		weighted.Cost += p.Cost * units
		weighted.ShippingCost += p.ShippingCost * units
		weighted.PlatformCommission += p.PlatformCommission * units
		weighted.Discount += p.Discount * units
		weighted.Tax += p.Tax * units
		weighted.AdminFee += p.AdminFee * units
	}
	d.CostBreakdown = margin.Breakdown(weighted)
	return d
}
