// Package margin computes per-unit profitability from a product's price and
// cost components. It performs no I/O and never fails: unreadable input is
// treated as zero by the callers that parse it.
package margin

import (
	"math"

	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/domain"
	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/numeric"
)

// Input carries absolute currency amounts. Commission is the legacy field and
// is excluded from TotalCost.
type Input struct {
	Price              float64 `json:"price"`
	Cost               float64 `json:"cost"`
	ShippingCost       float64 `json:"shipping_cost"`
	PlatformCommission float64 `json:"platform_commission"`
	Discount           float64 `json:"discount"`
	Tax                float64 `json:"tax"`
	AdminFee           float64 `json:"admin_fee"`
	Commission         float64 `json:"commission,omitempty"`
}

type Result struct {
	TotalCost        float64 `json:"total_cost"`
	NettReceive      float64 `json:"nett_receive"`
	MarginPercentage float64 `json:"margin_percentage"`
	IsProfitable     bool    `json:"is_profitable"`
}

func Compute(in Input) Result {
	price := numeric.Finite(in.Price)
	totalCost := numeric.Finite(in.Cost) +
		numeric.Finite(in.ShippingCost) +
		numeric.Finite(in.PlatformCommission) +
		numeric.Finite(in.Discount) +
		numeric.Finite(in.Tax) +
		numeric.Finite(in.AdminFee)

	nett := price - totalCost
	result := Result{
		TotalCost:    totalCost,
		NettReceive:  nett,
		IsProfitable: nett > 0,
	}
	if price > 0 {
		result.MarginPercentage = nett / price * 100
	}
	return result
}

func FromProduct(p domain.Product) Input {
	return Input{
		Price:              p.Price,
		Cost:               p.Cost,
		ShippingCost:       p.ShippingCost,
		PlatformCommission: p.PlatformCommission,
		Discount:           p.Discount,
		Tax:                p.Tax,
		AdminFee:           p.AdminFee,
		Commission:         p.Commission,
	}
}

// Apply recomputes the derived NettReceive on p and returns the full result.
func Apply(p *domain.Product) Result {
	result := Compute(FromProduct(*p))
	p.NettReceive = result.NettReceive
	return result
}

// PercentToAbsolute converts a percentage of price into a rounded currency
// amount. The percentage is clamped to [0, 100].
func PercentToAbsolute(percent, price float64) float64 {
	percent = numeric.Finite(percent)
	price = numeric.Finite(price)
	if price <= 0 {
		return 0
	}
	percent = math.Min(math.Max(percent, 0), 100)
	return math.Round(percent / 100 * price)
}

func AbsoluteToPercent(absolute, price float64) float64 {
	price = numeric.Finite(price)
	if price <= 0 {
		return 0
	}
	return numeric.Finite(absolute) / price * 100
}
