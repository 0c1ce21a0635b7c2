package margin

import "fmt"

// Mode says how a cost field was entered.
type Mode string

const (
	ModeRp      Mode = "rp"
	ModePercent Mode = "percent"
)

func ParseMode(raw string) (Mode, error) {
	switch Mode(raw) {
	case "", ModeRp:
		return ModeRp, nil
	case ModePercent:
		return ModePercent, nil
	}
	return "", fmt.Errorf("unknown input mode %q", raw)
}

// Calculator is the interactive calculator form: platform commission,
// discount and tax can each be entered in rupiah or as a percentage of price.
type Calculator struct {
	Input
	PlatformCommissionMode Mode `json:"platform_commission_mode"`
	DiscountMode           Mode `json:"discount_mode"`
	TaxMode                Mode `json:"tax_mode"`
}

// Resolve converts percentage fields to absolute amounts once, so only
// absolute values are stored.
func (c Calculator) Resolve() Input {
	in := c.Input
	if c.PlatformCommissionMode == ModePercent {
		in.PlatformCommission = PercentToAbsolute(in.PlatformCommission, in.Price)
	}
	if c.DiscountMode == ModePercent {
		in.Discount = PercentToAbsolute(in.Discount, in.Price)
	}
	if c.TaxMode == ModePercent {
		in.Tax = PercentToAbsolute(in.Tax, in.Price)
	}
	return in
}

// Slice is one segment of the cost/profit composition chart.
type Slice struct {
	Name    string  `json:"name"`
	Value   float64 `json:"value"`
	Percent float64 `json:"percent"`
}

// Breakdown splits price into profit and cost components. Zero segments are
// omitted and Percent is each segment's share of the listed total.
func Breakdown(in Input) []Slice {
	result := Compute(in)
	segments := []Slice{
		{Name: "Profit", Value: max(0, result.NettReceive)},
		{Name: "HPP", Value: in.Cost},
		{Name: "Expedisi", Value: in.ShippingCost},
		{Name: "Komisi", Value: in.PlatformCommission},
		{Name: "Discount", Value: in.Discount},
		{Name: "Pajak", Value: in.Tax},
		{Name: "Admin", Value: in.AdminFee},
	}

	out := make([]Slice, 0, len(segments))
	total := 0.0
	for _, s := range segments {
		if s.Value > 0 {
			out = append(out, s)
			total += s.Value
		}
	}
	for i := range out {
		out[i].Percent = out[i].Value / total * 100
	}
	return out
}
