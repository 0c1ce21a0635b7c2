package excel

import (
	"fmt"
	"strings"
	"time"

	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/domain"
	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/margin"
	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/numeric"
)

const (
	defaultStyleName = "Unnamed Product"
	DefaultCategory  = "Uncategorized"
	errMissingSKU    = "Missing SKU or Name"
)

var headerAliases = map[string]string{
	"seller sku":            "seller_sku",
	"sku":                   "seller_sku",
	"shop sku":              "shop_sku",
	"style name":            "style_name",
	"product name":          "style_name",
	"name":                  "style_name",
	"category":              "category",
	"kategori":              "category",
	"channel":               "channel",
	"distribution channel":  "channel",
	"status":                "status",
	"notes":                 "notes",
	"note":                  "notes",
	"production year":       "notes",
	"current listing price": "price",
	"price":                 "price",
	"harga":                 "price",
	"cost":                  "cost",
	"hpp":                   "cost",
	"nett receive":          "nett_receive",
	"shipping cost":         "shipping_cost",
	"expedisi":              "shipping_cost",
	"platform commission":   "platform_commission",
	"komisi":                "platform_commission",
	"discount":              "discount",
	"tax":                   "tax",
	"pajak":                 "tax",
	"admin fee":             "admin_fee",
	"commission":            "commission",
	"s":                     "S",
	"m":                     "M",
	"l":                     "L",
	"xl":                    "XL",
	"xxl":                   "XXL",
	"xxxl":                  "XXXL",
	"onesize":               "ONESIZE",
	"one size":              "ONESIZE",
	"total stock":           "total_stock",
	"stock":                 "total_stock",
	"stok":                  "total_stock",
}

func mapColumns(header []string) map[string]int {
	mapped := make(map[string]int)
	for idx, col := range header {
		normalized := normalizeHeader(col)
		if normalized == "" {
			continue
		}
		canonical, ok := headerAliases[normalized]
		if !ok {
			continue
		}
		if _, exists := mapped[canonical]; !exists {
			mapped[canonical] = idx
		}
	}
	return mapped
}

func parseHeaderRows(rows [][]string, now time.Time) ([]ParsedRow, error) {
	colMap := mapColumns(rows[0])
	_, hasSKU := colMap["seller_sku"]
	_, hasName := colMap["style_name"]
	if !hasSKU && !hasName {
		return nil, fmt.Errorf("missing required column: Seller SKU or Style Name")
	}

	cell := func(cells []string, key string) string {
		idx, ok := colMap[key]
		if !ok {
			return ""
		}
		return readCell(cells, idx)
	}
	amount := func(cells []string, key string) float64 {
		return numeric.FloatOrZero(cell(cells, key))
	}

	parsed := make([]ParsedRow, 0, len(rows))
	for index := 1; index < len(rows); index++ {
		cells := rows[index]
		if blankRow(cells) {
			continue
		}
		rowNumber := index + 1

		sku := cell(cells, "seller_sku")
		name := cell(cells, "style_name")
		if sku == "" && name == "" {
			parsed = append(parsed, ParsedRow{Row: rowNumber, Err: errMissingSKU})
			continue
		}
		if sku == "" {
			sku = fmt.Sprintf("SKU-%d-%d", now.UnixMilli(), rowNumber)
		}
		if name == "" {
			name = defaultStyleName
		}

		var sizes domain.Sizes
		hasSizeData := false
		for _, label := range domain.SizeLabels {
			raw := cell(cells, label)
			if raw == "" {
				continue
			}
			hasSizeData = true
			sizes.Set(label, numeric.IntOrZero(raw))
		}
		total := sizes.Total()
		if !hasSizeData {
			total = numeric.IntOrZero(cell(cells, "total_stock"))
		}

		// A blank Cost cell falls back to NETT RECEIVE, the legacy template's
		// cost column.
		cost := amount(cells, "cost")
		if cell(cells, "cost") == "" {
			cost = amount(cells, "nett_receive")
		}

		product := domain.Product{
			SellerSKU:           sku,
			ShopSKU:             cell(cells, "shop_sku"),
			StyleName:           name,
			Category:            firstNonEmpty(cell(cells, "category"), DefaultCategory),
			DistributionChannel: cell(cells, "channel"),
			Notes:               cell(cells, "notes"),
			Status:              domain.NormalizeStatus(cell(cells, "status")),
			Sizes:               sizes,
			TotalStock:          total,
			Price:               amount(cells, "price"),
			Cost:                cost,
			ShippingCost:        amount(cells, "shipping_cost"),
			PlatformCommission:  amount(cells, "platform_commission"),
			Discount:            amount(cells, "discount"),
			Tax:                 amount(cells, "tax"),
			AdminFee:            amount(cells, "admin_fee"),
			Commission:          amount(cells, "commission"),
		}
		margin.Apply(&product)
		parsed = append(parsed, ParsedRow{Row: rowNumber, Product: product})
	}
	return parsed, nil
}

func firstNonEmpty(candidates ...string) string {
	for _, candidate := range candidates {
		if value := strings.TrimSpace(candidate); value != "" {
			return value
		}
	}
	return ""
}
