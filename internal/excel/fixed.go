package excel

import (
	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/domain"
	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/numeric"
)

// The vendor template has a merged group header on row 1 and column titles
// on row 2; data starts on row 3.
const fixedHeaderRows = 2

const (
	colStyleName   = 1
	colSellerSKU   = 2
	colShopSKU     = 3
	colNotes       = 5 // Production Year
	colSizeS       = 6
	colStatus      = 13
	colCategory    = 18
	colPrice       = 20 // Current Listing Price
	colCommission  = 27
	colNettReceive = 31
)

const errMissingKeys = "Missing Seller SKU or Style Name"

func parseFixedRows(rows [][]string) []ParsedRow {
	parsed := make([]ParsedRow, 0, len(rows))
	for index := fixedHeaderRows; index < len(rows); index++ {
		cells := rows[index]
		if blankRow(cells) {
			continue
		}

		var sizes domain.Sizes
		for offset, label := range domain.SizeLabels {
			sizes.Set(label, numeric.IntOrZero(readCell(cells, colSizeS+offset)))
		}

		product := domain.Product{
			StyleName:   readCell(cells, colStyleName),
			SellerSKU:   readCell(cells, colSellerSKU),
			ShopSKU:     readCell(cells, colShopSKU),
			Notes:       readCell(cells, colNotes),
			Status:      domain.NormalizeStatus(readCell(cells, colStatus)),
			Category:    readCell(cells, colCategory),
			Sizes:       sizes,
			TotalStock:  sizes.Total(),
			Price:       numeric.FloatOrZero(readCell(cells, colPrice)),
			Commission:  numeric.FloatOrZero(readCell(cells, colCommission)),
			NettReceive: numeric.FloatOrZero(readCell(cells, colNettReceive)),
		}

		row := ParsedRow{Row: index + 1, Product: product}
		if product.SellerSKU == "" || product.StyleName == "" {
			row.Err = errMissingKeys
		}
		parsed = append(parsed, row)
	}
	return parsed
}
