package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/domain"
)

const productsSheet = "Products"

// TemplateColumns is the header row of the blank import template.
var TemplateColumns = []string{
	"Seller SKU", "Style Name", "Category", "Current Listing Price", "NETT RECEIVE",
	"S", "M", "L", "XL", "XXL", "XXXL", "ONESIZE",
}

// ExportColumns re-import through the header-name strategy without loss. A
// row whose total no longer matches its size buckets leaves the size cells
// blank so the Total Stock column wins on re-import.
var ExportColumns = []string{
	"Seller SKU", "Shop SKU", "Style Name", "Category", "Channel", "Status",
	"Current Listing Price", "Cost", "Shipping Cost", "Platform Commission",
	"Discount", "Tax", "Admin Fee", "Commission", "NETT RECEIVE",
	"S", "M", "L", "XL", "XXL", "XXXL", "ONESIZE", "Total Stock", "Notes",
}

func exportRow(p domain.Product) []any {
	sizes := []any{p.S, p.M, p.L, p.XL, p.XXL, p.XXXL, p.OneSize}
	if p.Sizes.Total() != p.TotalStock {
		for i := range sizes {
			sizes[i] = ""
		}
	}
	row := []any{
		p.SellerSKU, p.ShopSKU, p.StyleName, p.Category, p.DistributionChannel, string(p.Status),
		p.Price, p.Cost, p.ShippingCost, p.PlatformCommission,
		p.Discount, p.Tax, p.AdminFee, p.Commission, p.NettReceive,
	}
	row = append(row, sizes...)
	return append(row, p.TotalStock, p.Notes)
}

func WriteProductsXLSX(w io.Writer, products []domain.Product) error {
	rows := make([][]any, 0, len(products))
	for _, p := range products {
		rows = append(rows, exportRow(p))
	}
	return writeWorkbook(w, ExportColumns, rows)
}

func WriteTemplate(w io.Writer) error {
	return writeWorkbook(w, TemplateColumns, nil)
}

func writeWorkbook(w io.Writer, header []string, rows [][]any) error {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName(file.GetSheetName(0), productsSheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	headerCells := make([]any, len(header))
	for i, title := range header {
		headerCells[i] = title
	}
	if err := file.SetSheetRow(productsSheet, "A1", &headerCells); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := file.SetSheetRow(productsSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := file.SetPanes(productsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if _, err := file.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func WriteProductsCSV(w io.Writer, products []domain.Product) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(ExportColumns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, p := range products {
		row := exportRow(p)
		record := make([]string, len(row))
		for i, value := range row {
			record[i] = formatCell(value)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatCell(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return fmt.Sprint(value)
}
