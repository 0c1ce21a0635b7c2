package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/domain"
	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/excel"
	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/margin"
)

type DuplicateMode string

const (
	DuplicateSkip      DuplicateMode = "skip"
	DuplicateOverwrite DuplicateMode = "overwrite"
)

func ParseDuplicateMode(raw string) (DuplicateMode, error) {
	switch DuplicateMode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", DuplicateSkip:
		return DuplicateSkip, nil
	case DuplicateOverwrite:
		return DuplicateOverwrite, nil
	}
	return "", domain.NewValidationError("mode", fmt.Sprintf("unknown duplicate mode %q", raw))
}

const (
	importInserted = "inserted"
	importUpdated  = "updated"

	errDuplicateSKU = "Duplicate Seller SKU"
)

type ImportOptions struct {
	Strategy   excel.Strategy
	Duplicates DuplicateMode
}

type ImportedProduct struct {
	Row       int    `json:"row"`
	SellerSKU string `json:"seller_sku"`
	StyleName string `json:"style_name"`
	Action    string `json:"action"`
}

type ImportError struct {
	Row       int    `json:"row"`
	Error     string `json:"error"`
	SellerSKU string `json:"seller_sku,omitempty"`
	StyleName string `json:"style_name,omitempty"`
}

type ImportResult struct {
	Strategy         excel.Strategy    `json:"strategy"`
	TotalRows        int               `json:"total_rows"`
	Imported         int               `json:"imported"`
	ErrorCount       int               `json:"error_count"`
	ImportedProducts []ImportedProduct `json:"imported_products"`
	Errors           []ImportError     `json:"errors"`
}

// ImportProducts parses a spreadsheet and merges its rows into the catalog
// by seller SKU. Row problems are collected in the result; only an
// unreadable file or a failed bulk save returns an error.
func (s *Service) ImportProducts(ctx context.Context, actor Actor, fileName string, reader io.Reader, opts ImportOptions) (ImportResult, error) {
	if err := authorize(actor.role().CanManageCatalog()); err != nil {
		return ImportResult{}, err
	}
	if opts.Duplicates == "" {
		opts.Duplicates = DuplicateSkip
	}

	parsed, err := excel.ParseProducts(fileName, reader, excel.Options{Strategy: opts.Strategy, Now: s.now()})
	if err != nil {
		return ImportResult{}, fmt.Errorf("parse %s: %w", fileName, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.gw.Products().List(ctx)
	if err != nil {
		return ImportResult{}, fmt.Errorf("list products: %w", err)
	}
	bySKU := make(map[string]domain.Product, len(existing))
	for _, p := range existing {
		bySKU[skuKey(p.SellerSKU)] = p
	}

	result := ImportResult{
		Strategy:         parsed.Strategy,
		TotalRows:        parsed.TotalRows,
		ImportedProducts: []ImportedProduct{},
		Errors:           []ImportError{},
	}
	rowError := func(row int, p domain.Product, msg string) {
		result.Errors = append(result.Errors, ImportError{Row: row, Error: msg, SellerSKU: p.SellerSKU, StyleName: p.StyleName})
	}

	seen := make(map[string]int, len(parsed.Rows))
	batch := make([]domain.Product, 0, len(parsed.Rows))
	for _, row := range parsed.Rows {
		p := row.Product
		if row.Err != "" {
			rowError(row.Row, p, row.Err)
			continue
		}
		if p.Sizes.HasNegative() || p.TotalStock < 0 {
			rowError(row.Row, p, "Negative stock")
			continue
		}

		key := skuKey(p.SellerSKU)
		if first, dup := seen[key]; dup {
			rowError(row.Row, p, fmt.Sprintf("%s (first seen on row %d)", errDuplicateSKU, first))
			continue
		}
		seen[key] = row.Row

		action := importInserted
		if stored, ok := bySKU[key]; ok {
			if opts.Duplicates != DuplicateOverwrite {
				rowError(row.Row, p, errDuplicateSKU)
				continue
			}
			p = mergeImported(stored, p)
			if parsed.Strategy == excel.StrategyHeader {
				margin.Apply(&p)
			}
			action = importUpdated
		}

		batch = append(batch, p)
		result.ImportedProducts = append(result.ImportedProducts, ImportedProduct{
			Row:       row.Row,
			SellerSKU: p.SellerSKU,
			StyleName: p.StyleName,
			Action:    action,
		})
	}

	if len(batch) > 0 {
		if _, err := s.gw.Products().SaveBulk(ctx, batch); err != nil {
			return ImportResult{}, fmt.Errorf("save imported products: %w", err)
		}
	}

	result.Imported = len(result.ImportedProducts)
	result.ErrorCount = len(result.Errors)
	if result.Imported > 0 {
		summary := fmt.Sprintf("%d imported, %d errors", result.Imported, result.ErrorCount)
		s.audit(ctx, actor, domain.ActionImport, fileName, "-", domain.LogValue(summary), domain.SourceImport)
	}
	return result, nil
}

// mergeImported updates stored with an imported row. The stored id and
// creation time are kept, and so is every descriptive or fee field the
// sheet left blank. Stock, price and status always come from the sheet.
func mergeImported(stored, incoming domain.Product) domain.Product {
	merged := incoming
	merged.ID = stored.ID
	merged.CreatedAt = stored.CreatedAt

	keepString := func(dst *string, prev string) {
		if *dst == "" {
			*dst = prev
		}
	}
	keepString(&merged.ShopSKU, stored.ShopSKU)
	keepString(&merged.DistributionChannel, stored.DistributionChannel)
	keepString(&merged.Notes, stored.Notes)
	if merged.Category == "" || (merged.Category == excel.DefaultCategory && stored.Category != "") {
		merged.Category = stored.Category
	}

	keepAmount := func(dst *float64, prev float64) {
		if *dst == 0 {
			*dst = prev
		}
	}
	keepAmount(&merged.Cost, stored.Cost)
	keepAmount(&merged.ShippingCost, stored.ShippingCost)
	keepAmount(&merged.PlatformCommission, stored.PlatformCommission)
	keepAmount(&merged.Discount, stored.Discount)
	keepAmount(&merged.Tax, stored.Tax)
	keepAmount(&merged.AdminFee, stored.AdminFee)
	keepAmount(&merged.Commission, stored.Commission)

	if len(merged.Images) == 0 {
		merged.Images = stored.Images
	}
	return merged
}

func skuKey(sku string) string {
	return strings.ToLower(strings.TrimSpace(sku))
}
