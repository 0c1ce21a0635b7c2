// Package excel reads product spreadsheets and writes product exports.
//
// Two layouts are understood: the vendor template with data at fixed column
// positions, and user sheets whose first row names the columns.
package excel

import (
	"fmt"
	"io"
	"time"

	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/domain"
)

type Strategy string

const (
	StrategyAuto   Strategy = "auto"
	StrategyFixed  Strategy = "fixed"
	StrategyHeader Strategy = "header"
)

func ParseStrategy(raw string) (Strategy, error) {
	switch Strategy(raw) {
	case "", StrategyAuto:
		return StrategyAuto, nil
	case StrategyFixed:
		return StrategyFixed, nil
	case StrategyHeader:
		return StrategyHeader, nil
	}
	return "", fmt.Errorf("unknown import strategy %q", raw)
}

type Options struct {
	Strategy Strategy
	// Now stamps generated SKUs; zero means time.Now.
	Now time.Time
}

// ParsedRow is one data row. Row is the 1-based sheet row number. When Err is
// non-empty Product holds whatever could be read.
type ParsedRow struct {
	Row     int
	Product domain.Product
	Err     string
}

type ParseResult struct {
	Strategy  Strategy
	TotalRows int
	Rows      []ParsedRow
}

// ParseProducts reads every data row. Problems with a single row are
// reported on that row; only an unreadable file returns an error, which
// wraps domain.ErrParse.
func ParseProducts(fileName string, reader io.Reader, opts Options) (ParseResult, error) {
	rows, err := readRows(fileName, reader)
	if err != nil {
		return ParseResult{}, fmt.Errorf("%w: %v", domain.ErrParse, err)
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	strategy := opts.Strategy
	if strategy == "" || strategy == StrategyAuto {
		strategy = detectStrategy(rows)
	}

	var parsed []ParsedRow
	switch strategy {
	case StrategyFixed:
		parsed = parseFixedRows(rows)
	case StrategyHeader:
		parsed, err = parseHeaderRows(rows, opts.Now)
		if err != nil {
			return ParseResult{}, fmt.Errorf("%w: %v", domain.ErrParse, err)
		}
	default:
		return ParseResult{}, fmt.Errorf("%w: unknown import strategy %q", domain.ErrParse, strategy)
	}

	return ParseResult{Strategy: strategy, TotalRows: len(parsed), Rows: parsed}, nil
}

func detectStrategy(rows [][]string) Strategy {
	if len(rows) > 0 {
		for _, cell := range rows[0] {
			if normalizeHeader(cell) == "seller sku" {
				return StrategyHeader
			}
		}
	}
	return StrategyFixed
}
