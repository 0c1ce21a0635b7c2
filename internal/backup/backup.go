// Package backup encodes and decodes the JSON backup document.
//
// Two shapes are read: the current one with typed collections, and the older
// browser-storage dump where each collection is a JSON string under an
// isvara_* key.
package backup

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/domain"
)

const Version = "2.0"

const (
	legacyProducts   = "isvara_products"
	legacySales      = "isvara_sales_records"
	legacyLogs       = "isvara_activity_log"
	legacyCategories = "isvara_categories"
	legacyChannels   = "isvara_channels"
)

// Document is a full backup. On decode a nil collection means the backup did
// not contain it and restore leaves that collection alone.
type Document struct {
	Products   []domain.Product          `json:"products"`
	Sales      []domain.SalesRecord      `json:"sales"`
	Logs       []domain.ActivityLogEntry `json:"logs"`
	Categories []string                  `json:"categories"`
	Channels   []string                  `json:"channels"`
	BackupDate time.Time                 `json:"backupDate"`
	Version    string                    `json:"version"`
}

func Encode(w io.Writer, doc Document) error {
	if doc.Products == nil {
		doc.Products = []domain.Product{}
	}
	if doc.Sales == nil {
		doc.Sales = []domain.SalesRecord{}
	}
	if doc.Logs == nil {
		doc.Logs = []domain.ActivityLogEntry{}
	}
	if doc.Categories == nil {
		doc.Categories = []string{}
	}
	if doc.Channels == nil {
		doc.Channels = []string{}
	}
	if doc.BackupDate.IsZero() {
		doc.BackupDate = time.Now().UTC()
	}
	doc.Version = Version

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("encode backup: %w", err)
	}
	return nil
}

// Decode reads either backup shape. Malformed input wraps domain.ErrParse.
func Decode(r io.Reader) (Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Document{}, fmt.Errorf("%w: read backup: %v", domain.ErrParse, err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return Document{}, fmt.Errorf("%w: backup file is empty or not a JSON object", domain.ErrParse)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Document{}, fmt.Errorf("%w: decode backup: %v", domain.ErrParse, err)
	}

	var doc Document
	if raw, ok := pick(fields, legacyProducts, "products"); ok {
		if doc.Products, err = decodeRecords[domain.Product](raw, productSchema); err != nil {
			return Document{}, fmt.Errorf("%w: products: %v", domain.ErrParse, err)
		}
	}
	if raw, ok := pick(fields, legacySales, "sales"); ok {
		if doc.Sales, err = decodeRecords[domain.SalesRecord](raw, salesSchema); err != nil {
			return Document{}, fmt.Errorf("%w: sales: %v", domain.ErrParse, err)
		}
	}
	if raw, ok := pick(fields, legacyLogs, "logs"); ok {
		if doc.Logs, err = decodeRecords[domain.ActivityLogEntry](raw, logSchema); err != nil {
			return Document{}, fmt.Errorf("%w: logs: %v", domain.ErrParse, err)
		}
	}
	if raw, ok := pick(fields, "categories", legacyCategories); ok {
		if doc.Categories, err = decodeStrings(raw); err != nil {
			return Document{}, fmt.Errorf("%w: categories: %v", domain.ErrParse, err)
		}
	}
	if raw, ok := pick(fields, "channels", legacyChannels); ok {
		if doc.Channels, err = decodeStrings(raw); err != nil {
			return Document{}, fmt.Errorf("%w: channels: %v", domain.ErrParse, err)
		}
	}

	if raw, ok := fields["version"]; ok {
		_ = json.Unmarshal(raw, &doc.Version)
	}
	if raw, ok := fields["backupDate"]; ok {
		_ = json.Unmarshal(raw, &doc.BackupDate)
	}
	return doc, nil
}

// pick returns the first key present with a non-null value.
func pick(fields map[string]json.RawMessage, keys ...string) (json.RawMessage, bool) {
	for _, key := range keys {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte(`""`)) {
			continue
		}
		return unwrapString(trimmed)
	}
	return nil, false
}

// unwrapString turns a JSON string holding JSON into the inner document.
func unwrapString(raw json.RawMessage) (json.RawMessage, bool) {
	if len(raw) == 0 || raw[0] != '"' {
		return raw, true
	}
	var inner string
	if err := json.Unmarshal(raw, &inner); err != nil {
		return raw, true
	}
	inner = string(bytes.TrimSpace([]byte(inner)))
	if inner == "" {
		return nil, false
	}
	return json.RawMessage(inner), true
}

func decodeStrings(raw json.RawMessage) ([]string, error) {
	var values []any
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(values))
	for _, value := range values {
		if s := toString(value); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

func decodeRecords[T any](raw json.RawMessage, s schema) ([]T, error) {
	var records []map[string]any
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, err
	}
	out := make([]T, 0, len(records))
	for i, record := range records {
		if record == nil {
			continue
		}
		s.normalize(record)
		normalized, err := json.Marshal(record)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		var item T
		if err := json.Unmarshal(normalized, &item); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, item)
	}
	return out, nil
}
