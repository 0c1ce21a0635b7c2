package backup

import (
	"strconv"
	"strings"
	"time"

	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/domain"
	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/numeric"
)

// schema coerces loosely typed records from older clients, which stored ids
// as numbers and numbers as strings, into the shapes the domain types decode.
type schema struct {
	strings []string
	ints    []string
	floats  []string
	times   []string
	// aliases maps alternate key names onto the canonical json key.
	aliases map[string]string
	fixup   func(map[string]any)
}

var productSchema = schema{
	strings: []string{"id", "seller_sku", "shop_sku", "style_name", "category", "distribution_channel", "notes", "status"},
	ints:    []string{"size_s", "size_m", "size_l", "size_xl", "size_xxl", "size_xxxl", "size_onesize", "total_stock"},
	floats: []string{
		"price", "cost", "shipping_cost", "platform_commission", "discount",
		"tax", "admin_fee", "commission", "nett_receive",
	},
	times: []string{"created_at", "updated_at"},
	fixup: legacyImages,
}

var salesSchema = schema{
	strings: []string{"id", "date", "seller_sku", "style_name", "type", "remark"},
	ints:    []string{"qty", "remaining_stock"},
}

// logSchema also accepts the column names of the ONLINE activity_logs table.
var logSchema = schema{
	strings: []string{"id", "date", "user", "role", "action", "item", "source"},
	ints:    []string{"timestamp"},
	aliases: map[string]string{
		"user_name": "user",
		"user_role": "role",
		"old_val":   "oldVal",
		"new_val":   "newVal",
	},
}

func (s schema) normalize(record map[string]any) {
	for from, to := range s.aliases {
		value, ok := record[from]
		if !ok {
			continue
		}
		delete(record, from)
		if _, taken := record[to]; !taken {
			record[to] = value
		}
	}
	for _, key := range s.strings {
		if value, ok := record[key]; ok {
			record[key] = toString(value)
		}
	}
	for _, key := range s.ints {
		if value, ok := record[key]; ok {
			record[key] = toInt(value)
		}
	}
	for _, key := range s.floats {
		if value, ok := record[key]; ok {
			record[key] = toFloat(value)
		}
	}
	for _, key := range s.times {
		value, ok := record[key]
		if !ok {
			continue
		}
		if parsed, ok := toTime(value); ok {
			record[key] = parsed
		} else {
			delete(record, key)
		}
	}
	if s.fixup != nil {
		s.fixup(record)
	}
}

// legacyImages keeps only string references and folds the single imageUrl
// field of older records into images.
func legacyImages(record map[string]any) {
	var images []any
	if list, ok := record["images"].([]any); ok {
		for _, item := range list {
			if ref := toString(item); ref != "" {
				images = append(images, ref)
			}
		}
	}
	if len(images) == 0 {
		if ref := toString(record["imageUrl"]); ref != "" {
			images = []any{ref}
		}
	}
	delete(record, "imageUrl")
	if len(images) > domain.MaxProductImages {
		images = images[:domain.MaxProductImages]
	}
	if images == nil {
		delete(record, "images")
		return
	}
	record["images"] = images
}

func toString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}

func toFloat(value any) float64 {
	switch v := value.(type) {
	case float64:
		return numeric.Finite(v)
	case string:
		return numeric.FloatOrZero(v)
	case bool:
		if v {
			return 1
		}
	}
	return 0
}

func toInt(value any) int64 {
	f := toFloat(value)
	if !numeric.FitsInt(f) {
		return 0
	}
	return int64(f)
}

func toTime(value any) (time.Time, bool) {
	switch v := value.(type) {
	case string:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"} {
			if parsed, err := time.Parse(layout, strings.TrimSpace(v)); err == nil {
				return parsed, true
			}
		}
	case float64:
		return time.UnixMilli(int64(v)).UTC(), true
	}
	return time.Time{}, false
}
