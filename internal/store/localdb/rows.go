package localdb

import (
	"encoding/json"
	"time"

	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/domain"
)

// Created/Updated are set by the caller; gorm's automatic timestamps would
// overwrite restored values.
type productRow struct {
	ID                  string `gorm:"primaryKey"`
	SellerSKU           string `gorm:"column:seller_sku;uniqueIndex;not null"`
	ShopSKU             string `gorm:"column:shop_sku"`
	StyleName           string `gorm:"column:style_name;not null"`
	Category            string `gorm:"column:category"`
	DistributionChannel string `gorm:"column:distribution_channel"`
	Notes               string `gorm:"column:notes"`
	Status              string `gorm:"column:status"`
	SizeS               int    `gorm:"column:size_s"`
	SizeM               int    `gorm:"column:size_m"`
	SizeL               int    `gorm:"column:size_l"`
	SizeXL              int    `gorm:"column:size_xl"`
	SizeXXL             int    `gorm:"column:size_xxl"`
	SizeXXXL            int    `gorm:"column:size_xxxl"`
	SizeOneSize         int    `gorm:"column:size_onesize"`
	TotalStock          int    `gorm:"column:total_stock"`
	Price               float64
	Cost                float64
	ShippingCost        float64
	PlatformCommission  float64
	Discount            float64
	Tax                 float64
	AdminFee            float64
	Commission          float64
	NettReceive         float64
	Images              string    `gorm:"column:images"`
	Created             time.Time `gorm:"column:created_at"`
	Updated             time.Time `gorm:"column:updated_at"`
}

func (productRow) TableName() string { return "products" }

func toProductRow(p domain.Product) productRow {
	images := "[]"
	if len(p.Images) > 0 {
		if raw, err := json.Marshal(p.Images); err == nil {
			images = string(raw)
		}
	}
	return productRow{
		ID:                  p.ID,
		SellerSKU:           p.SellerSKU,
		ShopSKU:             p.ShopSKU,
		StyleName:           p.StyleName,
		Category:            p.Category,
		DistributionChannel: p.DistributionChannel,
		Notes:               p.Notes,
		Status:              string(p.Status),
		SizeS:               p.S,
		SizeM:               p.M,
		SizeL:               p.L,
		SizeXL:              p.XL,
		SizeXXL:             p.XXL,
		SizeXXXL:            p.XXXL,
		SizeOneSize:         p.OneSize,
		TotalStock:          p.TotalStock,
		Price:               p.Price,
		Cost:                p.Cost,
		ShippingCost:        p.ShippingCost,
		PlatformCommission:  p.PlatformCommission,
		Discount:            p.Discount,
		Tax:                 p.Tax,
		AdminFee:            p.AdminFee,
		Commission:          p.Commission,
		NettReceive:         p.NettReceive,
		Images:              images,
		Created:             p.CreatedAt,
		Updated:             p.UpdatedAt,
	}
}

func (r productRow) toDomain() domain.Product {
	var images []string
	if r.Images != "" {
		_ = json.Unmarshal([]byte(r.Images), &images)
	}
	return domain.Product{
		ID:                  r.ID,
		SellerSKU:           r.SellerSKU,
		ShopSKU:             r.ShopSKU,
		StyleName:           r.StyleName,
		Category:            r.Category,
		DistributionChannel: r.DistributionChannel,
		Notes:               r.Notes,
		Status:              domain.Status(r.Status),
		Sizes: domain.Sizes{
			S:       r.SizeS,
			M:       r.SizeM,
			L:       r.SizeL,
			XL:      r.SizeXL,
			XXL:     r.SizeXXL,
			XXXL:    r.SizeXXXL,
			OneSize: r.SizeOneSize,
		},
		TotalStock:         r.TotalStock,
		Price:              r.Price,
		Cost:               r.Cost,
		ShippingCost:       r.ShippingCost,
		PlatformCommission: r.PlatformCommission,
		Discount:           r.Discount,
		Tax:                r.Tax,
		AdminFee:           r.AdminFee,
		Commission:         r.Commission,
		NettReceive:        r.NettReceive,
		Images:             images,
		CreatedAt:          r.Created,
		UpdatedAt:          r.Updated,
	}
}

type salesRow struct {
	ID             string `gorm:"primaryKey"`
	Date           string `gorm:"index"`
	SellerSKU      string `gorm:"column:seller_sku;index"`
	StyleName      string `gorm:"column:style_name"`
	Type           string
	Qty            int
	Remark         string
	RemainingStock int `gorm:"column:remaining_stock"`
}

func (salesRow) TableName() string { return "sales_records" }

func toSalesRow(s domain.SalesRecord) salesRow {
	return salesRow{
		ID:             s.ID,
		Date:           s.Date,
		SellerSKU:      s.SellerSKU,
		StyleName:      s.StyleName,
		Type:           string(s.Type),
		Qty:            s.Qty,
		Remark:         s.Remark,
		RemainingStock: s.RemainingStock,
	}
}

func (r salesRow) toDomain() domain.SalesRecord {
	return domain.SalesRecord{
		ID:             r.ID,
		Date:           r.Date,
		SellerSKU:      r.SellerSKU,
		StyleName:      r.StyleName,
		Type:           domain.MovementType(r.Type),
		Qty:            r.Qty,
		Remark:         r.Remark,
		RemainingStock: r.RemainingStock,
	}
}

type logRow struct {
	ID        string `gorm:"primaryKey"`
	Timestamp int64  `gorm:"index"`
	Date      string
	UserName  string `gorm:"column:user_name"`
	UserRole  string `gorm:"column:user_role"`
	Action    string
	Item      string
	OldVal    string `gorm:"column:old_val"`
	NewVal    string `gorm:"column:new_val"`
	Source    string
}

func (logRow) TableName() string { return "activity_logs" }

func toLogRow(e domain.ActivityLogEntry) logRow {
	return logRow{
		ID:        e.ID,
		Timestamp: e.Timestamp,
		Date:      e.Date,
		UserName:  e.User,
		UserRole:  string(e.Role),
		Action:    e.Action,
		Item:      e.Item,
		OldVal:    string(e.OldVal),
		NewVal:    string(e.NewVal),
		Source:    e.Source,
	}
}

func (r logRow) toDomain() domain.ActivityLogEntry {
	return domain.ActivityLogEntry{
		ID:        r.ID,
		Timestamp: r.Timestamp,
		Date:      r.Date,
		User:      r.UserName,
		Role:      domain.Role(r.UserRole),
		Action:    r.Action,
		Item:      r.Item,
		OldVal:    domain.LogValue(r.OldVal),
		NewVal:    domain.LogValue(r.NewVal),
		Source:    r.Source,
	}
}

type userRow struct {
	Username     string `gorm:"primaryKey"`
	PasswordHash string `gorm:"column:password_hash"`
	Role         string
	Created      time.Time `gorm:"column:created_at"`
}

func (userRow) TableName() string { return "users" }

func toUserRow(u domain.User) *userRow {
	return &userRow{
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		Created:      u.CreatedAt,
	}
}

func (r userRow) toDomain() domain.User {
	return domain.User{
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		Role:         domain.Role(r.Role),
		CreatedAt:    r.Created,
	}
}

type settingRow struct {
	Key   string `gorm:"primaryKey"`
	Value string
}

func (settingRow) TableName() string { return "settings" }
