package domain

import (
	"strings"
	"time"
)

// SalesDateLayout is the local timestamp format stored on sales records and
// activity log entries.
const SalesDateLayout = "2006-01-02 15:04"

// MaxProductImages bounds Product.Images; the first image is the primary one.
const MaxProductImages = 5

type Status string

const (
	StatusActive       Status = "Active"
	StatusUpdatePrice  Status = "Update Price"
	StatusInactive     Status = "Inactive"
	StatusMissingImage Status = "Gambar Hilang"
	StatusItemNotFound Status = "Barang Tidak Ditemukan"
)

var knownStatuses = []Status{
	StatusActive,
	StatusUpdatePrice,
	StatusInactive,
	StatusMissingImage,
	StatusItemNotFound,
}

// KnownStatuses returns the recognised product statuses in display order.
func KnownStatuses() []Status {
	return append([]Status(nil), knownStatuses...)
}

// NormalizeStatus maps raw input onto a known status, case-insensitively.
// Unrecognised non-empty values are kept as-is; empty input becomes Active.
func NormalizeStatus(raw string) Status {
	value := strings.Join(strings.Fields(raw), " ")
	if value == "" {
		return StatusActive
	}
	for _, status := range knownStatuses {
		if strings.EqualFold(value, string(status)) {
			return status
		}
	}
	return Status(value)
}

func (s Status) Known() bool {
	for _, status := range knownStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Sizes holds the seven per-size stock buckets.
type Sizes struct {
	S       int `json:"size_s"`
	M       int `json:"size_m"`
	L       int `json:"size_l"`
	XL      int `json:"size_xl"`
	XXL     int `json:"size_xxl"`
	XXXL    int `json:"size_xxxl"`
	OneSize int `json:"size_onesize"`
}

func (s Sizes) Total() int {
	return s.S + s.M + s.L + s.XL + s.XXL + s.XXXL + s.OneSize
}

func (s Sizes) HasNegative() bool {
	for _, v := range s.Values() {
		if v < 0 {
			return true
		}
	}
	return false
}

// Values returns the buckets in S..OneSize order.
func (s Sizes) Values() []int {
	return []int{s.S, s.M, s.L, s.XL, s.XXL, s.XXXL, s.OneSize}
}

// SizeLabels matches the order of Sizes.Values.
var SizeLabels = []string{"S", "M", "L", "XL", "XXL", "XXXL", "ONESIZE"}

// Set assigns a bucket by its label. Unknown labels are ignored.
func (s *Sizes) Set(label string, qty int) bool {
	switch strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(label), " ", "")) {
	case "S":
		s.S = qty
	case "M":
		s.M = qty
	case "L":
		s.L = qty
	case "XL":
		s.XL = qty
	case "XXL":
		s.XXL = qty
	case "XXXL":
		s.XXXL = qty
	case "ONESIZE":
		s.OneSize = qty
	default:
		return false
	}
	return true
}

type Product struct {
	ID                  string `json:"id"`
	SellerSKU           string `json:"seller_sku" validate:"required,max=100"`
	ShopSKU             string `json:"shop_sku,omitempty" validate:"max=100"`
	StyleName           string `json:"style_name" validate:"required,max=255"`
	Category            string `json:"category,omitempty"`
	DistributionChannel string `json:"distribution_channel,omitempty"`
	Notes               string `json:"notes,omitempty"`
	Status              Status `json:"status"`

	Sizes
	TotalStock int `json:"total_stock"`

	Price              float64 `json:"price" validate:"gte=0"`
	Cost               float64 `json:"cost" validate:"gte=0"`
	ShippingCost       float64 `json:"shipping_cost" validate:"gte=0"`
	PlatformCommission float64 `json:"platform_commission" validate:"gte=0"`
	Discount           float64 `json:"discount" validate:"gte=0"`
	Tax                float64 `json:"tax" validate:"gte=0"`
	AdminFee           float64 `json:"admin_fee" validate:"gte=0"`
	Commission         float64 `json:"commission" validate:"gte=0"`
	NettReceive        float64 `json:"nett_receive"`

	Images []string `json:"images,omitempty" validate:"max=5"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Label is the denormalized "Style (SKU)" form used in logs.
func (p Product) Label() string {
	return p.StyleName + " (" + p.SellerSKU + ")"
}

// PrimaryImage returns the first image reference, or "".
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

type MovementType string

const (
	MovementSale   MovementType = "sale"
	MovementReturn MovementType = "return"
)

type SalesRecord struct {
	ID             string       `json:"id"`
	Date           string       `json:"date"`
	SellerSKU      string       `json:"seller_sku"`
	StyleName      string       `json:"style_name"`
	Type           MovementType `json:"type"`
	Qty            int          `json:"qty"`
	Remark         string       `json:"remark"`
	RemainingStock int          `json:"remaining_stock"`
}

type ActivityLogEntry struct {
	ID        string   `json:"id"`
	Timestamp int64    `json:"timestamp"`
	Date      string   `json:"date"`
	User      string   `json:"user"`
	Role      Role     `json:"role"`
	Action    string   `json:"action"`
	Item      string   `json:"item"`
	OldVal    LogValue `json:"oldVal"`
	NewVal    LogValue `json:"newVal"`
	Source    string   `json:"source"`
}

// Audit actions.
const (
	ActionUpdateStock   = "Update Stock"
	ActionSale          = "Sale"
	ActionReturn        = "Return"
	ActionAddProduct    = "Add Product"
	ActionEditProduct   = "Edit Product"
	ActionDeleteProduct = "Delete Product"
	ActionImport        = "Import Products"
	ActionRestore       = "Restore Backup"
	ActionSaveUser      = "Save User"
	ActionDeleteUser    = "Delete User"
	ActionSaveSettings  = "Update Settings"
)

// Log sources.
const (
	SourceInventory = "inventory"
	SourceSales     = "sales"
	SourceImport    = "import"
	SourceBackup    = "backup"
	SourceUsers     = "users"
	SourceSettings  = "settings"
)

type Role string

const (
	RoleOwner Role = "OWNER"
	RoleAdmin Role = "ADMIN"
	RoleStaff Role = "STAFF"
)

func ParseRole(raw string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(raw))) {
	case RoleOwner:
		return RoleOwner, true
	case RoleAdmin:
		return RoleAdmin, true
	case RoleStaff:
		return RoleStaff, true
	}
	return "", false
}

// CanManageCatalog covers product edits, deletes, imports and restores.
func (r Role) CanManageCatalog() bool {
	return r == RoleOwner || r == RoleAdmin
}

func (r Role) CanManageUsers() bool {
	return r == RoleOwner
}

// CanMoveStock covers quick adjustments and manual sales/returns.
func (r Role) CanMoveStock() bool {
	return r == RoleOwner || r == RoleAdmin || r == RoleStaff
}

type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

type Settings struct {
	Categories []string `json:"categories"`
	Channels   []string `json:"channels"`
}

var (
	DefaultCategories = []string{"Kaos", "Kemeja", "Jaket", "Celana", "Dress", "Aksesoris"}
	DefaultChannels   = []string{"Shopee", "Tokopedia", "Zalora", "Website", "Offline Store"}
)

// CleanList trims entries and drops blanks and duplicates, keeping order.
func CleanList(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		value := strings.TrimSpace(item)
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
