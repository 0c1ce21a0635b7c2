package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/domain"
	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/margin"
)

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.gw.Products().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	product, err := s.gw.Products().Get(ctx, id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

// SaveProduct creates p when p.ID is empty and edits the stored product
// otherwise. The total is recomputed from the size buckets and nett receive
// from the margin engine.
func (s *Service) SaveProduct(ctx context.Context, actor Actor, p domain.Product) (domain.Product, error) {
	if err := authorize(actor.role().CanManageCatalog()); err != nil {
		return domain.Product{}, err
	}
	p = cleanProduct(p)
	if err := checkProduct(p); err != nil {
		return domain.Product{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.gw.Products().List(ctx)
	if err != nil {
		return domain.Product{}, fmt.Errorf("list products: %w", err)
	}
	var previous *domain.Product
	for i := range existing {
		other := existing[i]
		if p.ID != "" && other.ID == p.ID {
			previous = &existing[i]
			continue
		}
		if strings.EqualFold(other.SellerSKU, p.SellerSKU) {
			return domain.Product{}, &domain.ValidationError{Field: "seller_sku", Message: "seller SKU already exists", Err: domain.ErrDuplicate}
		}
		if strings.EqualFold(other.StyleName, p.StyleName) {
			return domain.Product{}, &domain.ValidationError{Field: "style_name", Message: "style name already exists", Err: domain.ErrDuplicate}
		}
	}
	if p.ID != "" && previous == nil {
		return domain.Product{}, fmt.Errorf("get product %s: %w", p.ID, domain.ErrNotFound)
	}
	if previous != nil {
		p.CreatedAt = previous.CreatedAt
	}

	p.TotalStock = p.Sizes.Total()
	margin.Apply(&p)

	saved, err := s.gw.Products().Save(ctx, p)
	if err != nil {
		return domain.Product{}, fmt.Errorf("save product: %w", err)
	}

	if previous == nil {
		s.audit(ctx, actor, domain.ActionAddProduct, saved.Label(), "-", priceStock(saved), domain.SourceInventory)
	} else {
		s.audit(ctx, actor, domain.ActionEditProduct, saved.Label(), priceStock(*previous), priceStock(saved), domain.SourceInventory)
	}
	return saved, nil
}

func (s *Service) DeleteProduct(ctx context.Context, actor Actor, id string) error {
	if err := authorize(actor.role().CanManageCatalog()); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	product, err := s.gw.Products().Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get product: %w", err)
	}
	if err := s.gw.Products().Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	s.audit(ctx, actor, domain.ActionDeleteProduct, product.Label(), domain.IntValue(product.TotalStock), "-", domain.SourceInventory)
	return nil
}

// UploadImage stores an image with the active backend and returns its
// reference without attaching it to a product.
func (s *Service) UploadImage(ctx context.Context, actor Actor, name string, data []byte) (string, error) {
	if err := authorize(actor.role().CanManageCatalog()); err != nil {
		return "", err
	}
	ref, err := s.gw.Products().UploadImage(ctx, name, data)
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	return ref, nil
}

// AddProductImage uploads an image and appends it to the product's gallery.
func (s *Service) AddProductImage(ctx context.Context, actor Actor, id, name string, data []byte) (domain.Product, error) {
	if err := authorize(actor.role().CanManageCatalog()); err != nil {
		return domain.Product{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	product, err := s.gw.Products().Get(ctx, id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("get product: %w", err)
	}
	if len(product.Images) >= domain.MaxProductImages {
		return domain.Product{}, domain.NewValidationError("images", fmt.Sprintf("a product holds at most %d images", domain.MaxProductImages))
	}
	ref, err := s.gw.Products().UploadImage(ctx, name, data)
	if err != nil {
		return domain.Product{}, fmt.Errorf("upload image: %w", err)
	}
	product.Images = append(product.Images, ref)
	saved, err := s.gw.Products().Save(ctx, product)
	if err != nil {
		return domain.Product{}, fmt.Errorf("save product: %w", err)
	}
	return saved, nil
}

func cleanProduct(p domain.Product) domain.Product {
	p.ID = strings.TrimSpace(p.ID)
	p.SellerSKU = strings.TrimSpace(p.SellerSKU)
	p.ShopSKU = strings.TrimSpace(p.ShopSKU)
	p.StyleName = strings.TrimSpace(p.StyleName)
	p.Category = strings.TrimSpace(p.Category)
	p.DistributionChannel = strings.TrimSpace(p.DistributionChannel)
	p.Notes = strings.TrimSpace(p.Notes)
	p.Status = domain.NormalizeStatus(string(p.Status))

	images := make([]string, 0, len(p.Images))
	for _, ref := range p.Images {
		if ref = strings.TrimSpace(ref); ref != "" {
			images = append(images, ref)
		}
	}
	p.Images = images
	return p
}

func checkProduct(p domain.Product) error {
	if err := validateStruct(p); err != nil {
		return err
	}
	if p.Category == "" {
		return domain.NewValidationError("category", "is required")
	}
	if p.Price <= 0 {
		return domain.NewValidationError("price", "must be greater than 0")
	}
	if p.Sizes.HasNegative() {
		return domain.NewValidationError("sizes", "stock cannot be negative")
	}
	return nil
}

func priceStock(p domain.Product) domain.LogValue {
	return domain.LogValue(fmt.Sprintf("Harga %s, Stok %d", formatRupiah(p.Price), p.TotalStock))
}

// formatRupiah renders whole rupiah with dot thousands separators.
func formatRupiah(amount float64) string {
	n := int64(math.Round(amount))
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return "Rp " + sign + b.String()
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
