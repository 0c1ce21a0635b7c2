// Package store is the persistence gateway. Callers depend on the interfaces
// here; Open picks the OFFLINE or ONLINE backend from the mode it is given.
package store

import (
	"context"

	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/config"
	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/domain"
)

type ProductRecords interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id string) (domain.Product, error)
	Save(ctx context.Context, p domain.Product) (domain.Product, error)
	SaveBulk(ctx context.Context, products []domain.Product) ([]domain.Product, error)
	Delete(ctx context.Context, id string) error
}

type Products interface {
	ProductRecords
	UploadImage(ctx context.Context, name string, data []byte) (string, error)
}

type Sales interface {
	List(ctx context.Context) ([]domain.SalesRecord, error)
	Add(ctx context.Context, record domain.SalesRecord) (domain.SalesRecord, error)
	Restore(ctx context.Context, records []domain.SalesRecord) error
}

type Logs interface {
	List(ctx context.Context, limit int) ([]domain.ActivityLogEntry, error)
	Add(ctx context.Context, entry domain.ActivityLogEntry) (domain.ActivityLogEntry, error)
	Restore(ctx context.Context, entries []domain.ActivityLogEntry) error
}

type Users interface {
	List(ctx context.Context) ([]domain.User, error)
	GetByUsername(ctx context.Context, username string) (domain.User, error)
	Save(ctx context.Context, u domain.User) (domain.User, error)
	Delete(ctx context.Context, username string) error
}

type Settings interface {
	Categories(ctx context.Context) ([]string, error)
	SaveCategories(ctx context.Context, items []string) error
	Channels(ctx context.Context) ([]string, error)
	SaveChannels(ctx context.Context, items []string) error
}

type Gateway interface {
	Mode() config.Mode
	Products() Products
	Sales() Sales
	Logs() Logs
	Users() Users
	Settings() Settings
	Close() error
}
