package store

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/config"
	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/db"
	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/media"
	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/repository"
	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/store/localdb"
)

// Backend is an opened gateway bound to one mode.
type Backend struct {
	mode     config.Mode
	products Products
	sales    Sales
	logs     Logs
	users    Users
	settings Settings
	closer   io.Closer
}

func (b *Backend) Mode() config.Mode { return b.mode }
func (b *Backend) Products() Products { return b.products }
func (b *Backend) Sales() Sales { return b.sales }
func (b *Backend) Logs() Logs { return b.logs }
func (b *Backend) Users() Users { return b.users }
func (b *Backend) Settings() Settings { return b.settings }

func (b *Backend) Close() error {
	if b.closer == nil {
		return nil
	}
	err := b.closer.Close()
	b.closer = nil
	return err
}

// Open connects the backend for mode. OFFLINE opens the local database file;
// ONLINE connects to DATABASE_URL, applies migrations and uses object
// storage for images when it is configured.
func Open(ctx context.Context, cfg config.Config, mode config.Mode) (*Backend, error) {
	switch mode {
	case config.ModeOffline:
		local, err := localdb.Open(ctx, cfg.LocalDBPath())
		if err != nil {
			return nil, err
		}
		return &Backend{
			mode:     mode,
			products: withImages{ProductRecords: local.Products(), uploader: media.DataURLUploader{MaxBytes: cfg.MaxImageBytes}},
			sales:    local.Sales(),
			logs:     local.Logs(),
			users:    local.Users(),
			settings: local.Settings(),
			closer:   local,
		}, nil

	case config.ModeOnline:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for ONLINE mode")
		}
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := db.RunMigrations(pool); err != nil {
			pool.Close()
			return nil, err
		}

		var uploader media.Uploader = media.DataURLUploader{MaxBytes: cfg.MaxImageBytes}
		if cfg.Storage.Enabled() {
			s3Uploader, err := media.NewS3Uploader(ctx, cfg.Storage, cfg.MaxImageBytes)
			if err != nil {
				pool.Close()
				return nil, err
			}
			uploader = s3Uploader
		} else {
			log.Warn().Msg("object storage not configured; product images are stored inline")
		}

		remote := repository.New(pool)
		return &Backend{
			mode:     mode,
			products: withImages{ProductRecords: remote.Products(), uploader: uploader},
			sales:    remote.Sales(),
			logs:     remote.Logs(),
			users:    remote.Users(),
			settings: remote.Settings(),
			closer:   remote,
		}, nil
	}
	return nil, fmt.Errorf("unknown persistence mode %q", mode)
}

type withImages struct {
	ProductRecords
	uploader media.Uploader
}

func (p withImages) UploadImage(ctx context.Context, name string, data []byte) (string, error) {
	return p.uploader.Upload(ctx, name, data)
}
