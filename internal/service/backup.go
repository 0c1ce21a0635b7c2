package service

import (
	"context"
	"fmt"
	"io"

	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/backup"
	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/domain"
)

// Backup collects every collection of the active backend into one document.
func (s *Service) Backup(ctx context.Context) (backup.Document, error) {
	products, err := s.gw.Products().List(ctx)
	if err != nil {
		return backup.Document{}, fmt.Errorf("list products: %w", err)
	}
	sales, err := s.gw.Sales().List(ctx)
	if err != nil {
		return backup.Document{}, fmt.Errorf("list sales records: %w", err)
	}
	logs, err := s.gw.Logs().List(ctx, 0)
	if err != nil {
		return backup.Document{}, fmt.Errorf("list activity log: %w", err)
	}
	categories, err := s.gw.Settings().Categories(ctx)
	if err != nil {
		return backup.Document{}, fmt.Errorf("load categories: %w", err)
	}
	channels, err := s.gw.Settings().Channels(ctx)
	if err != nil {
		return backup.Document{}, fmt.Errorf("load channels: %w", err)
	}

	return backup.Document{
		Products:   products,
		Sales:      sales,
		Logs:       logs,
		Categories: categories,
		Channels:   channels,
		BackupDate: s.now().UTC(),
		Version:    backup.Version,
	}, nil
}

func (s *Service) WriteBackup(ctx context.Context, w io.Writer) error {
	doc, err := s.Backup(ctx)
	if err != nil {
		return err
	}
	return backup.Encode(w, doc)
}

type RestoreSummary struct {
	Products   int  `json:"products"`
	Sales      int  `json:"sales"`
	Logs       int  `json:"logs"`
	Categories bool `json:"categories"`
	Channels   bool `json:"channels"`
}

// Restore writes back every collection present in doc. Products are upserted;
// sales records and log entries go through the backend's Restore. Collections
// the document lacks are left untouched.
func (s *Service) Restore(ctx context.Context, actor Actor, doc backup.Document) (RestoreSummary, error) {
	if err := authorize(actor.role().CanManageCatalog()); err != nil {
		return RestoreSummary{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var summary RestoreSummary
	if len(doc.Products) > 0 {
		products := make([]domain.Product, len(doc.Products))
		for i, p := range doc.Products {
			if len(p.Images) > domain.MaxProductImages {
				p.Images = p.Images[:domain.MaxProductImages]
			}
			p.Status = domain.NormalizeStatus(string(p.Status))
			products[i] = p
		}
		if _, err := s.gw.Products().SaveBulk(ctx, products); err != nil {
			return summary, fmt.Errorf("restore products: %w", err)
		}
		summary.Products = len(products)
	}
	if doc.Sales != nil {
		if err := s.gw.Sales().Restore(ctx, doc.Sales); err != nil {
			return summary, fmt.Errorf("restore sales records: %w", err)
		}
		summary.Sales = len(doc.Sales)
	}
	if doc.Logs != nil {
		if err := s.gw.Logs().Restore(ctx, doc.Logs); err != nil {
			return summary, fmt.Errorf("restore activity log: %w", err)
		}
		summary.Logs = len(doc.Logs)
	}
	if categories := domain.CleanList(doc.Categories); len(categories) > 0 {
		if err := s.gw.Settings().SaveCategories(ctx, categories); err != nil {
			return summary, fmt.Errorf("restore categories: %w", err)
		}
		summary.Categories = true
	}
	if channels := domain.CleanList(doc.Channels); len(channels) > 0 {
		if err := s.gw.Settings().SaveChannels(ctx, channels); err != nil {
			return summary, fmt.Errorf("restore channels: %w", err)
		}
		summary.Channels = true
	}

	detail := fmt.Sprintf("%d products, %d sales, %d logs", summary.Products, summary.Sales, summary.Logs)
	s.audit(ctx, actor, domain.ActionRestore, "backup", "-", domain.LogValue(detail), domain.SourceBackup)
	return summary, nil
}

func (s *Service) RestoreFrom(ctx context.Context, actor Actor, r io.Reader) (RestoreSummary, error) {
	doc, err := backup.Decode(r)
	if err != nil {
		return RestoreSummary{}, err
	}
	return s.Restore(ctx, actor, doc)
}
