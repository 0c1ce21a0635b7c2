// Package service holds the inventory operations behind the HTTP API and the
// CLI: product edits, the stock ledger, imports, backups, settings and user
// management. Mutations are serialized on one mutex.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/config"
	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/domain"
	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/store"
)

const defaultLowStockThreshold = 3

// Actor is the signed-in user a mutation is attributed to.
type Actor struct {
	Username string
	Role     domain.Role
}

func (a Actor) name() string {
	if a.Username == "" {
		return "Unknown"
	}
	return a.Username
}

// role defaults to OWNER: a local session without a user row owns the data.
func (a Actor) role() domain.Role {
	if a.Role == "" {
		return domain.RoleOwner
	}
	return a.Role
}

type Service struct {
	gw                store.Gateway
	now               func() time.Time
	lowStockThreshold int

	mu sync.Mutex
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithLowStockThreshold(threshold int) Option {
	return func(s *Service) {
		if threshold > 0 {
			s.lowStockThreshold = threshold
		}
	}
}

func New(gw store.Gateway, opts ...Option) *Service {
	s := &Service{
		gw:                gw,
		now:               time.Now,
		lowStockThreshold: defaultLowStockThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Mode() config.Mode {
	return s.gw.Mode()
}

// audit appends an activity log entry. A failed append is logged and
// swallowed; it never undoes the operation it describes.
func (s *Service) audit(ctx context.Context, actor Actor, action, item string, oldVal, newVal domain.LogValue, source string) {
	now := s.now()
	entry := domain.ActivityLogEntry{
		Timestamp: now.UnixMilli(),
		Date:      now.Format(domain.SalesDateLayout),
		User:      actor.name(),
		Role:      actor.role(),
		Action:    action,
		Item:      item,
		OldVal:    oldVal,
		NewVal:    newVal,
		Source:    source,
	}
	if _, err := s.gw.Logs().Add(ctx, entry); err != nil {
		log.Error().Err(err).
			Str("action", action).
			Str("item", item).
			Msg("append activity log failed")
	}
}

func authorize(allowed bool) error {
	if !allowed {
		return domain.ErrForbidden
	}
	return nil
}

// ListLogs returns the newest activity log entries first.
func (s *Service) ListLogs(ctx context.Context, limit int) ([]domain.ActivityLogEntry, error) {
	entries, err := s.gw.Logs().List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list activity log: %w", err)
	}
	return entries, nil
}

func (s *Service) ListSales(ctx context.Context) ([]domain.SalesRecord, error) {
	records, err := s.gw.Sales().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sales records: %w", err)
	}
	return records, nil
}
