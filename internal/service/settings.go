package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/domain"
)

func (s *Service) Settings(ctx context.Context) (domain.Settings, error) {
	categories, err := s.gw.Settings().Categories(ctx)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load categories: %w", err)
	}
	channels, err := s.gw.Settings().Channels(ctx)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load channels: %w", err)
	}
	return domain.Settings{Categories: categories, Channels: channels}, nil
}

// SaveSettings replaces the lists present in in; a nil list is left as is.
func (s *Service) SaveSettings(ctx context.Context, actor Actor, in domain.Settings) (domain.Settings, error) {
	if err := authorize(actor.role().CanManageCatalog()); err != nil {
		return domain.Settings{}, err
	}

	var changed []string
	if in.Categories != nil {
		categories := domain.CleanList(in.Categories)
		if len(categories) == 0 {
			return domain.Settings{}, domain.NewValidationError("categories", "needs at least one entry")
		}
		in.Categories = categories
		changed = append(changed, "categories")
	}
	if in.Channels != nil {
		channels := domain.CleanList(in.Channels)
		if len(channels) == 0 {
			return domain.Settings{}, domain.NewValidationError("channels", "needs at least one entry")
		}
		in.Channels = channels
		changed = append(changed, "channels")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if in.Categories != nil {
		if err := s.gw.Settings().SaveCategories(ctx, in.Categories); err != nil {
			return domain.Settings{}, fmt.Errorf("save categories: %w", err)
		}
	}
	if in.Channels != nil {
		if err := s.gw.Settings().SaveChannels(ctx, in.Channels); err != nil {
			return domain.Settings{}, fmt.Errorf("save channels: %w", err)
		}
	}
	if len(changed) > 0 {
		s.audit(ctx, actor, domain.ActionSaveSettings, strings.Join(changed, ", "), "-", "-", domain.SourceSettings)
	}
	return s.Settings(ctx)
}
