package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Lixing-Zhang/stall-backend/internal/models"
	"github.com/Lixing-Zhang/stall-backend/internal/repository"
)

// EventPublisher announces menu changes to the clients watching a store
type EventPublisher interface {
	PublishAvailability(storeID, menuItemID string, available bool) int
	PublishStatistics(stats models.MenuStats) int
}

// AvailabilityChange is one entry of a bulk availability update
type AvailabilityChange struct {
	MenuItemID  string `json:"menuItemId"`
	IsAvailable bool   `json:"isAvailable"`
}

// MenuService handles business logic for store menus
type MenuService struct {
	stores repository.StoreRepository
	menu   repository.MenuRepository
	events EventPublisher
	logger *slog.Logger

	// storeLocks orders each store's menu writes with the events they publish
	locksMu    sync.Mutex
	storeLocks map[string]*sync.Mutex
}

// NewMenuService creates a new menu service. events may be nil when nobody
// listens for menu changes.
func NewMenuService(stores repository.StoreRepository, menu repository.MenuRepository, events EventPublisher, logger *slog.Logger) *MenuService {
	if logger == nil {
		logger = slog.Default()
	}
	return &MenuService{
		stores:     stores,
		menu:       menu,
		events:     events,
		logger:     logger,
		storeLocks: make(map[string]*sync.Mutex),
	}
}

func (s *MenuService) storeLock(storeID string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	l, ok := s.storeLocks[storeID]
	if !ok {
		l = &sync.Mutex{}
		s.storeLocks[storeID] = l
	}
	return l
}

// ListMenu returns the full menu of the store identified by slug
func (s *MenuService) ListMenu(ctx context.Context, storeSlug string) ([]models.MenuItem, error) {
	store, err := s.stores.GetBySlug(ctx, storeSlug)
	if err != nil {
		return nil, err
	}
	return s.menu.ListByStore(ctx, store.ID)
}

// GetItem returns one menu item of the store identified by slug
func (s *MenuService) GetItem(ctx context.Context, storeSlug, itemID string) (*models.MenuItem, error) {
	store, err := s.stores.GetBySlug(ctx, storeSlug)
	if err != nil {
		return nil, err
	}
	return s.menu.GetItem(ctx, store.ID, itemID)
}

// SetAvailability marks an item as available or sold out, then announces the
// change followed by the refreshed menu statistics.
func (s *MenuService) SetAvailability(ctx context.Context, storeSlug, itemID string, available bool) (*models.MenuItem, error) {
	store, err := s.stores.GetBySlug(ctx, storeSlug)
	if err != nil {
		return nil, err
	}

	l := s.storeLock(store.ID)
	l.Lock()
	defer l.Unlock()

	item, err := s.menu.SetAvailability(ctx, store.ID, itemID, available)
	if err != nil {
		return nil, err
	}

	s.logger.Info("menu item availability changed",
		"store_id", store.ID,
		"menu_item_id", item.ID,
		"is_available", item.IsAvailable,
	)

	if s.events != nil {
		s.events.PublishAvailability(store.ID, item.ID, item.IsAvailable)
	}
	if _, err := s.publishStats(ctx, store.ID); err != nil {
		s.logger.Warn("failed to publish menu statistics", "store_id", store.ID, "error", err)
	}

	return item, nil
}

// BulkSetAvailability applies several availability changes to one store.
// Every item is checked before anything changes; one statistics event
// follows the batch.
func (s *MenuService) BulkSetAvailability(ctx context.Context, storeSlug string, changes []AvailabilityChange) ([]models.MenuItem, error) {
	store, err := s.stores.GetBySlug(ctx, storeSlug)
	if err != nil {
		return nil, err
	}

	l := s.storeLock(store.ID)
	l.Lock()
	defer l.Unlock()

	for _, c := range changes {
		if _, err := s.menu.GetItem(ctx, store.ID, c.MenuItemID); err != nil {
			return nil, fmt.Errorf("menu item %s: %w", c.MenuItemID, err)
		}
	}

	updated := make([]models.MenuItem, 0, len(changes))
	for _, c := range changes {
		item, err := s.menu.SetAvailability(ctx, store.ID, c.MenuItemID, c.IsAvailable)
		if err != nil {
			return updated, fmt.Errorf("menu item %s: %w", c.MenuItemID, err)
		}
		updated = append(updated, *item)
		if s.events != nil {
			s.events.PublishAvailability(store.ID, item.ID, item.IsAvailable)
		}
	}

	s.logger.Info("menu availability updated in bulk", "store_id", store.ID, "count", len(updated))

	if _, err := s.publishStats(ctx, store.ID); err != nil {
		s.logger.Warn("failed to publish menu statistics", "store_id", store.ID, "error", err)
	}

	return updated, nil
}

// PublishStatistics announces the current menu counts of a store on demand
func (s *MenuService) PublishStatistics(ctx context.Context, storeSlug string) (models.MenuStats, error) {
	store, err := s.stores.GetBySlug(ctx, storeSlug)
	if err != nil {
		return models.MenuStats{}, err
	}

	l := s.storeLock(store.ID)
	l.Lock()
	defer l.Unlock()

	return s.publishStats(ctx, store.ID)
}

// Stats counts the items of a store menu
func (s *MenuService) Stats(ctx context.Context, storeID string) (models.MenuStats, error) {
	items, err := s.menu.ListByStore(ctx, storeID)
	if err != nil {
		return models.MenuStats{}, err
	}

	stats := models.MenuStats{StoreID: storeID, TotalItems: len(items)}
	for _, item := range items {
		if item.IsAvailable {
			stats.AvailableItems++
		}
	}
	return stats, nil
}

func (s *MenuService) publishStats(ctx context.Context, storeID string) (models.MenuStats, error) {
	stats, err := s.Stats(ctx, storeID)
	if err != nil {
		return models.MenuStats{}, err
	}
	if s.events != nil {
		s.events.PublishStatistics(stats)
	}
	return stats, nil
}

// LookupItem resolves a menu item for pricing
func (s *MenuService) LookupItem(ctx context.Context, storeID, itemID string) (models.MenuItem, bool, error) {
	item, err := s.menu.GetItem(ctx, storeID, itemID)
	if errors.Is(err, repository.ErrMenuItemNotFound) {
		return models.MenuItem{}, false, nil
	}
	if err != nil {
		return models.MenuItem{}, false, err
	}
	return *item, true, nil
}
