package repository

import (
	"context"
	"sync"

	"github.com/Lixing-Zhang/stall-backend/internal/models"
)

// InMemoryMenuRepository implements MenuRepository with in-memory storage
type InMemoryMenuRepository struct {
	mu    sync.RWMutex
	items map[string][]models.MenuItem // storeID -> items in menu order
}

// NewInMemoryMenuRepository creates a new in-memory menu repository with seed data
func NewInMemoryMenuRepository() *InMemoryMenuRepository {
	return NewInMemoryMenuRepositoryWith(SeedMenu())
}

// NewInMemoryMenuRepositoryWith creates a repository holding items
func NewInMemoryMenuRepositoryWith(items []models.MenuItem) *InMemoryMenuRepository {
	r := &InMemoryMenuRepository{
		items: make(map[string][]models.MenuItem),
	}
	for _, item := range items {
		r.items[item.StoreID] = append(r.items[item.StoreID], item)
	}
	return r
}

// ListByStore returns the menu of a store
func (r *InMemoryMenuRepository) ListByStore(ctx context.Context, storeID string) ([]models.MenuItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]models.MenuItem, len(r.items[storeID]))
	copy(items, r.items[storeID])
	return items, nil
}

// GetItem returns one menu item of a store
func (r *InMemoryMenuRepository) GetItem(ctx context.Context, storeID, itemID string) (*models.MenuItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items[storeID] {
		if item.ID == itemID {
			found := item
			return &found, nil
		}
	}
	return nil, ErrMenuItemNotFound
}

// SetAvailability flips the availability flag of an item and returns the updated item
func (r *InMemoryMenuRepository) SetAvailability(ctx context.Context, storeID, itemID string, available bool) (*models.MenuItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := r.items[storeID]
	for i := range items {
		if items[i].ID == itemID {
			items[i].IsAvailable = available
			updated := items[i]
			return &updated, nil
		}
	}
	return nil, ErrMenuItemNotFound
}
