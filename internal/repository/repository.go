package repository

import (
	"context"
	"errors"

	"github.com/Lixing-Zhang/stall-backend/internal/models"
)

var (
	ErrStoreNotFound    = errors.New("store not found")
	ErrMenuItemNotFound = errors.New("menu item not found")
)

// StoreRepository defines the interface for store data access
type StoreRepository interface {
	List(ctx context.Context) ([]models.Store, error)
	GetByID(ctx context.Context, id string) (*models.Store, error)
	GetBySlug(ctx context.Context, slug string) (*models.Store, error)
}

// MenuRepository defines the interface for menu data access
type MenuRepository interface {
	ListByStore(ctx context.Context, storeID string) ([]models.MenuItem, error)
	GetItem(ctx context.Context, storeID, itemID string) (*models.MenuItem, error)
	SetAvailability(ctx context.Context, storeID, itemID string, available bool) (*models.MenuItem, error)
}
