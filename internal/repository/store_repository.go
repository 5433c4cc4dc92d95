package repository

import (
	"context"
	"sort"

	"github.com/Lixing-Zhang/stall-backend/internal/models"
)

// InMemoryStoreRepository implements StoreRepository with in-memory storage.
// Stores are read-only once created.
type InMemoryStoreRepository struct {
	byID   map[string]models.Store
	bySlug map[string]string
}

// NewInMemoryStoreRepository creates a new in-memory store repository with seed data
func NewInMemoryStoreRepository() *InMemoryStoreRepository {
	return NewInMemoryStoreRepositoryWith(SeedStores())
}

// NewInMemoryStoreRepositoryWith creates a repository holding stores
func NewInMemoryStoreRepositoryWith(stores []models.Store) *InMemoryStoreRepository {
	r := &InMemoryStoreRepository{
		byID:   make(map[string]models.Store, len(stores)),
		bySlug: make(map[string]string, len(stores)),
	}
	for _, s := range stores {
		r.byID[s.ID] = s
		r.bySlug[s.Slug] = s.ID
	}
	return r
}

// List returns all stores ordered by slug
func (r *InMemoryStoreRepository) List(ctx context.Context) ([]models.Store, error) {
	stores := make([]models.Store, 0, len(r.byID))
	for _, s := range r.byID {
		stores = append(stores, s)
	}
	sort.Slice(stores, func(i, j int) bool { return stores[i].Slug < stores[j].Slug })
	return stores, nil
}

// GetByID returns a store by its ID
func (r *InMemoryStoreRepository) GetByID(ctx context.Context, id string) (*models.Store, error) {
	s, ok := r.byID[id]
	if !ok {
		return nil, ErrStoreNotFound
	}
	return &s, nil
}

// GetBySlug returns a store by its URL slug
func (r *InMemoryStoreRepository) GetBySlug(ctx context.Context, slug string) (*models.Store, error) {
	id, ok := r.bySlug[slug]
	if !ok {
		return nil, ErrStoreNotFound
	}
	return r.GetByID(ctx, id)
}
