package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Lixing-Zhang/stall-backend/internal/models"
	"github.com/Lixing-Zhang/stall-backend/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StoreRepository implements repository.StoreRepository on PostgreSQL
type StoreRepository struct {
	pool *pgxpool.Pool
}

func NewStoreRepository(pool *pgxpool.Pool) *StoreRepository {
	return &StoreRepository{pool: pool}
}

func (r *StoreRepository) List(ctx context.Context) ([]models.Store, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, slug, name FROM stores ORDER BY slug`)
	if err != nil {
		return nil, fmt.Errorf("query stores: %w", err)
	}
	defer rows.Close()

	var stores []models.Store
	for rows.Next() {
		var s models.Store
		if err := rows.Scan(&s.ID, &s.Slug, &s.Name); err != nil {
			return nil, fmt.Errorf("scan store: %w", err)
		}
		stores = append(stores, s)
	}
	return stores, rows.Err()
}

func (r *StoreRepository) GetByID(ctx context.Context, id string) (*models.Store, error) {
	return r.getOne(ctx, `SELECT id, slug, name FROM stores WHERE id = $1`, id)
}

func (r *StoreRepository) GetBySlug(ctx context.Context, slug string) (*models.Store, error) {
	return r.getOne(ctx, `SELECT id, slug, name FROM stores WHERE slug = $1`, slug)
}

func (r *StoreRepository) getOne(ctx context.Context, query, arg string) (*models.Store, error) {
	var s models.Store
	err := r.pool.QueryRow(ctx, query, arg).Scan(&s.ID, &s.Slug, &s.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrStoreNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query store: %w", err)
	}
	return &s, nil
}

// Seed inserts stores, leaving existing rows untouched
func (r *StoreRepository) Seed(ctx context.Context, stores []models.Store) error {
	batch := &pgx.Batch{}
	for _, s := range stores {
		batch.Queue(`INSERT INTO stores (id, slug, name) VALUES ($1, $2, $3) ON CONFLICT (id) DO NOTHING`,
			s.ID, s.Slug, s.Name)
	}
	return r.pool.SendBatch(ctx, batch).Close()
}
