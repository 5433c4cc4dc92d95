package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Lixing-Zhang/stall-backend/internal/models"
	"github.com/Lixing-Zhang/stall-backend/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const menuColumns = `id, store_id, name, price::text, is_available, category`

// MenuRepository implements repository.MenuRepository on PostgreSQL.
// Prices travel as text so decimals keep their exact scale.
type MenuRepository struct {
	pool *pgxpool.Pool
}

func NewMenuRepository(pool *pgxpool.Pool) *MenuRepository {
	return &MenuRepository{pool: pool}
}

func (r *MenuRepository) ListByStore(ctx context.Context, storeID string) ([]models.MenuItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+menuColumns+` FROM menu_items WHERE store_id = $1 ORDER BY position, id`, storeID)
	if err != nil {
		return nil, fmt.Errorf("query menu: %w", err)
	}
	defer rows.Close()

	items := []models.MenuItem{}
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *MenuRepository) GetItem(ctx context.Context, storeID, itemID string) (*models.MenuItem, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+menuColumns+` FROM menu_items WHERE store_id = $1 AND id = $2`, storeID, itemID)
	item, err := scanMenuItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrMenuItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *MenuRepository) SetAvailability(ctx context.Context, storeID, itemID string, available bool) (*models.MenuItem, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE menu_items SET is_available = $3 WHERE store_id = $1 AND id = $2 RETURNING `+menuColumns,
		storeID, itemID, available)
	item, err := scanMenuItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrMenuItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Seed inserts menu items in the given order, leaving existing rows untouched
func (r *MenuRepository) Seed(ctx context.Context, items []models.MenuItem) error {
	batch := &pgx.Batch{}
	for i, item := range items {
		batch.Queue(`
			INSERT INTO menu_items (id, store_id, name, price, is_available, category, position)
			VALUES ($1, $2, $3, $4::numeric, $5, $6, $7)
			ON CONFLICT (store_id, id) DO NOTHING`,
			item.ID, item.StoreID, item.Name, item.Price.String(), item.IsAvailable, item.Category, i)
	}
	return r.pool.SendBatch(ctx, batch).Close()
}

func scanMenuItem(row pgx.Row) (models.MenuItem, error) {
	var (
		item  models.MenuItem
		price string
	)
	if err := row.Scan(&item.ID, &item.StoreID, &item.Name, &price, &item.IsAvailable, &item.Category); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return item, err
		}
		return item, fmt.Errorf("scan menu item: %w", err)
	}

	p, err := decimal.NewFromString(price)
	if err != nil {
		return item, fmt.Errorf("parse price %q: %w", price, err)
	}
	item.Price = p
	return item, nil
}
