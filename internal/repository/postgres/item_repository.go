// internal/repository/postgres/item_repository.go
package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/warewolf/demand-engine/internal/domain"
)

type itemRepository struct {
	db *DB
}

func NewItemRepository(db *DB) *itemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) GetItem(ctx context.Context, id int64) (*domain.Item, error) {
	query := `
		SELECT id, name, sku, quantity, reorder_level, safety_stock, lead_time_days, created_at
		FROM items
		WHERE id = $1
	`

	var item domain.Item
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		return nil, fmt.Errorf("failed to get item %d: %w", id, err)
	}

	return &item, nil
}

func (r *itemRepository) GetItemsByID(ctx context.Context, ids []int64) (map[int64]*domain.Item, error) {
	if len(ids) == 0 {
		return map[int64]*domain.Item{}, nil
	}

	query := `
		SELECT id, name, sku, quantity, reorder_level, safety_stock, lead_time_days, created_at
		FROM items
		WHERE id = ANY($1)
	`

	var items []*domain.Item
	if err := sqlx.SelectContext(ctx, r.db, &items, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}

	byID := make(map[int64]*domain.Item, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	return byID, nil
}
