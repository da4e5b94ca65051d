// internal/repository/postgres/sale_repository.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/warewolf/demand-engine/internal/domain"
)

type saleRepository struct {
	db *DB
}

func NewSaleRepository(db *DB) *saleRepository {
	return &saleRepository{db: db}
}

func (r *saleRepository) LatestSaleDate(ctx context.Context) (time.Time, bool, error) {
	query := `
		SELECT order_date
		FROM orders
		WHERE order_type = 'SALE'
		ORDER BY order_date DESC
		LIMIT 1
	`

	var latest time.Time
	err := r.db.GetContext(ctx, &latest, query)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to get latest sale date: %w", err)
	}

	return latest, true, nil
}

func (r *saleRepository) DailySaleTotals(ctx context.Context, itemID int64, from, to time.Time) ([]domain.SaleTotal, error) {
	query := `
		SELECT item_id, order_date AS sale_date, COALESCE(SUM(quantity), 0) AS total_qty
		FROM orders
		WHERE order_type = 'SALE'
		  AND order_date BETWEEN $1 AND $2
		  AND ($3 = 0 OR item_id = $3)
		GROUP BY item_id, order_date
		ORDER BY item_id, order_date
	`

	var totals []domain.SaleTotal
	if err := sqlx.SelectContext(ctx, r.db, &totals, query, from, to, itemID); err != nil {
		return nil, fmt.Errorf("failed to aggregate daily sales: %w", err)
	}

	return totals, nil
}
