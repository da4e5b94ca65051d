// internal/repository/repository.go
package repository

import (
	"context"
	"time"

	"github.com/warewolf/demand-engine/internal/domain"
)

// SaleRepository exposes the sales-transaction store. Only SALE-type
// orders count toward demand.
type SaleRepository interface {
	// LatestSaleDate returns the most recent SALE date in the store.
	// ok is false when no sale transactions exist at all.
	LatestSaleDate(ctx context.Context) (latest time.Time, ok bool, err error)

	// DailySaleTotals returns SUM(quantity) grouped by (item, date) for
	// SALE orders in [from, to]. itemID 0 means all items. Ordered by
	// item then date.
	DailySaleTotals(ctx context.Context, itemID int64, from, to time.Time) ([]domain.SaleTotal, error)
}

// AnomalyRepository persists detected anomalies, keyed by (item_id, date).
type AnomalyRepository interface {
	// Upsert inserts the anomaly or refreshes quantity/score/severity in
	// place when the (item, date) pair already exists. created reports
	// whether a new row was inserted.
	Upsert(ctx context.Context, a *domain.DemandAnomaly) (created bool, err error)

	// Recent returns the newest anomalies, severity-first then by score,
	// joined with item names.
	Recent(ctx context.Context, limit int) ([]domain.DemandAnomaly, error)
}

// ItemRepository reads inventory items.
type ItemRepository interface {
	GetItem(ctx context.Context, id int64) (*domain.Item, error)
	GetItemsByID(ctx context.Context, ids []int64) (map[int64]*domain.Item, error)
}

// NotificationRepository writes in-app notifications and resolves who
// should receive them.
type NotificationRepository interface {
	// ElevatedRecipients returns users holding manager/admin roles.
	ElevatedRecipients(ctx context.Context) ([]domain.User, error)

	BulkCreate(ctx context.Context, notifications []domain.Notification) error
}
