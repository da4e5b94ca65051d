// internal/repository/postgres/anomaly_repository.go
package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/warewolf/demand-engine/internal/domain"
)

type anomalyRepository struct {
	db *DB
}

func NewAnomalyRepository(db *DB) *anomalyRepository {
	return &anomalyRepository{db: db}
}

// Upsert writes an anomaly keyed by (item_id, date) as a single atomic
// conditional write, so re-running a scan over the same data updates rows
// in place instead of raising a uniqueness violation. xmax = 0 holds only
// for freshly inserted rows, which is how created is reported.
func (r *anomalyRepository) Upsert(ctx context.Context, a *domain.DemandAnomaly) (bool, error) {
	query := `
		INSERT INTO demand_anomalies (item_id, date, quantity, score, severity, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (item_id, date)
		DO UPDATE SET
			quantity = EXCLUDED.quantity,
			score = EXCLUDED.score,
			severity = EXCLUDED.severity,
			updated_at = NOW()
		RETURNING id, (xmax = 0) AS created
	`

	var row struct {
		ID      int64 `db:"id"`
		Created bool  `db:"created"`
	}
	err := r.db.QueryRowxContext(ctx, query,
		a.ItemID, a.Date, a.Quantity, a.Score, a.Severity).StructScan(&row)
	if err != nil {
		return false, fmt.Errorf("failed to upsert anomaly: %w", err)
	}

	a.ID = row.ID
	return row.Created, nil
}

func (r *anomalyRepository) Recent(ctx context.Context, limit int) ([]domain.DemandAnomaly, error) {
	if limit <= 0 {
		limit = 25
	}

	query := `
		SELECT
			a.id,
			a.item_id,
			i.name AS item_name,
			a.date,
			a.quantity,
			a.score,
			a.severity,
			a.created_at
		FROM demand_anomalies a
		JOIN items i ON i.id = a.item_id
		ORDER BY a.date DESC,
			CASE a.severity WHEN 'HIGH' THEN 0 WHEN 'MEDIUM' THEN 1 ELSE 2 END,
			a.score DESC
		LIMIT $1
	`

	var anomalies []domain.DemandAnomaly
	if err := sqlx.SelectContext(ctx, r.db, &anomalies, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list recent anomalies: %w", err)
	}

	return anomalies, nil
}
