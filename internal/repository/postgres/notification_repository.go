// internal/repository/postgres/notification_repository.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/warewolf/demand-engine/internal/domain"
)

type notificationRepository struct {
	db *DB
}

func NewNotificationRepository(db *DB) *notificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) ElevatedRecipients(ctx context.Context) ([]domain.User, error) {
	query := `
		SELECT id, username, role
		FROM users
		WHERE is_active AND role IN ('manager', 'admin')
		ORDER BY id
	`

	var users []domain.User
	if err := sqlx.SelectContext(ctx, r.db, &users, query); err != nil {
		return nil, fmt.Errorf("failed to list elevated recipients: %w", err)
	}

	return users, nil
}

func (r *notificationRepository) BulkCreate(ctx context.Context, notifications []domain.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO notifications (user_id, message, is_read, created_at)
			VALUES ($1, $2, FALSE, $3)
		`

		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		now := time.Now()
		for _, n := range notifications {
			if _, err := stmt.ExecContext(ctx, n.UserID, n.Message, now); err != nil {
				return fmt.Errorf("failed to insert notification: %w", err)
			}
		}

		return nil
	})
}
