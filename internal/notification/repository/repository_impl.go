package repository

import (
	"context"

	"github.com/merchlab/ordersync/internal/notification/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) ListNotifiedOrders(ctx context.Context, db *gorm.DB, notifiedDate string) ([]string, error) {
	var orderIDs []string
	err := db.WithContext(ctx).Raw(
		`SELECT order_id FROM notification_logs WHERE notified_date = ?`,
		notifiedDate,
	).Scan(&orderIDs).Error
	if err != nil {
		return nil, err
	}
	return orderIDs, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.NotificationLogEntry) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO notification_logs (id, order_id, notified_date, created_at)
		 VALUES (?, ?, ?, ?)`,
		entry.ID,
		entry.OrderID,
		entry.NotifiedDate,
		entry.CreatedAt,
	).Error
}
