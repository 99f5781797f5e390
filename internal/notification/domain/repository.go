package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	ListNotifiedOrders(ctx context.Context, db *gorm.DB, notifiedDate string) ([]string, error)
	Insert(ctx context.Context, db *gorm.DB, entry *NotificationLogEntry) error
}
