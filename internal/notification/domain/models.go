package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// NotificationLogEntry records that an alert for an order went out on a
// given UTC calendar day. Rows are write-once: the unique index on
// (order_id, notified_date) enforces at most one alert per order per day.
type NotificationLogEntry struct {
	ID           snowflake.ID `gorm:"primaryKey"`
	OrderID      string       `gorm:"not null;uniqueIndex:idx_notification_order_date"`
	NotifiedDate string       `gorm:"not null;uniqueIndex:idx_notification_order_date"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (NotificationLogEntry) TableName() string {
	return "notification_logs"
}

// StuckAlert describes one order flagged as stuck in a transient stage.
// Stage is the display label; orders with no mapped stage carry "Pending".
type StuckAlert struct {
	OrderID     string
	Stage       string
	StatusDate  string
	CustomerRef string
	OrderDate   string
}
