package migration

import (
	tokenstore "github.com/merchlab/ordersync/internal/erp/token"
	notifdomain "github.com/merchlab/ordersync/internal/notification/domain"
	quotedomain "github.com/merchlab/ordersync/internal/quote/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB) error {
		return conn.AutoMigrate(
			&tokenstore.RefreshToken{},
			&quotedomain.Quote{},
			&quotedomain.Invoice{},
			&notifdomain.NotificationLogEntry{},
		)
	}),
)
