package domain

import (
	"context"

	erpdomain "github.com/merchlab/ordersync/internal/erp/domain"
)

// Service correlates upstream orders with stored quotes and invoices. It
// never fails: every lookup miss degrades to zero-value fields.
type Service interface {
	Correlate(ctx context.Context, order erpdomain.Order) Correlation
}
