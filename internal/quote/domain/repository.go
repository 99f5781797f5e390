package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	FindQuoteByNo(ctx context.Context, db *gorm.DB, quoteNo string) (*Quote, error)
	ListRecentInvoices(ctx context.Context, db *gorm.DB, limit int) ([]Invoice, error)
}
