package repository

import (
	"context"

	"github.com/merchlab/ordersync/internal/quote/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindQuoteByNo(ctx context.Context, db *gorm.DB, quoteNo string) (*domain.Quote, error) {
	var quote domain.Quote
	err := db.WithContext(ctx).Raw(
		`SELECT id, quote_no, payload, created_at, updated_at
		 FROM quotes WHERE quote_no = ?`,
		quoteNo,
	).Scan(&quote).Error
	if err != nil {
		return nil, err
	}
	if quote.ID == 0 {
		return nil, nil
	}
	return &quote, nil
}

func (r *repo) ListRecentInvoices(ctx context.Context, db *gorm.DB, limit int) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	err := db.WithContext(ctx).Raw(
		`SELECT id, invoice_no, payload, created_at
		 FROM invoices
		 ORDER BY created_at DESC
		 LIMIT ?`,
		limit,
	).Scan(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}
