package domain

import (
	"time"

	erpdomain "github.com/merchlab/ordersync/internal/erp/domain"
	quotedomain "github.com/merchlab/ordersync/internal/quote/domain"
)

// PendingBucket labels orders whose delivery state maps to no canonical
// stage yet.
const PendingBucket = "Pending"

// EnrichedOrder joins an upstream order with its quote correlation and
// delivery resolution. Recomputed on every run, never persisted.
type EnrichedOrder struct {
	Order erpdomain.Order `json:"order"`

	QuoteNo      string                `json:"quote_no,omitempty"`
	SellingPrice *float64              `json:"selling_price"`
	Profit       *float64              `json:"profit"`
	ProfitMargin *float64              `json:"profit_margin"`
	Customer     *quotedomain.Customer `json:"customer,omitempty"`
	InvoiceNo    string                `json:"invoice_no,omitempty"`

	Stage       *erpdomain.DeliveryStage `json:"stage"`
	IsDelivered bool                     `json:"is_delivered"`
	StatusDate  string                   `json:"status_date"`
	IsStuck     bool                     `json:"is_stuck"`
}

// StageLabel returns the display name of the order's bucket.
func (o EnrichedOrder) StageLabel() string {
	if o.Stage == nil {
		return PendingBucket
	}
	return string(*o.Stage)
}

// StageBucket is one row of the status-counts view.
type StageBucket struct {
	Stage    string          `json:"stage"`
	Count    int             `json:"count"`
	HasStuck bool            `json:"has_stuck"`
	Orders   []EnrichedOrder `json:"orders"`
}

// Overview is the status board consumed by the dashboard.
type Overview struct {
	GeneratedAt time.Time     `json:"generated_at"`
	TotalOrders int           `json:"total_orders"`
	StuckOrders int           `json:"stuck_orders"`
	Buckets     []StageBucket `json:"buckets"`
}
