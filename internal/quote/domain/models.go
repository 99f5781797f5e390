package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Quote is a stored sales quote, keyed by quote number. The payload is the
// quote builder's JSON document; the pipeline only reads it.
type Quote struct {
	ID        snowflake.ID   `gorm:"primaryKey" json:"id"`
	QuoteNo   string         `gorm:"not null;uniqueIndex" json:"quote_no"`
	Payload   datatypes.JSON `gorm:"not null" json:"payload"`
	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// Invoice mirrors the accounting system's invoice export. There is no
// foreign key back to a quote; correlation is a payload substring match.
type Invoice struct {
	ID        snowflake.ID   `gorm:"primaryKey" json:"id"`
	InvoiceNo string         `gorm:"not null;index" json:"invoice_no"`
	Payload   datatypes.JSON `gorm:"not null" json:"payload"`
	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`
}

// Customer is the contact extracted from a quote payload.
type Customer struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Company   string `json:"company,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// Correlation is the result of matching an order back to its quote and
// invoice. All fields are best-effort; misses leave zero values.
type Correlation struct {
	QuoteNo      string    `json:"quote_no,omitempty"`
	SellingPrice float64   `json:"selling_price"`
	Matched      bool      `json:"matched"`
	Customer     *Customer `json:"customer,omitempty"`
	InvoiceNo    string    `json:"invoice_no,omitempty"`
}
