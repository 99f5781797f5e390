package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/merchlab/ordersync/internal/config"
	erpdomain "github.com/merchlab/ordersync/internal/erp/domain"
	"github.com/merchlab/ordersync/internal/quote/domain"
	"github.com/merchlab/ordersync/internal/quote/repository"
	"github.com/merchlab/ordersync/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestExtractQuoteNumber(t *testing.T) {
	cases := []struct {
		ref  string
		want string
	}{
		{"Q123-ABC please deliver to reception", "Q123-ABC"},
		{"Q20251028-E66816", "Q20251028-E66816"},
		{"re-order of ML-7XK2", "ML-7XK2"},
		{"ML-AB123", "ML-AB123"},
		{"Q55-x9 and ML-AAAA", "Q55-x9"},
		{"PO 4471 no quote ref", ""},
		{"prefixQ123-ABC", ""},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ExtractQuoteNumber(tc.ref), "ref %q", tc.ref)
	}
}

func newTestService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	dbConn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(&domain.Quote{}, &domain.Invoice{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:     dbConn,
		Log:    zap.NewNop(),
		Repo:   repository.Provide(),
		Config: config.Config{Pipeline: config.PipelineConfig{InvoiceScanLimit: 1000}},
	})
	return svc, dbConn, node
}

func seedQuote(t *testing.T, dbConn *gorm.DB, node *snowflake.Node, quoteNo, payload string) {
	t.Helper()
	err := dbConn.Create(&domain.Quote{
		ID:      node.Generate(),
		QuoteNo: quoteNo,
		Payload: []byte(payload),
	}).Error
	require.NoError(t, err)
}

func seedInvoice(t *testing.T, dbConn *gorm.DB, node *snowflake.Node, invoiceNo, payload string, createdAt time.Time) {
	t.Helper()
	err := dbConn.Create(&domain.Invoice{
		ID:        node.Generate(),
		InvoiceNo: invoiceNo,
		Payload:   []byte(payload),
		CreatedAt: createdAt,
	}).Error
	require.NoError(t, err)
}

func TestCorrelateMatchedQuote(t *testing.T) {
	svc, dbConn, node := newTestService(t)
	seedQuote(t, dbConn, node, "Q123-ABC", `{
		"totals": {"grand_total": 1500},
		"enquiryCustomer": {"firstName": "Thandi", "lastName": "Nkosi", "email": "thandi@example.com"}
	}`)

	out := svc.Correlate(context.Background(), erpdomain.Order{CustomerRef: "order per Q123-ABC"})

	assert.True(t, out.Matched)
	assert.Equal(t, "Q123-ABC", out.QuoteNo)
	assert.Equal(t, 1500.0, out.SellingPrice)
	require.NotNil(t, out.Customer)
	assert.Equal(t, "Thandi", out.Customer.FirstName)
	assert.Equal(t, "thandi@example.com", out.Customer.Email)
}

func TestCorrelateNoQuoteReference(t *testing.T) {
	svc, _, _ := newTestService(t)

	out := svc.Correlate(context.Background(), erpdomain.Order{CustomerRef: "PO 9917"})
	assert.Equal(t, domain.Correlation{}, out)
}

func TestCorrelateUnmatchedQuoteKeepsNumber(t *testing.T) {
	svc, _, _ := newTestService(t)

	out := svc.Correlate(context.Background(), erpdomain.Order{CustomerRef: "ref ML-9ZZZ"})
	assert.False(t, out.Matched)
	assert.Equal(t, "ML-9ZZZ", out.QuoteNo)
	assert.Zero(t, out.SellingPrice)
	assert.Nil(t, out.Customer)
}

func TestCorrelateCaseVariants(t *testing.T) {
	svc, dbConn, node := newTestService(t)
	seedQuote(t, dbConn, node, "Q77-ABC", `{"totals": {"grand_total": "250.50"}}`)

	out := svc.Correlate(context.Background(), erpdomain.Order{CustomerRef: "see Q77-abc"})
	assert.True(t, out.Matched)
	assert.Equal(t, 250.5, out.SellingPrice)
}

func TestCorrelateGrandTotalString(t *testing.T) {
	svc, dbConn, node := newTestService(t)
	seedQuote(t, dbConn, node, "ML-STR1", `{"totals": {"grand_total": " 999.99 "}}`)

	out := svc.Correlate(context.Background(), erpdomain.Order{CustomerRef: "ML-STR1"})
	assert.Equal(t, 999.99, out.SellingPrice)
}

func TestCorrelateLegacyCustomerBlock(t *testing.T) {
	svc, dbConn, node := newTestService(t)
	seedQuote(t, dbConn, node, "Q9-LEG", `{
		"totals": {"grand_total": 80},
		"customer": {"first_name": "Sipho", "surname": "Dlamini", "contact_number": "0821234567"}
	}`)

	out := svc.Correlate(context.Background(), erpdomain.Order{CustomerRef: "Q9-LEG"})
	require.NotNil(t, out.Customer)
	assert.Equal(t, "Sipho", out.Customer.FirstName)
	assert.Equal(t, "Dlamini", out.Customer.LastName)
	assert.Equal(t, "0821234567", out.Customer.Phone)
}

func TestCorrelateInvoiceSubstringJoin(t *testing.T) {
	svc, dbConn, node := newTestService(t)
	seedQuote(t, dbConn, node, "Q123-ABC", `{"totals": {"grand_total": 100}}`)
	seedInvoice(t, dbConn, node, "INV-001", `{"memo": "deposit"}`, time.Now().Add(-2*time.Hour))
	seedInvoice(t, dbConn, node, "INV-002", `{"memo": "balance for Q123-ABC"}`, time.Now().Add(-time.Hour))

	out := svc.Correlate(context.Background(), erpdomain.Order{CustomerRef: "Q123-ABC"})
	assert.Equal(t, "INV-002", out.InvoiceNo)
}

func TestCorrelateMalformedPayload(t *testing.T) {
	svc, dbConn, node := newTestService(t)
	seedQuote(t, dbConn, node, "Q1-BAD", `{not valid json`)

	out := svc.Correlate(context.Background(), erpdomain.Order{CustomerRef: "Q1-BAD"})
	assert.True(t, out.Matched)
	assert.Zero(t, out.SellingPrice)
	assert.Nil(t, out.Customer)
}
