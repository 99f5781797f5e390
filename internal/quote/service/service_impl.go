package service

import (
	"context"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/merchlab/ordersync/internal/config"
	erpdomain "github.com/merchlab/ordersync/internal/erp/domain"
	"github.com/merchlab/ordersync/internal/quote/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	quotePattern    = regexp.MustCompile(`\bQ\d+-[A-Za-z0-9]+`)
	merchlabPattern = regexp.MustCompile(`\bML-[A-Za-z0-9]+`)
)

// ExtractQuoteNumber pulls a quote number out of a free-text customer
// reference. Two reference formats exist: Q<digits>-<alnum> and ML-<alnum>.
// Anything else yields no quote number.
func ExtractQuoteNumber(ref string) string {
	if m := quotePattern.FindString(ref); m != "" {
		return m
	}
	if m := merchlabPattern.FindString(ref); m != "" {
		return m
	}
	return ""
}

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Repo   domain.Repository
	Config config.Config
}

type Service struct {
	db               *gorm.DB
	log              *zap.Logger
	repo             domain.Repository
	invoiceScanLimit int
}

func New(p Params) domain.Service {
	limit := p.Config.Pipeline.InvoiceScanLimit
	if limit <= 0 {
		limit = 1000
	}
	return &Service{
		db:               p.DB,
		log:              p.Log.Named("quote.correlator"),
		repo:             p.Repo,
		invoiceScanLimit: limit,
	}
}

func (s *Service) Correlate(ctx context.Context, order erpdomain.Order) domain.Correlation {
	quoteNo := ExtractQuoteNumber(order.CustomerRef)
	if quoteNo == "" {
		return domain.Correlation{}
	}

	out := domain.Correlation{QuoteNo: quoteNo}

	quote := s.lookupQuote(ctx, quoteNo)
	if quote != nil {
		out.Matched = true
		out.SellingPrice, out.Customer = parsePayload(quote.Payload)
	}

	out.InvoiceNo = s.lookupInvoice(ctx, quoteNo)
	return out
}

// lookupQuote tolerates case drift between the storefront and the ERP by
// trying the extracted number exactly, then upper-, then lowercased.
func (s *Service) lookupQuote(ctx context.Context, quoteNo string) *domain.Quote {
	for _, candidate := range caseVariants(quoteNo) {
		quote, err := s.repo.FindQuoteByNo(ctx, s.db, candidate)
		if err != nil {
			s.log.Warn("quote lookup failed",
				zap.String("quote_no", candidate),
				zap.Error(err),
			)
			return nil
		}
		if quote != nil {
			return quote
		}
	}
	return nil
}

// lookupInvoice scans recent invoices for one whose payload mentions the
// quote number. This is a heuristic join, not a foreign key: short quote
// numbers can false-positive, and the first match wins.
func (s *Service) lookupInvoice(ctx context.Context, quoteNo string) string {
	invoices, err := s.repo.ListRecentInvoices(ctx, s.db, s.invoiceScanLimit)
	if err != nil {
		s.log.Warn("invoice scan failed", zap.Error(err))
		return ""
	}
	variants := caseVariants(quoteNo)
	for _, invoice := range invoices {
		payload := string(invoice.Payload)
		for _, variant := range variants {
			if strings.Contains(payload, variant) {
				return invoice.InvoiceNo
			}
		}
	}
	return ""
}

func caseVariants(quoteNo string) []string {
	variants := []string{quoteNo}
	if upper := strings.ToUpper(quoteNo); upper != quoteNo {
		variants = append(variants, upper)
	}
	if lower := strings.ToLower(quoteNo); lower != quoteNo {
		variants = append(variants, lower)
	}
	return variants
}

func parsePayload(raw []byte) (float64, *domain.Customer) {
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return 0, nil
	}
	return grandTotal(payload), extractCustomer(payload)
}

func grandTotal(payload map[string]any) float64 {
	totals, ok := payload["totals"].(map[string]any)
	if !ok {
		return 0
	}
	switch v := totals["grand_total"].(type) {
	case float64:
		return v
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

// extractCustomer reads the contact block from either the current
// enquiryCustomer field or the legacy customer field. Subfield names have
// drifted over the years, so each one is tried against its historical
// variants.
func extractCustomer(payload map[string]any) *domain.Customer {
	block, ok := payload["enquiryCustomer"].(map[string]any)
	if !ok {
		block, ok = payload["customer"].(map[string]any)
	}
	if !ok {
		return nil
	}

	customer := &domain.Customer{
		FirstName: firstString(block, "firstName", "first_name", "name"),
		LastName:  firstString(block, "lastName", "last_name", "surname"),
		Company:   firstString(block, "company", "companyName", "company_name"),
		Email:     firstString(block, "email", "emailAddress", "email_address"),
		Phone:     firstString(block, "phone", "phoneNumber", "contact_number", "mobile"),
	}
	if *customer == (domain.Customer{}) {
		return nil
	}
	return customer
}

func firstString(block map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := block[key].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
