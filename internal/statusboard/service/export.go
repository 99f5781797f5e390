package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/merchlab/ordersync/internal/providers/pdf"
	"github.com/merchlab/ordersync/internal/statusboard/domain"
)

var csvHeader = []string{
	"order_id",
	"stage",
	"status_date",
	"is_stuck",
	"is_delivered",
	"customer_reference",
	"order_date",
	"cost_inc_vat",
	"selling_price",
	"profit",
	"profit_margin_pct",
	"customer",
	"invoice_no",
	"channel",
	"upstream_status",
}

// ExportCSV renders the status board as a flat CSV, one row per order.
func (s *Service) ExportCSV(ctx context.Context) ([]byte, error) {
	overview, err := s.Overview(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}

	for _, bucket := range overview.Buckets {
		for _, order := range bucket.Orders {
			record := []string{
				order.Order.ID,
				bucket.Stage,
				order.StatusDate,
				strconv.FormatBool(order.IsStuck),
				strconv.FormatBool(order.IsDelivered),
				order.Order.CustomerRef,
				order.Order.OrderDate,
				formatAmount(&order.Order.TotalIncVat),
				formatAmount(order.SellingPrice),
				formatAmount(order.Profit),
				formatAmount(order.ProfitMargin),
				customerName(order),
				order.InvoiceNo,
				order.Order.Channel,
				order.Order.Status,
			}
			if err := w.Write(record); err != nil {
				return nil, err
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportPDF renders the status board through the PDF provider.
func (s *Service) ExportPDF(ctx context.Context) (io.Reader, error) {
	overview, err := s.Overview(ctx)
	if err != nil {
		return nil, err
	}

	data := pdf.StatusReportData{
		Title:       "Order delivery status",
		GeneratedAt: overview.GeneratedAt.UTC().Format(time.RFC3339),
	}
	for _, bucket := range overview.Buckets {
		data.Buckets = append(data.Buckets, pdf.BucketRow{
			Stage:    bucket.Stage,
			Count:    bucket.Count,
			HasStuck: bucket.HasStuck,
		})
		for _, order := range bucket.Orders {
			data.Orders = append(data.Orders, pdf.OrderRow{
				OrderID:      order.Order.ID,
				Stage:        bucket.Stage,
				StatusDate:   order.StatusDate,
				CustomerRef:  order.Order.CustomerRef,
				SellingPrice: formatAmount(order.SellingPrice),
				Profit:       formatAmount(order.Profit),
				Stuck:        order.IsStuck,
			})
		}
	}

	return s.pdf.GenerateStatusReport(ctx, data)
}

func formatAmount(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *v)
}

func customerName(order domain.EnrichedOrder) string {
	if order.Customer == nil {
		return ""
	}
	name := order.Customer.FirstName
	if order.Customer.LastName != "" {
		if name != "" {
			name += " "
		}
		name += order.Customer.LastName
	}
	if name == "" {
		name = order.Customer.Company
	}
	return name
}
