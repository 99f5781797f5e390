package pdf

import (
	"context"
	"io"
)

type Provider interface {
	GenerateStatusReport(ctx context.Context, data StatusReportData) (io.Reader, error)
}

// StatusReportData is the flattened status board handed to the renderer.
type StatusReportData struct {
	Title       string
	GeneratedAt string

	Buckets []BucketRow
	Orders  []OrderRow
}

type BucketRow struct {
	Stage    string
	Count    int
	HasStuck bool
}

type OrderRow struct {
	OrderID      string
	Stage        string
	StatusDate   string
	CustomerRef  string
	SellingPrice string
	Profit       string
	Stuck        bool
}
