package domain

import (
	"context"
	"io"
)

// Service aggregates the full order set into the status board and its
// exports. Overview also dispatches stuck-order alerts as a side effect of
// each run.
type Service interface {
	Overview(ctx context.Context) (Overview, error)
	ExportCSV(ctx context.Context) ([]byte, error)
	ExportPDF(ctx context.Context) (io.Reader, error)
}
