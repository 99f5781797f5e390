package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) GenerateStatusReport(ctx context.Context, data StatusReportData) (io.Reader, error) {
	_ = ctx

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(15,
		text.NewCol(12, data.Title, props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)
	m.AddRow(10,
		text.NewCol(12, "Generated at "+data.GeneratedAt, props.Text{Size: 9}),
	)

	// Per-stage summary
	m.AddRow(10,
		text.NewCol(8, "Delivery stage", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Orders", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Stuck", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	for _, bucket := range data.Buckets {
		flag := ""
		if bucket.HasStuck {
			flag = "yes"
		}
		m.AddRow(8,
			text.NewCol(8, bucket.Stage, props.Text{Size: 9}),
			text.NewCol(2, fmt.Sprintf("%d", bucket.Count), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, flag, props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(5, col.New(12))

	// Order detail
	m.AddRow(10,
		text.NewCol(2, "Order", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(3, "Stage", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Status date", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Reference", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(1, "Price", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(1, "Profit", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(1, "Stuck", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	for _, row := range data.Orders {
		flag := ""
		if row.Stuck {
			flag = "yes"
		}
		m.AddRow(8,
			text.NewCol(2, row.OrderID, props.Text{Size: 8}),
			text.NewCol(3, row.Stage, props.Text{Size: 8}),
			text.NewCol(2, row.StatusDate, props.Text{Size: 8}),
			text.NewCol(2, row.CustomerRef, props.Text{Size: 8}),
			text.NewCol(1, row.SellingPrice, props.Text{Size: 8, Align: align.Right}),
			text.NewCol(1, row.Profit, props.Text{Size: 8, Align: align.Right}),
			text.NewCol(1, flag, props.Text{Size: 8, Align: align.Right}),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(doc.GetBytes()), nil
}
