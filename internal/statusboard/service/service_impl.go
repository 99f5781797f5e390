package service

import (
	"context"
	"time"

	"github.com/merchlab/ordersync/internal/clock"
	"github.com/merchlab/ordersync/internal/config"
	"github.com/merchlab/ordersync/internal/delivery"
	"github.com/merchlab/ordersync/internal/erp/client"
	erpdomain "github.com/merchlab/ordersync/internal/erp/domain"
	"github.com/merchlab/ordersync/internal/metrics"
	notifdomain "github.com/merchlab/ordersync/internal/notification/domain"
	"github.com/merchlab/ordersync/internal/providers/pdf"
	quotedomain "github.com/merchlab/ordersync/internal/quote/domain"
	"github.com/merchlab/ordersync/internal/statusboard/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Params struct {
	fx.In

	Log        *zap.Logger
	ERPClient  *client.Client
	Resolver   *delivery.Resolver
	Correlator quotedomain.Service
	Notifier   notifdomain.Service
	PDF        pdf.Provider
	Clock      clock.Clock
	Config     config.Config
}

type Service struct {
	log        *zap.Logger
	erpClient  *client.Client
	resolver   *delivery.Resolver
	correlator quotedomain.Service
	notifier   notifdomain.Service
	pdf        pdf.Provider
	clock      clock.Clock
	stuckAfter time.Duration
	batchSize  int
}

func New(p Params) domain.Service {
	days := p.Config.Pipeline.StuckAfterDays
	if days <= 0 {
		days = 3
	}
	batch := p.Config.Pipeline.StatusBatchSize
	if batch <= 0 {
		batch = 10
	}
	return &Service{
		log:        p.Log.Named("statusboard"),
		erpClient:  p.ERPClient,
		resolver:   p.Resolver,
		correlator: p.Correlator,
		notifier:   p.Notifier,
		pdf:        p.PDF,
		clock:      p.Clock,
		stuckAfter: time.Duration(days) * 24 * time.Hour,
		batchSize:  batch,
	}
}

// Overview fetches the full order set, enriches every order, buckets them
// by delivery stage, and dispatches alerts for newly stuck orders. Only a
// failure to establish the baseline order list is fatal; per-order
// enrichment failures degrade to null fields.
func (s *Service) Overview(ctx context.Context) (domain.Overview, error) {
	orders, err := s.erpClient.FetchAllOrders(ctx)
	if err != nil {
		return domain.Overview{}, err
	}
	metrics.OrdersFetched.Set(float64(len(orders)))

	now := s.clock.Now()
	enriched := make([]domain.EnrichedOrder, len(orders))

	// Delivery lookups hit the carrier; bound the concurrent load.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchSize)
	for i, order := range orders {
		g.Go(func() error {
			enriched[i] = s.enrich(gctx, order, now)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.Overview{}, err
	}

	overview := bucketize(enriched, now)
	metrics.StuckOrders.Set(float64(overview.StuckOrders))

	s.notifier.NotifyStuck(ctx, stuckAlerts(enriched))

	return overview, nil
}

func (s *Service) enrich(ctx context.Context, order erpdomain.Order, now time.Time) domain.EnrichedOrder {
	out := domain.EnrichedOrder{Order: order}

	correlation := s.correlator.Correlate(ctx, order)
	out.QuoteNo = correlation.QuoteNo
	out.InvoiceNo = correlation.InvoiceNo
	out.Customer = correlation.Customer
	if correlation.Matched {
		selling := correlation.SellingPrice
		out.SellingPrice = &selling
		profit := selling - order.TotalIncVat
		out.Profit = &profit
		if selling != 0 {
			margin := profit / selling * 100
			out.ProfitMargin = &margin
		}
	}

	resolution := s.resolver.Resolve(ctx, order)
	out.Stage = resolution.Stage
	out.IsDelivered = resolution.IsDelivered
	out.StatusDate = resolution.StatusDate

	// The status-date fallback can land an order in the Delivered bucket
	// without tracking ever confirming delivery; terminal stages are not
	// evaluated for staleness either way.
	terminal := out.IsDelivered || (out.Stage != nil && out.Stage.Terminal())
	if !terminal {
		out.IsStuck = delivery.IsStuck(out.StatusDate, now, s.stuckAfter)
	}
	return out
}

var stageOrder = func() []string {
	labels := make([]string, 0, len(erpdomain.Stages))
	for _, stage := range erpdomain.Stages {
		labels = append(labels, string(stage))
	}
	return labels
}()

func bucketize(enriched []domain.EnrichedOrder, now time.Time) domain.Overview {
	byStage := make(map[string][]domain.EnrichedOrder)
	stuckTotal := 0
	for _, order := range enriched {
		label := order.StageLabel()
		byStage[label] = append(byStage[label], order)
		if order.IsStuck {
			stuckTotal++
		}
	}

	labels := make([]string, 0, len(stageOrder)+1)
	labels = append(labels, stageOrder...)
	labels = append(labels, domain.PendingBucket)

	buckets := make([]domain.StageBucket, 0, len(labels))
	for _, label := range labels {
		orders := byStage[label]
		bucket := domain.StageBucket{
			Stage:  label,
			Count:  len(orders),
			Orders: orders,
		}
		for _, order := range orders {
			if order.IsStuck {
				bucket.HasStuck = true
				break
			}
		}
		buckets = append(buckets, bucket)
	}

	return domain.Overview{
		GeneratedAt: now,
		TotalOrders: len(enriched),
		StuckOrders: stuckTotal,
		Buckets:     buckets,
	}
}

func stuckAlerts(enriched []domain.EnrichedOrder) []notifdomain.StuckAlert {
	var alerts []notifdomain.StuckAlert
	for _, order := range enriched {
		if !order.IsStuck {
			continue
		}
		alerts = append(alerts, notifdomain.StuckAlert{
			OrderID:     order.Order.ID,
			Stage:       order.StageLabel(),
			StatusDate:  order.StatusDate,
			CustomerRef: order.Order.CustomerRef,
			OrderDate:   order.Order.OrderDate,
		})
	}
	return alerts
}
