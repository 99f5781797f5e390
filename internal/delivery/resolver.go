package delivery

import (
	"context"
	"sort"
	"strings"

	"github.com/merchlab/ordersync/internal/erp/client"
	erpdomain "github.com/merchlab/ordersync/internal/erp/domain"
	"go.uber.org/zap"
)

// Resolution is the delivery state computed for one order. Stage is nil
// when neither the carrier events nor the order status map to a canonical
// stage.
type Resolution struct {
	Stage       *erpdomain.DeliveryStage `json:"stage"`
	IsDelivered bool                     `json:"is_delivered"`
	StatusDate  string                   `json:"status_date"`
}

type Resolver struct {
	client *client.Client
	log    *zap.Logger
}

func NewResolver(erpClient *client.Client, log *zap.Logger) *Resolver {
	return &Resolver{
		client: erpClient,
		log:    log.Named("delivery.resolver"),
	}
}

// Resolve determines the delivery state of an order from its carrier
// tracking records, falling back to the order's own upstream status when no
// tracking exists yet. Tracking failures degrade to an empty resolution.
func (r *Resolver) Resolve(ctx context.Context, order erpdomain.Order) Resolution {
	resp, err := r.client.FetchDeliveryStatus(ctx, order.ID)
	if err != nil {
		// Only token/config failures reach here; tracking errors are
		// already degraded inside the client.
		r.log.Warn("delivery resolution failed",
			zap.String("order_id", order.ID),
			zap.Error(err),
		)
		return Resolution{}
	}

	events := collectEvents(resp.Waybills)

	// The "delivered" event text and the POD attachment are populated
	// asynchronously by the carrier; either alone is sufficient.
	if delivered(resp.Waybills, events) {
		stage := erpdomain.StageDelivered
		return Resolution{
			Stage:       &stage,
			IsDelivered: true,
			StatusDate:  latestEventDate(events),
		}
	}

	if len(events) == 0 {
		if stage, ok := MapOrderStatusToStage(order.Status); ok {
			return Resolution{Stage: &stage, StatusDate: order.OrderDate}
		}
		return Resolution{StatusDate: order.OrderDate}
	}

	newest := events[0]
	res := Resolution{StatusDate: newest.Datetime}
	if stage, ok := MapEventToStage(newest.Description); ok {
		res.Stage = &stage
	}
	return res
}

// collectEvents flattens every waybill's events and sorts them newest
// first. Events with unparseable timestamps sort last.
func collectEvents(waybills []erpdomain.Waybill) []erpdomain.TrackingEvent {
	var events []erpdomain.TrackingEvent
	for _, wb := range waybills {
		events = append(events, wb.Events...)
	}
	sort.SliceStable(events, func(i, j int) bool {
		ti, oki := ParseStatusDate(events[i].Datetime)
		tj, okj := ParseStatusDate(events[j].Datetime)
		if oki != okj {
			return oki
		}
		return ti.After(tj)
	})
	return events
}

func delivered(waybills []erpdomain.Waybill, events []erpdomain.TrackingEvent) bool {
	for _, event := range events {
		if strings.Contains(strings.ToLower(event.Description), "delivered") {
			return true
		}
	}
	for _, wb := range waybills {
		if len(wb.PODDetails) > 0 {
			return true
		}
	}
	return false
}

func latestEventDate(events []erpdomain.TrackingEvent) string {
	if len(events) == 0 {
		return ""
	}
	return events[0].Datetime
}
