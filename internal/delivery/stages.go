package delivery

import (
	"strings"

	erpdomain "github.com/merchlab/ordersync/internal/erp/domain"
)

type stageRule struct {
	substr string
	stage  erpdomain.DeliveryStage
}

// eventRules maps carrier event text onto canonical stages. The rules are
// ordered and the first match wins, so the more specific phrases sit above
// the generic ones.
var eventRules = []stageRule{
	{"delivered", erpdomain.StageDelivered},
	{"out on delivery", erpdomain.StageOutForDelivery},
	{"out for delivery", erpdomain.StageOutForDelivery},
	{"arrived at branch", erpdomain.StageAtHub},
	{"arrived at hub", erpdomain.StageAtHub},
	{"at delivery branch", erpdomain.StageAtHub},
	{"line haul", erpdomain.StageLineHaul},
	{"linehaul", erpdomain.StageLineHaul},
	{"in transit", erpdomain.StageLineHaul},
	{"loaded onto vehicle", erpdomain.StageLoaded},
	{"loaded for", erpdomain.StageLoaded},
	{"loaded", erpdomain.StageLoaded},
	{"received at origin", erpdomain.StageAtOriginBranch},
	{"origin branch", erpdomain.StageAtOriginBranch},
	{"waybill created", erpdomain.StageTrackingCreated},
	{"tracking created", erpdomain.StageTrackingCreated},
	{"label created", erpdomain.StageTrackingCreated},
	{"accepted into network", erpdomain.StageAccepted},
	{"accepted", erpdomain.StageAccepted},
	{"manifest", erpdomain.StageAccepted},
}

// statusRules is the coarser fallback table applied to the order's own
// upstream status string when no tracking events exist yet.
var statusRules = []stageRule{
	{"delivered", erpdomain.StageDelivered},
	{"complete", erpdomain.StageDelivered},
	{"out for delivery", erpdomain.StageOutForDelivery},
	{"dispatched", erpdomain.StageLineHaul},
	{"shipped", erpdomain.StageLineHaul},
	{"in transit", erpdomain.StageLineHaul},
	{"collected", erpdomain.StageAccepted},
	{"processing", erpdomain.StageTrackingCreated},
}

// MapEventToStage maps free-text carrier event description onto a canonical
// stage. Unmatched text yields (_, false).
func MapEventToStage(description string) (erpdomain.DeliveryStage, bool) {
	return matchRules(eventRules, description)
}

// MapOrderStatusToStage maps the upstream order status string onto a stage.
func MapOrderStatusToStage(status string) (erpdomain.DeliveryStage, bool) {
	return matchRules(statusRules, status)
}

func matchRules(rules []stageRule, text string) (erpdomain.DeliveryStage, bool) {
	folded := strings.ToLower(text)
	for _, rule := range rules {
		if strings.Contains(folded, rule.substr) {
			return rule.stage, true
		}
	}
	return "", false
}
