package domain

// DeliveryStage is the canonical delivery state for an order. The eight
// stages are ordered; Delivered is terminal, all others are transient.
type DeliveryStage string

const (
	StageAccepted        DeliveryStage = "Accepted into network"
	StageTrackingCreated DeliveryStage = "Tracking created"
	StageAtOriginBranch  DeliveryStage = "Received at origin branch"
	StageLoaded          DeliveryStage = "Loaded onto vehicle"
	StageLineHaul        DeliveryStage = "Line haul in transit"
	StageAtHub           DeliveryStage = "Arrived at branch (hub)"
	StageOutForDelivery  DeliveryStage = "Out for delivery"
	StageDelivered       DeliveryStage = "Delivered"
)

// Stages lists every canonical stage in transit order.
var Stages = []DeliveryStage{
	StageAccepted,
	StageTrackingCreated,
	StageAtOriginBranch,
	StageLoaded,
	StageLineHaul,
	StageAtHub,
	StageOutForDelivery,
	StageDelivered,
}

func (s DeliveryStage) Terminal() bool {
	return s == StageDelivered
}
