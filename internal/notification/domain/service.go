package domain

import "context"

// Service dispatches stuck-order alerts. It swallows its own failures: a
// notification problem must never fail the status response the dashboard
// depends on, and an unsent alert is retried on the next run.
type Service interface {
	NotifyStuck(ctx context.Context, alerts []StuckAlert)
}
