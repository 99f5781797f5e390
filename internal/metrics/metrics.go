package metrics

import "github.com/prometheus/client_golang/prometheus"

// Prometheus instruments for the sync pipeline.
var (
	SyncRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ordersync_sync_runs_total",
			Help: "Total sync runs by result",
		},
		[]string{"result"},
	)

	SyncDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ordersync_sync_duration_seconds",
			Help:    "Duration of full sync runs",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)

	OrdersFetched = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ordersync_orders_fetched",
			Help: "Orders returned by the last upstream fetch",
		},
	)

	StuckOrders = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ordersync_stuck_orders",
			Help: "Orders currently flagged as stuck",
		},
	)

	AlertsSentTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ordersync_alerts_sent_total",
			Help: "Stuck-order alerts dispatched",
		},
	)

	AlertFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ordersync_alert_failures_total",
			Help: "Stuck-order alerts that failed to send or log",
		},
	)

	TokenRefreshesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ordersync_token_refreshes_total",
			Help: "Upstream token refresh attempts by result",
		},
		[]string{"result"},
	)
)

// Register registers all pipeline metrics with the default registerer.
func Register() {
	prometheus.MustRegister(SyncRunsTotal)
	prometheus.MustRegister(SyncDuration)
	prometheus.MustRegister(OrdersFetched)
	prometheus.MustRegister(StuckOrders)
	prometheus.MustRegister(AlertsSentTotal)
	prometheus.MustRegister(AlertFailuresTotal)
	prometheus.MustRegister(TokenRefreshesTotal)
}
