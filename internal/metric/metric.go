package metric

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Submissions by terminal outcome: succeeded, invalid, rejected, unreachable, failed, busy, duplicate.
	SubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "checkout",
		Name:      "submissions_total",
		Help:      "Order submissions by outcome",
	}, []string{"outcome"})

	CSRFRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "checkout",
		Name:      "csrf_retries_total",
		Help:      "Order create calls repeated after a CSRF rejection",
	})

	UpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "storefront",
		Subsystem: "store_api",
		Name:      "request_duration_seconds",
		Help:      "Latency of calls to the store API",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint", "status"}) // status is "error" when no response arrived

	SnapshotOpsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "snapshot",
		Name:      "operations_total",
		Help:      "Completed-order snapshot store operations",
	}, []string{"operation", "result"}) // hit / miss / error / ok

	ActiveDrafts = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "storefront",
		Subsystem: "drafts",
		Name:      "active",
		Help:      "Draft sessions currently held in memory",
	})

	RequestMetrics = promauto.NewSummaryVec(prometheus.SummaryOpts{
		Namespace:  "storefront",
		Subsystem:  "http",
		Name:       "request",
		Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
	}, []string{"route", "status"})
)

// ObserveRequest records one inbound request by route pattern.
func ObserveRequest(route string, t time.Duration, status int) {
	RequestMetrics.WithLabelValues(route, strconv.Itoa(status)).Observe(t.Seconds())
}

// ObserveUpstream records one store API call. status is 0 when no response
// arrived.
func ObserveUpstream(endpoint string, t time.Duration, status int) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	UpstreamDuration.WithLabelValues(endpoint, label).Observe(t.Seconds())
}
