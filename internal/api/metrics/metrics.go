// Package metrics defines and registers all custom Prometheus metrics for the
// tracking service. It is the single source of truth for metric names, labels,
// and help strings; metrics register with the default registry at init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tracking"

// PointsIngestedTotal counts tracking points successfully appended.
// Labels:
//   - status: lifecycle status carried by the point (e.g. "in_transit")
//   - source: "telemetry" for the device endpoint, "operator" for manual updates
var PointsIngestedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "points_ingested_total",
		Help:      "Total number of tracking points successfully recorded.",
	},
	[]string{"status", "source"},
)

// IngestErrorsTotal counts rejected or failed ingest attempts.
// Label:
//   - reason: "unauthorized", "invalid_payload", "load_not_found", "persistence"
var IngestErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ingest_errors_total",
		Help:      "Total number of ingest attempts that did not record a point.",
	},
	[]string{"reason"},
)

// LiveSubscribers tracks currently attached live viewers across all loads.
var LiveSubscribers = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "live_subscribers",
		Help:      "Current number of attached live tracking subscriptions.",
	},
)

// LiveDroppedTotal counts points dropped because a subscriber buffer was full.
// Dropped points are recovered by the viewer's resync, so this is a slowness
// signal rather than data loss.
var LiveDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "live_dropped_total",
		Help:      "Total number of points dropped on slow live subscribers.",
	},
)

// QueryCacheTotal counts tracking view cache lookups.
// Label:
//   - result: "hit" or "miss"
var QueryCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "query_cache_total",
		Help:      "Total number of tracking view cache lookups, by result.",
	},
	[]string{"result"},
)
