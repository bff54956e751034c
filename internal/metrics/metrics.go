package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all WanderLanka planner metrics
const namespace = "wanderlanka"

// Registry is the global Prometheus registry for all metrics
var Registry = prometheus.NewRegistry()

// AppInfo is a gauge that exposes application version information as labels
var AppInfo = promauto.With(Registry).NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "app_info",
		Help:      "Application version information (always set to 1, version info in labels)",
	},
	[]string{"version", "commit", "build_date"},
)

// ProviderReady is 1 once the maps provider passed its readiness check
var ProviderReady = promauto.With(Registry).NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "maps_provider_ready",
		Help:      "Whether the maps provider is ready (0=loading or failed, 1=ready)",
	},
)

// Maps provider metrics

// ProviderRequestsTotal tracks provider API requests by endpoint and status
var ProviderRequestsTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "maps_provider_requests_total",
		Help:      "Total number of maps provider API requests",
	},
	[]string{"endpoint", "status"}, // endpoint: autocomplete|details|directions, status: provider status or error
)

// ProviderLatency tracks provider API request latency
var ProviderLatency = promauto.With(Registry).NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "maps_provider_latency_seconds",
		Help:      "Maps provider API request latency in seconds",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	},
	[]string{"endpoint"},
)

// Route planning metrics

// RouteComputationsTotal tracks route computations by preference and outcome
var RouteComputationsTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "route_computations_total",
		Help:      "Total number of route computations",
	},
	[]string{"preference", "outcome"}, // outcome: ok|cleared|superseded|<error kind>
)

// RouteWaypoints tracks how many waypoints are submitted per route
var RouteWaypoints = promauto.With(Registry).NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "route_waypoints",
		Help:      "Number of waypoints submitted per route computation",
		Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 25},
	},
)

// SupersededResultsTotal counts results discarded because a newer request was issued
var SupersededResultsTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "superseded_results_total",
		Help:      "Total number of stale results discarded under last-request-wins",
	},
	[]string{"engine"}, // engine: route|discovery
)

// Place discovery metrics

// DiscoveryQueriesTotal tracks autocomplete queries by outcome
var DiscoveryQueriesTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "discovery_queries_total",
		Help:      "Total number of place discovery queries",
	},
	[]string{"outcome"}, // outcome: suggesting|empty|failed|skipped
)

// DiscoverySelectionsTotal tracks place selections by outcome
var DiscoverySelectionsTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "discovery_selections_total",
		Help:      "Total number of place selections",
	},
	[]string{"outcome"}, // outcome: resolved|failed
)

// DetailsCacheHitsTotal tracks place details cache hits
var DetailsCacheHitsTotal = promauto.With(Registry).NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "details_cache_hits_total",
		Help:      "Total number of place details cache hits",
	},
)

// DetailsCacheMissesTotal tracks place details cache misses requiring API calls
var DetailsCacheMissesTotal = promauto.With(Registry).NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "details_cache_misses_total",
		Help:      "Total number of place details cache misses",
	},
)

// PlannerSessionsActive tracks open planner sessions
var PlannerSessionsActive = promauto.With(Registry).NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "planner_sessions_active",
		Help:      "Current number of open planner sessions",
	},
)

// Init initializes the metrics registry and sets version information
func Init(version, commit, buildDate string) {
	// Register default Go metrics (memory, goroutines, GC, etc.)
	Registry.MustRegister(collectors.NewGoCollector())

	// Register process metrics (CPU, memory, file descriptors)
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	AppInfo.WithLabelValues(version, commit, buildDate).Set(1)
}
