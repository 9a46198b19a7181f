package metrics

import "github.com/prometheus/client_golang/prometheus"

// Namespace prefixes every metric name.
const Namespace = "propdex"

// Listing search and repository metrics.
var (
	SearchFacetDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "search_facet_duration_seconds",
			Help:      "Duration of a single facet strategy evaluation",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"facet"},
	)

	SearchFacetResults = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "search_facet_results",
			Help:      "Number of listings a facet strategy returned",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		},
		[]string{"facet"},
	)

	SearchResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "search_results",
			Help:      "Number of listings after facet intersection",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	SearchGeoSkippedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "search_geo_skipped_total",
			Help:      "Listings skipped by the geo facet because their location could not be resolved",
		},
	)

	RepositoryOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "repository_operations_total",
			Help:      "Repository operations by name and outcome",
		},
		[]string{"op", "outcome"}, // outcome: ok / absent / error
	)
)

var listingMetricsRegistered bool

// RegisterListingMetrics registers search and repository metrics. Must be called once from main.
func RegisterListingMetrics() {
	if listingMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchFacetDuration)
	prometheus.MustRegister(SearchFacetResults)
	prometheus.MustRegister(SearchResults)
	prometheus.MustRegister(SearchGeoSkippedTotal)
	prometheus.MustRegister(RepositoryOpsTotal)
	listingMetricsRegistered = true
}
