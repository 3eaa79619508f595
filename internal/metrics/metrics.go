package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var networkLabels = []string{"network_id", "network_name"}

var (
	// NetworkAnalysisStatus Analysis status (ok/failed)
	NetworkAnalysisStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "netcover_analysis_status",
			Help: "Status of the latest network analysis (0 = failed, 1 = succeeded)",
		},
		networkLabels,
	)

	AnalysisLastSuccess = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "netcover_analysis_last_success_timestamp_seconds",
		Help: "Unix time of the latest successful network analysis",
	}, networkLabels)
)

var (
	CoverageStops = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "netcover_coverage_stops",
		Help: "Average number of stops within walking distance of a random point in the network area",
	}, networkLabels)

	CoverageDistance = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "netcover_coverage_distance_km",
		Help: "Average distance in kilometers from a random point in the network area to the nearest stop",
	}, networkLabels)

	CoverageMinAcceptedSamples = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "netcover_coverage_min_accepted_samples",
		Help: "Fewest accepted samples in any coverage trial",
	}, networkLabels)

	CoverageDegraded = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "netcover_coverage_degraded",
		Help: "Whether the coverage estimate carries warnings (1 = degraded, 0 = full confidence)",
	}, networkLabels)
)

var (
	NetworkStops = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "netcover_network_stops",
		Help: "Number of stops in the network graph",
	}, networkLabels)

	NetworkConnections = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "netcover_network_connections",
		Help: "Number of connections in the network graph",
	}, networkLabels)

	NetworkComponents = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "netcover_network_components",
		Help: "Number of connected components of the network graph",
	}, networkLabels)

	NetworkIsolates = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "netcover_network_isolated_stops",
		Help: "Number of stops without connections",
	}, networkLabels)

	NetworkTotalLength = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "netcover_network_total_length",
		Help: "Sum of connection lengths",
	}, networkLabels)

	NetworkBridges = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "netcover_network_bridges",
		Help: "Number of connections whose removal disconnects the network",
	}, networkLabels)

	AverageStraightDistance = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "netcover_network_average_straight_distance_km",
		Help: "Mean great-circle distance between all pairs of stops",
	}, networkLabels)
)

var (
	StopClusterCount = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "netcover_stop_cluster_count",
		Help: "Number of stops per S2 cell",
	}, []string{"network_id", "cluster_id"})
)

var (
	BundleEarliestExpirationGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "gtfs_bundle_days_until_earliest_expiration",
		Help: "Number of days until the earliest GTFS bundle expiration",
	}, []string{"network_id"})

	BundleLatestExpirationGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "gtfs_bundle_days_until_latest_expiration",
		Help: "Number of days until the latest GTFS bundle expiration",
	}, []string{"network_id"})
)

// networkGauges are the gauges labeled by networkLabels.
var networkGauges = []*prometheus.GaugeVec{
	NetworkAnalysisStatus,
	AnalysisLastSuccess,
	CoverageStops,
	CoverageDistance,
	CoverageMinAcceptedSamples,
	CoverageDegraded,
	NetworkStops,
	NetworkConnections,
	NetworkComponents,
	NetworkIsolates,
	NetworkTotalLength,
	NetworkBridges,
	AverageStraightDistance,
}

// perNetworkGauges are the gauges with a network_id label, cleared when a
// network leaves the configuration.
var perNetworkGauges = append(append([]*prometheus.GaugeVec(nil), networkGauges...),
	StopClusterCount,
	BundleEarliestExpirationGauge,
	BundleLatestExpirationGauge,
)

var (
	// OutgoingLatency tracks requests to GTFS bundle hosts and the remote
	// config endpoint.
	OutgoingLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "netcover_outgoing_request_duration_seconds",
		Help:    "Latency of outgoing HTTP requests",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	}, []string{"url", "method", "status"})
)
