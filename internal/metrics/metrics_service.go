package metrics

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"netcover.onebusaway.org/internal/analysis"
	"netcover.onebusaway.org/internal/models"
)

// MetricsService exports network analyses as Prometheus gauges.
type MetricsService struct {
	Logger *slog.Logger
	now    func() time.Time
}

func NewMetricsService(logger *slog.Logger) *MetricsService {
	return &MetricsService{
		Logger: logger,
		now:    time.Now,
	}
}

// ReportAnalysis publishes the results of a successful analysis.
func (ms *MetricsService) ReportAnalysis(n models.Network, rep *analysis.Report) {
	labels := prometheus.Labels{"network_id": strconv.Itoa(n.ID), "network_name": n.Name}
	now := ms.now()

	NetworkAnalysisStatus.With(labels).Set(1)
	AnalysisLastSuccess.With(labels).Set(float64(now.Unix()))

	CoverageStops.With(labels).Set(rep.Coverage.CoverageStops)
	CoverageDistance.With(labels).Set(rep.Coverage.CoverageDistance)
	CoverageMinAcceptedSamples.With(labels).Set(float64(rep.Coverage.MinAccepted))
	CoverageDegraded.With(labels).Set(boolToFloat(len(rep.Warnings) > 0))

	NetworkStops.With(labels).Set(float64(rep.Stats.Stops))
	NetworkConnections.With(labels).Set(float64(rep.Stats.Connections))
	NetworkComponents.With(labels).Set(float64(rep.Stats.Components))
	NetworkIsolates.With(labels).Set(float64(rep.Stats.Isolates))
	NetworkTotalLength.With(labels).Set(rep.Stats.TotalLength)
	NetworkBridges.With(labels).Set(float64(len(rep.Bridges)))
	if rep.AverageStraightDistance != nil {
		AverageStraightDistance.With(labels).Set(*rep.AverageStraightDistance)
	} else {
		AverageStraightDistance.Delete(labels)
	}

	reportStopClusters(n.ID, rep.StopClusters)
	reportBundleExpiration(n.ID, rep.ServicePeriod, now)

	ms.Logger.Debug("Updated network metrics", "network_id", n.ID)
}

// ReportFailure marks the latest analysis of a network as failed. Gauges of
// the previous successful analysis are left in place.
func (ms *MetricsService) ReportFailure(n models.Network, err error) {
	NetworkAnalysisStatus.WithLabelValues(strconv.Itoa(n.ID), n.Name).Set(0)
	ms.Logger.Debug("Marked network analysis as failed", "network_id", n.ID, "error", err)
}

// RemoveNetworks deletes every series of the given networks.
func (ms *MetricsService) RemoveNetworks(networkIDs []int) {
	for _, id := range networkIDs {
		match := prometheus.Labels{"network_id": strconv.Itoa(id)}
		for _, g := range perNetworkGauges {
			g.DeletePartialMatch(match)
		}
	}
}

// reportStopClusters replaces the cluster series of a network so that cells
// which no longer hold stops disappear.
func reportStopClusters(networkID int, clusters map[string]int) {
	id := strconv.Itoa(networkID)
	StopClusterCount.DeletePartialMatch(prometheus.Labels{"network_id": id})
	for clusterID, count := range clusters {
		StopClusterCount.WithLabelValues(id, clusterID).Set(float64(count))
	}
}

// reportBundleExpiration publishes the number of days until the earliest and
// latest service of a GTFS bundle ends.
func reportBundleExpiration(networkID int, period *models.ServicePeriod, now time.Time) (earliest, latest int, ok bool) {
	id := strconv.Itoa(networkID)
	if period == nil {
		BundleEarliestExpirationGauge.DeleteLabelValues(id)
		BundleLatestExpirationGauge.DeleteLabelValues(id)
		return 0, 0, false
	}

	earliest = int(period.EarliestEnd.Sub(now).Hours() / 24)
	latest = int(period.LatestEnd.Sub(now).Hours() / 24)

	BundleEarliestExpirationGauge.WithLabelValues(id).Set(float64(earliest))
	BundleLatestExpirationGauge.WithLabelValues(id).Set(float64(latest))
	return earliest, latest, true
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
