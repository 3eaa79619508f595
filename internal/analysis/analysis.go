package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"netcover.onebusaway.org/internal/coverage"
	"netcover.onebusaway.org/internal/geo"
	"netcover.onebusaway.org/internal/models"
	"netcover.onebusaway.org/internal/network"
)

// DefaultMaxPairwiseStops caps the network size for which the quadratic
// average straight distance is computed.
const DefaultMaxPairwiseStops = 5000

// Options tunes one analysis run.
type Options struct {
	// Parallelism bounds the number of coverage trials running at once.
	Parallelism int
	// MaxPairwiseStops skips the average straight distance on larger
	// networks. Zero uses DefaultMaxPairwiseStops; a negative value never
	// skips it.
	MaxPairwiseStops int
	ClusterLevel     int
}

// Report is the result of analyzing one network.
type Report struct {
	// RunID identifies the analysis run in the logs.
	RunID       string          `json:"run_id"`
	NetworkID   int             `json:"network_id"`
	NetworkName string          `json:"network_name"`
	GeneratedAt time.Time       `json:"generated_at"`
	RadiusKm    float64         `json:"radius_km"`
	BoundingBox geo.BoundingBox `json:"bounding_box"`

	Coverage coverage.Summary `json:"coverage"`
	Stats    network.Stats    `json:"stats"`
	// AverageStraightDistance is nil when the network is too large for the
	// pairwise computation.
	AverageStraightDistance *float64 `json:"average_straight_distance,omitempty"`

	// ServicePeriod is carried over from GTFS bundles with a calendar.
	ServicePeriod *models.ServicePeriod `json:"service_period,omitempty"`

	Bridges      []network.Edge `json:"bridges"`
	BridgeStops  []models.Stop  `json:"bridge_stops"`
	StopClusters map[string]int `json:"stop_clusters"`

	// Warnings lists soft errors of the coverage estimate, such as too few
	// accepted samples or a degenerate bounding box.
	Warnings []string `json:"warnings,omitempty"`
}

// Analyze builds the network graph from its records and computes the
// coverage estimate, the network statistics and the bridges.
//
// Malformed records fail the run. Soft coverage problems are recorded in
// Report.Warnings and logged.
func Analyze(ctx context.Context, n models.Network, data *models.NetworkData, opts Options, logger *slog.Logger) (*Report, error) {
	runID := uuid.NewString()
	logger = logger.With("network_id", n.ID, "run_id", runID)

	g, err := network.Build(data.Stops, data.Connections)
	if err != nil {
		return nil, fmt.Errorf("failed to build network graph: %w", err)
	}

	radius := n.EffectiveRadiusKm()
	params := coverage.DefaultParams(radius)
	if n.SampleSize > 0 {
		params.SampleSize = n.SampleSize
		params.MaxAttempts = max(params.MaxAttempts, 10*n.SampleSize)
	}
	if n.WalkThresholdKm > 0 {
		params.WalkThreshold = n.WalkThresholdKm
	}

	stops := g.Stops()
	sampler, err := coverage.NewSampler(stops, params, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to set up coverage sampler: %w", err)
	}

	summary, err := coverage.Aggregate(ctx, sampler, coverage.AggregateOptions{
		Trials:      n.Trials,
		Seed:        n.Seed,
		Parallelism: opts.Parallelism,
	})
	if err != nil {
		return nil, err
	}

	bridges := network.Bridges(g)

	level := opts.ClusterLevel
	if level <= 0 {
		level = geo.DefaultClusterLevel
	}

	report := &Report{
		RunID:        runID,
		NetworkID:    n.ID,
		NetworkName:  n.Name,
		GeneratedAt:  time.Now().UTC(),
		RadiusKm:     radius,
		BoundingBox:  sampler.BoundingBox(),
		Coverage:     summary,
		Stats:        network.ComputeStats(g, n.AreaKm2),
		Bridges:      bridges.Bridges,
		BridgeStops:  bridges.Subgraph.Stops(),
		StopClusters: geo.ClusterStops(stops, level),

		ServicePeriod: data.ServicePeriod,
	}

	limit := opts.MaxPairwiseStops
	if limit == 0 {
		limit = DefaultMaxPairwiseStops
	}
	if limit < 0 || g.NumStops() <= limit {
		avg := network.AverageStraightDistance(g, radius)
		report.AverageStraightDistance = &avg
	} else {
		logger.Info("Skipping average straight distance", "stops", g.NumStops(), "limit", limit)
	}

	if summary.Exhausted {
		report.Warnings = append(report.Warnings, fmt.Sprintf(
			"sampling exhausted: fewest accepted samples in a trial was %d of %d",
			summary.MinAccepted, summary.SampleSize))
	}
	if summary.Degenerate {
		report.Warnings = append(report.Warnings, coverage.ErrDegenerateGeometry.Error())
	}
	for _, w := range report.Warnings {
		logger.Warn("Coverage estimate is degraded", "warning", w)
	}

	logger.Info("Analyzed network",
		"stops", report.Stats.Stops,
		"connections", report.Stats.Connections,
		"bridges", len(report.Bridges),
		"coverage_stops", summary.CoverageStops,
		"coverage_distance", summary.CoverageDistance,
	)
	return report, nil
}
