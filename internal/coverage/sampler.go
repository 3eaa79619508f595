package coverage

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"netcover.onebusaway.org/internal/geo"
	"netcover.onebusaway.org/internal/models"
)

// Params tunes a single Monte-Carlo coverage run.
//
// Distances (WalkThreshold) are in the unit of Radius. The cutoffs are in
// degrees and define axis-aligned squares around the sample point: FarCutoff
// is the coarse pre-filter, NearCutoff the box whose stops get the exact
// distance test.
type Params struct {
	SampleSize    int     `json:"sample_size"`
	WalkThreshold float64 `json:"walk_threshold"`
	NearCutoff    float64 `json:"near_cutoff"`
	FarCutoff     float64 `json:"far_cutoff"`
	MaxAttempts   int     `json:"max_attempts"`
	Radius        float64 `json:"radius"`
}

const (
	DefaultSampleSize    = 1000
	DefaultWalkThreshold = 0.4    // km
	DefaultNearCutoff    = 0.0036 // degrees, about 400 m
	DefaultFarCutoff     = 0.0072 // degrees, about 800 m
	DefaultMaxAttempts   = 10000

	// MinCutoff is the smallest accepted cutoff in degrees, about 0.1 mm.
	// The stop grid cannot index cells smaller than that.
	MinCutoff = 1e-9
)

// DefaultParams returns the standard walk-shed parameters for a sphere of
// the given radius in kilometers.
func DefaultParams(radius float64) Params {
	return Params{
		SampleSize:    DefaultSampleSize,
		WalkThreshold: DefaultWalkThreshold,
		NearCutoff:    DefaultNearCutoff,
		FarCutoff:     DefaultFarCutoff,
		MaxAttempts:   DefaultMaxAttempts,
		Radius:        radius,
	}
}

// Validate checks that the parameters describe a run that terminates and
// produces meaningful values.
func (p Params) Validate() error {
	var errs []error
	if p.SampleSize <= 0 {
		errs = append(errs, fmt.Errorf("sample size must be positive, got %d", p.SampleSize))
	}
	if p.MaxAttempts <= 0 {
		errs = append(errs, fmt.Errorf("max attempts must be positive, got %d", p.MaxAttempts))
	}
	if p.WalkThreshold < 0 || math.IsNaN(p.WalkThreshold) {
		errs = append(errs, fmt.Errorf("walk threshold must not be negative, got %v", p.WalkThreshold))
	}
	if !validCutoff(p.NearCutoff) || !validCutoff(p.FarCutoff) {
		errs = append(errs, fmt.Errorf("cutoffs must be finite and at least %v degrees, got near=%v far=%v", MinCutoff, p.NearCutoff, p.FarCutoff))
	}
	if p.NearCutoff > p.FarCutoff {
		errs = append(errs, fmt.Errorf("near cutoff %v exceeds far cutoff %v", p.NearCutoff, p.FarCutoff))
	}
	if !(p.Radius > 0) {
		errs = append(errs, fmt.Errorf("radius must be positive, got %v", p.Radius))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidParams, errors.Join(errs...))
	}
	return nil
}

func validCutoff(c float64) bool {
	return c >= MinCutoff && !math.IsInf(c, 0)
}

// PointSample is the evaluation of one accepted sample point.
type PointSample struct {
	// CloseStops counts the stops in the near box within walking distance.
	CloseStops int
	// NearestDistance is the smallest distance to a near-box stop when one
	// of them is within walking distance, otherwise the smallest distance to
	// a far-box stop.
	NearestDistance float64
}

// Covered reports whether at least one stop is within walking distance.
func (p PointSample) Covered() bool {
	return p.CloseStops > 0
}

// Result is the outcome of one coverage run.
//
// CoverageStops and CoverageDistance are normalized by SampleSize, so a run
// that stopped early reports proportionally smaller values. Accepted and
// Err expose that case.
type Result struct {
	CoverageStops    float64 `json:"coverage_stops"`
	CoverageDistance float64 `json:"coverage_distance"`
	Accepted         int     `json:"accepted"`
	Attempts         int     `json:"attempts"`
	SampleSize       int     `json:"sample_size"`
	Degenerate       bool    `json:"degenerate"`

	closeStopsSum float64
	distanceSum   float64
}

// Exhausted reports whether the attempt cap was hit before SampleSize
// samples were accepted.
func (r Result) Exhausted() bool {
	return r.Accepted < r.SampleSize
}

// MeanCoverageStops is the close-stop count averaged over accepted samples only.
func (r Result) MeanCoverageStops() float64 {
	if r.Accepted == 0 {
		return 0
	}
	return r.closeStopsSum / float64(r.Accepted)
}

// MeanDistance is the nearest-stop distance averaged over accepted samples only.
func (r Result) MeanDistance() float64 {
	if r.Accepted == 0 {
		return 0
	}
	return r.distanceSum / float64(r.Accepted)
}

// Err returns the soft errors of the run: a *SamplingExhaustedError when
// fewer than SampleSize samples were accepted and ErrDegenerateGeometry for
// a flat bounding box. It returns nil for a full-confidence run.
func (r Result) Err() error {
	var errs []error
	if r.Exhausted() {
		errs = append(errs, &SamplingExhaustedError{
			Accepted:   r.Accepted,
			SampleSize: r.SampleSize,
			Attempts:   r.Attempts,
		})
	}
	if r.Degenerate {
		errs = append(errs, ErrDegenerateGeometry)
	}
	return errors.Join(errs...)
}

// Sampler estimates walk-shed coverage of a set of stops by drawing random
// points inside their bounding box. A Sampler holds no random state and is
// safe for concurrent use by runs with separate random sources.
type Sampler struct {
	params Params
	box    geo.BoundingBox
	grid   *stopGrid
	logger *slog.Logger
}

// NewSampler prepares a sampler over the given stops. A nil logger logs to
// slog.Default().
func NewSampler(stops []models.Stop, params Params, logger *slog.Logger) (*Sampler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	box, err := geo.ComputeBoundingBox(stops)
	if err != nil {
		return nil, err
	}
	return &Sampler{
		params: params,
		box:    box,
		grid:   newStopGrid(stops, params.FarCutoff),
		logger: logger,
	}, nil
}

func (s *Sampler) Params() Params {
	return s.params
}

func (s *Sampler) BoundingBox() geo.BoundingBox {
	return s.box
}

// Evaluate measures the stops around one point. ok is false when no stop
// lies in the far box, in which case the point is not a valid sample.
func (s *Sampler) Evaluate(lat, lon float64) (sample PointSample, ok bool) {
	far := s.grid.within(nil, lat, lon, s.params.FarCutoff)
	if len(far) == 0 {
		return PointSample{}, false
	}

	nearest := math.Inf(1)
	for _, stop := range far {
		if !inSquare(stop, lat, lon, s.params.NearCutoff) {
			continue
		}
		d := geo.GeodesicDistance(lat, lon, stop.Lat, stop.Lon, s.params.Radius)
		if d < s.params.WalkThreshold {
			sample.CloseStops++
		}
		nearest = math.Min(nearest, d)
	}

	if sample.CloseStops == 0 {
		nearest = math.Inf(1)
		for _, stop := range far {
			d := geo.GeodesicDistance(lat, lon, stop.Lat, stop.Lon, s.params.Radius)
			nearest = math.Min(nearest, d)
		}
	}
	sample.NearestDistance = nearest
	return sample, true
}

// Run performs one coverage run with draws from r. Points with no stop in
// the far box are discarded and retried until SampleSize points are
// accepted or MaxAttempts draws were made.
func (s *Sampler) Run(r geo.RandomSource) Result {
	res := Result{
		SampleSize: s.params.SampleSize,
		Degenerate: s.box.IsDegenerate(),
	}
	progressStep := max(s.params.SampleSize/10, 1)

	for res.Accepted < s.params.SampleSize && res.Attempts < s.params.MaxAttempts {
		res.Attempts++

		lat, lon := s.box.RandomPoint(r)
		sample, ok := s.Evaluate(lat, lon)
		if !ok {
			continue
		}

		res.closeStopsSum += float64(sample.CloseStops)
		res.distanceSum += sample.NearestDistance
		res.Accepted++

		if res.Accepted%progressStep == 0 {
			s.logger.Debug("Calculated coverage", "accepted", res.Accepted, "sample_size", s.params.SampleSize, "attempts", res.Attempts)
		}
	}

	res.CoverageStops = res.closeStopsSum / float64(s.params.SampleSize)
	res.CoverageDistance = res.distanceSum / float64(s.params.SampleSize)

	if res.Exhausted() {
		s.logger.Warn("Coverage sampling exhausted its attempts",
			"accepted", res.Accepted, "sample_size", s.params.SampleSize, "attempts", res.Attempts)
	}
	return res
}
