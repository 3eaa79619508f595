package coverage

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"
	"sync"
)

// DefaultTrials is the number of independent runs averaged by Aggregate.
const DefaultTrials = 10

// AggregateOptions controls how many runs are averaged and how they are
// seeded and scheduled.
type AggregateOptions struct {
	Trials int
	// Seed makes the trials reproducible. Zero picks a fresh seed, which is
	// reported back in Summary.Seed.
	Seed uint64
	// Parallelism bounds the number of trials running at once. Zero uses
	// GOMAXPROCS.
	Parallelism int
}

// Summary is the average of several coverage runs.
type Summary struct {
	CoverageStops    float64 `json:"coverage_stops"`
	CoverageDistance float64 `json:"coverage_distance"`
	Trials           int     `json:"trials"`
	Seed             uint64  `json:"seed"`
	// MinAccepted is the lowest accepted sample count of any trial.
	MinAccepted   int  `json:"min_accepted"`
	TotalAccepted int  `json:"total_accepted"`
	SampleSize    int  `json:"sample_size"`
	Exhausted     bool `json:"exhausted"`
	Degenerate    bool `json:"degenerate"`

	Results []Result `json:"-"`
}

// trialSource returns the random stream of one trial. Streams of different
// trials never share state.
func trialSource(seed uint64, trial int) *rand.Rand {
	return rand.New(rand.NewPCG(seed, uint64(trial)))
}

// Aggregate runs the sampler Trials times, each with its own random stream,
// and averages the two coverage metrics. Trials run concurrently; the
// summary does not depend on their completion order.
func Aggregate(ctx context.Context, sampler *Sampler, opts AggregateOptions) (Summary, error) {
	trials := opts.Trials
	if trials <= 0 {
		trials = DefaultTrials
	}
	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.GOMAXPROCS(0)
	}
	seed := opts.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	results := make([]Result, trials)
	sem := make(chan struct{}, parallelism)
	var wg sync.WaitGroup

schedule:
	for i := 0; i < trials; i++ {
		select {
		case <-ctx.Done():
			break schedule
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(trial int) {
			defer wg.Done()
			defer func() { <-sem }()
			results[trial] = sampler.Run(trialSource(seed, trial))
		}(i)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return Summary{}, fmt.Errorf("coverage aggregation interrupted: %w", err)
	}

	summary := Summary{
		Trials:      trials,
		Seed:        seed,
		SampleSize:  sampler.Params().SampleSize,
		MinAccepted: results[0].Accepted,
		Results:     results,
	}
	for _, r := range results {
		summary.CoverageStops += r.CoverageStops
		summary.CoverageDistance += r.CoverageDistance
		summary.TotalAccepted += r.Accepted
		summary.MinAccepted = min(summary.MinAccepted, r.Accepted)
		summary.Exhausted = summary.Exhausted || r.Exhausted()
		summary.Degenerate = summary.Degenerate || r.Degenerate
	}
	summary.CoverageStops /= float64(trials)
	summary.CoverageDistance /= float64(trials)

	sampler.logger.Info("Aggregated coverage trials",
		"trials", trials,
		"seed", seed,
		"coverage_stops", summary.CoverageStops,
		"coverage_distance", summary.CoverageDistance,
		"min_accepted", summary.MinAccepted)

	return summary, nil
}
