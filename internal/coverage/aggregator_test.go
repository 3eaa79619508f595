package coverage

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestAggregate(t *testing.T) {
	params := DefaultParams(testRadius)
	params.SampleSize = 200
	s := mustSampler(t, gridStops(10, 0.004), params)

	summary, err := Aggregate(context.Background(), s, AggregateOptions{Trials: 5, Seed: 11})
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	if summary.Trials != 5 || len(summary.Results) != 5 {
		t.Fatalf("expected 5 trials, got %d (%d results)", summary.Trials, len(summary.Results))
	}
	if summary.Seed != 11 {
		t.Errorf("expected seed 11, got %d", summary.Seed)
	}

	var stops, distance float64
	for _, r := range summary.Results {
		stops += r.CoverageStops
		distance += r.CoverageDistance
	}
	if math.Abs(summary.CoverageStops-stops/5) > 1e-12 {
		t.Errorf("CoverageStops = %v, want mean %v", summary.CoverageStops, stops/5)
	}
	if math.Abs(summary.CoverageDistance-distance/5) > 1e-12 {
		t.Errorf("CoverageDistance = %v, want mean %v", summary.CoverageDistance, distance/5)
	}
	if summary.MinAccepted != 200 || summary.TotalAccepted != 1000 || summary.Exhausted {
		t.Errorf("unexpected sample accounting: %+v", summary)
	}

	// trials draw from separate streams
	if summary.Results[0] == summary.Results[1] {
		t.Error("expected different trials to produce different results")
	}
}

func TestAggregateIndependentOfScheduling(t *testing.T) {
	params := DefaultParams(testRadius)
	params.SampleSize = 150
	s := mustSampler(t, gridStops(8, 0.005), params)

	serial, err := Aggregate(context.Background(), s, AggregateOptions{Trials: 6, Seed: 5, Parallelism: 1})
	if err != nil {
		t.Fatalf("serial Aggregate failed: %v", err)
	}
	parallel, err := Aggregate(context.Background(), s, AggregateOptions{Trials: 6, Seed: 5, Parallelism: 6})
	if err != nil {
		t.Fatalf("parallel Aggregate failed: %v", err)
	}

	if serial.CoverageStops != parallel.CoverageStops || serial.CoverageDistance != parallel.CoverageDistance {
		t.Errorf("results depend on scheduling: serial %+v, parallel %+v", serial, parallel)
	}
}

func TestAggregateDefaults(t *testing.T) {
	params := DefaultParams(testRadius)
	params.SampleSize = 20
	s := mustSampler(t, lineStops(), params)

	summary, err := Aggregate(context.Background(), s, AggregateOptions{})
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if summary.Trials != DefaultTrials {
		t.Errorf("expected %d trials, got %d", DefaultTrials, summary.Trials)
	}
	if summary.Seed == 0 {
		t.Error("expected a generated seed to be reported")
	}
	if !summary.Degenerate {
		t.Error("expected the equator layout to be flagged degenerate")
	}
}

func TestAggregateReportsExhaustion(t *testing.T) {
	stops := gridStops(2, 5)
	params := DefaultParams(testRadius)
	params.SampleSize = 100
	params.MaxAttempts = 20
	s := mustSampler(t, stops, params)

	summary, err := Aggregate(context.Background(), s, AggregateOptions{Trials: 3, Seed: 1})
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if !summary.Exhausted {
		t.Error("expected the summary to be flagged exhausted")
	}
	if summary.MinAccepted >= params.SampleSize {
		t.Errorf("expected fewer than %d accepted samples, got %d", params.SampleSize, summary.MinAccepted)
	}
}

func TestAggregateCanceled(t *testing.T) {
	s := mustSampler(t, lineStops(), DefaultParams(testRadius))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Aggregate(ctx, s, AggregateOptions{Trials: 4, Seed: 1})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
