package network

import (
	"math"
	"testing"

	"netcover.onebusaway.org/internal/geo"
	"netcover.onebusaway.org/internal/models"
)

func TestComputeStats(t *testing.T) {
	conns := []models.Connection{
		{From: "a", To: "b", Length: 1.5},
		{From: "b", To: "c", Length: 2.5},
	}
	g := mustBuild(t, stopsNamed("a", "b", "c", "d"), conns)

	s := ComputeStats(g, 2)
	if s.Stops != 4 || s.Connections != 2 || s.Components != 2 || s.Isolates != 1 {
		t.Errorf("unexpected counts: %+v", s)
	}
	if s.TotalLength != 4 {
		t.Errorf("TotalLength = %v, want 4", s.TotalLength)
	}
	if s.TotalLengthNormalized != 2 {
		t.Errorf("TotalLengthNormalized = %v, want 2", s.TotalLengthNormalized)
	}
	if s.AverageConnectionLength != 2 {
		t.Errorf("AverageConnectionLength = %v, want 2", s.AverageConnectionLength)
	}

	if s := ComputeStats(g, 0); s.TotalLengthNormalized != 0 {
		t.Errorf("expected no normalization without an area, got %v", s.TotalLengthNormalized)
	}
}

func TestAverageStraightDistance(t *testing.T) {
	// three stops 0.01 degrees apart along the equator
	g := mustBuild(t, stopsNamed("a", "b", "c"), nil)

	step := geo.GeodesicDistance(0, 0, 0, 0.01, geo.EarthRadiusKm)
	want := (step + step + 2*step) / 3
	if got := AverageStraightDistance(g, geo.EarthRadiusKm); math.Abs(got-want) > 1e-9 {
		t.Errorf("AverageStraightDistance() = %v, want %v", got, want)
	}

	single := mustBuild(t, stopsNamed("a"), nil)
	if got := AverageStraightDistance(single, geo.EarthRadiusKm); got != 0 {
		t.Errorf("expected 0 for a single stop, got %v", got)
	}
}
