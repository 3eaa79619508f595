package coverage

import (
	"io"
	"log/slog"
	"math/rand/v2"
	"testing"

	"netcover.onebusaway.org/internal/models"
)

const testRadius = 6371.0

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// lineStops returns the three stops of the equator scenario, about 1.1 km apart.
func lineStops() []models.Stop {
	return []models.Stop{
		{ID: "A", Lat: 0, Lon: 0},
		{ID: "B", Lat: 0, Lon: 0.01},
		{ID: "C", Lat: 0, Lon: 0.02},
	}
}

// gridStops lays out an n by n grid of stops spaced step degrees apart.
func gridStops(n int, step float64) []models.Stop {
	stops := make([]models.Stop, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			stops = append(stops, models.Stop{
				ID:  string(rune('a'+i)) + string(rune('a'+j)),
				Lat: 43.6 + float64(i)*step,
				Lon: -79.4 + float64(j)*step,
			})
		}
	}
	return stops
}

func mustSampler(t *testing.T, stops []models.Stop, params Params) *Sampler {
	t.Helper()
	s, err := NewSampler(stops, params, discardLogger())
	if err != nil {
		t.Fatalf("NewSampler failed: %v", err)
	}
	return s
}

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}
