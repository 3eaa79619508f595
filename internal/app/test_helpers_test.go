package app

import (
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"netcover.onebusaway.org/internal/analysis"
	"netcover.onebusaway.org/internal/config"
	"netcover.onebusaway.org/internal/coverage"
	"netcover.onebusaway.org/internal/models"
	"netcover.onebusaway.org/internal/network"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestApp(t *testing.T, networks []models.Network) *Application {
	t.Helper()
	cfg := config.NewConfig(4000, "testing", networks)
	cfg.CacheDir = t.TempDir()
	cfg.MaxRetries = 1
	return New(cfg, discardLogger(), http.DefaultClient, "test-version", analysis.Options{Parallelism: 2})
}

func sampleReport(id int) *analysis.Report {
	return &analysis.Report{
		RunID:       "run-1",
		NetworkID:   id,
		NetworkName: "Test Network",
		GeneratedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Coverage:    coverage.Summary{CoverageStops: 1.5, CoverageDistance: 0.25, Trials: 10},
		Bridges:     []network.Edge{{From: "a", To: "b", Length: 1.2}},
		BridgeStops: []models.Stop{{ID: "a", Lat: 43.65, Lon: -79.38}, {ID: "b", Lat: 43.66, Lon: -79.38}},
	}
}

// writeLineNetwork writes a three stop line a-b-c plus a detached pair d-e
// as CSV record files and returns a network reading them.
func writeLineNetwork(t *testing.T, id int) models.Network {
	t.Helper()
	dir := t.TempDir()
	stops := "id,lat,lon\n" +
		"a,43.650,-79.380\n" +
		"b,43.655,-79.380\n" +
		"c,43.660,-79.380\n" +
		"d,43.650,-79.370\n" +
		"e,43.655,-79.370\n"
	connections := "from,to,length\n" +
		"a,b,\n" +
		"b,c,\n" +
		"d,e,0.6\n"

	stopsPath := filepath.Join(dir, "stops.csv")
	connectionsPath := filepath.Join(dir, "connections.csv")
	if err := os.WriteFile(stopsPath, []byte(stops), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(connectionsPath, []byte(connections), 0o644); err != nil {
		t.Fatal(err)
	}
	return models.Network{
		Name:            "Line",
		ID:              id,
		Agency:          "ttc",
		StopsFile:       stopsPath,
		ConnectionsFile: connectionsPath,
		SampleSize:      100,
		Trials:          2,
		Seed:            1,
	}
}
