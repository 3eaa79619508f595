package gtfs

import (
	"archive/zip"
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	remoteGtfs "github.com/jamespfennell/gtfs"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr(f float64) *float64 { return &f }

// buildGtfsZip packs a small feed: one station with two platforms and two
// plain stops, served by two trips of one route.
func buildGtfsZip(t *testing.T) []byte {
	t.Helper()

	files := map[string]string{
		"agency.txt": "agency_id,agency_name,agency_url,agency_timezone\n" +
			"A,Test Transit,https://example.com,America/Toronto\n",
		"routes.txt": "route_id,agency_id,route_short_name,route_long_name,route_type\n" +
			"R1,A,1,Main,3\n",
		"stops.txt": "stop_id,stop_name,stop_lat,stop_lon,location_type,parent_station\n" +
			"S,Central,43.6500,-79.3800,1,\n" +
			"P1,Central North,43.6501,-79.3800,0,S\n" +
			"P2,Central South,43.6499,-79.3800,0,S\n" +
			"B,Bay,43.6600,-79.3800,0,\n" +
			"C,College,43.6700,-79.3800,0,\n",
		"calendar.txt": "service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date\n" +
			"WK,1,1,1,1,1,0,0,20250101,20251231\n",
		"trips.txt": "route_id,service_id,trip_id\n" +
			"R1,WK,T1\n" +
			"R1,WK,T2\n",
		"stop_times.txt": "trip_id,arrival_time,departure_time,stop_id,stop_sequence\n" +
			"T1,08:00:00,08:00:00,P1,1\n" +
			"T1,08:05:00,08:05:00,B,2\n" +
			"T1,08:10:00,08:10:00,C,3\n" +
			"T2,09:10:00,09:10:00,C,1\n" +
			"T2,09:05:00,09:05:00,B,2\n" +
			"T2,09:00:00,09:00:00,P2,3\n",
	}

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("failed to add %s: %v", name, err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close zip: %v", err)
	}
	return buf.Bytes()
}

func setupGtfsServer(t *testing.T, data []byte) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/zip")
		w.Write(data)
	}))
	t.Cleanup(server.Close)
	return server
}

// staticFixture mirrors buildGtfsZip without going through the parser.
func staticFixture() *remoteGtfs.Static {
	station := &remoteGtfs.Stop{Id: "S", Latitude: ptr(43.65), Longitude: ptr(-79.38), Type: 1}
	stops := []remoteGtfs.Stop{
		*station,
		{Id: "P1", Latitude: ptr(43.6501), Longitude: ptr(-79.38), Parent: station},
		{Id: "P2", Latitude: ptr(43.6499), Longitude: ptr(-79.38), Parent: station},
		{Id: "B", Latitude: ptr(43.66), Longitude: ptr(-79.38)},
		{Id: "C", Latitude: ptr(43.67), Longitude: ptr(-79.38)},
		{Id: "E", Latitude: ptr(43.65), Longitude: ptr(-79.381), Type: 2, Parent: station},
		{Id: "N"},
	}
	byID := make(map[string]*remoteGtfs.Stop)
	for i := range stops {
		byID[stops[i].Id] = &stops[i]
	}
	st := func(id string, seq int) remoteGtfs.ScheduledStopTime {
		return remoteGtfs.ScheduledStopTime{Stop: byID[id], StopSequence: seq}
	}
	return &remoteGtfs.Static{
		Stops: stops,
		Trips: []remoteGtfs.ScheduledTrip{
			{StopTimes: []remoteGtfs.ScheduledStopTime{st("P1", 1), st("B", 2), st("C", 3)}},
			{StopTimes: []remoteGtfs.ScheduledStopTime{st("C", 3), st("B", 2), st("P2", 1)}},
			{StopTimes: []remoteGtfs.ScheduledStopTime{st("B", 1), st("N", 2), st("C", 3)}},
		},
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}
