package config

import (
	"net/http"
	"sync"
)

// mockRoundTripper counts requests and answers them with handler.
type mockRoundTripper struct {
	mu      sync.Mutex
	calls   int
	handler func(req *http.Request) (*http.Response, error)
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	return m.handler(req)
}

const validNetworkJSON = `[{
	"name": "Toronto",
	"id": 1,
	"agency": "ttc",
	"gtfs_url": "https://gtfs.example.com/ttc.zip",
	"area_km2": 630,
	"trials": 5,
	"seed": 42
}]`

var expectedNetwork = struct {
	Name    string
	ID      int
	Agency  string
	GtfsUrl string
	AreaKm2 float64
	Trials  int
	Seed    uint64
}{"Toronto", 1, "ttc", "https://gtfs.example.com/ttc.zip", 630, 5, 42}
