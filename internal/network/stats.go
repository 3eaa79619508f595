package network

import "netcover.onebusaway.org/internal/geo"

// Stats summarizes the size and length of a network.
type Stats struct {
	Stops                   int     `json:"stops"`
	Connections             int     `json:"connections"`
	Components              int     `json:"components"`
	Isolates                int     `json:"isolates"`
	TotalLength             float64 `json:"total_length"`
	TotalLengthNormalized   float64 `json:"total_length_normalized"`
	AverageConnectionLength float64 `json:"average_connection_length"`
}

// ComputeStats gathers the network statistics. areaKm2 normalizes the total
// connection length; pass 0 when the service area is unknown.
func ComputeStats(g *Graph, areaKm2 float64) Stats {
	s := Stats{
		Stops:       g.NumStops(),
		Connections: g.NumEdges(),
		Components:  g.NumComponents(),
		Isolates:    len(g.Isolates()),
	}
	for _, e := range g.Edges() {
		s.TotalLength += e.Length
	}
	if areaKm2 > 0 {
		s.TotalLengthNormalized = s.TotalLength / areaKm2
	}
	if s.Connections > 0 {
		s.AverageConnectionLength = s.TotalLength / float64(s.Connections)
	}
	return s
}

// AverageStraightDistance returns the mean geodesic distance over all
// unordered pairs of distinct stops. It is quadratic in the number of stops.
func AverageStraightDistance(g *Graph, radius float64) float64 {
	n := len(g.order)
	if n < 2 {
		return 0
	}

	var sum float64
	for i := 0; i < n; i++ {
		a := g.stops[g.order[i]]
		for j := i + 1; j < n; j++ {
			b := g.stops[g.order[j]]
			sum += geo.GeodesicDistance(a.Lat, a.Lon, b.Lat, b.Lon, radius)
		}
	}
	return 2 * sum / float64(n*(n-1))
}
