package geo

import (
	"fmt"

	"github.com/golang/geo/s2"
	"netcover.onebusaway.org/internal/models"
)

const DefaultClusterLevel = 10 // S2 cell level with 7–10 km spatial resolution

// s2ClusterID generates a stable S2-based cluster ID for a lat/lon.
func s2ClusterID(lat, lon float64, level int) string {
	ll := s2.LatLngFromDegrees(lat, lon)
	cellID := s2.CellIDFromLatLng(ll).Parent(level)
	return fmt.Sprintf("s2_%d", uint64(cellID))
}

// ClusterStops groups stops by the S2 cell containing them at the given
// level and returns the number of stops per cell ID.
func ClusterStops(stops []models.Stop, level int) map[string]int {
	counts := make(map[string]int)
	for _, stop := range stops {
		counts[s2ClusterID(stop.Lat, stop.Lon, level)]++
	}
	return counts
}
