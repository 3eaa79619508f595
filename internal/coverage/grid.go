package coverage

import (
	"math"

	"netcover.onebusaway.org/internal/models"
)

type cellKey struct {
	lat, lon int64
}

// stopGrid buckets stops into square cells of cellSize degrees. A query
// with a half-width no larger than cellSize only needs the 3x3 block of
// cells around the query point.
type stopGrid struct {
	cellSize float64
	cells    map[cellKey][]models.Stop
}

func newStopGrid(stops []models.Stop, cellSize float64) *stopGrid {
	g := &stopGrid{
		cellSize: cellSize,
		cells:    make(map[cellKey][]models.Stop),
	}
	for _, stop := range stops {
		k := g.key(stop.Lat, stop.Lon)
		g.cells[k] = append(g.cells[k], stop)
	}
	return g
}

func (g *stopGrid) key(lat, lon float64) cellKey {
	return cellKey{
		lat: int64(math.Floor(lat / g.cellSize)),
		lon: int64(math.Floor(lon / g.cellSize)),
	}
}

// within appends to dst every stop strictly closer than cutoff degrees to
// (lat, lon) along both axes. cutoff must not exceed the cell size.
func (g *stopGrid) within(dst []models.Stop, lat, lon, cutoff float64) []models.Stop {
	center := g.key(lat, lon)
	for dLat := int64(-1); dLat <= 1; dLat++ {
		for dLon := int64(-1); dLon <= 1; dLon++ {
			for _, stop := range g.cells[cellKey{center.lat + dLat, center.lon + dLon}] {
				if inSquare(stop, lat, lon, cutoff) {
					dst = append(dst, stop)
				}
			}
		}
	}
	return dst
}

func inSquare(stop models.Stop, lat, lon, cutoff float64) bool {
	return math.Abs(lat-stop.Lat) < cutoff && math.Abs(lon-stop.Lon) < cutoff
}
