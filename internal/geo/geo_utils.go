package geo

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/golang/geo/s2"
	"netcover.onebusaway.org/internal/models"
)

// ErrEmptyInput is returned when an operation needs at least one stop.
var ErrEmptyInput = errors.New("no stops provided")

// BoundingBox defines the corners of a lat/lon box
type BoundingBox struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLon float64 `json:"max_lon"`
}

func (b BoundingBox) North() float64 { return b.MaxLat }
func (b BoundingBox) South() float64 { return b.MinLat }
func (b BoundingBox) East() float64  { return b.MaxLon }
func (b BoundingBox) West() float64  { return b.MinLon }

// Contains checks whether the given latitude and longitude are within the bounding box
func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

// IsDegenerate reports whether the box has zero extent along either axis,
// which happens when all stops share a latitude or a longitude.
func (b BoundingBox) IsDegenerate() bool {
	return b.MaxLat == b.MinLat || b.MaxLon == b.MinLon
}

// RandomSource is the randomness consumed by sampling. *rand.Rand from
// math/rand/v2 satisfies it.
type RandomSource interface {
	Float64() float64
}

// RandomPoint draws a uniformly distributed point inside the box.
// A zero-width axis yields its single value instead of a [low, low] draw.
func (b BoundingBox) RandomPoint(r RandomSource) (lat, lon float64) {
	lat, lon = b.MinLat, b.MinLon
	if b.MaxLat > b.MinLat {
		lat = b.MinLat + r.Float64()*(b.MaxLat-b.MinLat)
	}
	if b.MaxLon > b.MinLon {
		lon = b.MinLon + r.Float64()*(b.MaxLon-b.MinLon)
	}
	return lat, lon
}

// ComputeBoundingBox computes the bounding box of all stops in a single pass.
func ComputeBoundingBox(stops []models.Stop) (BoundingBox, error) {
	if len(stops) == 0 {
		return BoundingBox{}, fmt.Errorf("compute bounding box: %w", ErrEmptyInput)
	}

	box := BoundingBox{
		MinLat: math.MaxFloat64,
		MaxLat: -math.MaxFloat64,
		MinLon: math.MaxFloat64,
		MaxLon: -math.MaxFloat64,
	}
	for _, stop := range stops {
		box.MinLat = math.Min(box.MinLat, stop.Lat)
		box.MaxLat = math.Max(box.MaxLat, stop.Lat)
		box.MinLon = math.Min(box.MinLon, stop.Lon)
		box.MaxLon = math.Max(box.MaxLon, stop.Lon)
	}
	return box, nil
}

// BoundingBoxStore stores bounding boxes for each network in memory with concurrency safety
type BoundingBoxStore struct {
	mu    sync.RWMutex
	store map[int]BoundingBox
}

// NewBoundingBoxStore creates and returns a new BoundingBoxStore
func NewBoundingBoxStore() *BoundingBoxStore {
	return &BoundingBoxStore{
		store: make(map[int]BoundingBox),
	}
}

// Set stores a bounding box for a specific network ID
func (s *BoundingBoxStore) Set(networkID int, bbox BoundingBox) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store[networkID] = bbox
}

// Get retrieves the bounding box for a specific network ID
func (s *BoundingBoxStore) Get(networkID int) (BoundingBox, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bbox, ok := s.store[networkID]
	return bbox, ok
}

// Delete removes the bounding box of a specific network ID
func (s *BoundingBoxStore) Delete(networkID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.store, networkID)
}

// IsValidLatLon returns true if the given latitude and longitude values
// fall within the valid geographic coordinate bounds.
//
// Latitude must be between -90 and 90 degrees, and longitude must be
// between -180 and 180 degrees. Unlike vehicle positions, (0,0) is accepted
// here: a stop layout is allowed to sit on the equator at the meridian.
func IsValidLatLon(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// EarthRadiusKm is the Earth's volumetric mean radius in kilometers.
//
// Reference: NASA Planetary Fact Sheet – Earth
// https://nssdc.gsfc.nasa.gov/planetary/factsheet/earthfact.html
const EarthRadiusKm = 6371.0

// GeodesicDistance returns the great-circle distance between two points
// given in degrees, on a sphere of the given radius. The result is in the
// unit of radius.
func GeodesicDistance(lat1, lon1, lat2, lon2, radius float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * radius
}

// SphericalLawOfCosines computes the same distance as GeodesicDistance
// with the law of cosines. The acos argument is clamped to [-1, 1] since
// rounding pushes it slightly out of range for (near) identical or
// antipodal points.
func SphericalLawOfCosines(lat1, lon1, lat2, lon2, radius float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	c := math.Sin(phi1)*math.Sin(phi2) + math.Cos(phi1)*math.Cos(phi2)*math.Cos(dLambda)
	c = math.Max(-1, math.Min(1, c))
	return math.Acos(c) * radius
}
