package models

// Network describes one transit network to analyze, as read from the
// JSON configuration (file or remote URL).
//
// A network is loaded either from a GTFS static bundle (GtfsUrl) or from a
// pair of CSV record files (StopsFile and ConnectionsFile). Zero values for
// the tuning fields fall back to the defaults of the coverage package.
type Network struct {
	Name            string  `json:"name" validate:"required"`
	ID              int     `json:"id"`
	Agency          string  `json:"agency"`
	GtfsUrl         string  `json:"gtfs_url" validate:"omitempty,url"`
	StopsFile       string  `json:"stops_file"`
	ConnectionsFile string  `json:"connections_file"`
	RadiusKm        float64 `json:"radius_km" validate:"gte=0"`
	AreaKm2         float64 `json:"area_km2" validate:"gte=0"`
	SampleSize      int     `json:"sample_size" validate:"gte=0"`
	Trials          int     `json:"trials" validate:"gte=0"`
	WalkThresholdKm float64 `json:"walk_threshold_km" validate:"gte=0"`
	Seed            uint64  `json:"seed"`
	// MergeStations collapses GTFS platforms into their parent station.
	MergeStations bool `json:"merge_stations"`
}

// Earth radius presets in kilometers, picked per agency for the latitude
// band the agency operates in.
var agencyRadiusKm = map[string]float64{
	"ttc":     6368.262,
	"lametro": 6371.57,
	"sf-muni": 6370.158,
}

// DefaultRadiusKm is used for agencies without a preset (about 37 degrees north).
const DefaultRadiusKm = 6373.0

// EffectiveRadiusKm returns the configured sphere radius, or the preset for
// the agency when none is configured.
func (n Network) EffectiveRadiusKm() float64 {
	if n.RadiusKm > 0 {
		return n.RadiusKm
	}
	if r, ok := agencyRadiusKm[n.Agency]; ok {
		return r
	}
	return DefaultRadiusKm
}

// UsesGtfs reports whether the network records come from a GTFS bundle.
func (n Network) UsesGtfs() bool {
	return n.GtfsUrl != ""
}
