package gtfs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"slices"

	remoteGtfs "github.com/jamespfennell/gtfs"
	"netcover.onebusaway.org/internal/config"
	"netcover.onebusaway.org/internal/geo"
	"netcover.onebusaway.org/internal/models"
	"netcover.onebusaway.org/internal/utils"
)

// GTFS location_type values used when resolving stops.
const (
	locationTypeStop    = 0
	locationTypeStation = 1
)

// downloadGTFSBundle fetches the raw bytes of a GTFS static bundle.
// Transport failures are retried by config.DoWithBackoff; any non-200
// response is an error.
func downloadGTFSBundle(ctx context.Context, client *http.Client, url string, maxRetries int) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", url, err)
	}

	resp, err := config.DoWithBackoff(ctx, client, req, maxRetries)
	if err != nil {
		return nil, fmt.Errorf("failed to make GET request to %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected response status %d when downloading GTFS bundle from %s", resp.StatusCode, url)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read GTFS bundle response body from %s: %w", url, err)
	}
	return data, nil
}

// fetchGTFSBundle downloads the bundle of a network and writes it to the
// cache directory. When the download fails and an earlier copy is cached,
// the cached copy is returned instead.
//
// An empty cacheDir disables caching.
func fetchGTFSBundle(ctx context.Context, client *http.Client, network models.Network, cacheDir string, maxRetries int, logger *slog.Logger) ([]byte, error) {
	data, err := downloadGTFSBundle(ctx, client, network.GtfsUrl, maxRetries)
	if err == nil {
		if cacheDir != "" {
			path := utils.CachedBundlePath(cacheDir, network.ID, network.GtfsUrl)
			if werr := os.WriteFile(path, data, 0o644); werr != nil {
				logger.Warn("Failed to cache GTFS bundle", "network_id", network.ID, "path", path, "error", werr)
			}
		}
		return data, nil
	}
	if cacheDir == "" || ctx.Err() != nil {
		return nil, err
	}

	cached, cerr := utils.GetLastCachedFile(cacheDir, network.ID)
	if cerr != nil {
		return nil, err
	}
	data, cerr = os.ReadFile(cached)
	if cerr != nil {
		return nil, fmt.Errorf("%w (reading cached bundle: %v)", err, cerr)
	}
	logger.Warn("Using cached GTFS bundle", "network_id", network.ID, "path", cached, "error", err)
	return data, nil
}

func parseGTFSBundle(data []byte) (*remoteGtfs.Static, error) {
	staticBundle, err := remoteGtfs.ParseStatic(data, remoteGtfs.ParseStaticOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to parse GTFS static data: %w", err)
	}
	return staticBundle, nil
}

// stopResolver maps GTFS stops to network stop IDs.
type stopResolver struct {
	mergeStations bool
}

// resolve returns the network stop a GTFS stop belongs to. Platforms map to
// their parent station when stations are merged. Entrances, generic nodes,
// boarding areas and stops without coordinates have no network stop.
func (r stopResolver) resolve(stop *remoteGtfs.Stop) (models.Stop, bool) {
	if stop == nil {
		return models.Stop{}, false
	}
	target := stop
	switch stop.Type {
	case locationTypeStop:
		if r.mergeStations && stop.Parent != nil {
			root := stop.Root()
			if root.Type != locationTypeStation {
				return models.Stop{}, false // malformed hierarchy
			}
			target = root
		}
	case locationTypeStation:
		if !r.mergeStations {
			return models.Stop{}, false
		}
	default:
		return models.Stop{}, false
	}
	if target.Latitude == nil || target.Longitude == nil {
		return models.Stop{}, false
	}
	return models.Stop{ID: target.Id, Lat: *target.Latitude, Lon: *target.Longitude}, true
}

// NetworkDataFromStatic converts a parsed GTFS bundle into network records.
//
// Stops come from the bundle's stops; connections link stops visited one
// after another by some trip, ordered by stop_sequence. Each unordered pair
// of stops yields one connection whose length is the great-circle distance
// between them on a sphere of the given radius.
func NetworkDataFromStatic(static *remoteGtfs.Static, radius float64, mergeStations bool, logger *slog.Logger) *models.NetworkData {
	resolver := stopResolver{mergeStations: mergeStations}

	var stops []models.Stop
	seenStops := make(map[string]bool)
	for i := range static.Stops {
		stop, ok := resolver.resolve(&static.Stops[i])
		if !ok || seenStops[stop.ID] {
			continue
		}
		if !geo.IsValidLatLon(stop.Lat, stop.Lon) {
			logger.Warn("Skipping stop with invalid coordinates", "stop_id", stop.ID, "lat", stop.Lat, "lon", stop.Lon)
			continue
		}
		seenStops[stop.ID] = true
		stops = append(stops, stop)
	}

	var connections []models.Connection
	seenPairs := make(map[[2]string]bool)
	skipped := 0
	for _, trip := range static.Trips {
		stopTimes := slices.Clone(trip.StopTimes)
		slices.SortStableFunc(stopTimes, func(a, b remoteGtfs.ScheduledStopTime) int {
			return a.StopSequence - b.StopSequence
		})

		var prev models.Stop
		hasPrev := false
		for _, st := range stopTimes {
			cur, ok := resolver.resolve(st.Stop)
			if !ok || !seenStops[cur.ID] {
				skipped++
				hasPrev = false
				continue
			}
			if hasPrev && prev.ID != cur.ID {
				pair := [2]string{prev.ID, cur.ID}
				if pair[0] > pair[1] {
					pair[0], pair[1] = pair[1], pair[0]
				}
				if !seenPairs[pair] {
					seenPairs[pair] = true
					connections = append(connections, models.Connection{
						From:   prev.ID,
						To:     cur.ID,
						Length: geo.GeodesicDistance(prev.Lat, prev.Lon, cur.Lat, cur.Lon, radius),
					})
				}
			}
			prev, hasPrev = cur, true
		}
	}
	if skipped > 0 {
		logger.Debug("Skipped stop times without a network stop", "count", skipped)
	}

	return &models.NetworkData{
		Stops:         stops,
		Connections:   connections,
		ServicePeriod: servicePeriod(static),
	}
}

// servicePeriod returns the earliest and latest service end dates of the
// bundle, or nil when it has no services.
//
// This is a workaround because the GTFS library does not parse
// feed_info.txt, which usually carries the feed end date.
func servicePeriod(static *remoteGtfs.Static) *models.ServicePeriod {
	if len(static.Services) == 0 {
		return nil
	}
	period := &models.ServicePeriod{
		EarliestEnd: static.Services[0].EndDate,
		LatestEnd:   static.Services[0].EndDate,
	}
	for _, service := range static.Services[1:] {
		if service.EndDate.Before(period.EarliestEnd) {
			period.EarliestEnd = service.EndDate
		}
		if service.EndDate.After(period.LatestEnd) {
			period.LatestEnd = service.EndDate
		}
	}
	return period
}
