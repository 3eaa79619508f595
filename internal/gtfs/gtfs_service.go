package gtfs

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/getsentry/sentry-go"
	"netcover.onebusaway.org/internal/geo"
	"netcover.onebusaway.org/internal/models"
	"netcover.onebusaway.org/internal/report"
)

// GtfsService loads network records from GTFS bundles or CSV record files
// and keeps the latest copy of each network in memory.
type GtfsService struct {
	NetworkStore     *NetworkStore
	BoundingBoxStore *geo.BoundingBoxStore
	Logger           *slog.Logger
	Client           *http.Client
	CacheDir         string
	MaxRetries       int
}

func NewGtfsService(networkStore *NetworkStore, boundingBoxStore *geo.BoundingBoxStore, logger *slog.Logger, client *http.Client, cacheDir string, maxRetries int) *GtfsService {
	return &GtfsService{
		NetworkStore:     networkStore,
		BoundingBoxStore: boundingBoxStore,
		Logger:           logger,
		Client:           client,
		CacheDir:         cacheDir,
		MaxRetries:       maxRetries,
	}
}

// LoadNetwork reads the records of a network from its configured source and
// stores them, along with their bounding box. Failures are reported to
// Sentry and returned; the previously stored records are kept.
func (gs *GtfsService) LoadNetwork(ctx context.Context, network models.Network) (*models.NetworkData, error) {
	data, err := gs.loadNetwork(ctx, network)
	if err != nil {
		report.ReportNetworkError(err, network.ID, network.Name, sentry.LevelError, map[string]interface{}{
			"gtfs_url":         network.GtfsUrl,
			"stops_file":       network.StopsFile,
			"connections_file": network.ConnectionsFile,
		})
		gs.Logger.Error("Failed to load network", "network_id", network.ID, "error", err)
		return nil, err
	}

	bbox, err := geo.ComputeBoundingBox(data.Stops)
	if err != nil {
		err = fmt.Errorf("could not compute bounding box for network %d: %w", network.ID, err)
		report.ReportNetworkError(err, network.ID, network.Name, sentry.LevelWarning, nil)
		return nil, err
	}

	gs.NetworkStore.Set(network.ID, data)
	gs.BoundingBoxStore.Set(network.ID, bbox)
	gs.Logger.Info("Loaded network",
		"network_id", network.ID,
		"stops", len(data.Stops),
		"connections", len(data.Connections),
	)
	return data, nil
}

func (gs *GtfsService) loadNetwork(ctx context.Context, network models.Network) (*models.NetworkData, error) {
	radius := network.EffectiveRadiusKm()
	if !network.UsesGtfs() {
		return LoadRecords(network.StopsFile, network.ConnectionsFile, radius)
	}

	raw, err := fetchGTFSBundle(ctx, gs.Client, network, gs.CacheDir, gs.MaxRetries, gs.Logger)
	if err != nil {
		return nil, err
	}
	staticBundle, err := parseGTFSBundle(raw)
	if err != nil {
		return nil, err
	}
	return NetworkDataFromStatic(staticBundle, radius, network.MergeStations, gs.Logger), nil
}

// Forget drops the stored records and bounding boxes of networks that left
// the configuration.
func (gs *GtfsService) Forget(networkIDs []int) {
	for _, id := range networkIDs {
		gs.NetworkStore.Delete(id)
		gs.BoundingBoxStore.Delete(id)
	}
}

// LastLoaded returns the records stored by the latest successful
// LoadNetwork call for the network.
func (gs *GtfsService) LastLoaded(networkID int) (*models.NetworkData, bool) {
	return gs.NetworkStore.Get(networkID)
}
