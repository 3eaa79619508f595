package app

import (
	"log/slog"
	"net/http"

	"netcover.onebusaway.org/internal/analysis"
	"netcover.onebusaway.org/internal/config"
	"netcover.onebusaway.org/internal/geo"
	"netcover.onebusaway.org/internal/gtfs"
	"netcover.onebusaway.org/internal/metrics"
)

// Application wires the services of the analyzer together.
type Application struct {
	ConfigService   *config.ConfigService
	GtfsService     *gtfs.GtfsService
	AnalysisService *analysis.AnalysisService
	MetricsService  *metrics.MetricsService
	Logger          *slog.Logger
	Version         string
}

// New creates and wires all dependencies for the Application.
func New(cfg *config.Config, logger *slog.Logger, client *http.Client, version string, opts analysis.Options) *Application {
	networkStore := gtfs.NewNetworkStore()
	boundingBoxStore := geo.NewBoundingBoxStore()

	configService := config.NewConfigService(logger, client, cfg)
	gtfsService := gtfs.NewGtfsService(networkStore, boundingBoxStore, logger, client, cfg.CacheDir, cfg.MaxRetries)
	metricsService := metrics.NewMetricsService(logger)

	analysisService := analysis.NewAnalysisService(gtfsService, analysis.NewAnalysisStore(), config.NewBackoffStore(), logger, opts)
	analysisService.OnReport = metricsService.ReportAnalysis
	analysisService.OnFailure = metricsService.ReportFailure
	analysisService.OnRemove = func(networkIDs []int) {
		metricsService.RemoveNetworks(networkIDs)
		gtfsService.Forget(networkIDs)
	}

	return &Application{
		ConfigService:   configService,
		GtfsService:     gtfsService,
		AnalysisService: analysisService,
		MetricsService:  metricsService,
		Logger:          logger,
		Version:         version,
	}
}
