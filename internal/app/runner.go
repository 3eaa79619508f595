package app

import (
	"context"
	"time"

	"netcover.onebusaway.org/internal/models"
)

// configRefreshInterval is how often a remote configuration is re-fetched.
const configRefreshInterval = time.Minute

// RemoteConfig locates a configuration served over HTTP.
type RemoteConfig struct {
	URL      string
	AuthUser string
	AuthPass string
}

// Start analyzes every configured network once and then starts the
// background routines: periodic re-analysis when a refresh interval is set,
// and config polling when the configuration is remote. It returns once the
// initial analyses have finished; the routines stop with ctx.
func (app *Application) Start(ctx context.Context, remote *RemoteConfig) {
	cfg := app.ConfigService.Config
	networks := cfg.GetNetworks()

	app.Logger.Info("Running initial analysis", "networks", len(networks))
	analyzed := app.AnalysisService.AnalyzeAll(ctx, networks)
	app.Logger.Info("Initial analysis finished", "analyzed", analyzed, "networks", len(networks))

	if cfg.RefreshInterval > 0 {
		interval := time.Duration(cfg.RefreshInterval) * time.Minute
		go app.AnalysisService.RefreshAnalyses(ctx, cfg.GetNetworks, interval)
	}

	if remote != nil && remote.URL != "" {
		previous := networks
		go app.ConfigService.RefreshConfig(ctx, remote.URL, remote.AuthUser, remote.AuthPass, configRefreshInterval, func(current []models.Network) {
			app.AnalysisService.ApplyConfig(ctx, previous, current)
			previous = current
		})
	}
}
