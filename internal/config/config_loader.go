package config

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"netcover.onebusaway.org/internal/models"
	"netcover.onebusaway.org/internal/report"
	"netcover.onebusaway.org/internal/utils"
)

// ValidateConfigFlags ensures that only one configuration source is specified:
// either a config file "--config-file", a remote config URL "--config-url".
//
// Returns an error if more than one input method is specified.
func ValidateConfigFlags(configFile, configURL *string) error {
	if *configFile == "" && *configURL == "" {
		return fmt.Errorf("no configuration provided, either --config-file or --config-url must be specified")
	}
	if (*configFile != "" && *configURL != "") || (*configFile != "" && len(flag.Args()) > 0) || (*configURL != "" && len(flag.Args()) > 0) {
		return fmt.Errorf("only one of --config-file or --config-url can be specified")
	}
	return nil
}

// refreshConfig periodically fetches the network list from a remote URL and
// replaces the configured networks with it.
//
// Fetch and parse errors are logged and reported to Sentry; the previous
// configuration stays in place and the loop continues. onUpdate, when not
// nil, is called after every successful refresh.
//
// The routine stops when the context is canceled.
func refreshConfig(ctx context.Context, client *http.Client, configURL, configAuthUser, configAuthPass string, cfg *Config, logger *slog.Logger, interval time.Duration, onUpdate func([]models.Network)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Stopping config refresh routine")
			return
		case <-ticker.C:
			newNetworks, err := loadConfigFromURL(ctx, client, configURL, configAuthUser, configAuthPass, cfg.MaxRetries)
			if err != nil {
				report.ReportErrorWithSentryOptions(err, report.SentryReportOptions{
					Tags:  utils.MakeMap("config_url", configURL),
					Level: sentry.LevelError,
				})
				logger.Error("Failed to refresh remote config", "error", err)
				continue
			}
			cfg.UpdateConfig(newNetworks)
			logger.Info("Successfully refreshed network configuration", "networks", len(newNetworks))
			if onUpdate != nil {
				onUpdate(newNetworks)
			}
		}
	}
}

// loadConfigFromFile reads a JSON configuration file from disk and
// unmarshals it into a validated list of networks.
func loadConfigFromFile(filePath string) ([]models.Network, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return parseNetworks(data)
}

// loadConfigFromURL fetches a JSON configuration from a remote HTTP(S)
// endpoint, using optional basic authentication, and unmarshals it into a
// validated list of networks.
func loadConfigFromURL(ctx context.Context, client *http.Client, url, authUser, authPass string, maxRetries int) ([]models.Network, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if authUser != "" && authPass != "" {
		req.SetBasicAuth(authUser, authPass)
	}

	resp, err := DoWithBackoff(ctx, client, req, maxRetries)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch remote config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("remote config returned status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read remote config: %w", err)
	}
	return parseNetworks(data)
}

func parseNetworks(data []byte) ([]models.Network, error) {
	var networks []models.Network
	if err := json.Unmarshal(data, &networks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	if err := ValidateNetworks(networks); err != nil {
		return nil, fmt.Errorf("invalid network configuration: %w", err)
	}
	return networks, nil
}
