package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"netcover.onebusaway.org/internal/config"
	"netcover.onebusaway.org/internal/models"
	"netcover.onebusaway.org/internal/report"
)

// retryInterval is how often failed networks are checked against their
// backoff between full refreshes.
const retryInterval = 15 * time.Second

// NetworkLoader provides the records of a configured network.
// LastLoaded returns the records of the latest successful load.
type NetworkLoader interface {
	LoadNetwork(ctx context.Context, network models.Network) (*models.NetworkData, error)
	LastLoaded(networkID int) (*models.NetworkData, bool)
}

// AnalysisService loads and analyzes networks, keeps the latest report of
// each one and retries failed networks with exponential backoff.
type AnalysisService struct {
	Loader  NetworkLoader
	Store   *AnalysisStore
	Backoff *config.BackoffStore
	Logger  *slog.Logger
	Options Options

	// OnReport is called after every successful analysis.
	OnReport func(models.Network, *Report)
	// OnFailure is called when a network cannot be loaded or analyzed.
	OnFailure func(models.Network, error)
	// OnRemove is called with the IDs of networks whose reports were
	// dropped because they left the configuration.
	OnRemove func(networkIDs []int)
}

func NewAnalysisService(loader NetworkLoader, store *AnalysisStore, backoff *config.BackoffStore, logger *slog.Logger, opts Options) *AnalysisService {
	return &AnalysisService{
		Loader:  loader,
		Store:   store,
		Backoff: backoff,
		Logger:  logger,
		Options: opts,
	}
}

// AnalyzeNetwork loads and analyzes one network and stores the report.
//
// When loading fails but the network was loaded before, the last loaded
// records are analyzed instead: the report carries a warning and the
// network stays backed off so the load is retried. Without earlier records,
// or when the analysis itself fails, the previous report is kept and the
// network is backed off.
func (s *AnalysisService) AnalyzeNetwork(ctx context.Context, n models.Network) (*Report, error) {
	data, loadErr := s.Loader.LoadNetwork(ctx, n)
	if loadErr != nil {
		if ctx.Err() != nil {
			return nil, loadErr
		}
		last, ok := s.Loader.LastLoaded(n.ID)
		if !ok {
			s.fail(ctx, n, loadErr)
			return nil, loadErr
		}
		s.Logger.Warn("Analyzing last loaded records", "network_id", n.ID, "error", loadErr)
		data = last
	}

	rep, err := Analyze(ctx, n, data, s.Options, s.Logger)
	if err != nil {
		if ctx.Err() == nil {
			s.fail(ctx, n, err)
			report.ReportNetworkError(err, n.ID, n.Name, sentry.LevelError, map[string]interface{}{
				"stops":       len(data.Stops),
				"connections": len(data.Connections),
			})
			s.Logger.Error("Failed to analyze network", "network_id", n.ID, "error", err)
		}
		return nil, err
	}

	if loadErr != nil {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("analyzed the last loaded records: %v", loadErr))
	}
	if len(rep.Warnings) > 0 {
		report.ReportNetworkError(errors.New(rep.Warnings[0]), n.ID, n.Name, sentry.LevelWarning, map[string]interface{}{
			"warnings": rep.Warnings,
		})
	}

	if loadErr != nil {
		s.Backoff.UpdateBackoff(n.ID)
	} else {
		s.Backoff.ResetBackoff(n.ID)
	}
	s.Store.Set(n.ID, rep)
	if s.OnReport != nil {
		s.OnReport(n, rep)
	}
	return rep, nil
}

func (s *AnalysisService) fail(ctx context.Context, n models.Network, err error) {
	if ctx.Err() != nil {
		return
	}
	s.Backoff.UpdateBackoff(n.ID)
	if s.OnFailure != nil {
		s.OnFailure(n, err)
	}
}

// AnalyzeAll analyzes the given networks concurrently, skipping networks
// whose backoff has not elapsed, and drops reports of networks that are no
// longer listed. It returns the number of networks analyzed successfully.
func (s *AnalysisService) AnalyzeAll(ctx context.Context, networks []models.Network) int {
	s.retain(networks)
	return s.analyzeNetworks(ctx, networks)
}

// ApplyConfig brings the reports in line with a new configuration: reports
// of removed networks are dropped and only networks that are new or whose
// settings changed are analyzed. It returns the number of networks analyzed
// successfully.
func (s *AnalysisService) ApplyConfig(ctx context.Context, previous, current []models.Network) int {
	old := make(map[int]models.Network, len(previous))
	for _, n := range previous {
		old[n.ID] = n
	}
	s.retain(current)

	var changed []models.Network
	for _, n := range current {
		if prev, ok := old[n.ID]; !ok || prev != n {
			changed = append(changed, n)
		}
	}
	if len(changed) == 0 {
		return 0
	}
	s.Logger.Info("Analyzing changed networks", "count", len(changed))
	return s.analyzeNetworks(ctx, changed)
}

func (s *AnalysisService) retain(networks []models.Network) {
	ids := make(map[int]bool, len(networks))
	for _, n := range networks {
		ids[n.ID] = true
	}
	if dropped := s.Store.Retain(ids); len(dropped) > 0 {
		s.Logger.Info("Dropped analyses of removed networks", "network_ids", dropped)
		if s.OnRemove != nil {
			s.OnRemove(dropped)
		}
	}
}

func (s *AnalysisService) analyzeNetworks(ctx context.Context, networks []models.Network) int {
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for _, n := range networks {
		if !s.Backoff.ShouldRetry(n.ID) {
			next, _ := s.Backoff.NextRetryAt(n.ID)
			s.Logger.Debug("Skipping network in backoff", "network_id", n.ID, "next_retry_at", next)
			continue
		}
		wg.Add(1)
		go func(n models.Network) {
			defer wg.Done()
			if _, err := s.AnalyzeNetwork(ctx, n); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}(n)
	}
	wg.Wait()
	return succeeded
}

// retryFailed re-analyzes networks that failed earlier and whose backoff
// has elapsed.
func (s *AnalysisService) retryFailed(ctx context.Context, networks []models.Network) {
	var pending []models.Network
	for _, n := range networks {
		if _, failed := s.Backoff.NextRetryAt(n.ID); failed && s.Backoff.ShouldRetry(n.ID) {
			pending = append(pending, n)
		}
	}
	if len(pending) == 0 {
		return
	}
	s.Logger.Info("Retrying failed networks", "count", len(pending))
	s.analyzeNetworks(ctx, pending)
}

// RefreshAnalyses re-analyzes every configured network each interval and
// retries failed networks in between once their backoff elapses. networks
// is called on every tick so configuration changes are picked up.
//
// The routine stops when the context is canceled.
func (s *AnalysisService) RefreshAnalyses(ctx context.Context, networks func() []models.Network, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	retry := time.NewTicker(min(retryInterval, interval))
	defer retry.Stop()

	for {
		select {
		case <-ctx.Done():
			s.Logger.Info("Stopping analysis refresh routine")
			return
		case <-ticker.C:
			s.Logger.Info("Refreshing network analyses")
			s.AnalyzeAll(ctx, networks())
		case <-retry.C:
			s.retryFailed(ctx, networks())
		}
	}
}
