package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"netcover.onebusaway.org/internal/analysis"
	"netcover.onebusaway.org/internal/app"
	"netcover.onebusaway.org/internal/config"
	"netcover.onebusaway.org/internal/report"
	"netcover.onebusaway.org/internal/utils"
)

// Declare a string containing the application version number.
const version = "1.0.0"

func main() {
	var cfg config.Config

	flag.IntVar(&cfg.Port, "port", 4000, "API server port")
	flag.StringVar(&cfg.Env, "env", "development", "Environment (development|staging|production)")
	flag.StringVar(&cfg.LogLevel, "log-level", "info", "Log level (debug|info|warn|error)")
	flag.StringVar(&cfg.LogFormat, "log-format", "text", "Log format (text|json)")
	flag.IntVar(&cfg.RefreshInterval, "refresh-interval", 0, "Minutes between re-analysis of every network, 0 disables it")
	flag.IntVar(&cfg.MaxRetries, "max-retries", 3, "Retries for GTFS bundle and remote config downloads")
	flag.StringVar(&cfg.CacheDir, "cache-dir", "cache", "Directory for downloaded GTFS bundles")

	var (
		configFile  = flag.String("config-file", "", "Path to a local JSON configuration file")
		configURL   = flag.String("config-url", "", "URL to a remote JSON configuration file")
		parallelism = flag.Int("parallelism", runtime.GOMAXPROCS(0), "Coverage trials run at once per network")
	)

	flag.Parse()

	configAuthUser := os.Getenv("CONFIG_AUTH_USER")
	configAuthPass := os.Getenv("CONFIG_AUTH_PASS")

	if err := config.ValidateConfigFlags(configFile, configURL); err != nil {
		fmt.Println("Error:", err)
		flag.Usage()
		os.Exit(1)
	}

	logger := newLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	if err := report.SetupSentry(cfg.Env, version); err != nil {
		logger.Warn("Sentry is not configured", "error", err)
	}
	defer report.FlushSentry()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := app.NewPooledClient()

	var err error
	if *configFile != "" {
		cfg.Networks, err = config.LoadConfigFromFile(*configFile)
	} else {
		cfg.Networks, err = config.LoadConfigFromURL(ctx, client, *configURL, configAuthUser, configAuthPass, cfg.MaxRetries)
	}
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		report.FlushSentry()
		os.Exit(1)
	}
	if len(cfg.Networks) == 0 {
		logger.Error("No networks found in configuration")
		os.Exit(1)
	}

	if err := utils.CreateCacheDirectory(cfg.CacheDir, logger); err != nil {
		logger.Error("Failed to create cache directory", "error", err)
		report.FlushSentry()
		os.Exit(1)
	}

	application := app.New(&cfg, logger, client, version, analysis.Options{Parallelism: *parallelism})

	var remote *app.RemoteConfig
	if *configURL != "" {
		remote = &app.RemoteConfig{URL: *configURL, AuthUser: configAuthUser, AuthPass: configAuthPass}
	}
	go application.Start(ctx, remote)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      application.Routes(ctx),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	if err := serve(ctx, srv, logger); err != nil {
		report.ReportError(err, sentry.LevelFatal)
		report.FlushSentry()
		logger.Error(err.Error())
		os.Exit(1)
	}
}

// serve runs srv until ctx is canceled, then shuts it down gracefully.
func serve(ctx context.Context, srv *http.Server, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// newLogger builds the application logger. level is one of debug, info,
// warn or error (default info); format is text or json (default text).
func newLogger(w io.Writer, level, format string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if strings.ToLower(format) == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
