package app

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"netcover.onebusaway.org/internal/middleware"
)

// metricsCacheTTL is how long a rendered /metrics payload is reused.
const metricsCacheTTL = 10 * time.Second

// Routes sets up the HTTP routing configuration for the application and
// returns the final http.Handler.
//
// Registered Routes:
//   - GET /v1/healthcheck: health and readiness of the analyzer.
//   - GET /metrics: Prometheus exposition, served from a cache refreshed
//     every metricsCacheTTL until ctx is canceled.
//   - GET /v1/networks: configured networks and their latest coverage.
//   - GET /v1/networks/:id/analysis: the full analysis report of a network.
//   - GET /v1/networks/:id/bridges: the bridge subgraph of a network.
//
// The router is wrapped with request logging, Sentry and security header
// middlewares.
func (app *Application) Routes(ctx context.Context) http.Handler {
	router := httprouter.New()

	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", app.healthcheckHandler)
	router.Handler(http.MethodGet, "/metrics", middleware.NewCachedPromHandler(ctx, prometheus.DefaultGatherer, metricsCacheTTL, app.Logger))
	router.HandlerFunc(http.MethodGet, "/v1/networks", app.listNetworksHandler)
	router.HandlerFunc(http.MethodGet, "/v1/networks/:id/analysis", app.analysisHandler)
	router.HandlerFunc(http.MethodGet, "/v1/networks/:id/bridges", app.bridgesHandler)

	router.NotFound = http.HandlerFunc(app.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedResponse)

	handler := middleware.RequestLogger(app.Logger)(router)
	handler = middleware.SentryMiddleware(handler)
	return middleware.SecurityHeaders(handler)
}
