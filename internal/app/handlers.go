package app

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
	"netcover.onebusaway.org/internal/analysis"
	"netcover.onebusaway.org/internal/geo"
	"netcover.onebusaway.org/internal/models"
	"netcover.onebusaway.org/internal/network"
)

// HealthStatus defines the structure of the JSON response returned by the
// application's health check endpoint (/v1/healthcheck).
//
// Fields:
//   - Status: A high-level indicator of service availability (e.g., "available").
//   - Environment: The environment the app runs in (e.g., "development", "production").
//   - Version: The application version string, useful for deployment tracking.
//   - Networks: The number of configured transit networks.
//   - Analyzed: The number of networks with an analysis report.
//   - Ready: true once at least one network has been analyzed.
type HealthStatus struct {
	Status      string `json:"status"`
	Environment string `json:"environment"`
	Version     string `json:"version"`
	Networks    int    `json:"networks"`
	Analyzed    int    `json:"analyzed"`
	Ready       bool   `json:"ready"`
}

// NetworkSummary is one entry of the /v1/networks listing. The bounding
// box is omitted until the network has been loaded, the coverage fields
// until it has been analyzed.
type NetworkSummary struct {
	ID               int              `json:"id"`
	Name             string           `json:"name"`
	BoundingBox      *geo.BoundingBox `json:"bounding_box,omitempty"`
	Analyzed         bool             `json:"analyzed"`
	GeneratedAt      *time.Time       `json:"generated_at,omitempty"`
	CoverageStops    *float64         `json:"coverage_stops,omitempty"`
	CoverageDistance *float64         `json:"coverage_distance,omitempty"`
	Bridges          *int             `json:"bridges,omitempty"`
}

// BridgesResponse is the bridge subgraph of a network: the critical
// connections and the stops they join.
type BridgesResponse struct {
	NetworkID int            `json:"network_id"`
	Bridges   []network.Edge `json:"bridges"`
	Stops     []models.Stop  `json:"stops"`
}

var errInvalidNetworkID = errors.New("invalid network id")

// healthcheckHandler responds with a JSON representation of the
// application's health status. It responds with HTTP 500 Internal Server
// Error until the first analysis report is available.
func (app *Application) healthcheckHandler(w http.ResponseWriter, r *http.Request) {
	numNetworks := len(app.ConfigService.Config.GetNetworks())
	analyzed := len(app.AnalysisService.Store.All())
	ready := analyzed > 0

	status := HealthStatus{
		Status:      "available",
		Environment: app.ConfigService.Config.Env,
		Version:     app.Version,
		Networks:    numNetworks,
		Analyzed:    analyzed,
		Ready:       ready,
	}

	code := http.StatusOK
	if !ready {
		code = http.StatusInternalServerError
	}
	app.writeJSON(w, code, status)
}

func (app *Application) listNetworksHandler(w http.ResponseWriter, r *http.Request) {
	networks := app.ConfigService.Config.GetNetworks()
	out := make([]NetworkSummary, 0, len(networks))

	for _, n := range networks {
		summary := NetworkSummary{ID: n.ID, Name: n.Name}
		if bbox, ok := app.GtfsService.BoundingBoxStore.Get(n.ID); ok {
			summary.BoundingBox = &bbox
		}
		if rep, ok := app.AnalysisService.Store.Get(n.ID); ok {
			bridges := len(rep.Bridges)
			summary.Analyzed = true
			summary.GeneratedAt = &rep.GeneratedAt
			summary.CoverageStops = &rep.Coverage.CoverageStops
			summary.CoverageDistance = &rep.Coverage.CoverageDistance
			summary.Bridges = &bridges
		}
		out = append(out, summary)
	}
	app.writeJSON(w, http.StatusOK, map[string]any{"networks": out})
}

func (app *Application) analysisHandler(w http.ResponseWriter, r *http.Request) {
	rep, ok := app.reportFromRequest(w, r)
	if !ok {
		return
	}
	app.writeJSON(w, http.StatusOK, rep)
}

func (app *Application) bridgesHandler(w http.ResponseWriter, r *http.Request) {
	rep, ok := app.reportFromRequest(w, r)
	if !ok {
		return
	}
	app.writeJSON(w, http.StatusOK, BridgesResponse{
		NetworkID: rep.NetworkID,
		Bridges:   rep.Bridges,
		Stops:     rep.BridgeStops,
	})
}

// reportFromRequest looks up the report of the network named by the :id
// route parameter. On failure it writes the error response and returns false.
func (app *Application) reportFromRequest(w http.ResponseWriter, r *http.Request) (*analysis.Report, bool) {
	id, err := networkIDParam(r)
	if err != nil {
		app.errorResponse(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	rep, ok := app.AnalysisService.Store.Get(id)
	if !ok {
		app.errorResponse(w, http.StatusNotFound, "no analysis for network "+strconv.Itoa(id))
		return nil, false
	}
	return rep, true
}

func networkIDParam(r *http.Request) (int, error) {
	params := httprouter.ParamsFromContext(r.Context())
	id, err := strconv.Atoi(params.ByName("id"))
	if err != nil {
		return 0, errInvalidNetworkID
	}
	return id, nil
}

func (app *Application) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		app.Logger.Error("Failed to encode JSON response", "error", err)
	}
}

func (app *Application) errorResponse(w http.ResponseWriter, status int, message string) {
	app.writeJSON(w, status, map[string]string{"error": message})
}

func (app *Application) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, http.StatusNotFound, "the requested resource could not be found")
}

func (app *Application) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, http.StatusMethodNotAllowed, "the "+r.Method+" method is not supported for this resource")
}
