package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/oli3535/data-visualization-fianl/internal/dataset"
	"github.com/oli3535/data-visualization-fianl/internal/services"
	"github.com/oli3535/data-visualization-fianl/pkg/logging"
	"github.com/oli3535/data-visualization-fianl/pkg/metrics"
)

// DashboardHandler handles the dashboard API endpoints. Each endpoint serves
// one finished aggregate; chart drawing is the consumer's concern.
type DashboardHandler struct {
	dashboard *services.DashboardService
	logger    *logging.StructuredLogger
	metrics   *metrics.Collector
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(
	dashboard *services.DashboardService,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *DashboardHandler {
	return &DashboardHandler{
		dashboard: dashboard,
		logger:    logger,
		metrics:   metricsCollector,
	}
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// GetSummary handles GET /api/dashboard/summary
func (h *DashboardHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	h.serveAggregate(w, r, "/api/dashboard/summary", func() (interface{}, error) {
		return h.dashboard.Summary(r.Context())
	})
}

// GetTopAreas handles GET /api/dashboard/areas
func (h *DashboardHandler) GetTopAreas(w http.ResponseWriter, r *http.Request) {
	h.serveAggregate(w, r, "/api/dashboard/areas", func() (interface{}, error) {
		return h.dashboard.TopAreas(r.Context())
	})
}

// GetTopCrimeTypes handles GET /api/dashboard/crime-types
func (h *DashboardHandler) GetTopCrimeTypes(w http.ResponseWriter, r *http.Request) {
	h.serveAggregate(w, r, "/api/dashboard/crime-types", func() (interface{}, error) {
		return h.dashboard.TopCrimeTypes(r.Context())
	})
}

// GetStatusDistribution handles GET /api/dashboard/status
func (h *DashboardHandler) GetStatusDistribution(w http.ResponseWriter, r *http.Request) {
	h.serveAggregate(w, r, "/api/dashboard/status", func() (interface{}, error) {
		return h.dashboard.StatusDistribution(r.Context())
	})
}

// GetTopWeapons handles GET /api/dashboard/weapons
func (h *DashboardHandler) GetTopWeapons(w http.ResponseWriter, r *http.Request) {
	h.serveAggregate(w, r, "/api/dashboard/weapons", func() (interface{}, error) {
		return h.dashboard.TopWeapons(r.Context())
	})
}

// GetGeoSample handles GET /api/dashboard/geo
func (h *DashboardHandler) GetGeoSample(w http.ResponseWriter, r *http.Request) {
	h.serveAggregate(w, r, "/api/dashboard/geo", func() (interface{}, error) {
		return h.dashboard.GeoSample(r.Context())
	})
}

// GetCrimeTypesByArea handles GET /api/dashboard/crosstab
func (h *DashboardHandler) GetCrimeTypesByArea(w http.ResponseWriter, r *http.Request) {
	h.serveAggregate(w, r, "/api/dashboard/crosstab", func() (interface{}, error) {
		return h.dashboard.CrimeTypesByArea(r.Context())
	})
}

// GetVictimAgeHistogram handles GET /api/dashboard/victim-age
func (h *DashboardHandler) GetVictimAgeHistogram(w http.ResponseWriter, r *http.Request) {
	h.serveAggregate(w, r, "/api/dashboard/victim-age", func() (interface{}, error) {
		return h.dashboard.VictimAgeHistogram(r.Context())
	})
}

// GetVictimSexDistribution handles GET /api/dashboard/victim-sex
func (h *DashboardHandler) GetVictimSexDistribution(w http.ResponseWriter, r *http.Request) {
	h.serveAggregate(w, r, "/api/dashboard/victim-sex", func() (interface{}, error) {
		return h.dashboard.VictimSexDistribution(r.Context())
	})
}

// GetTrends handles GET /api/dashboard/trends
func (h *DashboardHandler) GetTrends(w http.ResponseWriter, r *http.Request) {
	h.serveAggregate(w, r, "/api/dashboard/trends", func() (interface{}, error) {
		return h.dashboard.Trends(r.Context())
	})
}

// HealthCheck handles GET /health
func (h *DashboardHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	h.logger.Debug(ctx, "[HEALTH_CHECK] Health check requested", logging.Fields{})
	h.sendJSON(w, status, http.StatusOK)
}

// serveAggregate runs one aggregate computation and writes the result. A
// DataSourceError surfaces as 503: the dataset could not be loaded and no
// partial report exists; there is no retry.
func (h *DashboardHandler) serveAggregate(w http.ResponseWriter, r *http.Request, endpoint string, compute func() (interface{}, error)) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		duration := time.Since(startTime)
		h.metrics.APIRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
	}()

	data, err := compute()
	if err != nil {
		var srcErr *dataset.DataSourceError
		if errors.As(err, &srcErr) {
			h.logger.Error(ctx, "[API_LOAD_ERROR] Dataset unavailable", logging.Fields{
				"endpoint": endpoint,
				"path":     srcErr.Path,
			}, err)
			h.metrics.RecordAPIError("data_source_error", endpoint)
			h.sendError(w, r, srcErr.Error(), http.StatusServiceUnavailable)
			return
		}

		h.logger.Error(ctx, "[API_AGGREGATE_ERROR] Failed to compute aggregate", logging.Fields{
			"endpoint": endpoint,
		}, err)
		h.metrics.RecordAPIError("internal_error", endpoint)
		h.sendError(w, r, "failed to compute aggregate", http.StatusInternalServerError)
		return
	}

	h.metrics.RecordAPIRequest(endpoint, "GET", "200")
	h.sendJSON(w, data, http.StatusOK)
}

// sendJSON sends a JSON response
func (h *DashboardHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// sendError sends an error response
func (h *DashboardHandler) sendError(w http.ResponseWriter, r *http.Request, message string, statusCode int) {
	h.metrics.RecordAPIRequest(r.URL.Path, r.Method, strconv.Itoa(statusCode))

	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	h.sendJSON(w, response, statusCode)
}

// RegisterRoutes registers all dashboard API routes
func (h *DashboardHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/dashboard/summary", h.GetSummary).Methods("GET")
	router.HandleFunc("/api/dashboard/areas", h.GetTopAreas).Methods("GET")
	router.HandleFunc("/api/dashboard/crime-types", h.GetTopCrimeTypes).Methods("GET")
	router.HandleFunc("/api/dashboard/status", h.GetStatusDistribution).Methods("GET")
	router.HandleFunc("/api/dashboard/weapons", h.GetTopWeapons).Methods("GET")
	router.HandleFunc("/api/dashboard/geo", h.GetGeoSample).Methods("GET")
	router.HandleFunc("/api/dashboard/crosstab", h.GetCrimeTypesByArea).Methods("GET")
	router.HandleFunc("/api/dashboard/victim-age", h.GetVictimAgeHistogram).Methods("GET")
	router.HandleFunc("/api/dashboard/victim-sex", h.GetVictimSexDistribution).Methods("GET")
	router.HandleFunc("/api/dashboard/trends", h.GetTrends).Methods("GET")
	router.HandleFunc("/api/docs/openapi.json", OpenAPISpec).Methods("GET")
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
}
