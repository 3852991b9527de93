// Package api implements the Choquet DEA REST API.
// It provides compute and read endpoints backed by the results service.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"golang.org/x/sync/singleflight"

	"github.com/lucasprac/dea-choquet/internal/results"
	"github.com/lucasprac/dea-choquet/pkg/engine"
	"github.com/lucasprac/dea-choquet/pkg/framework"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 8 << 20

// Handler is the top-level API handler.
type Handler struct {
	results *results.Service
	cache   *ResultsCache
	metrics *Metrics
	logger  *slog.Logger

	// collapses identical in-flight compute requests
	inflight singleflight.Group
}

// NewHandler creates a new API handler.
func NewHandler(svc *results.Service, cache *ResultsCache, metrics *Metrics, logger *slog.Logger) *Handler {
	if cache == nil {
		cache = NewResultsCacheFromEnv()
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		results: svc,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
	}
}

// RegisterRoutes registers all API routes on the given ServeMux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Write endpoints (auth-protected)
	mux.Handle("POST /api/v1/cycles/{cycleID}/compute", h.metrics.Instrument("compute", http.HandlerFunc(h.handleCompute)))
	mux.Handle("POST /api/v1/validate", h.metrics.Instrument("validate", http.HandlerFunc(h.handleValidate)))

	// Read endpoints
	mux.Handle("GET /api/v1/cycles/{cycleID}/results", h.metrics.Instrument("results", http.HandlerFunc(h.handleGetResults)))
	mux.Handle("GET /api/v1/cycles/{cycleID}/runs", h.metrics.Instrument("runs", http.HandlerFunc(h.handleListRuns)))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", h.metrics.Handler())
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeBadID rejects a malformed path or query identifier with 400.
func writeBadID(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": err.Error(),
		"kind":  string(framework.KindOf(err)),
	})
}

// writeFailure maps service and engine errors onto HTTP statuses.
func writeFailure(w http.ResponseWriter, err error) {
	var ve *framework.ValidationError
	var iv *engine.InvariantViolation
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error": ve.Error(),
			"kind":  string(ve.Kind),
		})
	case errors.As(err, &iv):
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": iv.Error(),
			"kind":  string(iv.Kind),
		})
	case errors.Is(err, results.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, results.ErrNoIndex):
		writeError(w, http.StatusNotImplemented, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
