// Package api implements the typedensity study service HTTP API.
// Every request is canonicalized against one process-lifetime variant
// cache, so types seen by earlier requests are shared by later ones.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/typedensity/typedensity/internal/reportdb"
	"github.com/typedensity/typedensity/internal/storage"
	"github.com/typedensity/typedensity/pkg/dedup"
)

// Handler is the top-level API handler for the study service.
type Handler struct {
	variants    *dedup.VariantCache
	reports     *ReportCache
	db          *reportdb.Store // optional
	blobs       storage.Client  // optional
	parallelism int
}

// Options configures a Handler. Zero values disable the optional backends.
type Options struct {
	DB          *reportdb.Store
	Blobs       storage.Client
	Reports     *ReportCache
	Parallelism int
}

// NewHandler creates a new API handler around the shared variant cache.
func NewHandler(variants *dedup.VariantCache, opts Options) *Handler {
	reports := opts.Reports
	if reports == nil {
		reports = NewReportCacheFromEnv()
	}
	return &Handler{
		variants:    variants,
		reports:     reports,
		db:          opts.DB,
		blobs:       opts.Blobs,
		parallelism: opts.Parallelism,
	}
}

// RegisterRoutes registers all API routes on the given ServeMux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/study", h.handleStudy)
	mux.HandleFunc("GET /v1/runs", h.handleListRuns)
	mux.HandleFunc("GET /v1/runs/{runID}", h.handleGetRun)
	mux.HandleFunc("GET /v1/cache", h.handleCacheStats)
	mux.HandleFunc("GET /healthz", h.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
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
