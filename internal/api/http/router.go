package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"driveeasy-rental-backend/internal/storage"
)

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// NewRouter builds the side HTTP server: health, metrics and, when files is
// set, local image storage.
func NewRouter(checks map[string]HealthCheck, files FileRoutes) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/healthz", healthHandler(checks)).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	if files.Files != nil {
		RegisterImageRoutes(router, files.Files, files.MaxBytes)
	}
	return router
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		result := map[string]string{}
		code := http.StatusOK
		for name, check := range checks {
			if err := check(ctx); err != nil {
				result[name] = err.Error()
				code = http.StatusServiceUnavailable
				continue
			}
			result[name] = "ok"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": http.StatusText(code),
			"checks": result,
		})
	}
}

// FileRoutes enables the local upload and download endpoints.
type FileRoutes struct {
	Files    storage.FileServer
	MaxBytes int64
}
