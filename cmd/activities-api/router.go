package main

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"mergington-activities/internal/api/activities"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// readinessChecks maps a backend name to its ping.
type readinessChecks map[string]func(ctx context.Context) error

const readyTimeout = 2 * time.Second

func newRouter(handler *activities.Handler, checks readinessChecks) http.Handler {
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]interface{}{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("GET /ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		failed := checks.run(ctx)
		if len(failed) > 0 {
			writeStatus(w, http.StatusServiceUnavailable, map[string]interface{}{
				"status": "not ready",
				"failed": failed,
				"time":   time.Now().Format(time.RFC3339),
			})
			return
		}
		writeStatus(w, http.StatusOK, map[string]interface{}{
			"status": "ready",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	return handler.Instrument(mux)
}

// run returns the sorted names of failing backends.
func (c readinessChecks) run(ctx context.Context) []string {
	failed := []string{}
	for name, ping := range c {
		if err := ping(ctx); err != nil {
			failed = append(failed, name)
		}
	}
	sort.Strings(failed)
	return failed
}

func writeStatus(w http.ResponseWriter, status int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
