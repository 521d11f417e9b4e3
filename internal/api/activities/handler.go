package activities

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"mergington-activities/internal/common/errors"
	"mergington-activities/internal/common/logger"
	"mergington-activities/internal/common/metrics"

	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

type HandlerOptions struct {
	Config  *Config
	Service *Service
	Logger  logger.Logger
}

type Handler struct {
	config       *Config
	service      *Service
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	if opts.Service == nil {
		return nil, fmt.Errorf("service is required")
	}
	if opts.Config == nil {
		opts.Config = DefaultConfig()
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNoOpLogger()
	}

	return &Handler{
		config:       opts.Config,
		service:      opts.Service,
		logger:       opts.Logger,
		errorHandler: errors.NewErrorHandler(opts.Logger),
	}, nil
}

// RegisterRoutes adds the activity API and static site routes to mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.handleRoot)
	mux.HandleFunc("GET /activities", h.handleList)
	mux.HandleFunc("POST /activities/{activityName}/signup", h.handleSignup)
	mux.HandleFunc("DELETE /activities/{activityName}/unregister", h.handleUnregister)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(h.config.StaticDir))))
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.config.LandingPath, http.StatusTemporaryRedirect)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.ListActivities(r.Context()))
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	email, err := parseEmail(r.URL.Query())
	if err != nil {
		h.errorHandler.HandleHTTPError(w, r, err)
		return
	}

	resp, err := h.service.Signup(r.Context(), r.PathValue("activityName"), email)
	if err != nil {
		h.errorHandler.HandleHTTPError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleUnregister(w http.ResponseWriter, r *http.Request) {
	email, err := parseEmail(r.URL.Query())
	if err != nil {
		h.errorHandler.HandleHTTPError(w, r, err)
		return
	}

	resp, err := h.service.Unregister(r.Context(), r.PathValue("activityName"), email)
	if err != nil {
		h.errorHandler.HandleHTTPError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Instrument wraps next (normally the mux) with request IDs, the request
// timeout, access logging and HTTP metrics.
func (h *Handler) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		if h.config.RequestTimeout > 0 {
			ctx, cancel := context.WithTimeout(r.Context(), h.config.RequestTimeout)
			defer cancel()
			r = r.WithContext(ctx)
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		duration := time.Since(start)
		metrics.HTTPRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(duration.Seconds())

		h.logger.Info("HTTP request", map[string]interface{}{
			"requestId":  requestID,
			"method":     r.Method,
			"path":       r.URL.Path,
			"route":      route,
			"status":     rec.status,
			"durationMs": duration.Milliseconds(),
		})
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
