package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/NVIDIA/instance-registry/pkg/serializer"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupRoutes configures all HTTP routes and middleware
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	// Default handler
	mux.HandleFunc("/", s.handleDefault)

	// System endpoints (no rate limiting)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)
	mux.Handle("/metrics", promhttp.Handler())

	// API endpoints with middleware
	mux.HandleFunc("GET /v1/instances", s.withMiddleware(s.handleListInstances))
	mux.HandleFunc("POST /v1/instances", s.withMiddleware(s.handleCreateInstance))
	mux.HandleFunc("GET /v1/instances/{id}", s.withMiddleware(s.handleGetInstance))
	mux.HandleFunc("DELETE /v1/instances/{id}", s.withMiddleware(s.handleReleaseInstance))
	mux.HandleFunc("POST /v1/instances/{id}/invoke", s.withMiddleware(s.handleInvoke))
	mux.HandleFunc("GET /v1/diagnostics", s.withMiddleware(s.handleDiagnostics))

	return mux
}

func (s *Server) handleDefault(w http.ResponseWriter, r *http.Request) {
	slog.Debug("handling default route",
		"path", r.URL.Path,
		"method", r.Method,
		"remote_addr", r.RemoteAddr,
		"user_agent", r.UserAgent(),
	)

	resp := struct {
		Name      string   `json:"name"`
		Version   string   `json:"version"`
		Ready     bool     `json:"ready"`
		Timestamp string   `json:"timestamp"`
		Routes    []string `json:"routes"`
	}{
		Name:      s.config.Name,
		Version:   s.config.Version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Routes: []string{
			"GET /v1/instances",
			"POST /v1/instances",
			"GET /v1/instances/{id}",
			"DELETE /v1/instances/{id}",
			"POST /v1/instances/{id}/invoke",
			"GET /v1/diagnostics",
			"GET /health",
			"GET /ready",
			"GET /metrics",
		},
	}

	s.mu.RLock()
	resp.Ready = s.ready
	s.mu.RUnlock()

	serializer.RespondJSON(w, http.StatusOK, resp)
}
