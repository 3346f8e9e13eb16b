package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// Status reports node state for the health endpoints.
type Status interface {
	// NodeID returns the id assigned at handshake, or "" before it.
	NodeID() string
}

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Metrics serves GET /metrics.
	Metrics http.Handler

	// Status backs GET /healthz and GET /readyz.
	Status Status

	// Workload is reported by the health endpoints.
	Workload string

	// Logger for request logging.
	Logger *slog.Logger
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(cfg *RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, healthResponse{
			Status:   "healthy",
			Workload: cfg.Workload,
			NodeID:   nodeID(cfg.Status),
			Time:     time.Now().UTC().Format(time.RFC3339),
		})
	})

	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		id := nodeID(cfg.Status)
		resp := healthResponse{
			Status:   "ready",
			Workload: cfg.Workload,
			NodeID:   id,
			Time:     time.Now().UTC().Format(time.RFC3339),
		}
		code := http.StatusOK
		if id == "" {
			resp.Status = "initializing"
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, resp)
	})

	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics)
	}

	// Order: Recover -> RequestID -> AccessLog -> mux
	return Chain(mux, Recover(logger), RequestID(), AccessLog(logger))
}

type healthResponse struct {
	Status   string `json:"status"`
	Workload string `json:"workload,omitempty"`
	NodeID   string `json:"node_id,omitempty"`
	Time     string `json:"time"`
}

func nodeID(s Status) string {
	if s == nil {
		return ""
	}
	return s.NodeID()
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
