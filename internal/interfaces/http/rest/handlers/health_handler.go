package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"nodemapper-backend/pkg/api"

	"go.uber.org/zap"
)

// ReadinessCheck reports whether a dependency is able to serve traffic.
type ReadinessCheck func(ctx context.Context) error

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	version string
	checks  map[string]ReadinessCheck
	timeout time.Duration
	logger  *zap.Logger
}

// NewHealthHandler creates a health handler. checks may be nil.
func NewHealthHandler(version string, checks map[string]ReadinessCheck, logger *zap.Logger) *HealthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthHandler{
		version: version,
		checks:  checks,
		timeout: 2 * time.Second,
		logger:  logger,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, api.HealthResponse{
		Status:  "healthy",
		Version: h.version,
	})
}

// Ready handles GET /ready. Any failing check makes the service unready.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := api.HealthResponse{
		Status:  "ready",
		Version: h.version,
		Checks:  make(map[string]string, len(names)),
	}
	status := http.StatusOK

	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			h.logger.Warn("Readiness check failed", zap.String("check", name), zap.Error(err))
			resp.Checks[name] = err.Error()
			resp.Status = "not ready"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}

	api.Success(w, status, resp)
}
