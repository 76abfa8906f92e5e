package handlers

import (
	"context"
	"net/http"

	"nodemapper-backend/internal/domain/analytics"
	"nodemapper-backend/pkg/api"
	"nodemapper-backend/pkg/errors"

	"go.uber.org/zap"
)

// AnalyticsService runs analyses on behalf of the analytics endpoint.
type AnalyticsService interface {
	Analyze(ctx context.Context, req api.AnalyticsRequest) (*analytics.Result, error)
}

// AnalyticsHandler handles POST /analytics
type AnalyticsHandler struct {
	service      AnalyticsService
	logger       *zap.Logger
	errorHandler *errors.ErrorHandler
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(service AnalyticsService, logger *zap.Logger, errorHandler *errors.ErrorHandler) *AnalyticsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsHandler{
		service:      service,
		logger:       logger,
		errorHandler: errorHandler,
	}
}

// Analyze handles POST /analytics. Unreachable or unknown endpoints are part
// of a 200 response; only malformed or oversized requests fail.
func (h *AnalyticsHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req api.AnalyticsRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	result, err := h.service.Analyze(r.Context(), req)
	if err != nil {
		h.errorHandler.Handle(w, r, mapContextError(err))
		return
	}

	api.Success(w, http.StatusOK, result)
}
