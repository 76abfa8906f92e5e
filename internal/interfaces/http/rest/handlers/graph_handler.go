package handlers

import (
	"context"
	"net/http"

	"nodemapper-backend/internal/domain/graph"
	"nodemapper-backend/pkg/api"
	"nodemapper-backend/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// GraphService is the part of the application layer the graph endpoints use.
type GraphService interface {
	CreateNode(ctx context.Context, req api.CreateNodeRequest) (graph.Node, error)
	CreateEdge(ctx context.Context, req api.CreateEdgeRequest) error
	GetNode(ctx context.Context, id string) (graph.Node, error)
	Graph(ctx context.Context) (graph.Snapshot, error)
}

// GraphHandler handles node, edge and graph requests
type GraphHandler struct {
	service      GraphService
	logger       *zap.Logger
	errorHandler *errors.ErrorHandler
}

// NewGraphHandler creates a new graph handler
func NewGraphHandler(service GraphService, logger *zap.Logger, errorHandler *errors.ErrorHandler) *GraphHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GraphHandler{
		service:      service,
		logger:       logger,
		errorHandler: errorHandler,
	}
}

// CreateNode handles POST /nodes
func (h *GraphHandler) CreateNode(w http.ResponseWriter, r *http.Request) {
	var req api.CreateNodeRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	node, err := h.service.CreateNode(r.Context(), req)
	if err != nil {
		h.errorHandler.Handle(w, r, mapContextError(err))
		return
	}

	api.Success(w, http.StatusOK, node)
}

// CreateEdge handles POST /edges
func (h *GraphHandler) CreateEdge(w http.ResponseWriter, r *http.Request) {
	var req api.CreateEdgeRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := h.service.CreateEdge(r.Context(), req); err != nil {
		h.errorHandler.Handle(w, r, mapContextError(err))
		return
	}

	api.OK(w)
}

// GetNode handles GET /nodes/{nodeID}
func (h *GraphHandler) GetNode(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeID")
	if nodeID == "" {
		h.errorHandler.Handle(w, r, errors.NewValidationError("node id is required"))
		return
	}

	node, err := h.service.GetNode(r.Context(), nodeID)
	if err != nil {
		h.errorHandler.Handle(w, r, mapContextError(err))
		return
	}

	api.Success(w, http.StatusOK, node)
}

// GetGraph handles GET /graph
func (h *GraphHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.Graph(r.Context())
	if err != nil {
		h.errorHandler.Handle(w, r, mapContextError(err))
		return
	}

	if snapshot.Edges == nil {
		snapshot.Edges = []graph.Edge{}
	}
	api.Success(w, http.StatusOK, snapshot)
}
