package services

import (
	"context"

	"nodemapper-backend/internal/domain/graph"
	"nodemapper-backend/internal/infrastructure/messaging"
	"nodemapper-backend/internal/infrastructure/observability"
	"nodemapper-backend/internal/repository"
	"nodemapper-backend/pkg/api"
	appErrors "nodemapper-backend/pkg/errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// GraphService handles mutations and reads of the working graph.
type GraphService struct {
	repo      repository.GraphRepository
	publisher messaging.Publisher
	metrics   *observability.Collector
	validate  *validator.Validate
	logger    *zap.Logger
}

// NewGraphService creates a graph service. publisher and metrics may be nil.
func NewGraphService(
	repo repository.GraphRepository,
	publisher messaging.Publisher,
	metrics *observability.Collector,
	logger *zap.Logger,
) *GraphService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GraphService{
		repo:      repo,
		publisher: publisher,
		metrics:   metrics,
		validate:  newValidator(),
		logger:    logger,
	}
}

// CreateNode stores a new node, filling omitted attributes with defaults.
func (s *GraphService) CreateNode(ctx context.Context, req api.CreateNodeRequest) (graph.Node, error) {
	if err := s.validate.Struct(req); err != nil {
		return graph.Node{}, appErrors.FromValidation(err)
	}

	node, err := s.repo.CreateNode(ctx, repository.NodeInput{
		X:     req.X,
		Y:     req.Y,
		Label: req.Label,
	})
	if err != nil {
		return graph.Node{}, appErrors.Wrap(err, "failed to create node")
	}

	if s.metrics != nil {
		s.metrics.NodesCreated.Inc()
	}

	s.logger.Debug("Node created",
		zap.String("node_id", node.ID),
		zap.String("label", node.Label),
	)

	s.publish(ctx, messaging.NewEvent(messaging.EventNodeCreated, node.ID, messaging.NodeCreatedPayload{
		NodeID: node.ID,
		Label:  node.Label,
		X:      node.X,
		Y:      node.Y,
	}))

	return node, nil
}

// CreateEdge appends an edge. Endpoints need not exist; edges referencing
// unknown nodes are ignored by analytics.
func (s *GraphService) CreateEdge(ctx context.Context, req api.CreateEdgeRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return appErrors.FromValidation(err)
	}
	if err := checkEndpoints(req.Edge); err != nil {
		return err
	}

	if err := s.repo.CreateEdge(ctx, req.Edge); err != nil {
		return appErrors.Wrap(err, "failed to create edge")
	}

	if s.metrics != nil {
		s.metrics.EdgesCreated.Inc()
	}

	s.logger.Debug("Edge created",
		zap.String("source", req.Source),
		zap.String("target", req.Target),
		zap.Bool("directed", req.Directed),
	)

	s.publish(ctx, messaging.NewEvent(messaging.EventEdgeCreated, req.Source+"->"+req.Target, messaging.EdgeCreatedPayload{
		Source:   req.Source,
		Target:   req.Target,
		EdgeID:   req.ID,
		Directed: req.Directed,
	}))

	return nil
}

// GetNode returns a stored node.
func (s *GraphService) GetNode(ctx context.Context, id string) (graph.Node, error) {
	return s.repo.GetNode(ctx, id)
}

// Graph returns a copy of the stored graph.
func (s *GraphService) Graph(ctx context.Context) (graph.Snapshot, error) {
	snapshot, err := s.repo.Snapshot(ctx)
	if err != nil {
		return graph.Snapshot{}, appErrors.Wrap(err, "failed to read graph")
	}
	return snapshot, nil
}

// checkEndpoints requires both endpoint ids. Whether they name existing
// nodes is not checked.
func checkEndpoints(e graph.Edge) error {
	details := map[string]any{}
	if e.Source == "" {
		details["source"] = "is required"
	}
	if e.Target == "" {
		details["target"] = "is required"
	}
	if len(details) == 0 {
		return nil
	}
	return appErrors.NewValidationError("request validation failed").WithDetails(details)
}

// publish delivers events on a best-effort basis. A failed publication never
// fails the mutation that caused it.
func (s *GraphService) publish(ctx context.Context, events ...messaging.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish domain events",
			zap.Int("count", len(events)),
			zap.Error(err),
		)
	}
}
