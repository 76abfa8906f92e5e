package observability

import (
	"context"

	"nodemapper-backend/internal/domain/graph"
	"nodemapper-backend/internal/repository"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TraceRepository wraps a repository so every call produces a span.
func TraceRepository(repo repository.GraphRepository, tracer trace.Tracer) repository.GraphRepository {
	return &tracedGraphRepository{inner: repo, tracer: tracer}
}

type tracedGraphRepository struct {
	inner  repository.GraphRepository
	tracer trace.Tracer
}

func (r *tracedGraphRepository) CreateNode(ctx context.Context, in repository.NodeInput) (graph.Node, error) {
	ctx, span := r.tracer.Start(ctx, "repository.CreateNode")
	defer span.End()

	node, err := r.inner.CreateNode(ctx, in)
	if err != nil {
		recordError(span, err)
		return node, err
	}
	span.SetAttributes(attribute.String("node.id", node.ID))
	return node, nil
}

func (r *tracedGraphRepository) CreateEdge(ctx context.Context, e graph.Edge) error {
	ctx, span := r.tracer.Start(ctx, "repository.CreateEdge",
		trace.WithAttributes(
			attribute.String("edge.source", e.Source),
			attribute.String("edge.target", e.Target),
		),
	)
	defer span.End()

	err := r.inner.CreateEdge(ctx, e)
	recordError(span, err)
	return err
}

func (r *tracedGraphRepository) GetNode(ctx context.Context, id string) (graph.Node, error) {
	ctx, span := r.tracer.Start(ctx, "repository.GetNode",
		trace.WithAttributes(attribute.String("node.id", id)),
	)
	defer span.End()

	node, err := r.inner.GetNode(ctx, id)
	recordError(span, err)
	return node, err
}

func (r *tracedGraphRepository) Snapshot(ctx context.Context) (graph.Snapshot, error) {
	ctx, span := r.tracer.Start(ctx, "repository.Snapshot")
	defer span.End()

	snap, err := r.inner.Snapshot(ctx)
	if err != nil {
		recordError(span, err)
		return snap, err
	}
	span.SetAttributes(
		attribute.Int("graph.nodes", snap.Nodes.Len()),
		attribute.Int("graph.edges", len(snap.Edges)),
	)
	return snap, nil
}

func (r *tracedGraphRepository) NodeCount() int { return r.inner.NodeCount() }

func (r *tracedGraphRepository) EdgeCount() int { return r.inner.EdgeCount() }

func recordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
