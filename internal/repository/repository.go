// Package repository defines the storage contract for the working graph.
package repository

import (
	"context"

	"nodemapper-backend/internal/domain/graph"
)

// NodeInput carries the optional attributes of a new node. Nil fields take
// graph.DefaultNodeX, graph.DefaultNodeY and graph.DefaultNodeLabel.
type NodeInput struct {
	X     *float64
	Y     *float64
	Label *string
}

// GraphRepository stores the nodes and edges the API mutates.
type GraphRepository interface {
	// CreateNode assigns a fresh id, applies defaults and stores the node.
	CreateNode(ctx context.Context, in NodeInput) (graph.Node, error)
	// CreateEdge appends an edge. Endpoints are not checked.
	CreateEdge(ctx context.Context, e graph.Edge) error
	// GetNode returns the node with the given id.
	GetNode(ctx context.Context, id string) (graph.Node, error)
	// Snapshot returns a deep copy of the stored graph.
	Snapshot(ctx context.Context) (graph.Snapshot, error)
	NodeCount() int
	EdgeCount() int
}
