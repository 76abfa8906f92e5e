// Package memory provides the in-process graph store.
package memory

import (
	"context"
	"sync"

	"nodemapper-backend/internal/domain/graph"
	"nodemapper-backend/internal/repository"
	appErrors "nodemapper-backend/pkg/errors"

	"github.com/google/uuid"
)

// GraphStore keeps the working graph in memory. Node insertion order and
// edge arrival order are preserved.
type GraphStore struct {
	mu    sync.RWMutex
	nodes graph.NodeMap
	edges []graph.Edge
	newID func() string
}

var _ repository.GraphRepository = (*GraphStore)(nil)

// NewGraphStore creates an empty store.
func NewGraphStore() *GraphStore {
	return &GraphStore{
		newID: func() string { return uuid.New().String() },
	}
}

// CreateNode stores a node with a fresh UUID.
func (s *GraphStore) CreateNode(ctx context.Context, in repository.NodeInput) (graph.Node, error) {
	if err := ctx.Err(); err != nil {
		return graph.Node{}, err
	}

	node := graph.Node{
		ID:    s.newID(),
		X:     graph.DefaultNodeX,
		Y:     graph.DefaultNodeY,
		Label: graph.DefaultNodeLabel,
	}
	if in.X != nil {
		node.X = *in.X
	}
	if in.Y != nil {
		node.Y = *in.Y
	}
	if in.Label != nil {
		node.Label = *in.Label
	}

	s.mu.Lock()
	s.nodes.Put(node)
	s.mu.Unlock()

	return node, nil
}

// CreateEdge appends e.
func (s *GraphStore) CreateEdge(ctx context.Context, e graph.Edge) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e = e.Clone()

	s.mu.Lock()
	s.edges = append(s.edges, e)
	s.mu.Unlock()
	return nil
}

// GetNode returns a stored node.
func (s *GraphStore) GetNode(ctx context.Context, id string) (graph.Node, error) {
	if err := ctx.Err(); err != nil {
		return graph.Node{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	node, ok := s.nodes.Get(id)
	if !ok {
		return graph.Node{}, appErrors.NewNotFoundError("node " + id)
	}
	return node, nil
}

// Snapshot returns a deep copy of the store's contents.
func (s *GraphStore) Snapshot(ctx context.Context) (graph.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return graph.Snapshot{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := graph.Snapshot{Nodes: s.nodes, Edges: s.edges}
	return snap.Clone(), nil
}

// NodeCount returns the number of stored nodes.
func (s *GraphStore) NodeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nodes.Len()
}

// EdgeCount returns the number of stored edges.
func (s *GraphStore) EdgeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.edges)
}
