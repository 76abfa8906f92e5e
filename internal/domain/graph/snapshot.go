// Package graph defines the node/edge model shared by the store, the HTTP
// layer and the analytics engine.
//
// A Snapshot is a point-in-time copy of the graph. Both its node map and its
// edge slice are ordered; analytics results are deterministic for a given
// snapshot because every traversal follows that order.
package graph

// Snapshot is an immutable view of the graph handed to analytics.
// Callers that need to keep mutating their own graph must pass a Clone.
type Snapshot struct {
	Nodes NodeMap `json:"nodes"`
	Edges []Edge  `json:"edges"`
}

// NewSnapshot builds a snapshot from ordered nodes and edges.
func NewSnapshot(nodes []Node, edges []Edge) Snapshot {
	return Snapshot{
		Nodes: NewNodeMap(nodes...),
		Edges: edges,
	}
}

// Clone returns a deep copy that shares no memory with s.
func (s Snapshot) Clone() Snapshot {
	edges := make([]Edge, len(s.Edges))
	for i, e := range s.Edges {
		edges[i] = e.Clone()
	}
	return Snapshot{
		Nodes: s.Nodes.Clone(),
		Edges: edges,
	}
}

// IsEmpty reports whether the snapshot has neither nodes nor edges.
func (s Snapshot) IsEmpty() bool {
	return s.Nodes.Len() == 0 && len(s.Edges) == 0
}
