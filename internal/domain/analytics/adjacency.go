package analytics

import (
	"strconv"

	"nodemapper-backend/internal/domain/graph"
)

// MinEdgeWeight is the smallest weight an adjacency entry can carry. Zero and
// negative weights are raised to it so Dijkstra always sees strictly positive
// costs.
const MinEdgeWeight = 1e-4

// Neighbor is one entry of a node's adjacency list.
type Neighbor struct {
	To     string
	Weight float64
	EdgeID string
}

// Adjacency maps node ids to ordered neighbor lists. Node order follows the
// snapshot's node map; each list follows the snapshot's edge order.
type Adjacency struct {
	order []string
	lists map[string][]Neighbor
}

// Has reports whether id is a node of the adjacency.
func (a Adjacency) Has(id string) bool {
	_, ok := a.lists[id]
	return ok
}

// Neighbors returns the neighbor list of id. The slice must not be modified.
func (a Adjacency) Neighbors(id string) []Neighbor {
	return a.lists[id]
}

// IDs returns node ids in order.
func (a Adjacency) IDs() []string {
	return a.order
}

// Len returns the number of nodes.
func (a Adjacency) Len() int {
	return len(a.order)
}

// Degree returns the length of id's neighbor list.
func (a Adjacency) Degree(id string) int {
	return len(a.lists[id])
}

// BuildAdjacency converts nodes and edges into an adjacency structure.
//
// Edges naming a node absent from nodes are skipped. When weighted is false
// every weight is 1. The reverse entry of an edge is omitted only when
// directed is true and the edge itself is marked Directed, so directed=false
// always yields a symmetric structure.
func BuildAdjacency(nodes graph.NodeMap, edges []graph.Edge, weighted, directed bool) Adjacency {
	ids := nodes.IDs()
	adj := Adjacency{
		order: ids,
		lists: make(map[string][]Neighbor, len(ids)),
	}
	for _, id := range ids {
		adj.lists[id] = []Neighbor{}
	}

	for idx, e := range edges {
		if !adj.Has(e.Source) || !adj.Has(e.Target) {
			continue
		}

		w := 1.0
		if weighted {
			w = effectiveWeight(e)
		}

		edgeID := e.ID
		if edgeID == "" {
			edgeID = syntheticEdgeID(idx)
		}

		adj.lists[e.Source] = append(adj.lists[e.Source], Neighbor{To: e.Target, Weight: w, EdgeID: edgeID})
		if !directed || !e.Directed {
			adj.lists[e.Target] = append(adj.lists[e.Target], Neighbor{To: e.Source, Weight: w, EdgeID: edgeID})
		}
	}

	return adj
}

func effectiveWeight(e graph.Edge) float64 {
	w := e.RawWeight()
	if w < MinEdgeWeight {
		return MinEdgeWeight
	}
	return w
}

func syntheticEdgeID(idx int) string {
	return "e" + strconv.Itoa(idx)
}
