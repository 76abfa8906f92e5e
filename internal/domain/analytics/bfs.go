package analytics

// predecessor records how a node was first (or best) reached.
type predecessor struct {
	node   string
	edgeID string
}

// ShortestPathBFS finds a fewest-hops path from start to end.
//
// Nodes are marked when enqueued, so among equal-length paths the winner is
// the one whose edges come first in each adjacency list. The search stops
// once end is dequeued. The boolean is false when start or end is unknown or
// end is unreachable.
func ShortestPathBFS(adj Adjacency, start, end string) (*Path, bool) {
	if !adj.Has(start) || !adj.Has(end) {
		return nil, false
	}

	visited := map[string]bool{start: true}
	parent := make(map[string]predecessor)
	queue := []string{start}

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		if node == end {
			break
		}

		for _, nb := range adj.Neighbors(node) {
			if visited[nb.To] {
				continue
			}
			visited[nb.To] = true
			parent[nb.To] = predecessor{node: node, edgeID: nb.EdgeID}
			queue = append(queue, nb.To)
		}
	}

	if !visited[end] {
		return nil, false
	}

	nodes, edges := reconstructPath(end, parent)
	return &Path{
		Nodes:     nodes,
		Edges:     edges,
		Algorithm: AlgorithmBFS,
	}, true
}

// reconstructPath walks predecessor links back from end and returns the node
// and edge sequences in start-to-end order.
func reconstructPath(end string, parent map[string]predecessor) ([]string, []string) {
	nodes := []string{}
	edges := []string{}

	cur := end
	for {
		nodes = append(nodes, cur)
		p, ok := parent[cur]
		if !ok {
			break
		}
		edges = append(edges, p.edgeID)
		cur = p.node
	}

	reverse(nodes)
	reverse(edges)
	return nodes, edges
}

func reverse(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
