package analytics

import (
	"container/heap"
	"math"
)

// ShortestPathDijkstra finds a minimum-cost path from start to end.
//
// The frontier is a min-heap ordered by (distance, node id) using lazy
// decrease-key: improved distances are pushed as new entries and stale
// entries are skipped when popped. The search stops when end is popped with
// a current entry. All adjacency weights are at least MinEdgeWeight, which
// keeps the algorithm correct and terminating.
//
// Complexity: O((V + E) log V) time, O(V + E) space.
func ShortestPathDijkstra(adj Adjacency, start, end string) (*Path, bool) {
	if !adj.Has(start) || !adj.Has(end) {
		return nil, false
	}

	dist := make(map[string]float64, adj.Len())
	for _, id := range adj.IDs() {
		dist[id] = math.Inf(1)
	}
	dist[start] = 0

	prev := make(map[string]predecessor)
	pq := frontier{{id: start, dist: 0}}
	heap.Init(&pq)

	for pq.Len() > 0 {
		item := heap.Pop(&pq).(frontierItem)
		if item.dist > dist[item.id] {
			continue
		}
		if item.id == end {
			break
		}

		for _, nb := range adj.Neighbors(item.id) {
			alt := dist[item.id] + nb.Weight
			if alt < dist[nb.To] {
				dist[nb.To] = alt
				prev[nb.To] = predecessor{node: item.id, edgeID: nb.EdgeID}
				heap.Push(&pq, frontierItem{id: nb.To, dist: alt})
			}
		}
	}

	if math.IsInf(dist[end], 1) {
		return nil, false
	}

	nodes, edges := reconstructPath(end, prev)
	cost := dist[end]
	return &Path{
		Nodes:     nodes,
		Edges:     edges,
		Algorithm: AlgorithmDijkstra,
		Cost:      &cost,
	}, true
}

type frontierItem struct {
	id   string
	dist float64
}

// frontier is a min-heap of frontierItem ordered by distance, then id.
type frontier []frontierItem

func (pq frontier) Len() int { return len(pq) }

func (pq frontier) Less(i, j int) bool {
	if pq[i].dist != pq[j].dist {
		return pq[i].dist < pq[j].dist
	}
	return pq[i].id < pq[j].id
}

func (pq frontier) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

func (pq *frontier) Push(x any) { *pq = append(*pq, x.(frontierItem)) }

func (pq *frontier) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}
