package analytics

import (
	"nodemapper-backend/internal/domain/graph"
)

// Analyzer is the entry point of the engine. It holds no state; the zero
// value is ready to use and safe for concurrent calls.
type Analyzer struct{}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze computes statistics for s and, when q names both endpoints, a
// shortest path between them.
//
// Dispatch:
//   - "bfs": BFS over the direction-respecting unit-weight view
//   - "dijkstra": Dijkstra over the direction-respecting weighted view
//   - anything else: Dijkstra, then BFS if Dijkstra finds nothing
//
// Path failures are reported in Result.PathError; Analyze never fails.
func (a *Analyzer) Analyze(s graph.Snapshot, q Query) Result {
	result := Result{Stats: ComputeStats(s)}

	if !q.HasEndpoints() {
		return result
	}

	if !s.Nodes.Has(q.Start) || !s.Nodes.Has(q.End) {
		result.PathError = pathError(PathErrorNodeNotFound)
		return result
	}

	weighted := BuildAdjacency(s.Nodes, s.Edges, true, true)
	unweighted := BuildAdjacency(s.Nodes, s.Edges, false, true)

	var (
		path  *Path
		found bool
	)
	switch ParseAlgorithm(q.Algorithm) {
	case AlgorithmBFS:
		path, found = ShortestPathBFS(unweighted, q.Start, q.End)
	case AlgorithmDijkstra:
		path, found = ShortestPathDijkstra(weighted, q.Start, q.End)
	default:
		path, found = ShortestPathDijkstra(weighted, q.Start, q.End)
		if !found {
			path, found = ShortestPathBFS(unweighted, q.Start, q.End)
		}
	}

	if !found {
		result.PathError = pathError(PathErrorNoPath)
		return result
	}

	result.Path = path
	return result
}

func pathError(e PathError) *PathError {
	return &e
}
