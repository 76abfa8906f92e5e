package analytics

import (
	"math"

	"nodemapper-backend/internal/domain/graph"
)

// ComputeStats derives aggregate statistics from a snapshot.
//
// Degrees and components are taken from the undirected unit-weight view, so
// they describe topology only. EdgeCount is the raw edge count and includes
// edges whose endpoints are unknown; AverageDegree is derived from that raw
// count as well, which means it can exceed the mean adjacency degree when
// dangling edges are present.
func ComputeStats(s graph.Snapshot) Stats {
	adj := BuildAdjacency(s.Nodes, s.Edges, false, false)

	stats := Stats{
		NodeCount: s.Nodes.Len(),
		EdgeCount: len(s.Edges),
	}

	for _, id := range adj.IDs() {
		degree := adj.Degree(id)
		if degree > stats.MaxDegree {
			stats.MaxDegree = degree
		}
		if degree == 0 {
			stats.Isolated++
		}
	}

	if stats.NodeCount > 0 {
		stats.Components = CountComponents(adj)
		stats.AverageDegree = round2(float64(2*stats.EdgeCount) / float64(stats.NodeCount))
	}

	return stats
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
