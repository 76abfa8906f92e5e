package analytics

// Algorithm selects the shortest-path procedure.
type Algorithm string

const (
	// AlgorithmAuto tries Dijkstra first and falls back to BFS.
	AlgorithmAuto     Algorithm = "auto"
	AlgorithmBFS      Algorithm = "bfs"
	AlgorithmDijkstra Algorithm = "dijkstra"
)

// ParseAlgorithm maps a selector string to an Algorithm. Unknown or empty
// selectors mean automatic dispatch; they are not an error.
func ParseAlgorithm(s string) Algorithm {
	switch Algorithm(s) {
	case AlgorithmBFS:
		return AlgorithmBFS
	case AlgorithmDijkstra:
		return AlgorithmDijkstra
	default:
		return AlgorithmAuto
	}
}

// PathError is the user-facing reason a path query produced no path.
type PathError string

const (
	PathErrorNodeNotFound PathError = "Start or end node not found."
	PathErrorNoPath       PathError = "No path between the selected nodes."
)

// Stats are aggregate structural statistics of a snapshot, computed on the
// undirected unit-weight view of the graph.
type Stats struct {
	NodeCount     int     `json:"nodeCount"`
	EdgeCount     int     `json:"edgeCount"`
	Components    int     `json:"components"`
	AverageDegree float64 `json:"averageDegree"`
	MaxDegree     int     `json:"maxDegree"`
	Isolated      int     `json:"isolated"`
}

// Path is a shortest path between two nodes. Edges[i] connects Nodes[i] and
// Nodes[i+1]. Cost is only set by weighted algorithms.
type Path struct {
	Nodes     []string  `json:"nodes"`
	Edges     []string  `json:"edges"`
	Algorithm Algorithm `json:"algorithm"`
	Cost      *float64  `json:"cost,omitempty"`
}

// Hops returns the number of edges on the path.
func (p *Path) Hops() int {
	return len(p.Edges)
}

// Query carries the optional path parameters of an analysis.
// Empty strings mean "not supplied".
type Query struct {
	Start     string
	End       string
	Algorithm string
}

// HasEndpoints reports whether both a start and an end were supplied.
func (q Query) HasEndpoints() bool {
	return q.Start != "" && q.End != ""
}

// Result is the combined output of an analysis. Path and PathError are
// mutually exclusive and both nil when no path was requested.
type Result struct {
	Stats     Stats      `json:"stats"`
	Path      *Path      `json:"path"`
	PathError *PathError `json:"pathError"`
}

// Outcome summarises a result for logging and metrics.
func (r *Result) Outcome() string {
	switch {
	case r.Path != nil:
		return "path_found"
	case r.PathError == nil:
		return "stats_only"
	case *r.PathError == PathErrorNodeNotFound:
		return "node_not_found"
	default:
		return "no_path"
	}
}
