// Package analytics computes structural statistics and shortest paths over a
// graph snapshot.
//
// The engine is pure: every call builds its own adjacency structures from the
// snapshot it is given, mutates nothing it receives and keeps no state
// between calls. Concurrent use is safe without locking.
//
// # Views of the graph
//
// BuildAdjacency produces three views depending on its flags:
//
//	weighted=false, directed=false   stats and components (topology only)
//	weighted=true,  directed=true    Dijkstra
//	weighted=false, directed=true    BFS
//
// In a directed view an edge is one-way only when it carries Directed=true;
// unmarked edges stay bidirectional.
//
// # Determinism
//
// Node iteration follows the snapshot's node map order and neighbor lists
// follow edge order. BFS tie-breaks among equal-hop paths by that order;
// Dijkstra tie-breaks equal distances by node id, then by relaxation order.
// Edges without an id get "e<index>", where index is the position in the
// snapshot's edge slice.
//
// # Weights
//
// An edge's weight resolves to weight, then width, then 1, and is clamped to
// MinEdgeWeight. Dijkstra therefore never sees zero or negative costs.
package analytics
