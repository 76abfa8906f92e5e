package analytics

// CountComponents returns the number of connected components of adj.
//
// Roots are taken in adjacency order and each component is walked with an
// explicit stack, so graph depth never grows the call stack. adj is expected
// to be symmetric (built with directed=false); on an asymmetric structure the
// count reflects reachability from each root in order.
func CountComponents(adj Adjacency) int {
	visited := make(map[string]bool, adj.Len())
	components := 0

	for _, root := range adj.IDs() {
		if visited[root] {
			continue
		}
		components++

		stack := []string{root}
		visited[root] = true
		for len(stack) > 0 {
			node := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			for _, nb := range adj.Neighbors(node) {
				if !visited[nb.To] {
					visited[nb.To] = true
					stack = append(stack, nb.To)
				}
			}
		}
	}

	return components
}
