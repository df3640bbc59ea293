package analysis

import (
	"sort"

	"traceanalyzer/internal/types"
)

// ThreadEdge is a directed edge in the thread-level lock-dependency graph.
type ThreadEdge struct {
	From, To int64
}

// ThreadGraph is the thread-level directed graph built from lock
// dependencies under the false-positive filter.
type ThreadGraph struct {
	adjacency map[int64]*types.Set[int64]
}

func newThreadGraph() *ThreadGraph {
	return &ThreadGraph{adjacency: make(map[int64]*types.Set[int64])}
}

func (g *ThreadGraph) ensure(thread int64) *types.Set[int64] {
	s, ok := g.adjacency[thread]
	if !ok {
		set := types.NewSet[int64]()
		s = &set
		g.adjacency[thread] = s
	}
	return s
}

func (g *ThreadGraph) addEdge(from, to int64) {
	g.ensure(from).Add(to)
	g.ensure(to)
}

// Edges returns the graph's edges in unspecified order.
func (g *ThreadGraph) Edges() []ThreadEdge {
	edges := make([]ThreadEdge, 0)
	for from, adj := range g.adjacency {
		for _, to := range adj.Values() {
			edges = append(edges, ThreadEdge{From: from, To: to})
		}
	}
	return edges
}

// BuildThreadGraph constructs the thread-level lock-dependency graph. For
// each dependency record e = (T_e, L_e, held_e), its children are the
// threads of every other dependency record that:
//   - belongs to a different thread,
//   - shares no lock with held_e (the "no shared guard lock" filter), and
//   - acquired its lock while holding L_e.
//
// Both filter conditions are required to distinguish a true lock-order
// cycle from an innocuous overlap.
func BuildThreadGraph(dependencies []*Dependency) *ThreadGraph {
	g := newThreadGraph()

	for _, e := range dependencies {
		g.ensure(e.ThreadID)

		for _, other := range dependencies {
			if other.ThreadID == e.ThreadID {
				continue
			}
			if other.AcquiredLocks.Intersects(e.AcquiredLocks) {
				continue
			}
			if !other.AcquiredLocks.Contains(e.LockID) {
				continue
			}
			g.addEdge(e.ThreadID, other.ThreadID)
		}
	}

	return g
}

// CountCycles runs a depth-first search over the thread graph. For each
// unvisited node it launches a DFS that marks the node visited and on the
// recursion stack, recurses into unvisited children, and treats any child
// already on the recursion stack as a back-edge. The result is the number
// of top-level DFS launches that discovered at least one back-edge
// somewhere in their subtree — this is a count of DFS roots (taken in
// ascending thread order), not the number of threads from which a cycle
// is reachable, not the number of simple cycles and not the number of
// strongly connected components.
func CountCycles(g *ThreadGraph) int {
	visited := make(map[int64]bool, len(g.adjacency))
	onStack := make(map[int64]bool, len(g.adjacency))

	var dfs func(u int64) bool
	dfs = func(u int64) bool {
		visited[u] = true
		onStack[u] = true

		foundCycle := false
		if adj, ok := g.adjacency[u]; ok {
			for _, v := range adj.Values() {
				if onStack[v] {
					foundCycle = true
					continue
				}
				if !visited[v] && dfs(v) {
					foundCycle = true
				}
			}
		}

		onStack[u] = false
		return foundCycle
	}

	nodes := make([]int64, 0, len(g.adjacency))
	for n := range g.adjacency {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })

	count := 0
	for _, u := range nodes {
		if !visited[u] && dfs(u) {
			count++
		}
	}
	return count
}
