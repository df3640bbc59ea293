package analysis

import "traceanalyzer/internal/types"

// LockEdge is a directed edge in the lock graph: from was held while to
// was acquired.
type LockEdge struct {
	From, To int64
}

// LockGraph builds the lock-order graph: on every acquire, it adds an edge
// from every currently held lock of the acquiring thread to the newly
// acquired lock, with duplicate suppression.
type LockGraph struct {
	edges types.Set[LockEdge]
}

// NewLockGraph returns an empty lock graph.
func NewLockGraph() *LockGraph {
	return &LockGraph{edges: types.NewSet[LockEdge]()}
}

// OnAcquire adds an edge from each lock in held to lock.
func (g *LockGraph) OnAcquire(lock int64, held types.Set[int64]) {
	for _, h := range held.Values() {
		g.edges.Add(LockEdge{From: h, To: lock})
	}
}

// Edges returns the accumulated edges in unspecified order.
func (g *LockGraph) Edges() []LockEdge {
	return g.edges.Values()
}
