package nav

import "fmt"

// WarpNode is a directed portal edge from Source to Target. Two nodes are
// equal when both endpoints match. The priority and index slots let the
// node sit in a search queue without a wrapper allocation.
type WarpNode struct {
	Source WorldPoint
	Target WorldPoint
	Kind   PortalKind

	priority float64
	index    int
}

// WarpKey is the comparable identity of a WarpNode.
type WarpKey struct {
	Source WorldPoint
	Target WorldPoint
}

// NewWarpNode creates a portal edge.
func NewWarpNode(source, target WorldPoint, kind PortalKind) *WarpNode {
	return &WarpNode{Source: source, Target: target, Kind: kind, index: -1}
}

// Key returns the (source, target) identity.
func (w *WarpNode) Key() WarpKey {
	return WarpKey{Source: w.Source, Target: w.Target}
}

// Equal reports whether both nodes connect the same endpoints.
func (w *WarpNode) Equal(o *WarpNode) bool {
	return w.Source == o.Source && w.Target == o.Target
}

// From returns the room the portal leaves.
func (w *WarpNode) From() LocationRef {
	return w.Source.Loc
}

// To returns the room the portal arrives in.
func (w *WarpNode) To() LocationRef {
	return w.Target.Loc
}

func (w *WarpNode) String() string {
	return fmt.Sprintf("%s -> %s", w.Source, w.Target)
}

// warpQueue is a min-heap of portals keyed by their priority slot.
type warpQueue []*WarpNode

func (q warpQueue) Len() int           { return len(q) }
func (q warpQueue) Less(i, j int) bool { return q[i].priority < q[j].priority }
func (q warpQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i]; q[i].index = i; q[j].index = j }
func (q *warpQueue) Push(x any)        { n := x.(*WarpNode); n.index = len(*q); *q = append(*q, n) }
func (q *warpQueue) Pop() any {
	old := *q
	n := len(old)
	node := old[n-1]
	old[n-1] = nil // GC
	node.index = -1
	*q = old[:n-1]
	return node
}
