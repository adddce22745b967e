package nav

import "container/heap"

// ExteriorTree holds, for every portal that can lead to the root portal,
// the walking distance from arriving through that portal to stepping into
// the root. Crossing a portal costs nothing; the legs between portals are
// interior distances inside the rooms they pass through.
type ExteriorTree struct {
	root    *WarpNode
	dist    map[WarpKey]float64
	version uint64
}

// buildExteriorTree runs Dijkstra backwards over the portal graph of topo,
// starting from root.
func buildExteriorTree(topo *topology, root *WarpNode) *ExteriorTree {
	t := &ExteriorTree{
		root:    root,
		dist:    make(map[WarpKey]float64, len(topo.reachable)),
		version: topo.version,
	}

	settled := make(map[*WarpNode]struct{}, len(topo.reachable))
	q := make(warpQueue, 0, 16)
	root.priority = 0
	t.dist[root.Key()] = 0
	heap.Push(&q, root)

	for q.Len() > 0 {
		n := heap.Pop(&q).(*WarpNode)
		settled[n] = struct{}{}

		room := topo.graphs[n.From()]
		if room == nil {
			continue
		}
		// Any portal arriving in n's room can continue on foot to n.
		for _, m := range room.inboundOrder {
			if _, done := settled[m]; done {
				continue
			}
			leg := room.InteriorTree(n.Source).DistanceTo(m.Target)
			if IsUnreachable(leg) {
				continue
			}
			nd := n.priority + leg
			if cur, seen := t.dist[m.Key()]; seen && nd >= cur {
				continue
			}
			t.dist[m.Key()] = nd
			m.priority = nd
			if m.index < 0 {
				heap.Push(&q, m)
			} else {
				heap.Fix(&q, m.index)
			}
		}
	}
	return t
}

// Root returns the portal the tree was grown from.
func (t *ExteriorTree) Root() *WarpNode {
	return t.root
}

// Version returns the topology version the tree was built under.
func (t *ExteriorTree) Version() uint64 {
	return t.version
}

// DistanceTo returns the distance from taking node to taking the root, or
// Unreachable when node cannot lead to the root.
func (t *ExteriorTree) DistanceTo(node *WarpNode) float64 {
	if d, ok := t.dist[node.Key()]; ok {
		return d
	}
	return Unreachable
}

// Reachable returns the number of portals with a finite distance.
func (t *ExteriorTree) Reachable() int {
	return len(t.dist)
}
