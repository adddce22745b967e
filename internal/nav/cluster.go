package nav

import "github.com/zyedidia/generic/mapset"

// Cluster is a group of inbound portals whose source tiles touch each
// other, such as the row of edge warps along a map border.
type Cluster struct {
	Members []*WarpNode
}

// Representative returns the member whose source tile is closest to the
// centroid of the cluster. Ties go to the earlier member.
func (c Cluster) Representative() *WarpNode {
	if len(c.Members) == 0 {
		return nil
	}
	var sx, sy float64
	for _, m := range c.Members {
		sx += float64(m.Source.X)
		sy += float64(m.Source.Y)
	}
	n := float64(len(c.Members))
	cx, cy := sx/n, sy/n

	best := c.Members[0]
	bestDist := Unreachable
	for _, m := range c.Members {
		dx, dy := float64(m.Source.X)-cx, float64(m.Source.Y)-cy
		if d := dx*dx + dy*dy; d < bestDist {
			best, bestDist = m, d
		}
	}
	return best
}

// sourcesAdjacent reports whether two portals leave the same room from
// tiles at most one king move apart.
func sourcesAdjacent(a, b *WarpNode) bool {
	return a.Source.Loc == b.Source.Loc && a.Source.Chebyshev(b.Source) <= 1
}

// InboundClusters groups this room's inbound portals into connected
// components of the source-adjacency relation. Components with fewer than
// two members are not returned.
func (g *LocationGraph) InboundClusters() []Cluster {
	pending := mapset.New[*WarpNode]()
	for _, w := range g.inboundOrder {
		pending.Put(w)
	}

	var clusters []Cluster
	for _, seed := range g.inboundOrder {
		if !pending.Has(seed) {
			continue
		}
		pending.Remove(seed)
		members := []*WarpNode{seed}
		for i := 0; i < len(members); i++ {
			for _, other := range g.inboundOrder {
				if pending.Has(other) && sourcesAdjacent(members[i], other) {
					pending.Remove(other)
					members = append(members, other)
				}
			}
		}
		if len(members) >= 2 {
			clusters = append(clusters, Cluster{Members: members})
		}
	}
	return clusters
}
