package nav

import "log/slog"

// LocationGraph is one room's navigation data: its passability grid, the
// portals leaving and entering it, and the shortest path trees computed for
// it so far. The grid never changes; a rebuild creates a new graph.
type LocationGraph struct {
	ref  LocationRef
	grid *Grid
	topo *topology

	outbound      map[WorldPoint]*WarpNode
	outboundOrder []*WarpNode
	inbound       map[WorldPoint][]*WarpNode
	inboundOrder  []*WarpNode

	interior map[WorldPoint]*InteriorTree
	exterior map[WarpKey]*ExteriorTree
}

func newLocationGraph(room Room, topo *topology) *LocationGraph {
	return &LocationGraph{
		ref:      Ref(room.Name()),
		grid:     NewGrid(room),
		topo:     topo,
		outbound: make(map[WorldPoint]*WarpNode),
		inbound:  make(map[WorldPoint][]*WarpNode),
		interior: make(map[WorldPoint]*InteriorTree),
		exterior: make(map[WarpKey]*ExteriorTree),
	}
}

// Ref returns the room this graph describes.
func (g *LocationGraph) Ref() LocationRef {
	return g.ref
}

// Grid returns the room's passability grid.
func (g *LocationGraph) Grid() *Grid {
	return g.grid
}

// Version returns the topology version the graph belongs to.
func (g *LocationGraph) Version() uint64 {
	return g.topo.version
}

// Contains reports whether p is a tile of this room.
func (g *LocationGraph) Contains(p WorldPoint) bool {
	return p.Loc == g.ref && g.grid.InBounds(p.X, p.Y)
}

// Passable reports whether the tile at p can be walked on.
func (g *LocationGraph) Passable(p WorldPoint) bool {
	return p.Loc == g.ref && g.grid.Passable(p.X, p.Y)
}

// Point returns a point of this room, clamping sentinel edge coordinates.
func (g *LocationGraph) Point(x, y int) (WorldPoint, error) {
	w, h := g.grid.Size()
	return NewWorldPoint(g.ref, w, h, x, y)
}

// Outbound returns the portals leaving this room in declaration order.
func (g *LocationGraph) Outbound() []*WarpNode {
	return g.outboundOrder
}

// OutboundAt returns the portal whose source is p.
func (g *LocationGraph) OutboundAt(p WorldPoint) (*WarpNode, bool) {
	w, ok := g.outbound[p]
	return w, ok
}

// Inbound returns the portals arriving in this room in registration order.
func (g *LocationGraph) Inbound() []*WarpNode {
	return g.inboundOrder
}

// InboundAt returns every portal that lands on p.
func (g *LocationGraph) InboundAt(p WorldPoint) []*WarpNode {
	return g.inbound[p]
}

// addOutbound registers a portal leaving this room. A second declaration of
// the same edge is dropped silently; a different edge on an occupied source
// tile is dropped with a warning. Reports whether w was stored.
func (g *LocationGraph) addOutbound(w *WarpNode) bool {
	if existing, ok := g.outbound[w.Source]; ok {
		if !existing.Equal(w) {
			slog.Warn("skip portal (source tile taken)",
				"source", w.Source, "target", w.Target, "kept", existing.Target)
		}
		return false
	}
	g.outbound[w.Source] = w
	g.outboundOrder = append(g.outboundOrder, w)
	return true
}

func (g *LocationGraph) addInbound(w *WarpNode) {
	g.inbound[w.Target] = append(g.inbound[w.Target], w)
	g.inboundOrder = append(g.inboundOrder, w)
}

// InteriorTree returns the shortest path tree rooted at root, building it
// on first use.
func (g *LocationGraph) InteriorTree(root WorldPoint) *InteriorTree {
	g.topo.checks.require(g.Contains(root), "InteriorTree", "root %s outside %s", root, g.ref)
	if t, ok := g.interior[root]; ok {
		return t
	}
	t := BuildInteriorTree(g.grid, root, g.topo.version)
	g.interior[root] = t
	return t
}

// ExteriorTree returns the portal tree rooted at an inbound portal of this
// room, building it on first use.
func (g *LocationGraph) ExteriorTree(root *WarpNode) *ExteriorTree {
	g.topo.checks.require(root.To() == g.ref, "ExteriorTree", "portal %s does not enter %s", root, g.ref)
	key := root.Key()
	if t, ok := g.exterior[key]; ok {
		return t
	}
	t := buildExteriorTree(g.topo, root)
	g.exterior[key] = t
	return t
}

// DistancePointToPortal is the walk from p to the source tile of out.
func (g *LocationGraph) DistancePointToPortal(p WorldPoint, out *WarpNode) float64 {
	g.topo.checks.require(g.Contains(p), "DistancePointToPortal", "point %s outside %s", p, g.ref)
	g.topo.checks.require(out.From() == g.ref, "DistancePointToPortal", "portal %s does not leave %s", out, g.ref)
	return g.InteriorTree(out.Source).DistanceTo(p)
}

// DistancePortalToPoint is the walk from where in lands to p.
func (g *LocationGraph) DistancePortalToPoint(in *WarpNode, p WorldPoint) float64 {
	g.topo.checks.require(g.Contains(p), "DistancePortalToPoint", "point %s outside %s", p, g.ref)
	g.topo.checks.require(in.To() == g.ref, "DistancePortalToPoint", "portal %s does not enter %s", in, g.ref)
	return g.InteriorTree(p).DistanceTo(in.Target)
}

// DistancePortalToPortal is the walk inside this room from where in lands
// to the source tile of out.
func (g *LocationGraph) DistancePortalToPortal(in, out *WarpNode) float64 {
	g.topo.checks.require(in.To() == g.ref, "DistancePortalToPortal", "portal %s does not enter %s", in, g.ref)
	g.topo.checks.require(out.From() == g.ref, "DistancePortalToPortal", "portal %s does not leave %s", out, g.ref)
	return g.InteriorTree(out.Source).DistanceTo(in.Target)
}

// DistanceAcross is the cross-room distance from taking from to taking to,
// where to is a portal entering this room.
func (g *LocationGraph) DistanceAcross(from, to *WarpNode) float64 {
	return g.ExteriorTree(to).DistanceTo(from)
}

// Snap returns p if it is passable, otherwise the first passable
// neighbour in Steps order. With no passable neighbour p is returned as is.
func (g *LocationGraph) Snap(p WorldPoint) WorldPoint {
	if g.Passable(p) {
		return p
	}
	for _, d := range Steps {
		if n := p.Step(d); g.Passable(n) {
			return n
		}
	}
	return p
}

// CachedTrees returns how many interior and exterior trees are cached.
func (g *LocationGraph) CachedTrees() (interior, exterior int) {
	return len(g.interior), len(g.exterior)
}
