package nav

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/zyedidia/generic/mapset"
)

// Options tune a WorldGraph.
type Options struct {
	// CheckContracts enables argument checks that panic with
	// *ContractViolation. Meant for development builds and tests.
	CheckContracts bool
	// PrewarmWorkers bounds the goroutines that build interior trees before
	// a rebuilt topology is published. Zero disables prewarming.
	PrewarmWorkers int
	// ResolveInterval is the Resolver cache lifetime in world ticks.
	ResolveInterval uint64
	// Ignore lists regular expressions of room names that are never part of
	// the graph.
	Ignore []string
}

// NextHop is the answer to a navigation query: walk to Point, and if
// Portal is set, take it.
type NextHop struct {
	Point    WorldPoint
	Portal   *WarpNode
	Distance float64
}

// WorldGraph owns the navigation data for every tracked room and answers
// cross-room queries. It is not safe for concurrent use; one goroutine
// owns it, matching the host's single simulation thread.
type WorldGraph struct {
	rooms    RoomQuery
	portals  PortalSource
	resolver *Resolver
	tracker  *Tracker
	opts     Options

	topo    *topology
	version uint64
	built   [32]byte

	added   []PortalDecl
	removed mapset.Set[WarpKey]
}

// NewWorldGraph creates an empty graph over the host's rooms and portals.
// Call Rebuild before querying.
func NewWorldGraph(rooms RoomQuery, portals PortalSource, opts Options) (*WorldGraph, error) {
	tracker, err := NewTracker(opts.Ignore)
	if err != nil {
		return nil, fmt.Errorf("creating world graph: %w", err)
	}
	return &WorldGraph{
		rooms:    rooms,
		portals:  portals,
		resolver: NewResolver(rooms, opts.ResolveInterval),
		tracker:  tracker,
		opts:     opts,
		removed:  mapset.New[WarpKey](),
	}, nil
}

// Rebuild discards every cache and rebuilds all rooms and portals from the
// host. The new state is assembled off to the side and published in one
// step; queries never see a mix of old and new trees.
func (w *WorldGraph) Rebuild(ctx context.Context) error {
	start := time.Now()
	w.resolver.Invalidate()
	w.tracker.Reset(w.rooms.RoomNames())

	version := w.version + 1
	topo := buildTopology(topologySource{
		names:    w.tracker.Names(),
		resolver: w.resolver,
		portals:  w.portals,
		tracker:  w.tracker,
		added:    w.added,
		removed:  w.removed,
	}, version, contracts(w.opts.CheckContracts))

	if w.opts.PrewarmWorkers > 0 {
		if err := topo.prewarm(ctx, w.opts.PrewarmWorkers); err != nil {
			return fmt.Errorf("rebuilding world graph: %w", err)
		}
	}

	w.topo = topo
	w.version = version
	w.built = w.tracker.Fingerprint()

	interior, _ := topo.trees()
	slog.Info("world graph rebuilt",
		"version", version,
		"rooms", len(topo.order),
		"portals", len(topo.portals),
		"reachable", len(topo.reachable),
		"clusters", topo.clusters,
		"prewarmed", interior,
		"took", time.Since(start))
	return nil
}

// HandleChange applies a room add/remove batch from the host and rebuilds
// when the tracked set actually changed. Reports whether it rebuilt.
func (w *WorldGraph) HandleChange(ctx context.Context, c Change) (bool, error) {
	w.tracker.Apply(c)
	if w.topo != nil && w.tracker.Fingerprint() == w.built {
		return false, nil
	}
	if err := w.Rebuild(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// AddPortal registers a scripted portal on top of the host declarations and
// rebuilds.
func (w *WorldGraph) AddPortal(ctx context.Context, d PortalDecl) error {
	d.Kind = KindScripted
	w.added = append(w.added, d)
	return w.Rebuild(ctx)
}

// RemovePortal suppresses the portal from source to target, wherever it was
// declared, and rebuilds.
func (w *WorldGraph) RemovePortal(ctx context.Context, source, target WorldPoint) error {
	w.removed.Put(WarpKey{Source: source, Target: target})
	return w.Rebuild(ctx)
}

// Advance forwards the world tick to the resolver.
func (w *WorldGraph) Advance(tick uint64) {
	w.resolver.Advance(tick)
}

// Version returns the version of the published topology, zero before the
// first rebuild.
func (w *WorldGraph) Version() uint64 {
	return w.version
}

// Location returns the graph of one room.
func (w *WorldGraph) Location(ref LocationRef) (*LocationGraph, bool) {
	if w.topo == nil {
		return nil, false
	}
	g, ok := w.topo.graphs[ref]
	return g, ok
}

// Locations returns the tracked rooms in name order.
func (w *WorldGraph) Locations() []LocationRef {
	if w.topo == nil {
		return nil
	}
	return w.topo.order
}

// Portals returns every registered portal.
func (w *WorldGraph) Portals() []*WarpNode {
	if w.topo == nil {
		return nil
	}
	return w.topo.portals
}

// ReachablePortals returns the portals leaving rooms that have at least one
// inbound portal.
func (w *WorldGraph) ReachablePortals() []*WarpNode {
	if w.topo == nil {
		return nil
	}
	return w.topo.reachable
}

// Point builds a point in a tracked room. The room must also still be live
// in the host; that lookup goes through the resolver, so a room the host
// dropped stops resolving at the next resolve interval even before the
// change notification arrives.
func (w *WorldGraph) Point(room string, x, y int) (WorldPoint, error) {
	if _, err := w.resolver.Resolve(Ref(room)); err != nil {
		return WorldPoint{}, fmt.Errorf("point in %q: %w", room, err)
	}
	g, ok := w.Location(Ref(room))
	if !ok {
		return WorldPoint{}, fmt.Errorf("point in %q: %w", room, ErrLocationNotFound)
	}
	return g.Point(x, y)
}

// Snap moves p off an impassable tile the way TryFindNextHop does before
// measuring. Points in untracked rooms are returned unchanged.
func (w *WorldGraph) Snap(p WorldPoint) WorldPoint {
	if g, ok := w.Location(p.Loc); ok {
		return g.Snap(p)
	}
	return p
}

// TryFindNextHop finds the cheapest way from start to end. Candidates whose
// running total reaches limit are pruned, so a result is only reported when
// its distance is strictly below limit; pass Unreachable for no bound.
// ok is false, with an Unreachable distance, when no route exists.
//
// When several routes tie, the first one found wins: outbound portals in
// declaration order, inbound portals in registration order.
//
// A query inside one room also considers walking straight to end. That
// direct candidate does not depend on portals, so a room without any
// still answers queries within itself; only the portal legs short-circuit
// when the start room has no outbound or the end room no inbound portal.
func (w *WorldGraph) TryFindNextHop(start, end WorldPoint, limit float64) (NextHop, bool) {
	fail := NextHop{Distance: Unreachable}
	if w.topo == nil {
		return fail, false
	}
	sg, ok := w.topo.graphs[start.Loc]
	if !ok {
		return fail, false
	}
	eg, ok := w.topo.graphs[end.Loc]
	if !ok {
		return fail, false
	}
	w.topo.checks.require(sg.Contains(start), "TryFindNextHop", "start %s outside its room", start)
	w.topo.checks.require(eg.Contains(end), "TryFindNextHop", "end %s outside its room", end)

	start = sg.Snap(start)
	best := limit
	hop := fail
	found := false

	if start.Loc == end.Loc {
		if d := sg.InteriorTree(end).DistanceTo(start); d < best {
			best = d
			hop = NextHop{Point: end, Distance: d}
			found = true
		}
	}

	outs := sg.Outbound()
	ins := eg.Inbound()
	if len(outs) == 0 || len(ins) == 0 {
		return hop, found
	}

	for _, p := range outs {
		toPortal := sg.DistancePointToPortal(start, p)
		if toPortal >= best {
			continue
		}
		for _, q := range ins {
			across := toPortal + w.portalDistance(p, q)
			if across >= best {
				continue
			}
			total := across + eg.DistancePortalToPoint(q, end)
			if total >= best {
				continue
			}
			best = total
			hop = NextHop{Point: p.Source, Portal: p, Distance: total}
			found = true
		}
	}
	return hop, found
}

// portalDistance is the walking distance between taking p and taking q.
func (w *WorldGraph) portalDistance(p, q *WarpNode) float64 {
	if p.Equal(q) {
		return 0
	}
	if p.To() == q.From() {
		if g, ok := w.topo.graphs[p.To()]; ok {
			return g.DistancePortalToPortal(p, q)
		}
		return Unreachable
	}
	eg := w.topo.graphs[q.To()]
	return eg.DistanceAcross(p, q)
}

// Distance is TryFindNextHop without a bound, returning only the distance.
func (w *WorldGraph) Distance(start, end WorldPoint) float64 {
	hop, _ := w.TryFindNextHop(start, end, Unreachable)
	return hop.Distance
}
