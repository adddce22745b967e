package nav

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/zyedidia/generic/mapset"
	"golang.org/x/sync/errgroup"
)

// topology is one published state of the world graph. Everything that
// depends on portal layout, including every cached tree, hangs off a
// topology, so swapping the pointer invalidates all of it at once.
type topology struct {
	version uint64
	checks  contracts

	graphs    map[LocationRef]*LocationGraph
	order     []LocationRef
	portals   []*WarpNode
	reachable []*WarpNode
	clusters  int
}

// topologySource is what a rebuild reads from.
type topologySource struct {
	names    []string
	resolver *Resolver
	portals  PortalSource
	tracker  *Tracker
	added    []PortalDecl
	removed  mapset.Set[WarpKey]
}

func buildTopology(src topologySource, version uint64, checks contracts) *topology {
	topo := &topology{
		version: version,
		checks:  checks,
		graphs:  make(map[LocationRef]*LocationGraph, len(src.names)),
	}

	for _, name := range src.names {
		room, err := src.resolver.Resolve(Ref(name))
		if err != nil {
			slog.Warn("location lookup failed", "location", name, "error", err)
			continue
		}
		g := newLocationGraph(room, topo)
		topo.graphs[g.ref] = g
		topo.order = append(topo.order, g.ref)
	}

	for _, ref := range topo.order {
		decls, errs := src.portals.Portals(ref.name).Flatten(ref.name)
		for _, err := range errs {
			slog.Warn("skip portal", "location", ref.name, "error", err)
		}
		for _, d := range decls {
			topo.register(d, src)
		}
	}
	for _, d := range src.added {
		topo.register(d, src)
	}

	for _, ref := range topo.order {
		g := topo.graphs[ref]
		if len(g.inboundOrder) > 0 {
			topo.reachable = append(topo.reachable, g.outboundOrder...)
		}
		topo.clusters += len(g.InboundClusters())
	}
	return topo
}

// register validates a declaration and links it into the source and target
// graphs.
func (t *topology) register(d PortalDecl, src topologySource) {
	from, ok := t.graphs[Ref(d.From)]
	if !ok {
		return
	}
	to, ok := t.graphs[Ref(d.Target)]
	if !ok {
		if src.tracker.Ignored(d.Target) {
			slog.Debug("skip portal into untracked location", "from", d.From, "target", d.Target)
		} else {
			slog.Warn("location lookup failed", "from", d.From, "target", d.Target, "error", ErrLocationNotFound)
		}
		return
	}

	source, err := from.Point(d.X, d.Y)
	if err != nil {
		slog.Warn("skip portal", "kind", d.Kind, "error", err)
		return
	}
	target, err := to.Point(d.TargetX, d.TargetY)
	if err != nil {
		slog.Warn("skip portal", "kind", d.Kind, "error", err)
		return
	}

	w := NewWarpNode(source, target, d.Kind)
	if src.removed.Has(w.Key()) {
		return
	}
	if from.addOutbound(w) {
		to.addInbound(w)
		t.portals = append(t.portals, w)
	}
}

// prewarm builds the interior tree of every outbound portal source. Each
// worker owns whole rooms, so no two goroutines touch the same cache.
func (t *topology) prewarm(ctx context.Context, workers int) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, ref := range t.order {
		lg := t.graphs[ref]
		if len(lg.outboundOrder) == 0 {
			continue
		}
		g.Go(func() error {
			for _, w := range lg.outboundOrder {
				if err := gctx.Err(); err != nil {
					return fmt.Errorf("prewarming %s: %w", ref.name, err)
				}
				lg.InteriorTree(w.Source)
			}
			return nil
		})
	}
	return g.Wait()
}

func (t *topology) trees() (interior, exterior int) {
	for _, g := range t.graphs {
		i, e := g.CachedTrees()
		interior += i
		exterior += e
	}
	return interior, exterior
}
