package testutil

import (
	"testing"

	"github.com/udisondev/wayfinder/internal/nav"
	"github.com/udisondev/wayfinder/internal/world"
)

// Location builds a location from legend rows or fails the test.
func Location(tb testing.TB, name string, rows []string, portals nav.PortalSet) *world.Location {
	tb.Helper()
	l, err := world.NewLocation(name, rows, portals)
	if err != nil {
		tb.Fatalf("building location %s: %v", name, err)
	}
	return l
}

// TwoRoomWorld returns two open 5x3 rooms joined by a warp each way:
// A(4,1) → B(0,1) and B(0,2) → A(4,2).
func TwoRoomWorld(tb testing.TB) *world.World {
	tb.Helper()
	rows := []string{".....", ".....", "....."}
	w := world.New()
	w.Add(
		Location(tb, "A", rows, nav.PortalSet{
			Warps: []nav.Warp{{X: 4, Y: 1, Target: "B", TargetX: 0, TargetY: 1}},
		}),
		Location(tb, "B", rows, nav.PortalSet{
			Warps: []nav.Warp{{X: 0, Y: 2, Target: "A", TargetX: 4, TargetY: 2}},
		}),
	)
	return w
}

// Graph builds and rebuilds a contract-checked graph over w.
func Graph(tb testing.TB, w *world.World) *nav.WorldGraph {
	tb.Helper()
	g, err := nav.NewWorldGraph(w, w, nav.Options{CheckContracts: true})
	if err != nil {
		tb.Fatalf("creating world graph: %v", err)
	}
	if err := g.Rebuild(tb.Context()); err != nil {
		tb.Fatalf("building world graph: %v", err)
	}
	return g
}
