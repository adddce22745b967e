package nav

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocationGraphDeduplicatesPortals(t *testing.T) {
	h := twoRoomHost()
	h.addWarp("A", 4, 2, "B", 0, 2)
	set := h.portals["A"]
	set.Actions = append(set.Actions, TileAction{X: 4, Y: 2, Action: "Warp 0 2 B"})
	set.Doors = append(set.Doors, DoorWarp{X: 4, Y: 2, Target: "B", TargetX: 0, TargetY: 2})
	h.portals["A"] = set

	w := newTestGraph(t, h, Options{})
	a, ok := w.Location(Ref("A"))
	require.True(t, ok)
	b, ok := w.Location(Ref("B"))
	require.True(t, ok)

	require.Len(t, a.Outbound(), 1)
	assert.Len(t, b.Inbound(), 1)
	assert.Len(t, w.Portals(), 1)
}

func TestLocationGraphKeepsFirstPortalOnSharedSource(t *testing.T) {
	h := twoRoomHost()
	h.addWarp("A", 4, 2, "B", 0, 3)

	w := newTestGraph(t, h, Options{})
	a, _ := w.Location(Ref("A"))

	require.Len(t, a.Outbound(), 1)
	portal, ok := a.OutboundAt(mustPoint(t, w, "A", 4, 2))
	require.True(t, ok)
	assert.Equal(t, mustPoint(t, w, "B", 0, 2), portal.Target)
}

func TestLocationGraphPortalEndpoints(t *testing.T) {
	h := twoRoomHost()
	h.addWarp("A", -1, 1, "B", 5, 1) // sentinel edge on both ends
	h.addWarp("A", -3, 3, "B", 0, 0) // too far outside
	h.addWarp("A", 0, 4, "Nowhere", 0, 0)

	w := newTestGraph(t, h, Options{})
	a, _ := w.Location(Ref("A"))

	require.Len(t, a.Outbound(), 2)
	edge, ok := a.OutboundAt(mustPoint(t, w, "A", 0, 1))
	require.True(t, ok)
	assert.Equal(t, mustPoint(t, w, "B", 4, 1), edge.Target)
}

func TestLocationGraphBridging(t *testing.T) {
	h := newTestHost()
	h.addRoom("River",
		"..#..",
		"..b..",
		"..x..",
	)
	w := newTestGraph(t, h, Options{})
	g, _ := w.Location(Ref("River"))

	assert.False(t, g.Passable(mustPoint(t, w, "River", 2, 0)))
	assert.True(t, g.Passable(mustPoint(t, w, "River", 2, 1)))
	assert.False(t, g.Passable(mustPoint(t, w, "River", 2, 2)))

	tree := g.InteriorTree(mustPoint(t, w, "River", 0, 1))
	assert.Equal(t, 4.0, tree.DistanceTo(mustPoint(t, w, "River", 4, 1)))
}

func TestLocationGraphDistances(t *testing.T) {
	h := twoRoomHost()
	h.addWarp("B", 4, 4, "A", 0, 0)
	w := newTestGraph(t, h, Options{})
	a, _ := w.Location(Ref("A"))
	b, _ := w.Location(Ref("B"))

	out := a.Outbound()[0]
	back := b.Outbound()[0]

	assert.Equal(t, 4.0, a.DistancePointToPortal(mustPoint(t, w, "A", 0, 2), out))
	assert.Equal(t, 2.0, b.DistancePortalToPoint(out, mustPoint(t, w, "B", 2, 2)))
	assert.InDelta(t, 2+2*math.Sqrt2, b.DistancePortalToPortal(out, back), 1e-9)
	assert.InDelta(t, 2+2*math.Sqrt2, a.DistanceAcross(out, back), 1e-9)
	assert.Equal(t, 0.0, a.DistanceAcross(back, back))
}

func TestLocationGraphSnap(t *testing.T) {
	h := newTestHost()
	h.addRoom("Cave",
		"...",
		"###",
		"#.#",
	)
	w := newTestGraph(t, h, Options{})
	g, _ := w.Location(Ref("Cave"))

	open := mustPoint(t, w, "Cave", 1, 0)
	assert.Equal(t, open, g.Snap(open))
	assert.Equal(t, open, g.Snap(mustPoint(t, w, "Cave", 1, 1)), "north is tried first")
	assert.Equal(t, mustPoint(t, w, "Cave", 1, 2), g.Snap(mustPoint(t, w, "Cave", 0, 2)), "east before diagonals")

	h.addRoom("Solid", "###", "###", "###")
	require.NoError(t, w.Rebuild(context.Background()))
	solid, _ := w.Location(Ref("Solid"))
	p := mustPoint(t, w, "Solid", 1, 1)
	assert.Equal(t, p, solid.Snap(p), "nothing nearby keeps the original")
}

func TestLocationGraphInboundClusters(t *testing.T) {
	h := newTestHost()
	h.addOpenRoom("Town", 5, 8)
	h.addOpenRoom("Farm", 10, 8)
	h.addWarp("Town", 0, 1, "Farm", 9, 1)
	h.addWarp("Town", 0, 2, "Farm", 9, 2)
	h.addWarp("Town", 0, 3, "Farm", 9, 3)
	h.addWarp("Town", 0, 6, "Farm", 9, 6)
	h.addWarp("Farm", 0, 0, "Farm", 5, 5)

	w := newTestGraph(t, h, Options{})
	farm, _ := w.Location(Ref("Farm"))

	clusters := farm.InboundClusters()
	require.Len(t, clusters, 1)
	assert.Len(t, clusters[0].Members, 3)
	assert.Equal(t, mustPoint(t, w, "Town", 0, 2), clusters[0].Representative().Source)
	assert.Nil(t, Cluster{}.Representative())
}

func TestLocationGraphContractChecks(t *testing.T) {
	h := twoRoomHost()
	w := newTestGraph(t, h, Options{})
	a, _ := w.Location(Ref("A"))
	out := a.Outbound()[0]

	assert.PanicsWithError(t, "contract violation in DistancePointToPortal: point B(1,1) outside A", func() {
		a.DistancePointToPortal(mustPoint(t, w, "B", 1, 1), out)
	})
	assert.Panics(t, func() { a.ExteriorTree(out) }, "portal leaves A, it does not enter it")

	unchecked, err := NewWorldGraph(h, h, Options{})
	require.NoError(t, err)
	require.NoError(t, unchecked.Rebuild(context.Background()))
	ua, _ := unchecked.Location(Ref("A"))
	assert.NotPanics(t, func() {
		ua.DistancePointToPortal(mustPoint(t, w, "B", 1, 1), ua.Outbound()[0])
	})
}
