package nav

import (
	"context"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// testRoom is a room described by text rows: '#' blocked, 'b' a bridge
// (blocked but passable over buildings), 'x' a bridge whose back layer
// forbids passage, anything else open floor.
type testRoom struct {
	name string
	rows []string
}

func (r *testRoom) Name() string { return r.name }

func (r *testRoom) Size() (int, int) {
	if len(r.rows) == 0 {
		return 0, 0
	}
	return len(r.rows[0]), len(r.rows)
}

func (r *testRoom) Terrain(x, y int) Terrain {
	switch r.rows[y][x] {
	case '#':
		return Terrain{Blocked: true}
	case 'b':
		return Terrain{Blocked: true, PassableOverBuildings: true}
	case 'x':
		return Terrain{Blocked: true, PassableOverBuildings: true, BackImpassable: true}
	}
	return Terrain{}
}

// testHost is an in-memory RoomQuery + PortalSource.
type testHost struct {
	rooms   map[string]*testRoom
	portals map[string]PortalSet
}

func newTestHost() *testHost {
	return &testHost{
		rooms:   make(map[string]*testRoom),
		portals: make(map[string]PortalSet),
	}
}

func (h *testHost) Room(name string) (Room, bool) {
	r, ok := h.rooms[name]
	if !ok {
		return nil, false
	}
	return r, true
}

func (h *testHost) RoomNames() []string {
	names := make([]string, 0, len(h.rooms))
	for n := range h.rooms {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

func (h *testHost) Portals(room string) PortalSet {
	return h.portals[room]
}

func (h *testHost) addRoom(name string, rows ...string) {
	h.rooms[name] = &testRoom{name: name, rows: rows}
}

func (h *testHost) addOpenRoom(name string, w, hgt int) {
	row := strings.Repeat(".", w)
	rows := make([]string, hgt)
	for i := range rows {
		rows[i] = row
	}
	h.addRoom(name, rows...)
}

func (h *testHost) removeRoom(name string) {
	delete(h.rooms, name)
	delete(h.portals, name)
}

func (h *testHost) addWarp(from string, x, y int, to string, tx, ty int) {
	set := h.portals[from]
	set.Warps = append(set.Warps, Warp{X: x, Y: y, Target: to, TargetX: tx, TargetY: ty})
	h.portals[from] = set
}

func newTestGraph(t *testing.T, h *testHost, opts Options) *WorldGraph {
	t.Helper()
	opts.CheckContracts = true
	w, err := NewWorldGraph(h, h, opts)
	require.NoError(t, err)
	require.NoError(t, w.Rebuild(context.Background()))
	return w
}

func mustPoint(t *testing.T, w *WorldGraph, room string, x, y int) WorldPoint {
	t.Helper()
	p, err := w.Point(room, x, y)
	require.NoError(t, err)
	return p
}

// twoRoomHost is two open 5x5 rooms with a portal A(4,2) -> B(0,2).
func twoRoomHost() *testHost {
	h := newTestHost()
	h.addOpenRoom("A", 5, 5)
	h.addOpenRoom("B", 5, 5)
	h.addWarp("A", 4, 2, "B", 0, 2)
	return h
}
