package nav

import (
	"container/heap"
	"iter"
	"slices"
)

// expandOrder visits diagonal neighbours first. Among equally distant
// frontier tiles this settles diagonal arrivals earlier, which trims the
// number of decrease-key operations on open floors.
var expandOrder = [8]Direction{NorthEast, SouthEast, SouthWest, NorthWest, North, East, South, West}

// InteriorTree is a single-source shortest path tree over one room's grid.
// Distances are symmetric, so DistanceTo(p) is also the cost of walking
// from p to the root. The tree is immutable once built.
type InteriorTree struct {
	root    WorldPoint
	width   int
	height  int
	dist    []float64
	from    []Direction // last step taken to arrive at each tile
	version uint64
}

// BuildInteriorTree runs Dijkstra from root over grid. An impassable root
// yields a tree where every tile is unreachable.
func BuildInteriorTree(grid *Grid, root WorldPoint, version uint64) *InteriorTree {
	n := grid.width * grid.height
	t := &InteriorTree{
		root:    root,
		width:   grid.width,
		height:  grid.height,
		dist:    make([]float64, n),
		from:    make([]Direction, n),
		version: version,
	}
	for i := range t.dist {
		t.dist[i] = Unreachable
	}
	if !grid.Passable(root.X, root.Y) {
		return t
	}

	q := newTileQueue(t.dist, t.from)
	start := grid.index(root.X, root.Y)
	t.dist[start] = 0
	heap.Push(q, start)

	settled := make([]bool, n)
	for q.Len() > 0 {
		cur := heap.Pop(q).(int)
		settled[cur] = true
		x, y := cur%grid.width, cur/grid.width

		for _, d := range expandOrder {
			if !grid.CanStep(x, y, d) {
				continue
			}
			nx, ny := d.Apply(x, y)
			next := grid.index(nx, ny)
			if settled[next] {
				continue
			}
			nd := t.dist[cur] + d.Cost()
			if nd >= t.dist[next] {
				continue
			}
			t.dist[next] = nd
			t.from[next] = d
			if q.pos[next] < 0 {
				heap.Push(q, next)
			} else {
				heap.Fix(q, q.pos[next])
			}
		}
	}
	return t
}

// Root returns the point the tree was grown from.
func (t *InteriorTree) Root() WorldPoint {
	return t.root
}

// Version returns the topology version the tree was built under.
func (t *InteriorTree) Version() uint64 {
	return t.version
}

// DistanceTo returns the walking distance between p and the root, or
// Unreachable when p is disconnected or outside the room.
func (t *InteriorTree) DistanceTo(p WorldPoint) float64 {
	i, ok := t.indexOf(p)
	if !ok {
		return Unreachable
	}
	return t.dist[i]
}

// ArrivedFrom returns the direction of the final step of the shortest path
// from the root into p. NoDirection for the root and unreachable tiles.
func (t *InteriorTree) ArrivedFrom(p WorldPoint) Direction {
	i, ok := t.indexOf(p)
	if !ok {
		return NoDirection
	}
	return t.from[i]
}

// NextStep returns the tile a walker on p should step to in order to reach
// the root. ok is false when p is the root or unreachable.
func (t *InteriorTree) NextStep(p WorldPoint) (WorldPoint, bool) {
	d := t.ArrivedFrom(p)
	if d == NoDirection || IsUnreachable(t.DistanceTo(p)) {
		return WorldPoint{}, false
	}
	return p.Step(d.Opposite()), true
}

// WalkToRoot lazily yields the shortest path from p to the root, p first
// and root last. Nothing is yielded when p is unreachable.
func (t *InteriorTree) WalkToRoot(p WorldPoint) iter.Seq[WorldPoint] {
	return func(yield func(WorldPoint) bool) {
		if IsUnreachable(t.DistanceTo(p)) {
			return
		}
		cur := p
		// Every step strictly decreases the distance, so a walk never
		// visits more tiles than the room has.
		for range len(t.dist) {
			if !yield(cur) {
				return
			}
			if cur == t.root {
				return
			}
			next, ok := t.NextStep(cur)
			if !ok {
				return
			}
			cur = next
		}
	}
}

// PathFromRoot returns the shortest path from the root to p, root first.
// The result is nil when p is unreachable.
func (t *InteriorTree) PathFromRoot(p WorldPoint) []WorldPoint {
	path := slices.Collect(t.WalkToRoot(p))
	slices.Reverse(path)
	return path
}

// Reachable returns the number of tiles with a finite distance.
func (t *InteriorTree) Reachable() int {
	n := 0
	for _, d := range t.dist {
		if !IsUnreachable(d) {
			n++
		}
	}
	return n
}

func (t *InteriorTree) indexOf(p WorldPoint) (int, bool) {
	if p.Loc != t.root.Loc || p.X < 0 || p.X >= t.width || p.Y < 0 || p.Y >= t.height {
		return 0, false
	}
	return p.Y*t.width + p.X, true
}

// tileQueue is an indexed min-heap of tile indices ordered by distance. pos
// tracks each tile's heap slot so distances can be decreased in place.
type tileQueue struct {
	items []int
	pos   []int
	dist  []float64
	from  []Direction
}

func newTileQueue(dist []float64, from []Direction) *tileQueue {
	pos := make([]int, len(dist))
	for i := range pos {
		pos[i] = -1
	}
	return &tileQueue{
		items: make([]int, 0, 64),
		pos:   pos,
		dist:  dist,
		from:  from,
	}
}

func (q *tileQueue) Len() int { return len(q.items) }

func (q *tileQueue) Less(i, j int) bool {
	a, b := q.items[i], q.items[j]
	if q.dist[a] != q.dist[b] {
		return q.dist[a] < q.dist[b]
	}
	return q.from[a].IsDiagonal() && !q.from[b].IsDiagonal()
}

func (q *tileQueue) Swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
	q.pos[q.items[i]] = i
	q.pos[q.items[j]] = j
}

func (q *tileQueue) Push(x any) {
	tile := x.(int)
	q.pos[tile] = len(q.items)
	q.items = append(q.items, tile)
}

func (q *tileQueue) Pop() any {
	n := len(q.items)
	tile := q.items[n-1]
	q.items = q.items[:n-1]
	q.pos[tile] = -1
	return tile
}
