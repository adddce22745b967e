package nav

// Grid is a room's passability, row-major by y then x. It is immutable once
// built.
type Grid struct {
	width  int
	height int
	cells  []bool
}

// NewGrid samples room terrain into a passability grid.
func NewGrid(room Room) *Grid {
	w, h := room.Size()
	g := &Grid{width: w, height: h, cells: make([]bool, w*h)}
	for y := range h {
		for x := range w {
			g.cells[y*w+x] = room.Terrain(x, y).Passable()
		}
	}
	return g
}

// GridFromRows builds a grid from text rows where '#' is impassable and
// every other byte is passable. Rows must have equal length.
func GridFromRows(rows ...string) *Grid {
	h := len(rows)
	w := 0
	if h > 0 {
		w = len(rows[0])
	}
	g := &Grid{width: w, height: h, cells: make([]bool, w*h)}
	for y, row := range rows {
		for x := 0; x < w && x < len(row); x++ {
			g.cells[y*w+x] = row[x] != '#'
		}
	}
	return g
}

// Size returns the grid dimensions.
func (g *Grid) Size() (width, height int) {
	return g.width, g.height
}

// InBounds reports whether (x, y) lies inside the grid.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

// Passable reports whether (x, y) can be walked on. Out-of-bounds tiles are
// impassable.
func (g *Grid) Passable(x, y int) bool {
	if !g.InBounds(x, y) {
		return false
	}
	return g.cells[y*g.width+x]
}

// CanStep reports whether a walker on (x, y) may move one step in d. A
// diagonal step needs at least one of its two corner tiles to be passable.
func (g *Grid) CanStep(x, y int, d Direction) bool {
	nx, ny := d.Apply(x, y)
	if !g.Passable(nx, ny) {
		return false
	}
	if !d.IsDiagonal() {
		return true
	}
	v, h := d.Corners()
	vx, vy := v.Apply(x, y)
	hx, hy := h.Apply(x, y)
	return g.Passable(vx, vy) || g.Passable(hx, hy)
}

// PassableCount returns the number of walkable tiles.
func (g *Grid) PassableCount() int {
	n := 0
	for _, ok := range g.cells {
		if ok {
			n++
		}
	}
	return n
}

func (g *Grid) index(x, y int) int {
	return y*g.width + x
}
