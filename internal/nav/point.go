package nav

import "fmt"

// WorldPoint is a tile in a room. It is a comparable value and is used
// directly as a map key.
type WorldPoint struct {
	Loc LocationRef
	X   int
	Y   int
}

// NewWorldPoint builds a point inside a room of the given size. Coordinates
// up to EdgeTolerance tiles outside the room are clamped onto the border;
// anything further out fails with ErrOutOfBounds.
func NewWorldPoint(loc LocationRef, width, height, x, y int) (WorldPoint, error) {
	if x < -EdgeTolerance || x > width-1+EdgeTolerance ||
		y < -EdgeTolerance || y > height-1+EdgeTolerance {
		return WorldPoint{}, fmt.Errorf("point %s(%d,%d) in %dx%d room: %w",
			loc.name, x, y, width, height, ErrOutOfBounds)
	}
	return WorldPoint{
		Loc: loc,
		X:   clamp(x, 0, width-1),
		Y:   clamp(y, 0, height-1),
	}, nil
}

// PointIn builds a point in room using the room's own size.
func PointIn(room Room, x, y int) (WorldPoint, error) {
	w, h := room.Size()
	return NewWorldPoint(Ref(room.Name()), w, h, x, y)
}

// Step returns the neighbouring point in direction d. The result is not
// bounds-checked.
func (p WorldPoint) Step(d Direction) WorldPoint {
	p.X, p.Y = d.Apply(p.X, p.Y)
	return p
}

// Chebyshev returns the king-move distance between two points of the same
// room.
func (p WorldPoint) Chebyshev(o WorldPoint) int {
	return max(abs(p.X-o.X), abs(p.Y-o.Y))
}

func (p WorldPoint) String() string {
	return fmt.Sprintf("%s(%d,%d)", p.Loc.name, p.X, p.Y)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
