package nav

import "strings"

// Direction is an 8-way bit-set. A single bit names one step direction;
// OR-composed values name subsets such as "anything going up".
// Y grows downward, so North is y-1.
type Direction uint8

// Single step directions.
const (
	North Direction = 1 << iota
	NorthEast
	East
	SouthEast
	South
	SouthWest
	West
	NorthWest
)

// Named subsets.
const (
	NoDirection Direction = 0

	Orthogonal   = North | East | South | West
	Diagonal     = NorthEast | SouthEast | SouthWest | NorthWest
	AnyDirection = Orthogonal | Diagonal

	Up    = North | NorthEast | NorthWest
	Down  = South | SouthEast | SouthWest
	Left  = West | NorthWest | SouthWest
	Right = East | NorthEast | SouthEast
)

// Steps lists the single directions in a fixed order: cardinal before
// diagonal. Start-point snapping and tree expansion iterate this slice.
var Steps = [8]Direction{North, East, South, West, NorthEast, SouthEast, SouthWest, NorthWest}

var directionNames = [8]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// IsIn reports whether d is non-empty and every bit of d is in set.
func (d Direction) IsIn(set Direction) bool {
	return d != NoDirection && d&^set == 0
}

// Overlaps reports whether d and set share at least one direction.
func (d Direction) Overlaps(set Direction) bool {
	return d&set != 0
}

// IsSingle reports whether d names exactly one step direction.
func (d Direction) IsSingle() bool {
	return d != NoDirection && d&(d-1) == 0
}

// IsDiagonal reports whether d is one of the four diagonal steps.
func (d Direction) IsDiagonal() bool {
	return d.IsSingle() && d.IsIn(Diagonal)
}

// Cost returns the walking cost of a single step in direction d.
func (d Direction) Cost() float64 {
	if d.IsDiagonal() {
		return CostDiagonal
	}
	return CostOrthogonal
}

// Delta returns the unit displacement of d. Composite values sum the
// vertical and horizontal components, so Up|Right yields (1, -1).
func (d Direction) Delta() (dx, dy int) {
	if d.Overlaps(Up) {
		dy--
	}
	if d.Overlaps(Down) {
		dy++
	}
	if d.Overlaps(Left) {
		dx--
	}
	if d.Overlaps(Right) {
		dx++
	}
	return dx, dy
}

// Apply displaces (x, y) by one step in direction d.
func (d Direction) Apply(x, y int) (int, int) {
	dx, dy := d.Delta()
	return x + dx, y + dy
}

// Opposite returns the direction pointing the other way.
func (d Direction) Opposite() Direction {
	// Rotating the ring of eight bits by four positions flips every member.
	return d<<4 | d>>4
}

// Corners returns the two orthogonal components of a diagonal step.
// For orthogonal steps both results are NoDirection.
func (d Direction) Corners() (vertical, horizontal Direction) {
	if !d.IsDiagonal() {
		return NoDirection, NoDirection
	}
	switch {
	case d.Overlaps(Up):
		vertical = North
	default:
		vertical = South
	}
	switch {
	case d.Overlaps(Left):
		horizontal = West
	default:
		horizontal = East
	}
	return vertical, horizontal
}

// DirectionTo returns the single direction that best approximates the
// vector from (fromX, fromY) to (toX, toY). Same point → NoDirection.
func DirectionTo(fromX, fromY, toX, toY int) Direction {
	var d Direction
	dx, dy := toX-fromX, toY-fromY
	ax, ay := abs(dx), abs(dy)

	// Within a 2:1 ratio the vector reads as diagonal.
	if dy < 0 && 2*ay >= ax {
		d |= North
	} else if dy > 0 && 2*ay >= ax {
		d |= South
	}
	if dx < 0 && 2*ax >= ay {
		d |= West
	} else if dx > 0 && 2*ax >= ay {
		d |= East
	}
	return fromComponents(d)
}

// fromComponents folds an OR of orthogonal bits into the matching single
// direction.
func fromComponents(c Direction) Direction {
	switch c {
	case North | East:
		return NorthEast
	case South | East:
		return SouthEast
	case South | West:
		return SouthWest
	case North | West:
		return NorthWest
	}
	return c
}

func (d Direction) String() string {
	if d == NoDirection {
		return "none"
	}
	var parts []string
	for i, name := range directionNames {
		if d&(1<<i) != 0 {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, "|")
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
