package world

import (
	"errors"
	"fmt"

	"github.com/udisondev/wayfinder/internal/nav"
)

var (
	// ErrEmptyLocation is returned for a location without tiles.
	ErrEmptyLocation = errors.New("location has no tiles")
	// ErrNonRectangular is returned when tile rows differ in length.
	ErrNonRectangular = errors.New("tile rows differ in length")
)

// Location is one room of the host world: a rectangular tile map plus the
// portals it declares. Implements nav.Room.
type Location struct {
	name    string
	width   int
	height  int
	rows    []string
	terrain []nav.Terrain
	portals nav.PortalSet
}

// NewLocation validates the tile rows and decodes them with the tile legend.
func NewLocation(name string, rows []string, portals nav.PortalSet) (*Location, error) {
	if name == "" {
		return nil, errors.New("location name is empty")
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("location %s: %w", name, ErrEmptyLocation)
	}
	w, h := len(rows[0]), len(rows)
	terrain := make([]nav.Terrain, 0, w*h)
	for y, row := range rows {
		if len(row) != w {
			return nil, fmt.Errorf("location %s row %d: %w", name, y, ErrNonRectangular)
		}
		for x := range w {
			t, err := terrainOf(row[x])
			if err != nil {
				return nil, fmt.Errorf("location %s (%d,%d): %w", name, x, y, err)
			}
			terrain = append(terrain, t)
		}
	}
	return &Location{
		name:    name,
		width:   w,
		height:  h,
		rows:    append([]string(nil), rows...),
		terrain: terrain,
		portals: portals,
	}, nil
}

// Name returns the location name.
func (l *Location) Name() string {
	return l.name
}

// Size returns the tile dimensions.
func (l *Location) Size() (int, int) {
	return l.width, l.height
}

// Terrain returns what is known about the tile at (x, y). Tiles outside the
// map read as blocked.
func (l *Location) Terrain(x, y int) nav.Terrain {
	if x < 0 || x >= l.width || y < 0 || y >= l.height {
		return nav.Terrain{Blocked: true}
	}
	return l.terrain[y*l.width+x]
}

// Rows returns the tile rows in legend form.
func (l *Location) Rows() []string {
	return l.rows
}

// Portals returns the declared warps, doors, buildings and tile actions.
func (l *Location) Portals() nav.PortalSet {
	return l.portals
}
