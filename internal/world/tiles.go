package world

import (
	"fmt"

	"github.com/udisondev/wayfinder/internal/nav"
)

// Tile legend used by location files and the database.
const (
	TileFloor        = '.'
	TileBlocked      = '#'
	TileWater        = '~'
	TileBridge       = '=' // building-layer tile marked passable
	TileNoPassage    = '!' // back layer forbids passage
	TileClosedBridge = 'X' // bridge whose back layer forbids passage
)

// terrainOf decodes one legend byte.
func terrainOf(c byte) (nav.Terrain, error) {
	switch c {
	case TileFloor:
		return nav.Terrain{}, nil
	case TileBlocked, TileWater:
		return nav.Terrain{Blocked: true}, nil
	case TileBridge:
		return nav.Terrain{Blocked: true, PassableOverBuildings: true}, nil
	case TileNoPassage:
		return nav.Terrain{BackImpassable: true}, nil
	case TileClosedBridge:
		return nav.Terrain{Blocked: true, PassableOverBuildings: true, BackImpassable: true}, nil
	}
	return nav.Terrain{}, fmt.Errorf("unknown tile %q", c)
}
