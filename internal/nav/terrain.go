package nav

// Terrain is what the host knows about one tile.
type Terrain struct {
	// Blocked is set when default terrain rules make the tile impassable
	// (a building tile, water, a wall).
	Blocked bool
	// PassableOverBuildings marks a blocked tile that is explicitly walkable
	// anyway, such as a bridge drawn on the buildings layer.
	PassableOverBuildings bool
	// BackImpassable is the back layer forbidding passage outright.
	BackImpassable bool
}

// Passable applies the bridging rule: a blocked tile flagged passable over
// buildings can be walked on unless the back layer forbids it.
func (t Terrain) Passable() bool {
	if !t.Blocked {
		return !t.BackImpassable
	}
	return t.PassableOverBuildings && !t.BackImpassable
}
