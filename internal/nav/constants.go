package nav

import "math"

// Step costs for the interior grid search.
const (
	CostOrthogonal = 1.0
	CostDiagonal   = math.Sqrt2
)

// Unreachable is the distance reported for any point or portal that has no
// path to the root of a tree.
var Unreachable = math.Inf(1)

// EdgeTolerance is how far outside a room a portal endpoint may sit before
// it is rejected. Edge-of-map warps are declared one tile past the border.
const EdgeTolerance = 1

// DefaultResolveInterval is the number of world ticks a resolved location
// stays cached in a Resolver.
const DefaultResolveInterval = 60

// Community center warp target used by the WarpCommunityCenter action.
const (
	CommunityCenterName = "CommunityCenter"
	CommunityCenterX    = 32
	CommunityCenterY    = 23
)

// IsUnreachable reports whether d represents "no path".
func IsUnreachable(d float64) bool {
	return math.IsInf(d, 1)
}
