package nav

import (
	"fmt"
	"strconv"
	"strings"
)

// PortalKind names the declaration source a portal came from.
type PortalKind uint8

const (
	KindWarp PortalKind = iota
	KindDoor
	KindBuilding
	KindAction
	KindScripted
)

var portalKindNames = [...]string{"warp", "door", "building", "action", "scripted"}

func (k PortalKind) String() string {
	if int(k) < len(portalKindNames) {
		return portalKindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// ParsePortalKind is the inverse of PortalKind.String.
func ParsePortalKind(s string) (PortalKind, error) {
	for i, name := range portalKindNames {
		if name == s {
			return PortalKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown portal kind %q", s)
}

// Warp is a plain point-to-point transition declared by a room.
type Warp struct {
	X, Y    int
	Target  string
	TargetX int
	TargetY int
}

// DoorWarp is a warp triggered by walking into a door tile.
type DoorWarp struct {
	X, Y    int
	Target  string
	TargetX int
	TargetY int
}

// BuildingDoor is the door of a building placed in the room. The door tile
// sits at Anchor+DoorOffset; walking in lands on the interior's entry.
type BuildingDoor struct {
	AnchorX, AnchorY int
	DoorOffsetX      int
	DoorOffsetY      int
	Interior         string
	EntryX, EntryY   int
}

// DoorTile returns the room coordinates of the building's door.
func (b BuildingDoor) DoorTile() (int, int) {
	return b.AnchorX + b.DoorOffsetX, b.AnchorY + b.DoorOffsetY
}

// TileAction is a scripted action string attached to a tile, for example
// "Warp 10 12 Town" or "MagicWarp Desert 35 43".
type TileAction struct {
	X, Y   int
	Action string
}

// PortalSet groups everything a room declares that can move a walker to
// another point.
type PortalSet struct {
	Warps     []Warp
	Doors     []DoorWarp
	Buildings []BuildingDoor
	Actions   []TileAction
}

// PortalSource enumerates the portal declarations of a room.
type PortalSource interface {
	Portals(room string) PortalSet
}

// PortalDecl is one normalized declaration, before the endpoints are
// validated against room sizes.
type PortalDecl struct {
	Kind    PortalKind
	From    string
	X, Y    int
	Target  string
	TargetX int
	TargetY int
}

// Flatten converts every declaration source into PortalDecls. Tile actions
// outside the vocabulary are dropped; recognized actions with bad arguments
// are reported in errs and skipped.
func (s PortalSet) Flatten(room string) (decls []PortalDecl, errs []error) {
	decls = make([]PortalDecl, 0, len(s.Warps)+len(s.Doors)+len(s.Buildings)+len(s.Actions))
	for _, w := range s.Warps {
		decls = append(decls, PortalDecl{KindWarp, room, w.X, w.Y, w.Target, w.TargetX, w.TargetY})
	}
	for _, d := range s.Doors {
		decls = append(decls, PortalDecl{KindDoor, room, d.X, d.Y, d.Target, d.TargetX, d.TargetY})
	}
	for _, b := range s.Buildings {
		x, y := b.DoorTile()
		decls = append(decls, PortalDecl{KindBuilding, room, x, y, b.Interior, b.EntryX, b.EntryY})
	}
	for _, a := range s.Actions {
		decl, ok, err := ParseAction(room, a)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			decls = append(decls, decl)
		}
	}
	return decls, errs
}

// actionParsers is the fixed vocabulary of tile actions that move the
// walker. Each parser receives the arguments after the identifier.
var actionParsers = map[string]func(args []string) (target string, x, y int, err error){
	"Warp":                parseXYLocation,
	"LockedDoorWarp":      parseXYLocation,
	"WarpMensLocker":      parseXYLocation,
	"WarpWomensLocker":    parseXYLocation,
	"MagicWarp":           parseLocationXY,
	"WarpCommunityCenter": parseCommunityCenter,
}

// IsWarpAction reports whether the action identifier is in the vocabulary.
func IsWarpAction(id string) bool {
	_, ok := actionParsers[id]
	return ok
}

// ParseAction converts a tile action to a portal declaration. ok is false
// for identifiers outside the vocabulary; that is not an error.
func ParseAction(room string, a TileAction) (decl PortalDecl, ok bool, err error) {
	fields := strings.Fields(a.Action)
	if len(fields) == 0 {
		return PortalDecl{}, false, nil
	}
	parse, known := actionParsers[fields[0]]
	if !known {
		return PortalDecl{}, false, nil
	}
	target, x, y, err := parse(fields[1:])
	if err != nil {
		return PortalDecl{}, false, fmt.Errorf("%s(%d,%d) %q: %w", room, a.X, a.Y, a.Action, err)
	}
	return PortalDecl{
		Kind:    KindAction,
		From:    room,
		X:       a.X,
		Y:       a.Y,
		Target:  target,
		TargetX: x,
		TargetY: y,
	}, true, nil
}

// parseXYLocation handles "<x> <y> <location> [extra...]".
func parseXYLocation(args []string) (string, int, int, error) {
	if len(args) < 3 {
		return "", 0, 0, ErrMalformedAction
	}
	x, y, err := parseXY(args[0], args[1])
	if err != nil {
		return "", 0, 0, err
	}
	return args[2], x, y, nil
}

// parseLocationXY handles "<location> <x> <y>".
func parseLocationXY(args []string) (string, int, int, error) {
	if len(args) < 3 {
		return "", 0, 0, ErrMalformedAction
	}
	x, y, err := parseXY(args[1], args[2])
	if err != nil {
		return "", 0, 0, err
	}
	return args[0], x, y, nil
}

func parseCommunityCenter([]string) (string, int, int, error) {
	return CommunityCenterName, CommunityCenterX, CommunityCenterY, nil
}

func parseXY(xs, ys string) (int, int, error) {
	x, err := strconv.Atoi(xs)
	if err != nil {
		return 0, 0, fmt.Errorf("x %q: %w", xs, ErrMalformedAction)
	}
	y, err := strconv.Atoi(ys)
	if err != nil {
		return 0, 0, fmt.Errorf("y %q: %w", ys, ErrMalformedAction)
	}
	return x, y, nil
}
