package world

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/wayfinder/internal/nav"
)

// LocationFile is the YAML form of one location.
type LocationFile struct {
	Name      string         `yaml:"name"`
	Tiles     []string       `yaml:"tiles"`
	Warps     []WarpFile     `yaml:"warps"`
	Doors     []WarpFile     `yaml:"doors"`
	Buildings []BuildingFile `yaml:"buildings"`
	Actions   []ActionFile   `yaml:"actions"`
}

// WarpFile describes a warp or door warp.
type WarpFile struct {
	X      int    `yaml:"x"`
	Y      int    `yaml:"y"`
	Target string `yaml:"target"`
	ToX    int    `yaml:"to_x"`
	ToY    int    `yaml:"to_y"`
}

// BuildingFile describes a building door.
type BuildingFile struct {
	X        int    `yaml:"x"`
	Y        int    `yaml:"y"`
	DoorX    int    `yaml:"door_x"`
	DoorY    int    `yaml:"door_y"`
	Interior string `yaml:"interior"`
	EntryX   int    `yaml:"entry_x"`
	EntryY   int    `yaml:"entry_y"`
}

// ActionFile attaches a tile action string to a tile.
type ActionFile struct {
	X      int    `yaml:"x"`
	Y      int    `yaml:"y"`
	Action string `yaml:"action"`
}

// ParseLocation decodes one YAML location document.
func ParseLocation(data []byte) (*Location, error) {
	var f LocationFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing location: %w", err)
	}
	return f.Location()
}

// Location builds the runtime location from its file form.
func (f LocationFile) Location() (*Location, error) {
	var ps nav.PortalSet
	for _, w := range f.Warps {
		ps.Warps = append(ps.Warps, nav.Warp{X: w.X, Y: w.Y, Target: w.Target, TargetX: w.ToX, TargetY: w.ToY})
	}
	for _, d := range f.Doors {
		ps.Doors = append(ps.Doors, nav.DoorWarp{X: d.X, Y: d.Y, Target: d.Target, TargetX: d.ToX, TargetY: d.ToY})
	}
	for _, b := range f.Buildings {
		ps.Buildings = append(ps.Buildings, nav.BuildingDoor{
			AnchorX:     b.X,
			AnchorY:     b.Y,
			DoorOffsetX: b.DoorX,
			DoorOffsetY: b.DoorY,
			Interior:    b.Interior,
			EntryX:      b.EntryX,
			EntryY:      b.EntryY,
		})
	}
	for _, a := range f.Actions {
		ps.Actions = append(ps.Actions, nav.TileAction{X: a.X, Y: a.Y, Action: a.Action})
	}
	return NewLocation(f.Name, f.Tiles, ps)
}

// FileOf converts a location back to its file form.
func FileOf(l *Location) LocationFile {
	f := LocationFile{Name: l.name, Tiles: l.rows}
	for _, w := range l.portals.Warps {
		f.Warps = append(f.Warps, WarpFile{X: w.X, Y: w.Y, Target: w.Target, ToX: w.TargetX, ToY: w.TargetY})
	}
	for _, d := range l.portals.Doors {
		f.Doors = append(f.Doors, WarpFile{X: d.X, Y: d.Y, Target: d.Target, ToX: d.TargetX, ToY: d.TargetY})
	}
	for _, b := range l.portals.Buildings {
		f.Buildings = append(f.Buildings, BuildingFile{
			X:        b.AnchorX,
			Y:        b.AnchorY,
			DoorX:    b.DoorOffsetX,
			DoorY:    b.DoorOffsetY,
			Interior: b.Interior,
			EntryX:   b.EntryX,
			EntryY:   b.EntryY,
		})
	}
	for _, a := range l.portals.Actions {
		f.Actions = append(f.Actions, ActionFile{X: a.X, Y: a.Y, Action: a.Action})
	}
	return f
}

// LoadDir reads every *.yaml and *.yml file in dir, sorted by file name.
func LoadDir(dir string) ([]*Location, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading location dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, e.Name())
		}
	}
	slices.Sort(files)

	locs := make([]*Location, 0, len(files))
	seen := make(map[string]string, len(files))
	for _, name := range files {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		l, err := ParseLocation(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if prev, dup := seen[l.name]; dup {
			return nil, fmt.Errorf("location %s declared in %s and %s", l.name, prev, name)
		}
		seen[l.name] = name
		locs = append(locs, l)
	}
	return locs, nil
}
