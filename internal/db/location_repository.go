package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/wayfinder/internal/nav"
	"github.com/udisondev/wayfinder/internal/world"
)

// ErrLocationNotFound is returned when a location row does not exist.
var ErrLocationNotFound = errors.New("location not found")

// LocationRepository stores location tile maps and portal declarations.
type LocationRepository struct {
	pool *pgxpool.Pool
}

// NewLocationRepository creates a new location repository.
func NewLocationRepository(pool *pgxpool.Pool) *LocationRepository {
	return &LocationRepository{pool: pool}
}

// Names lists stored location names in order.
func (r *LocationRepository) Names(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT name FROM locations ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing locations: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning location names: %w", err)
	}
	return names, nil
}

// LoadAll loads every stored location.
func (r *LocationRepository) LoadAll(ctx context.Context) ([]*world.Location, error) {
	tiles, err := r.loadTiles(ctx, "")
	if err != nil {
		return nil, err
	}
	portals, err := r.loadPortals(ctx, "")
	if err != nil {
		return nil, err
	}

	names, err := r.Names(ctx)
	if err != nil {
		return nil, err
	}
	locs := make([]*world.Location, 0, len(names))
	for _, name := range names {
		l, err := world.NewLocation(name, tiles[name], portals[name])
		if err != nil {
			return nil, fmt.Errorf("decoding stored location: %w", err)
		}
		locs = append(locs, l)
	}
	return locs, nil
}

// Load loads one location by name.
func (r *LocationRepository) Load(ctx context.Context, name string) (*world.Location, error) {
	tiles, err := r.loadTiles(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(tiles[name]) == 0 {
		return nil, fmt.Errorf("loading location %q: %w", name, ErrLocationNotFound)
	}
	portals, err := r.loadPortals(ctx, name)
	if err != nil {
		return nil, err
	}
	l, err := world.NewLocation(name, tiles[name], portals[name])
	if err != nil {
		return nil, fmt.Errorf("decoding stored location: %w", err)
	}
	return l, nil
}

// Save replaces a location with its current tiles and portals.
func (r *LocationRepository) Save(ctx context.Context, l *world.Location) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	w, h := l.Size()
	_, err = tx.Exec(ctx, `
		INSERT INTO locations (name, width, height, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (name) DO UPDATE
		SET width = EXCLUDED.width, height = EXCLUDED.height, updated_at = now()
	`, l.Name(), w, h)
	if err != nil {
		return fmt.Errorf("upserting location %q: %w", l.Name(), err)
	}

	for _, table := range []string{"location_tiles", "location_portals"} {
		if _, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE location = $1`, l.Name()); err != nil {
			return fmt.Errorf("clearing %s for %q: %w", table, l.Name(), err)
		}
	}

	batch := &pgx.Batch{}
	for y, row := range l.Rows() {
		batch.Queue(`INSERT INTO location_tiles (location, y, tiles) VALUES ($1, $2, $3)`, l.Name(), y, row)
	}
	for _, p := range portalRows(l.Portals()) {
		batch.Queue(`
			INSERT INTO location_portals (location, kind, x, y, door_dx, door_dy, target, target_x, target_y, action)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, l.Name(), p.kind, p.x, p.y, p.doorDX, p.doorDY, p.target, p.targetX, p.targetY, p.action)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("saving location %q: %w", l.Name(), err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing location %q: %w", l.Name(), err)
	}
	return nil
}

// Delete removes a location and everything attached to it.
func (r *LocationRepository) Delete(ctx context.Context, name string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM locations WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("deleting location %q: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("deleting location %q: %w", name, ErrLocationNotFound)
	}
	return nil
}

// loadTiles returns tile rows keyed by location. An empty name loads all.
func (r *LocationRepository) loadTiles(ctx context.Context, name string) (map[string][]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT location, tiles
		FROM location_tiles
		WHERE $1 = '' OR location = $1
		ORDER BY location, y
	`, name)
	if err != nil {
		return nil, fmt.Errorf("loading location tiles: %w", err)
	}
	defer rows.Close()

	tiles := make(map[string][]string)
	for rows.Next() {
		var loc, row string
		if err := rows.Scan(&loc, &row); err != nil {
			return nil, fmt.Errorf("scanning tile row: %w", err)
		}
		tiles[loc] = append(tiles[loc], row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tile rows: %w", err)
	}
	return tiles, nil
}

// loadPortals returns portal declarations keyed by location, each kind in
// insertion order.
func (r *LocationRepository) loadPortals(ctx context.Context, name string) (map[string]nav.PortalSet, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT location, kind, x, y, door_dx, door_dy, target, target_x, target_y, action
		FROM location_portals
		WHERE $1 = '' OR location = $1
		ORDER BY location, id
	`, name)
	if err != nil {
		return nil, fmt.Errorf("loading location portals: %w", err)
	}
	defer rows.Close()

	sets := make(map[string]nav.PortalSet)
	for rows.Next() {
		var (
			loc string
			p   portalRow
		)
		if err := rows.Scan(&loc, &p.kind, &p.x, &p.y, &p.doorDX, &p.doorDY, &p.target, &p.targetX, &p.targetY, &p.action); err != nil {
			return nil, fmt.Errorf("scanning portal row: %w", err)
		}
		set := sets[loc]
		if err := p.appendTo(&set); err != nil {
			return nil, fmt.Errorf("location %q: %w", loc, err)
		}
		sets[loc] = set
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating portal rows: %w", err)
	}
	return sets, nil
}

type portalRow struct {
	kind             string
	x, y             int
	doorDX, doorDY   int
	target           string
	targetX, targetY int
	action           string
}

func portalRows(s nav.PortalSet) []portalRow {
	out := make([]portalRow, 0, len(s.Warps)+len(s.Doors)+len(s.Buildings)+len(s.Actions))
	for _, w := range s.Warps {
		out = append(out, portalRow{kind: nav.KindWarp.String(), x: w.X, y: w.Y, target: w.Target, targetX: w.TargetX, targetY: w.TargetY})
	}
	for _, d := range s.Doors {
		out = append(out, portalRow{kind: nav.KindDoor.String(), x: d.X, y: d.Y, target: d.Target, targetX: d.TargetX, targetY: d.TargetY})
	}
	for _, b := range s.Buildings {
		out = append(out, portalRow{
			kind:    nav.KindBuilding.String(),
			x:       b.AnchorX,
			y:       b.AnchorY,
			doorDX:  b.DoorOffsetX,
			doorDY:  b.DoorOffsetY,
			target:  b.Interior,
			targetX: b.EntryX,
			targetY: b.EntryY,
		})
	}
	for _, a := range s.Actions {
		out = append(out, portalRow{kind: nav.KindAction.String(), x: a.X, y: a.Y, action: a.Action})
	}
	return out
}

func (p portalRow) appendTo(s *nav.PortalSet) error {
	kind, err := nav.ParsePortalKind(p.kind)
	if err != nil {
		return err
	}
	switch kind {
	case nav.KindWarp:
		s.Warps = append(s.Warps, nav.Warp{X: p.x, Y: p.y, Target: p.target, TargetX: p.targetX, TargetY: p.targetY})
	case nav.KindDoor:
		s.Doors = append(s.Doors, nav.DoorWarp{X: p.x, Y: p.y, Target: p.target, TargetX: p.targetX, TargetY: p.targetY})
	case nav.KindBuilding:
		s.Buildings = append(s.Buildings, nav.BuildingDoor{
			AnchorX:     p.x,
			AnchorY:     p.y,
			DoorOffsetX: p.doorDX,
			DoorOffsetY: p.doorDY,
			Interior:    p.target,
			EntryX:      p.targetX,
			EntryY:      p.targetY,
		})
	case nav.KindAction:
		s.Actions = append(s.Actions, nav.TileAction{X: p.x, Y: p.y, Action: p.action})
	default:
		return fmt.Errorf("portal kind %s is not stored", kind)
	}
	return nil
}
