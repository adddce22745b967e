package nav

import "fmt"

// Room is the host's view of one location: its size and per-tile terrain.
type Room interface {
	Name() string
	Size() (width, height int)
	Terrain(x, y int) Terrain
}

// RoomQuery looks rooms up by name. Implemented by the host world.
type RoomQuery interface {
	Room(name string) (Room, bool)
	RoomNames() []string
}

// LocationRef is a stable, name-keyed handle to a room. It never holds the
// room itself; Resolve looks the live object up on demand.
type LocationRef struct {
	name string
}

// Ref returns a reference to the room called name.
func Ref(name string) LocationRef {
	return LocationRef{name: name}
}

// Name returns the room name the reference points to.
func (r LocationRef) Name() string {
	return r.name
}

// IsZero reports whether r was never assigned.
func (r LocationRef) IsZero() bool {
	return r.name == ""
}

func (r LocationRef) String() string {
	return r.name
}

// Resolver maps LocationRefs to live rooms and caches the answers. The cache
// is dropped whenever the world clock crosses an interval boundary, so
// rooms the host recreated (save/reload) are picked up within one interval.
type Resolver struct {
	rooms    RoomQuery
	interval uint64
	epoch    uint64
	cache    map[string]Room
}

// NewResolver creates a resolver over rooms. interval is measured in world
// ticks; zero selects DefaultResolveInterval.
func NewResolver(rooms RoomQuery, interval uint64) *Resolver {
	if interval == 0 {
		interval = DefaultResolveInterval
	}
	return &Resolver{
		rooms:    rooms,
		interval: interval,
		cache:    make(map[string]Room),
	}
}

// Advance informs the resolver of the current world tick.
func (r *Resolver) Advance(tick uint64) {
	epoch := tick / r.interval
	if epoch == r.epoch {
		return
	}
	r.epoch = epoch
	clear(r.cache)
}

// Resolve returns the live room for ref. A miss is a hard error wrapping
// ErrLocationNotFound.
func (r *Resolver) Resolve(ref LocationRef) (Room, error) {
	if room, ok := r.cache[ref.name]; ok {
		return room, nil
	}
	room, ok := r.rooms.Room(ref.name)
	if !ok {
		return nil, fmt.Errorf("resolving %q: %w", ref.name, ErrLocationNotFound)
	}
	r.cache[ref.name] = room
	return room, nil
}

// Invalidate drops every cached room immediately.
func (r *Resolver) Invalidate() {
	clear(r.cache)
}
