package world

import (
	"slices"
	"sync"

	"github.com/udisondev/wayfinder/internal/nav"
)

// World is the registry of live locations, keyed by name. It implements
// nav.RoomQuery and nav.PortalSource, and reports added and removed
// locations to subscribers.
type World struct {
	mu        sync.RWMutex
	locations map[string]*Location
	subs      []*Subscription
}

// New creates an empty world.
func New() *World {
	return &World{locations: make(map[string]*Location)}
}

// Add inserts or replaces locations. Only names that were not present are
// reported as added.
func (w *World) Add(locs ...*Location) {
	w.mu.Lock()
	var added []string
	for _, l := range locs {
		if _, ok := w.locations[l.name]; !ok {
			added = append(added, l.name)
		}
		w.locations[l.name] = l
	}
	subs := w.subs
	w.mu.Unlock()

	publish(subs, nav.Change{Added: added})
}

// Remove deletes locations by name.
func (w *World) Remove(names ...string) {
	w.mu.Lock()
	var removed []string
	for _, n := range names {
		if _, ok := w.locations[n]; ok {
			delete(w.locations, n)
			removed = append(removed, n)
		}
	}
	subs := w.subs
	w.mu.Unlock()

	publish(subs, nav.Change{Removed: removed})
}

// Replace swaps the whole location set, reporting the difference.
func (w *World) Replace(locs []*Location) {
	next := make(map[string]*Location, len(locs))
	for _, l := range locs {
		next[l.name] = l
	}

	w.mu.Lock()
	var c nav.Change
	for name := range next {
		if _, ok := w.locations[name]; !ok {
			c.Added = append(c.Added, name)
		}
	}
	for name := range w.locations {
		if _, ok := next[name]; !ok {
			c.Removed = append(c.Removed, name)
		}
	}
	w.locations = next
	subs := w.subs
	w.mu.Unlock()

	slices.Sort(c.Added)
	slices.Sort(c.Removed)
	publish(subs, c)
}

// Location returns a location by name.
func (w *World) Location(name string) (*Location, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	l, ok := w.locations[name]
	return l, ok
}

// Room implements nav.RoomQuery.
func (w *World) Room(name string) (nav.Room, bool) {
	l, ok := w.Location(name)
	if !ok {
		return nil, false
	}
	return l, true
}

// RoomNames implements nav.RoomQuery. Names are sorted.
func (w *World) RoomNames() []string {
	w.mu.RLock()
	names := make([]string, 0, len(w.locations))
	for n := range w.locations {
		names = append(names, n)
	}
	w.mu.RUnlock()
	slices.Sort(names)
	return names
}

// Portals implements nav.PortalSource.
func (w *World) Portals(room string) nav.PortalSet {
	l, ok := w.Location(room)
	if !ok {
		return nav.PortalSet{}
	}
	return l.portals
}

// Len returns the number of locations.
func (w *World) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.locations)
}

// Subscribe registers for location add/remove notifications.
func (w *World) Subscribe() *Subscription {
	s := &Subscription{notify: make(chan struct{}, 1)}
	w.mu.Lock()
	w.subs = append(w.subs, s)
	w.mu.Unlock()
	return s
}

// Unsubscribe stops notifications to s.
func (w *World) Unsubscribe(s *Subscription) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.subs = slices.DeleteFunc(slices.Clone(w.subs), func(x *Subscription) bool { return x == s })
}

func publish(subs []*Subscription, c nav.Change) {
	if len(c.Added) == 0 && len(c.Removed) == 0 {
		return
	}
	for _, s := range subs {
		s.push(c)
	}
}

// Subscription accumulates changes until the consumer drains them, so a
// slow consumer never blocks the world and never misses an update.
type Subscription struct {
	mu      sync.Mutex
	pending nav.Change
	notify  chan struct{}
}

// C is signalled whenever changes are pending.
func (s *Subscription) C() <-chan struct{} {
	return s.notify
}

// Drain returns every change accumulated since the last call.
func (s *Subscription) Drain() nav.Change {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.pending
	s.pending = nav.Change{}
	return c
}

func (s *Subscription) push(c nav.Change) {
	s.mu.Lock()
	s.pending.Added = append(s.pending.Added, c.Added...)
	s.pending.Removed = append(s.pending.Removed, c.Removed...)
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}
