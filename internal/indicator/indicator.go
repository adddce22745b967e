// Package indicator turns navigation queries into a per-subscriber
// direction indicator: the nearest of the subscriber's targets, the next
// hop toward it and an 8-way arrow.
package indicator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/udisondev/wayfinder/internal/nav"
)

var (
	// ErrStopped is returned by calls made after Run has returned.
	ErrStopped = errors.New("indicator service stopped")
	// ErrUnknownSubscriber is returned for ids that never subscribed.
	ErrUnknownSubscriber = errors.New("unknown subscriber")
	// ErrDuplicateSubscriber is returned when an id subscribes twice.
	ErrDuplicateSubscriber = errors.New("subscriber already registered")
)

// Target is a tile in a named location.
type Target struct {
	Location string
	X, Y     int
}

// Frame is one indicator update. Found is false when no target is
// reachable; the remaining fields are then zero and Distance is
// nav.Unreachable.
type Frame struct {
	Subscriber string
	Target     Target
	NextHop    nav.WorldPoint
	Portal     string
	Distance   float64
	Arrow      nav.Direction
	Found      bool
	Version    uint64
}

// ChangeFeed delivers location add/remove batches from the host world.
type ChangeFeed interface {
	C() <-chan struct{}
	Drain() nav.Change
}

// Config tunes the service.
type Config struct {
	// Interval between refreshes; one refresh per simulated second.
	Interval time.Duration
	// Limit bounds query distance. Zero means unbounded.
	Limit float64
}

type subscriber struct {
	position Target
	placed   bool
	targets  []Target
	frames   chan Frame
	last     Frame
	sent     bool
}

// Service owns a WorldGraph and answers every query on the goroutine that
// runs Run. Other goroutines talk to it through its methods.
type Service struct {
	graph   *nav.WorldGraph
	changes ChangeFeed
	cfg     Config

	cmds chan func()
	done chan struct{}

	// owned by the Run goroutine
	subs map[string]*subscriber
	tick uint64
}

// NewService creates a service over graph. changes may be nil when the
// world never changes.
func NewService(graph *nav.WorldGraph, changes ChangeFeed, cfg Config) *Service {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	return &Service{
		graph:   graph,
		changes: changes,
		cfg:     cfg,
		cmds:    make(chan func()),
		done:    make(chan struct{}),
		subs:    make(map[string]*subscriber),
	}
}

// Run refreshes every subscriber on each tick and applies world changes
// until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	defer close(s.done)

	if s.graph.Version() == 0 {
		if err := s.graph.Rebuild(ctx); err != nil {
			return fmt.Errorf("initial world graph build: %w", err)
		}
	}

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	var changes <-chan struct{}
	if s.changes != nil {
		changes = s.changes.C()
	}

	slog.Info("indicator service started", "interval", s.cfg.Interval, "limit", s.cfg.Limit)

	for {
		select {
		case <-ctx.Done():
			slog.Info("indicator service stopping", "subscribers", len(s.subs))
			for id := range s.subs {
				s.drop(id)
			}
			return nil

		case fn := <-s.cmds:
			fn()

		case <-changes:
			c := s.changes.Drain()
			rebuilt, err := s.graph.HandleChange(ctx, c)
			if err != nil {
				if ctx.Err() != nil {
					continue
				}
				return fmt.Errorf("applying world change: %w", err)
			}
			slog.Debug("world change", "added", len(c.Added), "removed", len(c.Removed), "rebuilt", rebuilt)
			if rebuilt {
				s.UpdateAll()
			}

		case <-ticker.C:
			s.tick++
			s.graph.Advance(s.tick)
			s.UpdateAll()
		}
	}
}

// do runs fn on the Run goroutine and waits for its result.
func (s *Service) do(ctx context.Context, fn func() error) error {
	errc := make(chan error, 1)
	select {
	case s.cmds <- func() { errc <- fn() }:
	case <-s.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe registers id and returns its frame channel. The channel holds
// only the latest frame and is closed on Unsubscribe or shutdown.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan Frame, error) {
	var frames chan Frame
	err := s.do(ctx, func() error {
		if _, ok := s.subs[id]; ok {
			return fmt.Errorf("subscribe %q: %w", id, ErrDuplicateSubscriber)
		}
		frames = make(chan Frame, 1)
		s.subs[id] = &subscriber{frames: frames}
		slog.Debug("indicator subscriber registered", "id", id, "total", len(s.subs))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return frames, nil
}

// Unsubscribe removes id and closes its frame channel.
func (s *Service) Unsubscribe(ctx context.Context, id string) error {
	return s.do(ctx, func() error {
		if _, ok := s.subs[id]; !ok {
			return fmt.Errorf("unsubscribe %q: %w", id, ErrUnknownSubscriber)
		}
		s.drop(id)
		slog.Debug("indicator subscriber removed", "id", id, "remaining", len(s.subs))
		return nil
	})
}

// SetPosition moves the subscriber and refreshes its frame.
func (s *Service) SetPosition(ctx context.Context, id string, pos Target) error {
	return s.do(ctx, func() error {
		sub, ok := s.subs[id]
		if !ok {
			return fmt.Errorf("set position for %q: %w", id, ErrUnknownSubscriber)
		}
		sub.position = pos
		sub.placed = true
		s.update(id, sub)
		return nil
	})
}

// SetTargets replaces the subscriber's targets and refreshes its frame.
func (s *Service) SetTargets(ctx context.Context, id string, targets []Target) error {
	targets = append([]Target(nil), targets...)
	return s.do(ctx, func() error {
		sub, ok := s.subs[id]
		if !ok {
			return fmt.Errorf("set targets for %q: %w", id, ErrUnknownSubscriber)
		}
		sub.targets = targets
		s.update(id, sub)
		return nil
	})
}

// Rebuild forces a full graph rebuild, for reloads that change tiles or
// portals without adding or removing locations.
func (s *Service) Rebuild(ctx context.Context) error {
	return s.do(ctx, func() error {
		if err := s.graph.Rebuild(ctx); err != nil {
			return err
		}
		s.UpdateAll()
		return nil
	})
}

// Query runs a single next-hop query on the owning goroutine.
func (s *Service) Query(ctx context.Context, from, to Target) (nav.NextHop, bool, error) {
	var (
		hop nav.NextHop
		ok  bool
	)
	err := s.do(ctx, func() error {
		start, err := s.graph.Point(from.Location, from.X, from.Y)
		if err != nil {
			return err
		}
		end, err := s.graph.Point(to.Location, to.X, to.Y)
		if err != nil {
			return err
		}
		hop, ok = s.graph.TryFindNextHop(start, end, s.limit())
		return nil
	})
	return hop, ok, err
}

// UpdateAll recomputes and publishes every subscriber's frame. Must be
// called from the goroutine that owns the service.
func (s *Service) UpdateAll() {
	start := time.Now()
	for id, sub := range s.subs {
		s.update(id, sub)
	}
	if len(s.subs) > 0 {
		slog.Debug("indicator refresh completed", "subscribers", len(s.subs), "duration", time.Since(start))
	}
}

func (s *Service) update(id string, sub *subscriber) {
	f := s.frame(id, sub)
	if sub.sent && f == sub.last {
		return
	}
	sub.last = f
	sub.sent = true
	publish(sub.frames, f)
}

// frame picks the target with the smallest distance. Ties keep the target
// listed first.
func (s *Service) frame(id string, sub *subscriber) Frame {
	f := Frame{Subscriber: id, Distance: nav.Unreachable, Version: s.graph.Version()}
	if !sub.placed || len(sub.targets) == 0 {
		return f
	}
	pos, err := s.graph.Point(sub.position.Location, sub.position.X, sub.position.Y)
	if err != nil {
		slog.Debug("subscriber position not navigable", "id", id, "error", err)
		return f
	}
	// Queries measure from the snapped tile, so the arrow does too.
	pos = s.graph.Snap(pos)

	best := s.limit()
	for _, t := range sub.targets {
		end, err := s.graph.Point(t.Location, t.X, t.Y)
		if err != nil {
			slog.Debug("target not navigable", "id", id, "target", t, "error", err)
			continue
		}
		hop, ok := s.graph.TryFindNextHop(pos, end, best)
		if !ok {
			continue
		}
		best = hop.Distance
		f.Target = t
		f.NextHop = hop.Point
		f.Distance = hop.Distance
		f.Arrow = nav.DirectionTo(pos.X, pos.Y, hop.Point.X, hop.Point.Y)
		f.Found = true
		f.Portal = ""
		if hop.Portal != nil {
			f.Portal = hop.Portal.String()
		}
	}
	return f
}

func (s *Service) limit() float64 {
	if s.cfg.Limit <= 0 {
		return nav.Unreachable
	}
	return s.cfg.Limit
}

func (s *Service) drop(id string) {
	close(s.subs[id].frames)
	delete(s.subs, id)
}

// publish replaces any unread frame with f. The Run goroutine is the only
// sender, so the second send cannot block.
func publish(ch chan Frame, f Frame) {
	select {
	case ch <- f:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- f
}
