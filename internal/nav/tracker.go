package nav

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/zyedidia/generic/mapset"
	"golang.org/x/crypto/blake2b"
)

// Change is a batch of room additions and removals reported by the host.
type Change struct {
	Added   []string
	Removed []string
}

// Tracker keeps the set of room names the world graph is built from. Rooms
// matching an ignore pattern (procedurally regenerated levels) are never
// tracked. A fingerprint of the tracked set tells whether a batch of
// changes had any net effect.
type Tracker struct {
	ignore      []*regexp.Regexp
	names       mapset.Set[string]
	fingerprint [blake2b.Size256]byte
}

// NewTracker compiles the ignore patterns.
func NewTracker(patterns []string) (*Tracker, error) {
	t := &Tracker{names: mapset.New[string]()}
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compiling ignore pattern %q: %w", p, err)
		}
		t.ignore = append(t.ignore, re)
	}
	t.fingerprint = t.digest()
	return t, nil
}

// Ignored reports whether name matches an ignore pattern.
func (t *Tracker) Ignored(name string) bool {
	for _, re := range t.ignore {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

// Reset replaces the tracked set with the non-ignored names.
func (t *Tracker) Reset(names []string) {
	t.names = mapset.New[string]()
	for _, n := range names {
		if !t.Ignored(n) {
			t.names.Put(n)
		}
	}
	t.fingerprint = t.digest()
}

// Apply folds a change into the tracked set and reports whether the set is
// different from before.
func (t *Tracker) Apply(c Change) bool {
	for _, n := range c.Added {
		if !t.Ignored(n) {
			t.names.Put(n)
		}
	}
	for _, n := range c.Removed {
		t.names.Remove(n)
	}
	next := t.digest()
	changed := next != t.fingerprint
	t.fingerprint = next
	return changed
}

// Names returns the tracked room names, sorted.
func (t *Tracker) Names() []string {
	names := make([]string, 0, t.names.Size())
	t.names.Each(func(n string) {
		names = append(names, n)
	})
	slices.Sort(names)
	return names
}

// Fingerprint returns the digest of the tracked set.
func (t *Tracker) Fingerprint() [blake2b.Size256]byte {
	return t.fingerprint
}

func (t *Tracker) digest() [blake2b.Size256]byte {
	return blake2b.Sum256([]byte(strings.Join(t.Names(), "\x00")))
}
