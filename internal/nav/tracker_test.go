package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerIgnorePatterns(t *testing.T) {
	tr, err := NewTracker([]string{`^UndergroundMine\d+$`, `^VolcanoDungeon\d+$`})
	require.NoError(t, err)

	assert.True(t, tr.Ignored("UndergroundMine77"))
	assert.True(t, tr.Ignored("VolcanoDungeon3"))
	assert.False(t, tr.Ignored("Mine"))
	assert.False(t, tr.Ignored("UndergroundMineEntrance"))
}

func TestTrackerNetChange(t *testing.T) {
	tr, err := NewTracker([]string{`^Cellar\d+$`})
	require.NoError(t, err)
	tr.Reset([]string{"Town", "Farm", "Cellar2"})
	assert.Equal(t, []string{"Farm", "Town"}, tr.Names())

	initial := tr.Fingerprint()
	assert.False(t, tr.Apply(Change{Added: []string{"Cellar3"}}))
	assert.False(t, tr.Apply(Change{Added: []string{"Town"}}))
	assert.True(t, tr.Apply(Change{Added: []string{"Beach"}}))
	assert.True(t, tr.Apply(Change{Removed: []string{"Beach"}}))
	assert.Equal(t, initial, tr.Fingerprint())
}

func TestTrackerFingerprintIgnoresOrder(t *testing.T) {
	a, err := NewTracker(nil)
	require.NoError(t, err)
	b, err := NewTracker(nil)
	require.NoError(t, err)

	a.Reset([]string{"Town", "Farm", "Beach"})
	b.Reset([]string{"Beach", "Town", "Farm"})
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
}

func TestTrackerBadPattern(t *testing.T) {
	_, err := NewTracker([]string{"("})
	assert.Error(t, err)
}
