package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/wayfinder/internal/nav"
	"github.com/udisondev/wayfinder/internal/world"
)

func farm(t *testing.T) *world.Location {
	t.Helper()
	l, err := world.NewLocation("Farm", []string{
		".....",
		".###.",
		"..=..",
	}, nav.PortalSet{
		Warps:     []nav.Warp{{X: 4, Y: 2, Target: "Town", TargetX: 0, TargetY: 1}, {X: 4, Y: 0, Target: "Forest", TargetX: 9, TargetY: 9}},
		Doors:     []nav.DoorWarp{{X: 0, Y: 0, Target: "FarmHouse", TargetX: 3, TargetY: 8}},
		Buildings: []nav.BuildingDoor{{AnchorX: 1, AnchorY: 1, DoorOffsetX: 1, DoorOffsetY: 1, Interior: "Barn", EntryX: 5, EntryY: 9}},
		Actions:   []nav.TileAction{{X: 2, Y: 0, Action: "WarpCommunityCenter"}},
	})
	require.NoError(t, err)
	return l
}

func TestLocationRepository_SaveLoad(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewLocationRepository(pool)
	ctx := context.Background()

	want := farm(t)
	require.NoError(t, repo.Save(ctx, want))

	got, err := repo.Load(ctx, "Farm")
	require.NoError(t, err)
	assert.Equal(t, want.Rows(), got.Rows())
	assert.Equal(t, want.Portals(), got.Portals())

	all, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Farm", all[0].Name())
}

func TestLocationRepository_SaveReplaces(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewLocationRepository(pool)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, farm(t)))

	smaller, err := world.NewLocation("Farm", []string{"..", ".."}, nav.PortalSet{})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, smaller))

	got, err := repo.Load(ctx, "Farm")
	require.NoError(t, err)
	assert.Equal(t, []string{"..", ".."}, got.Rows())
	assert.Equal(t, nav.PortalSet{}, got.Portals())
}

func TestLocationRepository_Delete(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewLocationRepository(pool)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, farm(t)))
	require.NoError(t, repo.Delete(ctx, "Farm"))

	_, err := repo.Load(ctx, "Farm")
	assert.ErrorIs(t, err, ErrLocationNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "Farm"), ErrLocationNotFound)

	names, err := repo.Names(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestLocationRepository_FeedsWorld(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewLocationRepository(pool)
	ctx := context.Background()

	town, err := world.NewLocation("Town", []string{"...", "..."}, nav.PortalSet{})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, farm(t)))
	require.NoError(t, repo.Save(ctx, town))

	locs, err := repo.LoadAll(ctx)
	require.NoError(t, err)

	w := world.New()
	w.Replace(locs)
	assert.Equal(t, []string{"Farm", "Town"}, w.RoomNames())
}
