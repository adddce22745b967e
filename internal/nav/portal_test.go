package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseActionVocabulary(t *testing.T) {
	tests := []struct {
		action string
		target string
		x, y   int
	}{
		{"Warp 10 12 Town", "Town", 10, 12},
		{"LockedDoorWarp 6 29 SeedShop 900 2100", "SeedShop", 6, 29},
		{"MagicWarp Desert 35 43", "Desert", 35, 43},
		{"WarpMensLocker 15 16 BathHouse_MensLocker", "BathHouse_MensLocker", 15, 16},
		{"WarpWomensLocker 3 4 BathHouse_WomensLocker", "BathHouse_WomensLocker", 3, 4},
		{"WarpCommunityCenter", CommunityCenterName, CommunityCenterX, CommunityCenterY},
	}
	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			decl, ok, err := ParseAction("Town", TileAction{X: 1, Y: 2, Action: tt.action})
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, KindAction, decl.Kind)
			assert.Equal(t, "Town", decl.From)
			assert.Equal(t, 1, decl.X)
			assert.Equal(t, 2, decl.Y)
			assert.Equal(t, tt.target, decl.Target)
			assert.Equal(t, tt.x, decl.TargetX)
			assert.Equal(t, tt.y, decl.TargetY)
		})
	}
}

func TestParseActionIgnoresUnknown(t *testing.T) {
	for _, action := range []string{"", "Buy General", "Mailbox", "Door Abigail"} {
		_, ok, err := ParseAction("Town", TileAction{Action: action})
		assert.NoError(t, err, action)
		assert.False(t, ok, action)
	}
	assert.False(t, IsWarpAction("Message"))
	assert.True(t, IsWarpAction("MagicWarp"))
}

func TestParseActionMalformed(t *testing.T) {
	for _, action := range []string{"Warp 10 Town", "Warp x 12 Town", "MagicWarp Desert 35 y"} {
		_, ok, err := ParseAction("Town", TileAction{Action: action})
		assert.ErrorIs(t, err, ErrMalformedAction, action)
		assert.False(t, ok)
	}
}

func TestPortalSetFlatten(t *testing.T) {
	set := PortalSet{
		Warps: []Warp{{X: 0, Y: 5, Target: "Forest", TargetX: 60, TargetY: 5}},
		Doors: []DoorWarp{{X: 3, Y: 3, Target: "Saloon", TargetX: 14, TargetY: 24}},
		Buildings: []BuildingDoor{{
			AnchorX: 20, AnchorY: 10, DoorOffsetX: 2, DoorOffsetY: 3,
			Interior: "Coop", EntryX: 2, EntryY: 9,
		}},
		Actions: []TileAction{
			{X: 7, Y: 7, Action: "Warp 1 1 Mine"},
			{X: 8, Y: 8, Action: "Message \"hello\""},
			{X: 9, Y: 9, Action: "Warp one 1 Mine"},
		},
	}

	decls, errs := set.Flatten("Farm")
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrMalformedAction)
	require.Len(t, decls, 4)

	assert.Equal(t, KindWarp, decls[0].Kind)
	assert.Equal(t, KindDoor, decls[1].Kind)
	assert.Equal(t, KindBuilding, decls[2].Kind)
	assert.Equal(t, 22, decls[2].X)
	assert.Equal(t, 13, decls[2].Y)
	assert.Equal(t, "Coop", decls[2].Target)
	assert.Equal(t, KindAction, decls[3].Kind)
	for _, d := range decls {
		assert.Equal(t, "Farm", d.From)
	}
}

func TestPortalKindRoundTrip(t *testing.T) {
	for _, k := range []PortalKind{KindWarp, KindDoor, KindBuilding, KindAction, KindScripted} {
		got, err := ParsePortalKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParsePortalKind("teleporter")
	assert.Error(t, err)
}
