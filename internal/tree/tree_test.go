package tree

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/warband/internal/ident"
	"github.com/talgya/warband/internal/troops"
)

// nativeLine builds recruit -> {footman -> {sergeant}, archer}.
func nativeLine(t *testing.T) *troops.Troop {
	t.Helper()
	recruit := troops.New("recruit", "Recruit", 1, map[string]int{"OneHanded": 15})
	recruit.Culture = "vlandia"
	footman := troops.New("footman", "Footman", 2, nil)
	archer := troops.New("archer", "Archer", 2, nil)
	sergeant := troops.New("sergeant", "Sergeant", 3, nil)
	require.NoError(t, recruit.AddChild(footman))
	require.NoError(t, recruit.AddChild(archer))
	require.NoError(t, footman.AddChild(sergeant))
	return recruit
}

func ids(seq []*troops.Troop) []string {
	out := make([]string, len(seq))
	for i, n := range seq {
		out[i] = n.ID
	}
	return out
}

func TestWalkPreOrderAndRestartable(t *testing.T) {
	root := nativeLine(t)
	first := slices.Collect(Walk(root))
	assert.Equal(t, []string{"recruit", "footman", "sergeant", "archer"}, ids(first))
	second := slices.Collect(Walk(root))
	assert.Equal(t, ids(first), ids(second))

	var stopped []string
	for n := range Walk(root) {
		stopped = append(stopped, n.ID)
		if n.ID == "footman" {
			break
		}
	}
	assert.Equal(t, []string{"recruit", "footman"}, stopped)

	assert.Empty(t, slices.Collect(Walk(nil)))
	assert.Equal(t, 3, Depth(root))
	assert.Equal(t, 4, Count(root))
}

func TestFindAndContains(t *testing.T) {
	root := nativeLine(t)
	n, ok := Find(root, "sergeant")
	require.True(t, ok)
	assert.True(t, Contains(root, n))
	assert.False(t, Contains(root, troops.New("other", "Other", 1, nil)))
	assert.Len(t, Children(root), 2)
	assert.Empty(t, Children(nil))
}

func TestDeriveAssignsPathIDs(t *testing.T) {
	src := Source{
		Culture: "vlandia",
		Roots:   map[ident.Kind]*troops.Troop{ident.KindBasic: nativeLine(t)},
		Leaves: map[ident.Kind]map[ident.Role]*troops.Troop{
			ident.KindElite: {ident.RoleRetinue: troops.New("knight", "Knight", 5, nil)},
		},
	}
	f := Derive(ident.ScopeClan, src)

	root := f.Root(ident.KindBasic)
	require.NotNil(t, root)
	assert.Equal(t, []string{
		"custom.clan.basic.",
		"custom.clan.basic.0",
		"custom.clan.basic.00",
		"custom.clan.basic.1",
	}, ids(slices.Collect(Walk(root))))
	assert.Equal(t, "recruit", root.VanillaID)
	assert.Nil(t, f.Root(ident.KindElite))

	for n := range Walk(root) {
		if parentID, ok := ident.ParentID(n.ID); ok {
			assert.Equal(t, parentID, n.Parent().ID)
		}
	}

	retinue := f.Leaf(ident.KindElite, ident.RoleRetinue)
	require.NotNil(t, retinue)
	assert.Equal(t, "custom.clan.elite.retinue", retinue.ID)
	assert.True(t, retinue.IsLeaf())
	assert.Len(t, f.Tops(), 2)
}

func TestRegistryLifecycle(t *testing.T) {
	src := Source{Culture: "vlandia", Roots: map[ident.Kind]*troops.Troop{ident.KindBasic: nativeLine(t)}}
	clan := Derive(ident.ScopeClan, src)
	kingdom := Derive(ident.ScopeKingdom, src)

	reg := NewRegistry()
	reg.Rebuild(clan, kingdom)
	assert.Equal(t, 8, reg.Len())

	root, ok := reg.Root(ident.ScopeKingdom, ident.KindBasic)
	require.True(t, ok)
	assert.Equal(t, "custom.kingdom.basic.", root.ID)

	node, ok := reg.Lookup("custom.clan.basic.00")
	require.True(t, ok)
	assert.True(t, reg.Owns(ident.ScopeClan, node))
	assert.False(t, reg.Owns(ident.ScopeKingdom, node))
	assert.False(t, reg.Owns(ident.ScopeClan, troops.CloneTroop(node, node.ID)), "stale copies are not live")

	reg.Clear()
	assert.Equal(t, 0, reg.Len())
	_, ok = reg.Root(ident.ScopeClan, ident.KindBasic)
	assert.False(t, ok)
}

func TestRegistryRegisterPlacesTops(t *testing.T) {
	reg := NewRegistry()
	root := troops.New(ident.RootID(ident.ScopeClan, ident.KindElite), "Elite", 2, nil)
	child := troops.New("custom.clan.elite.1", "Elite Child", 3, nil)
	militia := troops.New(ident.RoleID(ident.ScopeClan, ident.KindBasic, ident.RoleMeleeMilitia), "Militia", 2, nil)

	assert.True(t, reg.Register(root))
	assert.True(t, reg.Register(child))
	assert.True(t, reg.Register(militia))
	assert.False(t, reg.Register(troops.New("looter", "Looter", 0, nil)))

	got, ok := reg.Root(ident.ScopeClan, ident.KindElite)
	require.True(t, ok)
	assert.Same(t, root, got)
	leaf, ok := reg.Leaf(ident.ScopeClan, ident.KindBasic, ident.RoleMeleeMilitia)
	require.True(t, ok)
	assert.Same(t, militia, leaf)
	_, ok = reg.Lookup("custom.clan.elite.1")
	assert.True(t, ok)
	assert.Len(t, reg.Factions(), 1)
}
