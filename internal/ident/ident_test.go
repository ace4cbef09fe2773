package ident

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeShape(t *testing.T) {
	tests := []struct {
		name  string
		scope Scope
		kind  Kind
		role  Role
		path  Path
		want  string
	}{
		{"root", ScopeClan, KindBasic, RoleNone, Path{}, "custom.clan.basic."},
		{"branch", ScopeKingdom, KindElite, RoleNone, PathOf(0, 1, 1), "custom.kingdom.elite.011"},
		{"retinue", ScopeClan, KindElite, RoleRetinue, Path{}, "custom.clan.elite.retinue"},
		{"role ignores path", ScopeKingdom, KindBasic, RoleRangedMilitia, PathOf(1, 1), "custom.kingdom.basic.ranged-militia"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Encode(tc.scope, tc.kind, tc.role, tc.path))
		})
	}
}

func TestRoundTripAllTuples(t *testing.T) {
	var paths []Path
	var grow func(p Path)
	grow = func(p Path) {
		paths = append(paths, p)
		if p.Len() == 6 {
			return
		}
		for _, b := range []uint8{0, 1} {
			c, ok := p.Child(b)
			require.True(t, ok)
			grow(c)
		}
	}
	grow(Path{})

	seen := make(map[string]Parts)
	for _, s := range Scopes {
		for _, k := range Kinds {
			for _, p := range paths {
				want := Parts{Scope: s, Kind: k, Path: p}
				id := want.ID()
				got, ok := Decode(id)
				require.True(t, ok, id)
				assert.Equal(t, want, got)
				_, dup := seen[id]
				assert.False(t, dup, "duplicate id %s", id)
				seen[id] = want
			}
			for _, r := range Roles {
				want := Parts{Scope: s, Kind: k, Role: r}
				got, ok := Decode(want.ID())
				require.True(t, ok)
				assert.Equal(t, want, got)
			}
		}
	}
}

func TestDecodeRejectsForeign(t *testing.T) {
	foreign := []string{
		"",
		"custom",
		"custom.",
		"custom.clan",
		"custom.clan.basic",
		"custom.tribe.basic.0",
		"custom.clan.veteran.0",
		"custom.clan.basic.012",
		"custom.clan.basic.retinue.0",
		"custom.clan.basic.Retinue",
		"custom.clan.basic.0000000000000000",
		"imperial_recruit",
		"CUSTOM.clan.basic.",
		"custom.clan.basic. ",
		"\x00\xff",
	}
	for _, id := range foreign {
		_, ok := Decode(id)
		assert.False(t, ok, "%q should not decode", id)
		assert.False(t, IsCustom(id))
	}

	_, err := Parse("imperial_recruit")
	assert.True(t, errors.Is(err, ErrInvalidIdentity))
}

func TestParentID(t *testing.T) {
	parent, ok := ParentID("custom.clan.basic.01")
	require.True(t, ok)
	assert.Equal(t, "custom.clan.basic.0", parent)

	parent, ok = ParentID("custom.clan.basic.0")
	require.True(t, ok)
	assert.Equal(t, "custom.clan.basic.", parent)

	for _, id := range []string{"custom.clan.basic.", "custom.clan.elite.retinue", "looter"} {
		_, ok := ParentID(id)
		assert.False(t, ok, id)
	}
}

func TestChildIDs(t *testing.T) {
	assert.Equal(t, []string{"custom.kingdom.elite.10", "custom.kingdom.elite.11"}, ChildIDs("custom.kingdom.elite.1"))
	assert.Equal(t, []string{"custom.clan.basic.0", "custom.clan.basic.1"}, ChildIDs(RootID(ScopeClan, KindBasic)))
	assert.Nil(t, ChildIDs("custom.clan.basic.melee-militia"))
	assert.Nil(t, ChildIDs("looter"))

	for _, child := range ChildIDs("custom.clan.basic.0110") {
		parent, ok := ParentID(child)
		require.True(t, ok)
		assert.Equal(t, "custom.clan.basic.0110", parent)
	}
}

func TestPathVector(t *testing.T) {
	p := PathOf(1, 0, 1)
	assert.Equal(t, 3, p.Len())
	assert.Equal(t, uint8(1), p.At(0))
	assert.Equal(t, uint8(0), p.At(1))
	assert.Equal(t, uint8(1), p.Last())
	assert.Equal(t, "101", p.String())

	parsed, ok := ParsePath("101")
	require.True(t, ok)
	assert.Equal(t, p, parsed)

	parent, ok := p.Parent()
	require.True(t, ok)
	assert.Equal(t, PathOf(1, 0), parent)

	deep := Path{}
	for i := 0; i < MaxDepth; i++ {
		deep, ok = deep.Child(1)
		require.True(t, ok)
	}
	_, ok = deep.Child(0)
	assert.False(t, ok)
}
